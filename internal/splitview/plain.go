package splitview

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/takumi3488/parari/internal/runrequest"
)

// RunPlain is the non-interactive fallback used when stdout is not a
// terminal (piped output, CI, a script driving parari): it prints each
// agent's status and change summary, then reads a numeric choice or "q"
// from in. It implements the same Selection contract as Run so callers do
// not need to branch on the outcome, only on which one to invoke.
func RunPlain(results []runrequest.ResultInfo, out io.Writer, in io.Reader) (Selection, error) {
	if len(results) == 0 {
		return Selection{Cancelled: true}, nil
	}

	for i, r := range results {
		status := "failed"
		if r.Success {
			status = "ok"
		}
		fmt.Fprintf(out, "[%d] %s (%s)", i, r.Name, status)
		if r.ChangeSummary != nil {
			fmt.Fprintf(out, "  +%d ~%d -%d", r.ChangeSummary.FilesAdded, r.ChangeSummary.FilesModified, r.ChangeSummary.FilesDeleted)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprint(out, "Promote which agent? (number, or q to cancel): ")

	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return Selection{}, err
	}
	line = strings.TrimSpace(line)
	if line == "" || strings.EqualFold(line, "q") {
		return Selection{Cancelled: true}, nil
	}

	idx, err := strconv.Atoi(line)
	if err != nil || idx < 0 || idx >= len(results) {
		return Selection{Cancelled: true}, nil
	}
	return Selection{Index: idx}, nil
}
