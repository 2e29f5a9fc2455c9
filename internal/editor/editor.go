// Package editor launches the user's $EDITOR on a scratch file to collect a
// prompt when none was given on the command line.
package editor

import (
	"os"
	"os/exec"
	"strings"

	"github.com/takumi3488/parari/internal/parerr"
)

const instructions = `
# Enter your prompt above this line.
# Lines starting with '#' will be ignored.
# Save and exit the editor to continue.
# Leave empty to cancel.
`

// Prompt opens $EDITOR (defaulting to "vi") on a temporary file pre-filled
// with commented instructions, then returns the non-comment content typed
// above them. An empty result after filtering comment lines, or a non-zero
// editor exit, is reported as EditorFailure.
func Prompt() (string, error) {
	editorBin := os.Getenv("EDITOR")
	if editorBin == "" {
		editorBin = "vi"
	}

	f, err := os.CreateTemp("", "parari-prompt-*.txt")
	if err != nil {
		return "", &parerr.IoFailure{Op: "create prompt temp file", Err: err}
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(instructions); err != nil {
		f.Close()
		return "", &parerr.IoFailure{Op: "write prompt temp file", Err: err}
	}
	if err := f.Close(); err != nil {
		return "", &parerr.IoFailure{Op: "close prompt temp file", Err: err}
	}

	cmd := exec.Command(editorBin, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", &parerr.EditorFailure{Message: "editor exited with an error: " + err.Error()}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", &parerr.IoFailure{Op: "read prompt temp file", Err: err}
	}

	prompt := filterComments(string(content))
	if prompt == "" {
		return "", &parerr.EditorFailure{Message: "No prompt entered"}
	}
	return prompt, nil
}

// filterComments strips lines beginning with '#' and trims the remainder.
func filterComments(content string) string {
	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(line, "#") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
