package runrequest

import "github.com/takumi3488/parari/internal/agent"

// ResultInfo is the projection of a TaskResult that the UI collaborator
// consumes. It carries no reference back to the executor or worktree
// manager; the UI only needs this flat view.
type ResultInfo struct {
	Name          string
	Success       bool
	FileCount     int
	ChangeSummary *changeSummaryView
	ScratchPath   string
	Stdout        string
	Stderr        string
	OutputLines   []agent.OutputLine
}

// changeSummaryView mirrors vcs.ChangeSummary without importing vcs into
// the UI's dependency surface beyond what it needs to render.
type changeSummaryView struct {
	FilesAdded    int
	FilesModified int
	FilesDeleted  int
	ChangedFiles  []string
}

// ToResultInfo projects a TaskResult down to the fields the UI needs.
func ToResultInfo(name string, tr *TaskResult) ResultInfo {
	info := ResultInfo{
		Name:        name,
		ScratchPath: tr.ScratchPath,
	}
	if tr.Result != nil {
		info.Success = tr.Result.Success
		info.Stdout = tr.Result.Stdout
		info.Stderr = tr.Result.Stderr
		info.OutputLines = tr.Result.OutputLines
	}
	if tr.ChangeSummary != nil {
		info.ChangeSummary = &changeSummaryView{
			FilesAdded:    tr.ChangeSummary.FilesAdded,
			FilesModified: tr.ChangeSummary.FilesModified,
			FilesDeleted:  tr.ChangeSummary.FilesDeleted,
			ChangedFiles:  tr.ChangeSummary.ChangedFiles,
		}
		info.FileCount = len(tr.ChangeSummary.ChangedFiles)
	}
	return info
}

// ToResultInfos projects every TaskResult, using each executor's recorded
// name.
func ToResultInfos(results []*TaskResult) []ResultInfo {
	infos := make([]ResultInfo, 0, len(results))
	for _, r := range results {
		name := ""
		if r.Result != nil {
			name = r.Result.Name
		}
		infos = append(infos, ToResultInfo(name, r))
	}
	return infos
}
