package project

import "math"

type (
	Progress struct {
		Completed int `json:"completed"`
		Total     int `json:"total"`
		Percent   int `json:"percent"`
	}

	ChecklistProgress struct {
		Completed int `json:"completed"`
		Total     int `json:"total"`
	}

	// ProjectProgress is the full progress breakdown of one project's tasks.
	ProjectProgress struct {
		Overall   Progress                     `json:"overall"`
		PerModule map[string]Progress          `json:"per_module"`
		PerTask   map[string]ChecklistProgress `json:"per_task"`
	}
)

// ComputeProgress derives completion percentages from the given tasks.
// It is a pure function of current task state and is recomputed on every
// read; percentages are never cached. A task counts as completed from its
// Status alone, independent of checklist state.
func ComputeProgress(tasks []Task) ProjectProgress {
	prog := ProjectProgress{
		PerModule: make(map[string]Progress),
		PerTask:   make(map[string]ChecklistProgress, len(tasks)),
	}
	for _, tsk := range tasks {
		prog.Overall.Total++
		mod := prog.PerModule[tsk.ModuleID]
		mod.Total++
		if tsk.IsCompleted() {
			prog.Overall.Completed++
			mod.Completed++
		}
		prog.PerModule[tsk.ModuleID] = mod

		items := ChecklistProgress{Total: len(tsk.Checklist)}
		for _, item := range tsk.Checklist {
			if item.Completed {
				items.Completed++
			}
		}
		prog.PerTask[tsk.ID] = items
	}

	prog.Overall.Percent = percent(prog.Overall.Completed, prog.Overall.Total)
	for id, mod := range prog.PerModule {
		mod.Percent = percent(mod.Completed, mod.Total)
		prog.PerModule[id] = mod
	}
	return prog
}

// percent rounds to the nearest integer. Zero totals yield zero, not NaN.
func percent(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}
