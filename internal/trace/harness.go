package trace

import "github.com/danielpatrickdp/topology-analysis/internal/topology"

// #region replay
// Replay walks steps against initial in order, applying the full legality
// check before each: steps that aren't currently legal are recorded as
// "illegal" and the global state does not advance. Operates entirely
// in-memory.
func Replay(initial *topology.Application, steps []topology.Step) []StepRecord {
	current := initial
	records := make([]StepRecord, 0, len(steps))

	for _, step := range steps {
		if !legal(current, step) {
			records = append(records, StepRecord{
				Step:       step,
				Action:     "illegal",
				Reason:     "step is not among the current legal moves",
				FromGlobal: current.GlobalState,
				ToGlobal:   current.GlobalState,
			})
			continue
		}

		succ, err := topology.Apply(current, step)
		if err != nil {
			records = append(records, StepRecord{
				Step:       step,
				Action:     "illegal",
				Reason:     err.Error(),
				FromGlobal: current.GlobalState,
				ToGlobal:   current.GlobalState,
			})
			continue
		}

		records = append(records, StepRecord{
			Step:       step,
			Action:     "commit",
			Reason:     "applied",
			FromGlobal: current.GlobalState,
			ToGlobal:   succ.GlobalState,
		})
		current = succ
	}

	return records
}

// Summarize computes aggregate stats from a replay run.
func Summarize(records []StepRecord, final *topology.Application) Summary {
	s := Summary{TotalSteps: len(records), FinalGlobal: final.GlobalState}
	for _, r := range records {
		if r.Action == "commit" {
			s.Commits++
		} else {
			s.IllegalSteps++
		}
	}
	return s
}

// #endregion replay

// #region legal
func legal(app *topology.Application, step topology.Step) bool {
	for _, candidate := range topology.LegalMoves(app) {
		if candidate == step {
			return true
		}
	}
	return false
}

// #endregion legal
