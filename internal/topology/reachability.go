package topology

// #region reachable
// Reachable enumerates every Application configuration reachable from
// initial by any sequence of legal moves, keyed by canonical global state.
// The traversal is depth-first and visits moves in legalMoves' fixed order,
// matching the "first Application to reach a given global state wins, and
// is the one stored" semantics of a naive recursive enumeration — without
// recursing, so the stack does not grow with the depth of the state space.
func Reachable(initial *Application) map[GlobalStateKey]*Application {
	visited := map[GlobalStateKey]*Application{
		initial.GlobalState: initial,
	}

	stack := []*Application{initial}
	for len(stack) > 0 {
		app := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, mv := range legalMoves(app) {
			succ, err := mv.apply(app)
			if err != nil {
				// legalMoves only yields moves that already passed the
				// legality predicate; apply cannot legitimately fail.
				continue
			}
			if _, seen := visited[succ.GlobalState]; seen {
				continue
			}
			visited[succ.GlobalState] = succ
			stack = append(stack, succ)
		}
	}

	return visited
}

// #endregion reachable
