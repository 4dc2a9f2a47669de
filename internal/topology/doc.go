// Package topology implements the composed-FSM semantics for
// distributed-application topologies: per-node state specifications,
// application-level legality and successor computation, reachable-state
// search, and all-pairs shortest-path planning over the reachability graph.
//
// The package has no dependency outside the standard library.
package topology
