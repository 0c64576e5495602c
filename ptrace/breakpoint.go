package ptrace

// BreakpointState is the per-address bookkeeping the Tracer needs to
// install, recognize, and one-shot-remove a software breakpoint.
//
// oldCode is only meaningful once the breakpoint has been installed by
// SetBreakpoints; Hit starts false and is never reset back to false —
// breakpoints are one-shot, matching the hit-count-capped-at-1 model in
// spec.md's data model (statement coverage, not execution-count coverage).
type BreakpointState struct {
	oldCode byte
	Hit     bool
}
