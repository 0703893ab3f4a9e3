// internal/simulate/phase.go
//
// Pipeline phases for a what-if run. The machine is deliberately small:
// Idle -> Simulating -> Analyzing -> Complete, with a failed step dropping
// straight back to Idle. There is no cancel-mid-flight transition; an
// in-flight evaluation always finishes or fails on its own.

package simulate

// Phase is the orchestrator's pipeline state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSimulating
	PhaseAnalyzing
	PhaseComplete
)

// String returns the machine-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseSimulating:
		return "simulating"
	case PhaseAnalyzing:
		return "analyzing"
	case PhaseComplete:
		return "complete"
	default:
		return "idle"
	}
}

// FriendlyName returns the phase label shown in the modal header.
func (p Phase) FriendlyName() string {
	switch p {
	case PhaseSimulating:
		return "Running Digital Twin"
	case PhaseAnalyzing:
		return "Analyzing Results"
	case PhaseComplete:
		return "What-If Complete"
	default:
		return "Idle"
	}
}
