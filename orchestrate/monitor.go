package orchestrate

// Monitor provides hooks to observe the orchestration process.
// Implement this interface to surface stage progress to a caller, for
// example as a streamed status feed.
type Monitor interface {
	OnStage(stage Stage, detail string)
}

// MonitorFunc adapts a function to the Monitor interface.
type MonitorFunc func(stage Stage, detail string)

// OnStage calls the wrapped function.
func (f MonitorFunc) OnStage(stage Stage, detail string) {
	f(stage, detail)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) OnStage(_ Stage, _ string) {}
