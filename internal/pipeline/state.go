package pipeline

// State is the shipper's lifecycle position. Transitions run strictly
// forward: Idle → Provisioning → Running → Draining → Cleanup → Done, with
// Failed reachable from any state.
// State 是传送器的生命周期位置。状态严格向前推进：Idle → Provisioning →
// Running → Draining → Cleanup → Done，任何状态都可进入 Failed。
type State int

const (
	StateIdle State = iota
	StateProvisioning
	StateRunning
	StateDraining
	StateCleanup
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProvisioning:
		return "provisioning"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateCleanup:
		return "cleanup"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state ends the pipeline.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
