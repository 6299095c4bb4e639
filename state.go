package gate

// State is the bring-up state of a Sequencer.
type State uint8

const (
	StateIdle State = iota
	StateWaiting
	StateInitPeripheral
	StateInitClient
	StateSpawnWorker
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateIdle:           "idle",
	StateWaiting:        "waiting for signal",
	StateInitPeripheral: "init peripheral",
	StateInitClient:     "init client",
	StateSpawnWorker:    "spawn worker",
	StateDone:           "done",
	StateFailed:         "failed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Terminal returns true if no further bring-up action happens in state s
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
