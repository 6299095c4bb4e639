package gate

import (
	"context"
	"time"
)

// maxTasks bounds the tasks a Runner's group may run at once
const maxTasks = 4

// Runner owns the bring-up lifecycle: it runs the sequence and supervises the
// worker task the sequence spawns.
type Runner struct {
	tag        string
	button     InputPin
	peripheral Subsystem
	client     Worker
	log        Logger

	// PollInterval is handed to the Sequencer
	PollInterval time.Duration
	// Status, if set, is called with the terminal bring-up state
	Status func(State)

	mu    mutex
	seq   *Sequencer
	group *Group
}

// NewRunner returns a Runner logging under tag
func NewRunner(tag string, button InputPin, peripheral Subsystem,
	client Worker, log Logger) *Runner {
	return &Runner{
		tag:          tag,
		button:       button,
		peripheral:   peripheral,
		client:       client,
		log:          log,
		PollInterval: DefaultPollInterval,
	}
}

// Run runs the bring-up sequence, then stays passive until the worker task
// returns or ctx is done.  A failed bring-up does not end Run; the device
// idles until ctx is done.  Run returns the worker's error, if any.
func (r *Runner) Run(ctx context.Context) error {
	group := NewGroup(ctx, maxTasks)
	seq := NewSequencer(r.tag, r.button, r.peripheral, r.client, group, r.log)
	seq.PollInterval = r.PollInterval

	r.mu.Lock()
	r.seq, r.group = seq, group
	r.mu.Unlock()

	state := seq.Run(ctx)
	if r.Status != nil {
		r.Status(state)
	}

	if len(group.Tasks()) == 0 {
		<-ctx.Done()
	}
	return group.Wait()
}

// State returns the bring-up state, StateIdle before Run
func (r *Runner) State() State {
	r.mu.Lock()
	seq := r.seq
	r.mu.Unlock()
	if seq == nil {
		return StateIdle
	}
	return seq.State()
}

// Tasks returns the tasks spawned by the bring-up, nil before Run
func (r *Runner) Tasks() []Task {
	r.mu.Lock()
	group := r.group
	r.mu.Unlock()
	if group == nil {
		return nil
	}
	return group.Tasks()
}
