package gate

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Level is a digital pin level
type Level bool

const (
	Low  Level = false
	High Level = true
)

// Pressed is the level of a pulled-up button while held down
const Pressed = Low

// PinMode is the direction of a digital pin
type PinMode uint8

// PinInput is the only mode the start signal pin is configured in
const PinInput PinMode = 0

// PinConfig is passed to InputPin.Configure
type PinConfig struct {
	Mode       PinMode
	PullUp     bool
	Interrupts bool
}

// InputPin is a digital input pin.  Get may be called repeatedly with no side
// effects between reads.
type InputPin interface {
	Configure(PinConfig) error
	Get() Level
	String() string
}

// Subsystem is initialized once during bring-up.  Init is not retried.
type Subsystem interface {
	Name() string
	Init() error
}

// Worker is a Subsystem with a duty cycle, run as a background task after
// bring-up.  Run returns when ctx is done.
type Worker interface {
	Subsystem
	Run(ctx context.Context) error
}

// DefaultPollInterval is how often the start signal pin is sampled
const DefaultPollInterval = 100 * time.Millisecond

// Sequencer runs the bring-up sequence: wait for the start signal, init the
// peripheral, init the client, spawn the client's worker task.  Every outcome
// is reported on the logger only.
type Sequencer struct {
	tag        string
	button     InputPin
	peripheral Subsystem
	client     Worker
	spawner    Spawner
	log        Logger

	// PollInterval is the start signal sampling period
	PollInterval time.Duration
	// sleep is swapped out by tests
	sleep func(context.Context, time.Duration) error

	mu    mutex
	state State
}

// NewSequencer returns a Sequencer logging under tag
func NewSequencer(tag string, button InputPin, peripheral Subsystem,
	client Worker, spawner Spawner, log Logger) *Sequencer {
	return &Sequencer{
		tag:          tag,
		button:       button,
		peripheral:   peripheral,
		client:       client,
		spawner:      spawner,
		log:          log,
		PollInterval: DefaultPollInterval,
		sleep:        sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// State returns the current bring-up state
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Sequencer) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// AwaitStartSignal configures the button pin as a pulled-up input with
// interrupts off, then samples it every PollInterval until it reads Pressed.
// There is no timeout; the wait ends early only when ctx is done.
func (s *Sequencer) AwaitStartSignal(ctx context.Context) error {
	cfg := PinConfig{Mode: PinInput, PullUp: true, Interrupts: false}
	if err := s.button.Configure(cfg); err != nil {
		return &PinError{Pin: s.button.String(), Err: err}
	}

	s.log.Info(s.tag, "Waiting for boot button press...")

	for s.button.Get() != Pressed {
		if err := s.sleep(ctx, s.PollInterval); err != nil {
			return err
		}
	}

	s.log.Info(s.tag, "Boot button pressed! Continuing with the program...")
	return nil
}

// Run runs the bring-up sequence once and returns the terminal state,
// StateDone or StateFailed.  A worker spawn failure is logged but still ends
// in StateDone.  The closing "I am Here" line is logged on every path.
func (s *Sequencer) Run(ctx context.Context) State {
	state := s.run(ctx)
	s.setState(state)
	s.log.Info(s.tag, "I am Here")
	return state
}

func (s *Sequencer) run(ctx context.Context) State {
	s.setState(StateWaiting)
	if err := s.AwaitStartSignal(ctx); err != nil {
		s.log.Error(s.tag, "Start signal wait failed: "+err.Error())
		return StateFailed
	}

	s.setState(StateInitPeripheral)
	if !s.initSubsystem(s.peripheral) {
		return StateFailed
	}

	s.setState(StateInitClient)
	if !s.initSubsystem(s.client) {
		return StateFailed
	}

	s.setState(StateSpawnWorker)
	name := s.client.Name()
	task := Task{
		Name:      strings.ToLower(name) + "_client_task",
		Entry:     s.client.Run,
		StackSize: WorkerStackSize,
		Priority:  WorkerPriority,
	}
	if err := s.spawner.Spawn(task); err != nil {
		s.log.Error(s.tag, fmt.Sprintf("Failed to create %s client task: %s", name, err))
	} else {
		s.log.Info(s.tag, name+" client task started.")
	}

	return StateDone
}

func (s *Sequencer) initSubsystem(sub Subsystem) bool {
	if err := sub.Init(); err != nil {
		ierr := &InitError{Subsystem: sub.Name(), Err: err}
		s.log.Error(s.tag, ierr.Error())
		return false
	}
	s.log.Info(s.tag, sub.Name()+" initialization successful.")
	return true
}
