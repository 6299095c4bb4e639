package gate

import (
	"context"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestRunnerSupervisesWorker(t *testing.T) {
	c := qt.New(t)
	log := &recLogger{}
	client := newFakeWorker("UDP", nil)
	r := NewRunner("main", &fakePin{levels: []Level{High, Low}},
		&fakeSubsystem{name: "BLE"}, client, log)
	r.PollInterval = time.Millisecond
	status := make(chan State, 1)
	r.Status = func(s State) { status <- s }
	c.Assert(r.State(), qt.Equals, StateIdle)
	c.Assert(r.Tasks(), qt.IsNil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	select {
	case <-client.runs:
	case <-time.After(5 * time.Second):
		c.Fatal("worker never ran")
	}
	select {
	case s := <-status:
		c.Assert(s, qt.Equals, StateDone)
	case <-time.After(5 * time.Second):
		c.Fatal("no status")
	}
	c.Assert(r.State(), qt.Equals, StateDone)
	c.Assert(r.Tasks(), qt.HasLen, 1)

	cancel()
	c.Assert(<-done, qt.IsNil)
}

func TestRunnerIdlesAfterFailure(t *testing.T) {
	c := qt.New(t)
	log := &recLogger{}
	r := NewRunner("main", &fakePin{levels: []Level{Low}},
		&fakeSubsystem{name: "BLE", err: errInit}, newFakeWorker("UDP", nil), log)
	var status []State
	r.Status = func(s State) { status = append(status, s) }

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := r.Run(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(ctx.Err(), qt.Not(qt.IsNil))
	c.Assert(r.State(), qt.Equals, StateFailed)
	c.Assert(r.Tasks(), qt.HasLen, 0)
	c.Assert(status, qt.DeepEquals, []State{StateFailed})
}
