package gate

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const (
	// WorkerStackSize is the stack budget, in bytes, asked for the uplink
	// worker task.
	WorkerStackSize = 4096
	// WorkerPriority is the scheduler priority asked for the uplink worker
	// task.
	WorkerPriority = 5
)

// Task describes one background task to spawn.
type Task struct {
	Name      string
	Entry     func(context.Context) error
	StackSize uint32
	Priority  uint8
}

// Spawner starts background tasks.  A Spawner does not hand back a task
// handle; whoever owns the Spawner owns the tasks.
type Spawner interface {
	Spawn(Task) error
}

// Group is a Spawner running each task on its own goroutine.  Stack size and
// priority are kept for reporting only: goroutine stacks grow on demand and the
// Go scheduler has no priorities.
type Group struct {
	mu     mutex
	grp    *errgroup.Group
	ctx    context.Context
	tasks  []Task
	closed bool
}

// NewGroup returns a Group whose tasks get a context derived from ctx.  The
// context is canceled when the first task returns a non-nil error.  If limit
// is greater than zero, at most limit tasks may be active at once; Spawn fails
// past the limit.
func NewGroup(ctx context.Context, limit int) *Group {
	grp, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		grp.SetLimit(limit)
	}
	return &Group{grp: grp, ctx: gctx}
}

// Spawn starts t.Entry.  It fails if the entry is nil, if the group has been
// waited on, or if the task limit is reached.
func (g *Group) Spawn(t Task) error {
	if t.Entry == nil {
		return SpawnError(t.Name + ": nil entry")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return SpawnError(t.Name + ": group closed")
	}
	entry := t.Entry
	if !g.grp.TryGo(func() error { return entry(g.ctx) }) {
		return SpawnError(t.Name + ": task limit reached")
	}
	g.tasks = append(g.tasks, t)
	return nil
}

// Tasks returns the tasks spawned so far, in spawn order
func (g *Group) Tasks() []Task {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Task(nil), g.tasks...)
}

// Wait blocks until every spawned task has returned, and returns the first
// non-nil error.  No tasks may be spawned once Wait has been called.
func (g *Group) Wait() error {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	return g.grp.Wait()
}

// Verify that Group satisfies the Spawner interface.
var _ Spawner = &Group{}
