// Package track records in-flight background work per session: durable
// message writes and relay reader loops. Disconnect uses it to wait for
// every task a session spawned before releasing resources.
//
// A Tracker is constructed explicitly and injected into each session, so
// tests can use an isolated tracker per case.
package track

import (
	"context"
	"sync"
)

type kind int

const (
	kindPersist kind = iota
	kindReader
)

// Task is a handle to one in-flight unit of work. The owner completes it
// exactly once, whether the work succeeded or failed.
type Task struct {
	tracker *Tracker
	owner   string
	kind    kind
	done    chan struct{}
	once    sync.Once
}

// Complete marks the task terminal and removes it from the tracker.
func (t *Task) Complete() {
	t.once.Do(func() {
		t.tracker.remove(t)
		close(t.done)
	})
}

// Done is closed when the task completes.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Tracker holds the live task sets for all sessions of the process.
type Tracker struct {
	mu    sync.Mutex
	tasks map[string]map[*Task]struct{} // session id -> live tasks
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{tasks: make(map[string]map[*Task]struct{})}
}

// StartPersist registers a new persistence task owned by the session.
func (tr *Tracker) StartPersist(sessionID string) *Task {
	return tr.start(sessionID, kindPersist)
}

// StartReader registers a new relay reader task owned by the session.
func (tr *Tracker) StartReader(sessionID string) *Task {
	return tr.start(sessionID, kindReader)
}

func (tr *Tracker) start(sessionID string, k kind) *Task {
	t := &Task{
		tracker: tr,
		owner:   sessionID,
		kind:    k,
		done:    make(chan struct{}),
	}

	tr.mu.Lock()
	defer tr.mu.Unlock()
	set, ok := tr.tasks[sessionID]
	if !ok {
		set = make(map[*Task]struct{})
		tr.tasks[sessionID] = set
	}
	set[t] = struct{}{}
	return t
}

func (tr *Tracker) remove(t *Task) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if set, ok := tr.tasks[t.owner]; ok {
		delete(set, t)
		if len(set) == 0 {
			delete(tr.tasks, t.owner)
		}
	}
}

// WaitPersists blocks until every persistence task currently registered
// under the session has completed, or the context ends. Task failure is
// not an error here; only completion matters.
func (tr *Tracker) WaitPersists(ctx context.Context, sessionID string) error {
	return tr.wait(ctx, sessionID, kindPersist)
}

// WaitReaders blocks until every reader task currently registered under
// the session has completed, or the context ends.
func (tr *Tracker) WaitReaders(ctx context.Context, sessionID string) error {
	return tr.wait(ctx, sessionID, kindReader)
}

func (tr *Tracker) wait(ctx context.Context, sessionID string, k kind) error {
	for _, t := range tr.snapshot(sessionID, k) {
		select {
		case <-t.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (tr *Tracker) snapshot(sessionID string, k kind) []*Task {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	var out []*Task
	for t := range tr.tasks[sessionID] {
		if t.kind == k {
			out = append(out, t)
		}
	}
	return out
}

// Count returns the number of live tasks registered under the session.
func (tr *Tracker) Count(sessionID string) int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return len(tr.tasks[sessionID])
}
