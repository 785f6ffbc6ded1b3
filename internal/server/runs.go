package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	RunPending   = "pending"
	RunRunning   = "running"
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
)

// runRecord tracks one spawned booking run: its transcript and any live
// websocket subscribers following it.
type runRecord struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	status     string
	exitCode   int
	transcript []string
	subs       []chan string
	done       bool
}

func (r *runRecord) appendLine(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transcript = append(r.transcript, line)
	for _, sub := range r.subs {
		select {
		case sub <- line:
		default: // a slow subscriber must not stall the run
		}
	}
}

// subscribe returns a replay of the transcript so far and a channel of
// subsequent lines, closed when the run finishes.
func (r *runRecord) subscribe() ([]string, chan string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	replay := make([]string, len(r.transcript))
	copy(replay, r.transcript)
	if r.done {
		return replay, nil
	}
	ch := make(chan string, 64)
	r.subs = append(r.subs, ch)
	return replay, ch
}

func (r *runRecord) finish(status string, exitCode int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = status
	r.exitCode = exitCode
	r.done = true
	for _, sub := range r.subs {
		close(sub)
	}
	r.subs = nil
}

func (r *runRecord) snapshot() (status string, exitCode int, transcript []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.transcript))
	copy(out, r.transcript)
	return r.status, r.exitCode, out
}

// runStore keeps run records in memory, keyed by ID.
type runStore struct {
	mu   sync.RWMutex
	runs map[string]*runRecord
}

func newRunStore() *runStore {
	return &runStore{runs: make(map[string]*runRecord)}
}

func (s *runStore) create() *runRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := &runRecord{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		status:    RunPending,
	}
	s.runs[rec.ID] = rec
	return rec
}

func (s *runStore) get(id string) (*runRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.runs[id]
	return rec, ok
}
