package store

import (
	"sync"

	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/domain"
)

// DefaultLogCap is the maximum number of entries kept in the simulation log
const DefaultLogCap = 1000

// Change kinds delivered to subscribers
const (
	ChangeStatus   = "status"
	ChangeRemove   = "remove"
	ChangeLog      = "log"
	ChangeLogClear = "log_clear"
)

// Change describes a single store mutation for subscribers
type Change struct {
	Kind      string `json:"kind"`
	ProjectID string `json:"project_id,omitempty"`
}

// StatusStore holds the latest known simulation status per project plus a
// bounded, newest-first notification log. All mutations are atomic with
// respect to readers.
type StatusStore struct {
	mu       sync.RWMutex
	statuses map[string]domain.ProjectSimulationStatus
	logs     []domain.LogEntry // newest first
	logCap   int

	subMu  sync.Mutex
	subs   map[int]chan Change
	nextID int
}

// New creates a StatusStore. A logCap <= 0 falls back to DefaultLogCap.
func New(logCap int) *StatusStore {
	if logCap <= 0 {
		logCap = DefaultLogCap
	}
	return &StatusStore{
		statuses: make(map[string]domain.ProjectSimulationStatus),
		logCap:   logCap,
		subs:     make(map[int]chan Change),
	}
}

// SetAll replaces every tracked status in one step
func (s *StatusStore) SetAll(statuses map[string]domain.ProjectSimulationStatus) {
	next := make(map[string]domain.ProjectSimulationStatus, len(statuses))
	for id, st := range statuses {
		st.ProjectID = id
		next[id] = st
	}

	s.mu.Lock()
	s.statuses = next
	s.mu.Unlock()

	s.publish(Change{Kind: ChangeStatus})
}

// Upsert inserts or wholesale-replaces the status for one project
func (s *StatusStore) Upsert(projectID string, status domain.ProjectSimulationStatus) {
	status.ProjectID = projectID

	s.mu.Lock()
	s.statuses[projectID] = status
	s.mu.Unlock()

	s.publish(Change{Kind: ChangeStatus, ProjectID: projectID})
}

// Patch merges the provided fields into an existing status. Unlike Upsert it
// never creates a project; patching an unknown project returns
// domain.ErrProjectNotFound.
func (s *StatusStore) Patch(projectID string, patch domain.StatusPatch) error {
	s.mu.Lock()
	status, ok := s.statuses[projectID]
	if !ok {
		s.mu.Unlock()
		return domain.ErrProjectNotFound
	}

	if patch.IsRunning != nil {
		status.IsRunning = *patch.IsRunning
	}
	if patch.ActiveDevices != nil {
		status.ActiveDevices = *patch.ActiveDevices
	}
	if patch.MessagesSent != nil {
		status.MessagesSent = *patch.MessagesSent
	}
	if patch.Devices != nil {
		status.Devices = patch.Devices
	}
	if patch.Errors != nil {
		status.Errors = patch.Errors
	}

	s.statuses[projectID] = status
	s.mu.Unlock()

	s.publish(Change{Kind: ChangeStatus, ProjectID: projectID})
	return nil
}

// Remove deletes a project's status. Removing an absent project is a no-op.
func (s *StatusStore) Remove(projectID string) {
	s.mu.Lock()
	_, existed := s.statuses[projectID]
	delete(s.statuses, projectID)
	s.mu.Unlock()

	if existed {
		s.publish(Change{Kind: ChangeRemove, ProjectID: projectID})
	}
}

// Get returns the status for a project; ok is false when it is not tracked
func (s *StatusStore) Get(projectID string) (domain.ProjectSimulationStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status, ok := s.statuses[projectID]
	return status, ok
}

// All returns a copy of every tracked status
func (s *StatusStore) All() map[string]domain.ProjectSimulationStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.ProjectSimulationStatus, len(s.statuses))
	for id, st := range s.statuses {
		out[id] = st
	}
	return out
}

// IsRunning reports whether a tracked project is currently running
func (s *StatusStore) IsRunning(projectID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.statuses[projectID].IsRunning
}

// TotalActiveDevices folds the active device counts of all projects.
// The value is always recomputed from the per-project statuses.
func (s *StatusStore) TotalActiveDevices() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, st := range s.statuses {
		total += st.ActiveDevices
	}
	return total
}

// TotalMessagesSent folds the message counters of all projects
func (s *StatusStore) TotalMessagesSent() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, st := range s.statuses {
		total += st.MessagesSent
	}
	return total
}

// AppendLog pushes an entry to the front of the simulation log and truncates
// to the cap. Readers never observe a log longer than the cap.
func (s *StatusStore) AppendLog(entry domain.LogEntry) {
	s.mu.Lock()
	s.logs = append([]domain.LogEntry{entry}, s.logs...)
	if len(s.logs) > s.logCap {
		s.logs = s.logs[:s.logCap]
	}
	s.mu.Unlock()

	s.publish(Change{Kind: ChangeLog, ProjectID: entry.ProjectID})
}

// ClearLog empties the simulation log
func (s *StatusStore) ClearLog() {
	s.mu.Lock()
	s.logs = nil
	s.mu.Unlock()

	s.publish(Change{Kind: ChangeLogClear})
}

// Logs returns a copy of the simulation log, newest first
func (s *StatusStore) Logs() []domain.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.LogEntry, len(s.logs))
	copy(out, s.logs)
	return out
}

// LogsFor returns the log entries for one project, preserving store order
func (s *StatusStore) LogsFor(projectID string) []domain.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.LogEntry
	for _, entry := range s.logs {
		if entry.ProjectID == projectID {
			out = append(out, entry)
		}
	}
	return out
}

// Subscribe registers a change listener. The returned channel receives one
// Change per mutation; slow consumers have changes dropped rather than
// blocking the writer. The cancel func must be called to release the
// subscription.
func (s *StatusStore) Subscribe() (<-chan Change, func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	ch := make(chan Change, 64)
	s.subs[id] = ch
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
		s.subMu.Unlock()
	}
	return ch, cancel
}

func (s *StatusStore) publish(change Change) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- change:
		default:
			// drop for slow consumers
		}
	}
}
