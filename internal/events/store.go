package events

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/diego-devita/stopweb/internal/dateutil"
)

// Store persists the entity snapshots (eventi/stato.json), the event queue
// (eventi/coda.jsonl) and the per-day history files (eventi/storia/).
//
// The snapshot is read-modify-write as a whole; Save only touches disk when a
// reconcile actually changed something.
type Store struct {
	statePath  string
	queuePath  string
	historyDir string

	state stateFile
	dirty bool
}

type stateFile struct {
	Timestamp time.Time                 `json:"timestamp"`
	Entities  map[string]EntitySnapshot `json:"entities"`
}

// NewStore builds a store over the given files. Call Load before use.
func NewStore(statePath, queuePath, historyDir string) *Store {
	return &Store{
		statePath:  statePath,
		queuePath:  queuePath,
		historyDir: historyDir,
		state:      stateFile{Entities: make(map[string]EntitySnapshot)},
	}
}

// Load reads the persisted snapshot. A missing or corrupt file yields an
// empty state with no error.
func (s *Store) Load() {
	s.state = stateFile{Entities: make(map[string]EntitySnapshot)}
	s.dirty = false

	raw, err := os.ReadFile(s.statePath)
	if err != nil {
		return
	}
	var parsed stateFile
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return
	}
	if parsed.Entities == nil {
		parsed.Entities = make(map[string]EntitySnapshot)
	}
	s.state = parsed
}

// Entity returns the stored snapshot for an entity, if any.
func (s *Store) Entity(id int64) (EntitySnapshot, bool) {
	snap, ok := s.state.Entities[entityKey(id)]
	return snap, ok
}

// SetEntity overwrites the stored snapshot and marks the state dirty.
func (s *Store) SetEntity(snap EntitySnapshot) {
	s.state.Entities[entityKey(snap.EntityID)] = snap
	s.dirty = true
}

// Entities returns the stored snapshots.
func (s *Store) Entities() []EntitySnapshot {
	out := make([]EntitySnapshot, 0, len(s.state.Entities))
	for _, snap := range s.state.Entities {
		out = append(out, snap)
	}
	return out
}

// Dirty reports whether the snapshot changed since the last Save.
func (s *Store) Dirty() bool { return s.dirty }

// Save writes the snapshot only when dirty, stamping the top-level timestamp.
// The dirty flag is cleared on success.
func (s *Store) Save() error {
	if !s.dirty {
		return nil
	}
	s.state.Timestamp = time.Now()
	if err := writeFileAtomic(s.statePath, s.state); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// AppendEvent appends one entry to the queue, one JSON object per line.
func (s *Store) AppendEvent(e LogEntry) error {
	if err := os.MkdirAll(filepath.Dir(s.queuePath), 0o755); err != nil {
		return err
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(s.queuePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(append(raw, '\n')); err != nil {
		return err
	}
	return f.Close()
}

// ReadEvents parses the whole queue. A missing file is an empty queue; a
// malformed line fails the whole read.
func (s *Store) ReadEvents() ([]LogEntry, error) {
	f, err := os.Open(s.queuePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []LogEntry{}, nil
		}
		return nil, err
	}
	defer f.Close()

	out := []LogEntry{}
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Bytes()
		if len(text) == 0 {
			continue
		}
		var e LogEntry
		if err := json.Unmarshal(text, &e); err != nil {
			return nil, fmt.Errorf("event queue line %d: %w", line, err)
		}
		out = append(out, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Archive drains the queue into per-day history files grouped by entity and
// truncates the queue. It returns the number of archived events.
func (s *Store) Archive() (int, error) {
	queued, err := s.ReadEvents()
	if err != nil {
		return 0, err
	}
	if len(queued) == 0 {
		return 0, nil
	}

	byDay := make(map[string]map[string][]LogEntry)
	for _, e := range queued {
		day := dateutil.FormatDayKey(e.Timestamp)
		group := "timbrature"
		if e.Payload.EntityID != 0 {
			group = entityKey(e.Payload.EntityID)
		}
		if byDay[day] == nil {
			byDay[day] = make(map[string][]LogEntry)
		}
		byDay[day][group] = append(byDay[day][group], e)
	}

	if err := os.MkdirAll(s.historyDir, 0o755); err != nil {
		return 0, err
	}
	for day, groups := range byDay {
		path := filepath.Join(s.historyDir, day+".json")
		existing := make(map[string][]LogEntry)
		if raw, err := os.ReadFile(path); err == nil {
			// A corrupt history file is overwritten rather than lost events.
			_ = json.Unmarshal(raw, &existing)
		}
		for group, entries := range groups {
			existing[group] = append(existing[group], entries...)
		}
		if err := writeFileAtomic(path, existing); err != nil {
			return 0, err
		}
	}

	if err := os.WriteFile(s.queuePath, nil, 0o644); err != nil {
		return 0, err
	}
	return len(queued), nil
}

// History reads one per-day history file. Missing day yields an empty map.
func (s *Store) History(day string) (map[string][]LogEntry, error) {
	raw, err := os.ReadFile(filepath.Join(s.historyDir, day+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string][]LogEntry{}, nil
		}
		return nil, err
	}
	out := make(map[string][]LogEntry)
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("history %s: %w", day, err)
	}
	return out, nil
}

func writeFileAtomic(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
