package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const timestampLayout = "2006-01-02T15:04:05.000000-07:00"

var (
	ErrLedgerNotFound = errors.New("job ledger does not exist")
	ErrLedgerEmpty    = errors.New("job ledger is empty")
	ErrNoJobForStep   = errors.New("no job id found for step")
)

// CEST is the fixed UTC+2 zone ledger timestamps are written in.
var CEST = time.FixedZone("CEST", 2*60*60)

// JobEntry is one submitted batch job.
type JobEntry struct {
	Step      string `json:"step"`
	JobID     string `json:"job_id"`
	Timestamp string `json:"timestamp"`
}

// SortScope decides which entries Newest orders by timestamp once a step is known to exist.
type SortScope string

const (
	// ScopeStep orders only the entries of the requested step.
	ScopeStep SortScope = "step"
	// ScopeLedger orders the whole ledger, as the first generation of job
	// ledgers was read: a later job of another step wins.
	ScopeLedger SortScope = "ledger"
)

// ParseSortScope maps a config value to a SortScope; empty means ScopeStep.
func ParseSortScope(s string) (SortScope, error) {
	switch SortScope(s) {
	case "", ScopeStep:
		return ScopeStep, nil
	case ScopeLedger:
		return ScopeLedger, nil
	}
	return "", errors.Errorf("unknown ledger sort scope %q", s)
}

// Ledger is the append-only JSON file of submitted batch jobs.
type Ledger struct {
	Path  string
	Scope SortScope
	Now   func() time.Time
}

func NewLedger(path string, scope SortScope) *Ledger {
	return &Ledger{Path: path, Scope: scope, Now: time.Now}
}

func (l *Ledger) read() ([]JobEntry, error) {
	b, err := os.ReadFile(l.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrLedgerNotFound, "%s", l.Path)
		}
		return nil, errors.Wrap(err, "read job ledger")
	}
	var entries []JobEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, errors.Wrapf(err, "decode job ledger %s", l.Path)
	}
	return entries, nil
}

// Entries returns every ledger entry in file order.
func (l *Ledger) Entries() ([]JobEntry, error) {
	return l.read()
}

// Add records jobID for step unless the id is already present.
// An unreadable ledger is replaced by a fresh one.
func (l *Ledger) Add(jobID, step string) error {
	if err := os.MkdirAll(filepath.Dir(l.Path), 0755); err != nil {
		return errors.Wrap(err, "create ledger directory")
	}
	entries, err := l.read()
	if err != nil {
		if !errors.Is(err, ErrLedgerNotFound) {
			zap.S().Warnf("job ledger unreadable, starting a new one: %v", err)
		}
		entries = nil
	}
	for _, e := range entries {
		if e.JobID == jobID {
			zap.S().Infof("job id %s already exists in the ledger", jobID)
			return nil
		}
	}
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	entries = append(entries, JobEntry{
		Step:      step,
		JobID:     jobID,
		Timestamp: now().In(CEST).Format(timestampLayout),
	})
	b, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return errors.Wrap(err, "encode job ledger")
	}
	if err := os.WriteFile(l.Path, b, 0644); err != nil {
		return errors.Wrap(err, "write job ledger")
	}
	zap.S().Infof("job id %s added to the ledger", jobID)
	return nil
}

// Newest returns the job id with the latest timestamp, provided step has at
// least one entry. With ScopeLedger the ordering spans every step.
func (l *Ledger) Newest(step string) (string, error) {
	entries, err := l.read()
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", ErrLedgerEmpty
	}
	filtered := make([]JobEntry, 0, len(entries))
	for _, e := range entries {
		if e.Step == step {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) == 0 {
		return "", errors.Wrapf(ErrNoJobForStep, "step %s", step)
	}

	sorted := filtered
	if l.Scope == ScopeLedger {
		sorted = make([]JobEntry, len(entries))
		copy(sorted, entries)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp > sorted[j].Timestamp
	})
	newest := sorted[0]
	zap.S().Infof("the newest job id for step %s is: %s (timestamp %s)", newest.Step, newest.JobID, newest.Timestamp)
	return newest.JobID, nil
}
