package store

import (
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/goes-imagery/internal/pipeline"
)

var (
	// ErrNotFound is returned when no runs are recorded for a product.
	ErrNotFound = errors.New("no pipeline runs for product")
)

// RunHistory holds a time-ordered list of run records for a product.
type RunHistory struct {
	Runs []pipeline.RunRecord
}

// MemoryStore is a concurrency-safe in-memory store of pipeline run records.
type MemoryStore struct {
	mu sync.RWMutex

	// key: product, value: history
	data map[string]*RunHistory

	// retention configuration
	maxHistory int           // max number of records per product
	maxAge     time.Duration // optional max age for records

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*RunHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveRun appends a record for its product and enforces retention.
func (s *MemoryStore) SaveRun(rec pipeline.RunRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[rec.Product]
	if !ok {
		history = &RunHistory{}
		s.data[rec.Product] = history
	}

	// Runs can finish out of order; keep history sorted by start time.
	i := sort.Search(len(history.Runs), func(i int) bool {
		return history.Runs[i].StartedAt.After(rec.StartedAt)
	})
	history.Runs = slices.Insert(history.Runs, i, rec)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Runs) > s.maxHistory {
		over := len(history.Runs) - s.maxHistory
		history.Runs = history.Runs[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Runs); i++ {
			if !history.Runs[i].StartedAt.Before(cutoff) {
				break
			}
		}
		history.Runs = history.Runs[i:]
	}
}

// Recent returns up to limit of the newest records for product, oldest first.
// An empty product returns records across all products ordered by start time.
// limit <= 0 means no limit.
func (s *MemoryStore) Recent(product string, limit int) ([]pipeline.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []pipeline.RunRecord
	if product != "" {
		history, ok := s.data[product]
		if !ok || len(history.Runs) == 0 {
			return nil, ErrNotFound
		}
		result = append(result, history.Runs...)
	} else {
		for _, history := range s.data {
			result = mergeByStart(result, history.Runs)
		}
		if len(result) == 0 {
			return nil, ErrNotFound
		}
	}

	if limit > 0 && len(result) > limit {
		result = result[len(result)-limit:]
	}
	return result, nil
}

// Latest returns the most recent record for a product.
func (s *MemoryStore) Latest(product string) (pipeline.RunRecord, error) {
	runs, err := s.Recent(product, 1)
	if err != nil {
		return pipeline.RunRecord{}, err
	}
	return runs[0], nil
}

// mergeByStart merges two slices already ordered by StartedAt.
func mergeByStart(a, b []pipeline.RunRecord) []pipeline.RunRecord {
	out := make([]pipeline.RunRecord, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if b[j].StartedAt.Before(a[i].StartedAt) {
			out = append(out, b[j])
			j++
		} else {
			out = append(out, a[i])
			i++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}
