package service

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
)

// batchJobStore keeps asynchronous batch job states in memory for a bounded
// lifetime. Finished jobs linger for the TTL so callers can poll the result,
// then a janitor reclaims them.
type batchJobStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]batchJobEntry
}

type batchJobEntry struct {
	job     *dto.BatchJobResponse
	expires time.Time
}

func newBatchJobStore(ttl time.Duration) *batchJobStore {
	return &batchJobStore{
		ttl:     ttl,
		entries: make(map[string]batchJobEntry),
	}
}

// put stores a copy of the job. The caller keeps sole ownership of its own
// pointer; workers only ever mutate the stored copy through update.
func (s *batchJobStore) put(job *dto.BatchJobResponse) {
	clone := *job
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[clone.JobID] = batchJobEntry{job: &clone, expires: time.Now().Add(s.ttl)}
}

func (s *batchJobStore) get(jobID string) (*dto.BatchJobResponse, bool) {
	s.mu.RLock()
	entry, ok := s.entries[jobID]
	s.mu.RUnlock()
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	snapshot := *entry.job
	return &snapshot, true
}

// update mutates a stored job in place and refreshes its expiry, so a job
// stays pollable for a full TTL after its last state change.
func (s *batchJobStore) update(jobID string, fn func(*dto.BatchJobResponse)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[jobID]
	if !ok {
		return
	}
	fn(entry.job)
	entry.expires = time.Now().Add(s.ttl)
	s.entries[jobID] = entry
}

func (s *batchJobStore) startJanitor(ctx context.Context) {
	interval := s.ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(time.Now())
			}
		}
	}()
}

func (s *batchJobStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.entries {
		if now.After(entry.expires) {
			delete(s.entries, id)
		}
	}
}
