package worker

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/tutorpaes/tutor-backend/internal/model"
)

type fakeProgressStore struct {
	mu       sync.Mutex
	bulkErr  error
	failFor  map[int64]bool
	bulk     [][]*model.ProgressEvent
	applied  []int64
	attempts []int64
}

func (s *fakeProgressStore) BulkApply(_ context.Context, events []*model.ProgressEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bulk = append(s.bulk, append([]*model.ProgressEvent(nil), events...))
	return s.bulkErr
}

func (s *fakeProgressStore) Apply(_ context.Context, e *model.ProgressEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, e.AttemptID)
	if s.failFor[e.AttemptID] {
		return errors.New("constraint violation")
	}
	s.applied = append(s.applied, e.AttemptID)
	return nil
}

// unreachableRedis fails every command quickly; requeues are best effort.
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func events(ids ...int64) []*model.ProgressEvent {
	out := make([]*model.ProgressEvent, len(ids))
	for i, id := range ids {
		out[i] = &model.ProgressEvent{UserID: 1, TopicID: 10, AttemptID: id, TotalQuestions: 2, CorrectCount: 1, Score: 500}
	}
	return out
}

func TestFlushSafe(t *testing.T) {
	tests := []struct {
		name        string
		bulkErr     error
		failFor     map[int64]bool
		wantApplied []int64
		wantTried   []int64
	}{
		{name: "bulk succeeds"},
		{
			name:        "bulk fails, rows succeed",
			bulkErr:     errors.New("deadlock detected"),
			wantApplied: []int64{1, 2, 3},
			wantTried:   []int64{1, 2, 3},
		},
		{
			name:        "bulk fails, one row fails",
			bulkErr:     errors.New("deadlock detected"),
			failFor:     map[int64]bool{2: true},
			wantApplied: []int64{1, 3},
			wantTried:   []int64{1, 2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeProgressStore{bulkErr: tt.bulkErr, failFor: tt.failFor}
			rdb := unreachableRedis()
			defer rdb.Close()

			w := NewProgressWorker(store, rdb, zerolog.Nop())
			w.flushSafe(context.Background(), events(1, 2, 3))

			if len(store.bulk) != 1 || len(store.bulk[0]) != 3 {
				t.Fatalf("bulk calls = %v", store.bulk)
			}
			if !slices.Equal(store.applied, tt.wantApplied) {
				t.Errorf("applied = %v, want %v", store.applied, tt.wantApplied)
			}
			if !slices.Equal(store.attempts, tt.wantTried) {
				t.Errorf("tried = %v, want %v", store.attempts, tt.wantTried)
			}
		})
	}
}

func TestFlushSafeEmptyBatch(t *testing.T) {
	store := &fakeProgressStore{}
	w := NewProgressWorker(store, nil, zerolog.Nop())
	w.flushSafe(context.Background(), nil)
	if len(store.bulk) != 0 {
		t.Errorf("empty batch reached the store: %v", store.bulk)
	}
}

func TestProgressQueuePublishReportsRedisErrors(t *testing.T) {
	rdb := unreachableRedis()
	defer rdb.Close()

	q := NewProgressQueue(rdb)
	if err := q.Publish(context.Background(), events(1)[0]); err == nil {
		t.Error("Publish to unreachable redis succeeded")
	}
}
