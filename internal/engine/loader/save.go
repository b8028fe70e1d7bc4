package loader

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/OCharnyshevich/voxel-engine/internal/engine/chunk"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/storage"
)

// MaxSaveAttempts is how often a chunk is written before it is given up.
const MaxSaveAttempts = 3

type saveResult struct {
	batch []storage.Record
	err   error
}

// saver owns the save queue and the worker pool. Only counter is touched
// by the workers; everything else belongs to the scheduler goroutine.
type saver struct {
	store storage.Store
	pool  *errgroup.Group

	queue    *ordered[[]byte]
	inflight map[chunk.Position][]byte
	attempts map[chunk.Position]int
	results  chan saveResult

	counter atomic.Int64
	failed  atomic.Int64

	log  *slog.Logger
	warn rate.Sometimes
}

// enqueue replaces any queued bytes for pos.
func (s *saver) enqueue(pos chunk.Position, data []byte) {
	s.queue.Set(pos, data)
}

// pending returns the newest unwritten bytes for pos.
func (s *saver) pending(pos chunk.Position) ([]byte, bool) {
	if data, ok := s.queue.Get(pos); ok {
		return data, true
	}
	data, ok := s.inflight[pos]
	return data, ok
}

// next picks up to limit queued records whose position has no save in
// flight. A limit of zero takes everything eligible.
func (s *saver) next(limit int) []storage.Record {
	var batch []storage.Record
	for _, pos := range s.queue.Keys() {
		if limit > 0 && len(batch) == limit {
			break
		}
		if _, busy := s.inflight[pos]; busy {
			continue
		}
		data, _ := s.queue.Get(pos)
		batch = append(batch, storage.Record{Pos: pos, Data: data})
	}
	return batch
}

// dispatch starts save tasks until the queue holds nothing eligible or the
// pool is full. Records of a batch the pool refused stay queued.
func (s *saver) dispatch(ctx context.Context, limit int) int {
	ctx = context.WithoutCancel(ctx)
	started := 0
	for {
		batch := s.next(limit)
		if len(batch) == 0 {
			return started
		}
		n := int64(len(batch))
		s.counter.Add(n)
		ok := s.pool.TryGo(func() error {
			err := s.store.Save(ctx, batch)
			s.counter.Add(-n)
			s.results <- saveResult{batch: batch, err: err}
			return nil
		})
		if !ok {
			s.counter.Add(-n)
			return started
		}
		for _, rec := range batch {
			s.queue.Delete(rec.Pos)
			s.inflight[rec.Pos] = rec.Data
		}
		started += len(batch)
	}
}

func (s *saver) drain() {
	for {
		select {
		case r := <-s.results:
			s.apply(r)
		default:
			return
		}
	}
}

// apply retires a finished batch. Records that were not written go back on
// the queue unless newer bytes are already waiting there or the position
// ran out of attempts.
func (s *saver) apply(r saveResult) {
	failed := make(map[chunk.Position]bool)
	if r.err != nil {
		var se *storage.SaveError
		if errors.As(r.err, &se) {
			for _, pos := range se.Failed {
				failed[pos] = true
			}
		} else {
			for _, rec := range r.batch {
				failed[rec.Pos] = true
			}
		}
	}

	for _, rec := range r.batch {
		delete(s.inflight, rec.Pos)
		if !failed[rec.Pos] {
			delete(s.attempts, rec.Pos)
			continue
		}
		if s.queue.Has(rec.Pos) {
			delete(s.attempts, rec.Pos)
			continue
		}
		s.attempts[rec.Pos]++
		if s.attempts[rec.Pos] >= MaxSaveAttempts {
			delete(s.attempts, rec.Pos)
			s.failed.Add(1)
			s.log.Error("giving up on chunk save", "pos", rec.Pos, "attempts", MaxSaveAttempts, "error", r.err)
			continue
		}
		s.queue.Set(rec.Pos, rec.Data)
		s.warn.Do(func() {
			s.log.Warn("chunk save failed, retrying", "pos", rec.Pos, "error", r.err)
		})
	}
}

// flush dispatches and drains until nothing is queued or in flight.
func (s *saver) flush(ctx context.Context, limit int) error {
	for s.queue.Len() > 0 || len(s.inflight) > 0 {
		s.dispatch(ctx, limit)
		if len(s.inflight) == 0 {
			// Workers that already reported may still hold pool slots.
			s.pool.Wait()
			continue
		}
		select {
		case r := <-s.results:
			s.apply(r)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.pool.Wait()
}
