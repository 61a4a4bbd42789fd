package queue

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rapidaid/livetracker/internal/api/metrics"
	"github.com/rapidaid/livetracker/internal/core/ports"
)

const (
	defaultWorkers = 8
	shardBuffer    = 256
)

type shard struct {
	label string
	in    chan ports.LocationUpdateInput
}

// Dispatcher fans location reports out to a fixed pool of workers. All
// reports of one emergency land on the same worker, so they are applied in
// the order they were enqueued.
type Dispatcher struct {
	shards  []shard
	service ports.LocationService
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(workers int, service ports.LocationService, log zerolog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = defaultWorkers
	}
	shards := make([]shard, workers)
	for i := range shards {
		shards[i] = shard{label: strconv.Itoa(i), in: make(chan ports.LocationUpdateInput, shardBuffer)}
	}
	return &Dispatcher{shards: shards, service: service, log: log}
}

// Start runs one goroutine per shard. Workers exit when ctx is done or after
// Close has drained their queue.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := range d.shards {
		d.wg.Add(1)
		go d.work(ctx, d.shards[i])
	}
}

// Enqueue blocks while the target shard is full. Reports enqueued after
// Close are dropped.
func (d *Dispatcher) Enqueue(u ports.LocationUpdateInput) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn().Int64("emergency_id", u.EmergencyID).Msg("dispatcher closed, location dropped")
		return
	}

	s := d.shards[d.shardIndex(u.EmergencyID)]
	s.in <- u
	metrics.LocationQueueDepth.WithLabelValues(s.label).Set(float64(len(s.in)))
}

// Close stops accepting reports and waits for queued ones to be processed.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, s := range d.shards {
		close(s.in)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// shardIndex hashes the id because the low bits of a sonyflake id are the
// node id and would send every emergency of one node to the same shard.
func (d *Dispatcher) shardIndex(emergencyID int64) int {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(emergencyID))
	h := fnv.New32a()
	_, _ = h.Write(buf[:])
	return int(h.Sum32() % uint32(len(d.shards)))
}

func (d *Dispatcher) work(ctx context.Context, s shard) {
	defer d.wg.Done()
	log := d.log.With().Str("worker_id", s.label).Logger()

	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-s.in:
			if !ok {
				return
			}
			metrics.LocationQueueDepth.WithLabelValues(s.label).Set(float64(len(s.in)))
			if err := d.service.Process(ctx, u); err != nil {
				log.Error().Err(err).
					Int64("emergency_id", u.EmergencyID).
					Str("role", u.Role).
					Msg("location update failed")
			}
		}
	}
}
