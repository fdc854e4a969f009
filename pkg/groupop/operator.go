// Package groupop implements the parallel streaming group operator (§4.G):
// the concurrency core that lets a table-function host stream row batches
// to W worker threads, partitioned uncorrelated with the grouping key, and
// still produce one transformed output per group after a single-writer
// finalize phase.
package groupop

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/anofox/tsforge/pkg/engerr"
)

// Phase is the operator's per-instance state machine.
type Phase int32

const (
	Collecting Phase = iota
	Draining
	Finished
)

// FinalizeStatus reports what one Finalize call produced.
type FinalizeStatus int

const (
	HaveMoreOutput FinalizeStatus = iota
	Done
)

// OutputRow is one group's transformed result, or the error recorded in
// its place when the transform failed for that group alone.
type OutputRow[K comparable, Out any] struct {
	Key    K
	Result Out
	Err    error
}

// FinalizeResult is returned from every Finalize call.
type FinalizeResult[K comparable, Out any] struct {
	Status FinalizeStatus
	Rows   []OutputRow[K, Out]
}

// Transform runs the model/fill kernel over one group's accumulated rows.
// A per-group error does not abort the operator; it is recorded on the
// corresponding OutputRow.
type Transform[K comparable, R any, Out any] func(key K, rows []R) (Out, error)

// WorkerHandle tracks one worker's one-shot barrier contributions and
// finalize-claim state. The host runtime gives each worker thread its own
// handle; handles must never be shared across goroutines.
type WorkerHandle struct {
	collectingStarted     bool
	doneCollectingStarted bool
	attemptedClaim        bool
	isWinner              bool
}

// NewWorkerHandle returns a fresh per-worker handle.
func NewWorkerHandle() *WorkerHandle { return &WorkerHandle{} }

type slot[K comparable, R any, Out any] struct {
	mu        sync.Mutex
	groups    map[K][]R
	order     []K
	processed bool
	results   map[K]Out
	errs      map[K]error
	cursor    int
}

func newSlot[K comparable, R any, Out any]() *slot[K, R, Out] {
	return &slot[K, R, Out]{groups: make(map[K][]R)}
}

// Operator is the sharded, concurrently-driven group accumulator.
type Operator[K comparable, R any, Out any] struct {
	slots               []*slot[K, R, Out]
	hashKey             func(K) uint64
	transform           Transform[K, R, Out]
	outputChunkCapacity int

	threadsCollecting     atomic.Int64
	threadsDoneCollecting atomic.Int64
	finalizeClaimed       atomic.Bool
	phase                 atomic.Int32
	currentSlot           int
}

// New builds an Operator with numSlots shards. hashKey assigns a group key
// to a slot; transform runs once per group during finalize.
// outputChunkCapacity bounds how many rows a single Finalize call emits,
// matching the host's fixed output-chunk capacity.
func New[K comparable, R any, Out any](numSlots int, hashKey func(K) uint64, transform Transform[K, R, Out], outputChunkCapacity int) *Operator[K, R, Out] {
	if numSlots < 1 {
		numSlots = 1
	}
	if outputChunkCapacity < 1 {
		outputChunkCapacity = 1024
	}
	op := &Operator[K, R, Out]{
		slots:               make([]*slot[K, R, Out], numSlots),
		hashKey:             hashKey,
		transform:           transform,
		outputChunkCapacity: outputChunkCapacity,
	}
	for i := range op.slots {
		op.slots[i] = newSlot[K, R, Out]()
	}
	return op
}

func (op *Operator[K, R, Out]) slotFor(k K) *slot[K, R, Out] {
	idx := op.hashKey(k) % uint64(len(op.slots))
	return op.slots[idx]
}

// Stream accepts one input batch. It buckets rows locally by target slot
// (no locks held), then acquires each touched slot's mutex exactly once to
// insert its bucket — O(slots-touched) lock acquisitions per batch instead
// of O(rows), and correct regardless of how the host partitioned the batch
// across worker threads since every row lands in the slot its key hashes
// to.
func (op *Operator[K, R, Out]) Stream(w *WorkerHandle, batch []R, keyOf func(R) K) error {
	const opName = "groupop.Stream"
	if op.phase.Load() != int32(Collecting) {
		return engerr.New(engerr.Internal, opName, "stream called after finalize phase began")
	}
	if !w.collectingStarted {
		w.collectingStarted = true
		op.threadsCollecting.Add(1)
	}

	buckets := make(map[*slot[K, R, Out]][]R, len(op.slots))
	for _, row := range batch {
		s := op.slotFor(keyOf(row))
		buckets[s] = append(buckets[s], row)
	}

	for s, rows := range buckets {
		s.mu.Lock()
		for _, row := range rows {
			k := keyOf(row)
			if _, exists := s.groups[k]; !exists {
				s.order = append(s.order, k)
			}
			s.groups[k] = append(s.groups[k], row)
		}
		s.mu.Unlock()
	}
	return nil
}

// Finalize drains the operator. The first caller to reach this method
// claims the single-writer role via CAS and does all subsequent
// transforming and emitting; every other caller (and every later call from
// a non-winning handle) returns Done immediately. The winner spin-yields
// until every worker that ever called Stream has also called Finalize at
// least once, guaranteeing no row arrives after draining starts.
func (op *Operator[K, R, Out]) Finalize(w *WorkerHandle) (FinalizeResult[K, Out], error) {
	if !w.doneCollectingStarted {
		w.doneCollectingStarted = true
		op.threadsDoneCollecting.Add(1)
	}

	if !w.isWinner {
		if !w.attemptedClaim {
			w.attemptedClaim = true
			if op.finalizeClaimed.CompareAndSwap(false, true) {
				w.isWinner = true
			}
		}
		if !w.isWinner {
			return FinalizeResult[K, Out]{Status: Done}, nil
		}
	}

	for op.threadsDoneCollecting.Load() < op.threadsCollecting.Load() {
		runtime.Gosched()
	}
	op.phase.CompareAndSwap(int32(Collecting), int32(Draining))

	return op.drainNext(), nil
}

func (op *Operator[K, R, Out]) drainNext() FinalizeResult[K, Out] {
	for op.currentSlot < len(op.slots) {
		s := op.slots[op.currentSlot]
		if !s.processed {
			op.runTransform(s)
			s.processed = true
		}
		rows, slotDone := emitChunk(s, op.outputChunkCapacity)
		if len(rows) > 0 {
			if slotDone {
				op.currentSlot++
			}
			return FinalizeResult[K, Out]{Status: HaveMoreOutput, Rows: rows}
		}
		op.currentSlot++
	}
	op.phase.Store(int32(Finished))
	return FinalizeResult[K, Out]{Status: Done}
}

func (op *Operator[K, R, Out]) runTransform(s *slot[K, R, Out]) {
	s.results = make(map[K]Out, len(s.order))
	s.errs = make(map[K]error, len(s.order))
	for _, k := range s.order {
		result, err := op.transform(k, s.groups[k])
		if err != nil {
			s.errs[k] = err
			continue
		}
		s.results[k] = result
	}
}

func emitChunk[K comparable, R any, Out any](s *slot[K, R, Out], capacity int) ([]OutputRow[K, Out], bool) {
	end := s.cursor + capacity
	if end > len(s.order) {
		end = len(s.order)
	}
	rows := make([]OutputRow[K, Out], 0, end-s.cursor)
	for ; s.cursor < end; s.cursor++ {
		k := s.order[s.cursor]
		if err, failed := s.errs[k]; failed {
			rows = append(rows, OutputRow[K, Out]{Key: k, Err: err})
			continue
		}
		rows = append(rows, OutputRow[K, Out]{Key: k, Result: s.results[k]})
	}
	return rows, s.cursor >= len(s.order)
}

// Phase reports the operator's current state-machine phase.
func (op *Operator[K, R, Out]) Phase() Phase { return Phase(op.phase.Load()) }

// Stats reports the worker-coordination counters a diagnostic endpoint
// surfaces: how many workers have started collecting, and how many of
// those have moved on to finalize.
func (op *Operator[K, R, Out]) Stats() (threadsCollecting, threadsDoneCollecting int64) {
	return op.threadsCollecting.Load(), op.threadsDoneCollecting.Load()
}
