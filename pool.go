package pace

import "sync"

// DeviceKey identifies the native device a pacer belongs to. It is an
// opaque attribute: the pool never dereferences it, only groups by it,
// so platform pointer values can be stored without aliasing hazards.
type DeviceKey uint64

// Handle identifies a pacer record in a Pool. Handles are generation
// checked: after Destroy, a stale Handle to a reused slot misses
// instead of addressing the new occupant. The zero Handle is never
// issued and never resolves.
type Handle uint64

func makeHandle(index, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

func (h Handle) index() uint32      { return uint32(h) }
func (h Handle) generation() uint32 { return uint32(h >> 32) }

// Pool is an arena of pacer records for multi-surface applications.
// It replaces keying pacers by raw native handles: the swapchain and
// device identifiers live inside the record, and lookups go through
// generation-checked integer handles.
//
// Pool is safe for concurrent use. The lock is held only for the
// structural operation, never across a pacing cycle, so unrelated
// surfaces' pacing is not serialized.
type Pool struct {
	mu    sync.Mutex
	slots []poolSlot
	free  []uint32
	live  int
}

type poolSlot struct {
	generation uint32
	occupied   bool
	pacer      *Pacer
	device     DeviceKey
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// Create stores p and returns its Handle. The device key groups records
// for DestroyDevice.
func (pl *Pool) Create(p *Pacer, device DeviceKey) Handle {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	var index uint32
	if n := len(pl.free); n > 0 {
		index = pl.free[n-1]
		pl.free = pl.free[:n-1]
	} else {
		pl.slots = append(pl.slots, poolSlot{})
		index = uint32(len(pl.slots) - 1)
	}

	slot := &pl.slots[index]
	slot.generation++
	slot.occupied = true
	slot.pacer = p
	slot.device = device
	pl.live++
	return makeHandle(index, slot.generation)
}

// Get resolves a Handle. Unknown or stale handles return (nil, false).
func (pl *Pool) Get(h Handle) (*Pacer, bool) {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	slot, ok := pl.lookup(h)
	if !ok {
		return nil, false
	}
	return slot.pacer, true
}

// Destroy removes the record addressed by h. It reports whether a
// record was removed; unknown or stale handles are a benign no-op.
func (pl *Pool) Destroy(h Handle) bool {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	slot, ok := pl.lookup(h)
	if !ok {
		return false
	}
	pl.release(h.index(), slot)
	return true
}

// DestroyDevice removes every record created with the given device key
// and returns how many were removed.
func (pl *Pool) DestroyDevice(device DeviceKey) int {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	removed := 0
	for i := range pl.slots {
		slot := &pl.slots[i]
		if slot.occupied && slot.device == device {
			pl.release(uint32(i), slot)
			removed++
		}
	}
	return removed
}

// Len returns the number of live records.
func (pl *Pool) Len() int {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.live
}

// lookup resolves h to its slot. Caller holds the lock.
func (pl *Pool) lookup(h Handle) (*poolSlot, bool) {
	index := h.index()
	if int(index) >= len(pl.slots) {
		return nil, false
	}
	slot := &pl.slots[index]
	if !slot.occupied || slot.generation != h.generation() {
		return nil, false
	}
	return slot, true
}

// release frees a slot for reuse. Caller holds the lock.
func (pl *Pool) release(index uint32, slot *poolSlot) {
	slot.occupied = false
	slot.pacer = nil
	slot.device = 0
	pl.free = append(pl.free, index)
	pl.live--
}
