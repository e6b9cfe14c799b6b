package library

import (
	"container/list"
	"slices"

	"github.com/desertthunder/crate/internal/models"
)

// WaveformIndex caches waveform samples per track.
//
// With a positive capacity the least recently stored waveform is evicted once the cache is full.
// Readers go through a [WaveformView] and do not touch the eviction order.
type WaveformIndex struct {
	waveforms cowMap[models.TrackID, models.Waveform]
	order     *list.List
	elems     map[models.TrackID]*list.Element
	capacity  int
}

// NewWaveformIndex creates a cache holding at most capacity waveforms; capacity <= 0 means unbounded.
func NewWaveformIndex(capacity int) *WaveformIndex {
	return &WaveformIndex{
		waveforms: newCowMap[models.TrackID, models.Waveform](),
		order:     list.New(),
		elems:     make(map[models.TrackID]*list.Element),
		capacity:  capacity,
	}
}

// Put stores a copy of wf for id and returns the ids evicted to make room.
func (x *WaveformIndex) Put(id models.TrackID, wf models.Waveform) (evicted []models.TrackID) {
	m := x.waveforms.write()
	m[id] = slices.Clone(wf)
	if el, ok := x.elems[id]; ok {
		x.order.MoveToFront(el)
	} else {
		x.elems[id] = x.order.PushFront(id)
	}

	for x.capacity > 0 && x.order.Len() > x.capacity {
		oldest := x.order.Back()
		victim := oldest.Value.(models.TrackID)
		x.order.Remove(oldest)
		delete(x.elems, victim)
		delete(m, victim)
		evicted = append(evicted, victim)
	}
	return evicted
}

// Get returns the cached waveform for id.
func (x *WaveformIndex) Get(id models.TrackID) (models.Waveform, bool) {
	wf, ok := x.waveforms.read()[id]
	return wf, ok
}

// RemoveAll drops the waveforms of ids; ids without a waveform are ignored.
func (x *WaveformIndex) RemoveAll(ids []models.TrackID) {
	for _, id := range ids {
		el, ok := x.elems[id]
		if !ok {
			continue
		}
		x.order.Remove(el)
		delete(x.elems, id)
		delete(x.waveforms.write(), id)
	}
}

// Clear drops every waveform.
func (x *WaveformIndex) Clear() {
	x.waveforms.reset()
	x.order.Init()
	clear(x.elems)
}

func (x *WaveformIndex) Len() int { return len(x.elems) }

// Snapshot returns a read-only view in O(1).
func (x *WaveformIndex) Snapshot() WaveformView {
	return WaveformView{waveforms: x.waveforms.share()}
}

// WaveformView is an immutable point-in-time view of a [WaveformIndex].
type WaveformView struct {
	waveforms map[models.TrackID]models.Waveform
}

// Get returns the waveform for id. The slice must not be modified.
func (v WaveformView) Get(id models.TrackID) (models.Waveform, bool) {
	wf, ok := v.waveforms[id]
	return wf, ok
}

func (v WaveformView) Contains(id models.TrackID) bool {
	_, ok := v.waveforms[id]
	return ok
}

func (v WaveformView) Len() int { return len(v.waveforms) }

// All returns a copy of every cached waveform.
func (v WaveformView) All() map[models.TrackID]models.Waveform {
	out := make(map[models.TrackID]models.Waveform, len(v.waveforms))
	for id, wf := range v.waveforms {
		out[id] = slices.Clone(wf)
	}
	return out
}
