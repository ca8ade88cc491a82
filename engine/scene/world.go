package scene

import (
	"sync"

	"github.com/spaghettifunk/lumen/engine/core"
)

// World owns the entities. Editors may add or remove from other goroutines.
type World struct {
	mutex    sync.RWMutex
	entities []*Entity
	byID     map[uint64]*Entity
}

func NewWorld() *World {
	return &World{byID: make(map[uint64]*Entity)}
}

func (w *World) Add(entity *Entity) bool {
	if entity == nil {
		return false
	}
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if _, exists := w.byID[entity.ID]; exists {
		core.LogWarn("entity %d (%s) is already in the world", entity.ID, entity.Name)
		return false
	}
	w.entities = append(w.entities, entity)
	w.byID[entity.ID] = entity
	return true
}

func (w *World) Remove(id uint64) bool {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if _, exists := w.byID[id]; !exists {
		return false
	}
	delete(w.byID, id)
	for i, e := range w.entities {
		if e.ID == id {
			w.entities = append(w.entities[:i], w.entities[i+1:]...)
			break
		}
	}
	return true
}

func (w *World) Entity(id uint64) *Entity {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.byID[id]
}

// Each visits entities in insertion order under the read lock.
func (w *World) Each(fn func(*Entity)) {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	for _, e := range w.entities {
		fn(e)
	}
}

func (w *World) Len() int {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return len(w.entities)
}
