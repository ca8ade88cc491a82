package renderer

import (
	"golang.org/x/exp/constraints"

	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
)

/**
 * @brief BindCache remembers the last bound resource of one kind and drops
 * redundant binds. The zero ID is the "nothing bound" sentinel, so the
 * first bind after Reset always goes through.
 */
type BindCache[ID constraints.Unsigned] struct {
	current ID
	binds   int
}

// BindIfDifferent calls bind only when id differs from the last bound id.
func (c *BindCache[ID]) BindIfDifferent(id ID, bind func()) bool {
	if id == c.current && id != 0 {
		return false
	}
	bind()
	c.current = id
	c.binds++
	return true
}

func (c *BindCache[ID]) Reset() {
	var zero ID
	c.current = zero
}

// Binds counts the binds that went through since creation.
func (c *BindCache[ID]) Binds() int {
	return c.binds
}

// StateTracker groups the caches a geometry pass uses.
type StateTracker struct {
	Geometry   BindCache[uint64]
	Shader     BindCache[rhi.ResourceID]
	Material   BindCache[uint64]
	Rasterizer BindCache[rhi.ResourceID]
}

// Reset forgets every bind. Passes call it first so state from a previous
// pass is never trusted.
func (t *StateTracker) Reset() {
	t.Geometry.Reset()
	t.Shader.Reset()
	t.Material.Reset()
	t.Rasterizer.Reset()
}
