package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/components"
	"github.com/spaghettifunk/lumen/engine/resources"
)

func renderableEntity(name string, alpha float32) *Entity {
	material := resources.NewMaterial(name)
	material.AlbedoColor.W = alpha
	e := NewEntity(name)
	e.Renderable = NewRenderable(&resources.Model{}, material)
	return e
}

func lightEntity(name string, light *components.Light) *Entity {
	e := NewEntity(name)
	e.Light = light
	return e
}

func names(entities []*Entity) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Name)
	}
	return out
}

func TestClassifyBuckets(t *testing.T) {
	world := NewWorld()
	sun := components.NewDirectionalLight(math.NewVec4One(), 1, true)
	for _, e := range []*Entity{
		renderableEntity("floor", 1),
		renderableEntity("glass", 0.4),
		lightEntity("sun", sun),
		renderableEntity("wall", 1),
		lightEntity("bulb", components.NewPointLight(math.NewVec4One(), 1, 5)),
		renderableEntity("water", 0.8),
		NewEntity("empty"),
	} {
		require.True(t, world.Add(e))
	}

	buckets := NewClassifier().Classify(world)
	assert.Equal(t, []string{"floor", "wall"}, names(buckets.Get(BucketOpaque)))
	assert.Equal(t, []string{"glass", "water"}, names(buckets.Get(BucketTransparent)))
	assert.Equal(t, []string{"sun", "bulb"}, names(buckets.Get(BucketLight)))
	require.NotNil(t, buckets.DirectionalLight())
	assert.Same(t, sun, buckets.DirectionalLight().Light)
}

func TestClassifySkipsInactiveEntities(t *testing.T) {
	world := NewWorld()
	hidden := renderableEntity("hidden", 1)
	hidden.Active = false
	off := lightEntity("off", components.NewDirectionalLight(math.NewVec4One(), 1, false))
	off.Active = false
	world.Add(hidden)
	world.Add(off)
	world.Add(renderableEntity("shown", 1))

	buckets := NewClassifier().Classify(world)
	assert.Equal(t, []string{"shown"}, names(buckets.Get(BucketOpaque)))
	assert.Zero(t, buckets.Len(BucketLight))
	assert.Nil(t, buckets.DirectionalLight())
}

func TestClassifyReusesStorage(t *testing.T) {
	world := NewWorld()
	for _, name := range []string{"a", "b", "c", "d"} {
		world.Add(renderableEntity(name, 1))
	}
	classifier := NewClassifier()

	first := classifier.Classify(world)
	require.Equal(t, 4, first.Len(BucketOpaque))
	storage := &first.Get(BucketOpaque)[0]

	world.Remove(world.entities[0].ID)
	second := classifier.Classify(world)
	assert.Same(t, first, second)
	assert.Equal(t, []string{"b", "c", "d"}, names(second.Get(BucketOpaque)))
	assert.Same(t, storage, &second.Get(BucketOpaque)[0])

	// a frame without a world empties every bucket
	empty := classifier.Classify(nil)
	for kind := BucketOpaque; kind < BucketCount; kind++ {
		assert.Zero(t, empty.Len(kind), kind.String())
	}
}

func TestBucketsOutOfRange(t *testing.T) {
	var nilBuckets *Buckets
	assert.Nil(t, nilBuckets.Get(BucketOpaque))
	assert.Nil(t, (&Buckets{}).Get(BucketCount))
	assert.Equal(t, "unknown", BucketKind(-1).String())
	assert.Equal(t, "transparent", BucketTransparent.String())
}

func TestWorld(t *testing.T) {
	world := NewWorld()
	e := NewEntity("crate")
	assert.True(t, world.Add(e))
	assert.False(t, world.Add(e), "duplicate ids are rejected")
	assert.False(t, world.Add(nil))
	assert.Same(t, e, world.Entity(e.ID))
	assert.Equal(t, 1, world.Len())

	assert.True(t, world.Remove(e.ID))
	assert.False(t, world.Remove(e.ID))
	assert.Nil(t, world.Entity(e.ID))
	assert.Zero(t, world.Len())
}

func TestRenderableGeometry(t *testing.T) {
	var missing *Renderable
	assert.False(t, missing.HasGeometry())

	r := NewRenderable(&resources.Model{IndexCount: 36}, nil)
	assert.EqualValues(t, 36, r.Indices())
	assert.False(t, r.HasGeometry(), "no buffers yet")
	r.IndexCount = 6
	assert.EqualValues(t, 6, r.Indices())
	assert.True(t, r.CastShadows)
}
