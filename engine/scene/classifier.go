package scene

type BucketKind int

const (
	BucketOpaque BucketKind = iota
	BucketTransparent
	BucketLight
	BucketCount
)

var bucketNames = [BucketCount]string{"opaque", "transparent", "light"}

func (k BucketKind) String() string {
	if k < 0 || k >= BucketCount {
		return "unknown"
	}
	return bucketNames[k]
}

// Buckets holds per-frame entity references. They stay valid until the
// next Classify.
type Buckets struct {
	entities [BucketCount][]*Entity
}

func (b *Buckets) Get(kind BucketKind) []*Entity {
	if b == nil || kind < 0 || kind >= BucketCount {
		return nil
	}
	return b.entities[kind]
}

func (b *Buckets) Len(kind BucketKind) int {
	return len(b.Get(kind))
}

// DirectionalLight returns the first active directional light, or nil.
func (b *Buckets) DirectionalLight() *Entity {
	for _, e := range b.Get(BucketLight) {
		if e.Light != nil && e.Light.CascadeCount() > 0 {
			return e
		}
	}
	return nil
}

/**
 * @brief Classifier partitions the world into opaque, transparent and
 * light buckets every frame. Storage is reused between frames and the
 * insertion order of the world is preserved.
 */
type Classifier struct {
	buckets Buckets
}

func NewClassifier() *Classifier {
	return &Classifier{}
}

func (c *Classifier) Classify(world *World) *Buckets {
	for i := range c.buckets.entities {
		clear(c.buckets.entities[i])
		c.buckets.entities[i] = c.buckets.entities[i][:0]
	}
	if world == nil {
		return &c.buckets
	}
	world.Each(func(e *Entity) {
		if !e.Active {
			return
		}
		if e.Light != nil {
			c.buckets.entities[BucketLight] = append(c.buckets.entities[BucketLight], e)
		}
		if e.Renderable == nil {
			return
		}
		kind := BucketOpaque
		if e.Renderable.Material != nil && e.Renderable.Material.IsTransparent() {
			kind = BucketTransparent
		}
		c.buckets.entities[kind] = append(c.buckets.entities[kind], e)
	})
	return &c.buckets
}
