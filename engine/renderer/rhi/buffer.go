package rhi

type BufferKind int

const (
	BufferVertex BufferKind = iota
	BufferIndex
	BufferConstant
)

type BufferDesc struct {
	Name    string
	Kind    BufferKind
	Stride  uint32
	Count   uint32
	Dynamic bool
}

// Buffer keeps a CPU copy of its last contents; constant buffers are
// snapshotted from it when bound.
type Buffer struct {
	ID       ResourceID
	Name     string
	Kind     BufferKind
	Stride   uint32
	Count    uint32
	Dynamic  bool
	Internal interface{}

	data    interface{}
	version uint64
}

func NewBuffer(desc BufferDesc) *Buffer {
	return &Buffer{
		ID:      NewResourceID(),
		Name:    desc.Name,
		Kind:    desc.Kind,
		Stride:  desc.Stride,
		Count:   desc.Count,
		Dynamic: desc.Dynamic,
	}
}

func (b *Buffer) Data() interface{} {
	return b.data
}

// Version increases on every SetData.
func (b *Buffer) Version() uint64 {
	return b.version
}

// SetData is called by devices when the contents change.
func (b *Buffer) SetData(data interface{}) {
	b.data = data
	b.version++
}
