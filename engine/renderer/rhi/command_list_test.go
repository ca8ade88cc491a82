package rhi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
)

// recordingDevice keeps a copy of every executed command.
type recordingDevice struct {
	Device
	initialized bool
	executed    []Command
	batches     int
}

func (d *recordingDevice) IsInitialized() bool {
	return d.initialized
}

func (d *recordingDevice) Execute(commands []Command) error {
	d.batches++
	d.executed = append(d.executed, commands...)
	return nil
}

func (d *recordingDevice) kinds() []CommandKind {
	kinds := make([]CommandKind, len(d.executed))
	for i, c := range d.executed {
		kinds[i] = c.Kind
	}
	return kinds
}

func newTarget(name string) *Texture {
	return NewTexture(TextureDesc{
		Name:   name,
		Width:  4,
		Height: 4,
		Format: FormatR8G8B8A8Unorm,
		Usage:  UsageSampled | UsageRenderTarget,
	})
}

func TestCommandListScopes(t *testing.T) {
	cl := NewCommandList(&recordingDevice{initialized: true})

	cl.Begin("Pass_Main")
	cl.Begin("Pass_GBuffer")
	assert.Equal(t, "Pass_Main/Pass_GBuffer", cl.ScopePath())
	assert.True(t, cl.End())
	assert.Equal(t, "Pass_Main", cl.ScopePath())
	assert.True(t, cl.End())
	assert.Empty(t, cl.ScopePath())

	before := cl.Len()
	assert.False(t, cl.End())
	assert.Equal(t, before, cl.Len(), "an unmatched End records nothing")

	commands := cl.Commands()
	require.Len(t, commands, 4)
	assert.Equal(t, "Pass_GBuffer", commands[2].PassName)
	assert.Equal(t, CmdEnd, commands[2].Kind)
}

func TestCommandListSubmitOnlySendsPending(t *testing.T) {
	device := &recordingDevice{initialized: true}
	cl := NewCommandList(device)

	cl.SetPrimitiveTopology(PrimitiveTopologyTriangleList)
	cl.Draw(3, 0)
	require.NoError(t, cl.Submit())
	assert.Equal(t, []CommandKind{CmdSetPrimitiveTopology, CmdDraw}, device.kinds())
	assert.Zero(t, cl.Pending())

	require.NoError(t, cl.Submit())
	assert.Equal(t, 1, device.batches, "nothing pending means no device call")

	cl.DrawIndexed(6, 0, 0)
	assert.Equal(t, 1, cl.Pending())
	require.NoError(t, cl.Submit())
	assert.Equal(t, []CommandKind{CmdSetPrimitiveTopology, CmdDraw, CmdDrawIndexed}, device.kinds())
	assert.Equal(t, 3, cl.Len())

	cl.Clear()
	assert.Zero(t, cl.Len())
	assert.Zero(t, cl.Pending())
}

func TestCommandListSubmitNeedsDevice(t *testing.T) {
	cl := NewCommandList(&recordingDevice{})
	cl.Draw(3, 0)
	assert.ErrorIs(t, cl.Submit(), core.ErrNotInitialized)

	assert.ErrorIs(t, NewCommandList(nil).Submit(), core.ErrNotInitialized)
}

func TestCommandListGrowsPastCapacity(t *testing.T) {
	cl := NewCommandListWithCapacity(&recordingDevice{initialized: true}, 2)
	for i := 0; i < 5; i++ {
		cl.Draw(uint32(i+1), 0)
	}
	assert.Equal(t, 5, cl.Len())
	assert.GreaterOrEqual(t, cl.Capacity(), 5)
	for i, c := range cl.Commands() {
		assert.EqualValues(t, i+1, c.VertexCount)
	}

	// capacity survives a clear
	capacity := cl.Capacity()
	cl.Clear()
	assert.Equal(t, capacity, cl.Capacity())
}

func TestCommandListUnbindsAliasedInputs(t *testing.T) {
	device := &recordingDevice{initialized: true}
	cl := NewCommandList(device)
	a := newTarget("a")
	b := newTarget("b")

	cl.SetTexture(0, a)
	assert.True(t, cl.IsBoundAsInput(a))

	// writing b while a is sampled is fine
	cl.SetRenderTarget(b.RenderTargetView(0), nil)
	assert.True(t, cl.IsBoundAsInput(a))

	// writing a unbinds every slot first
	cl.SetRenderTarget(a.RenderTargetView(0), nil)
	assert.False(t, cl.IsBoundAsInput(a))

	require.NoError(t, cl.Submit())
	assert.Equal(t, []CommandKind{
		CmdSetTextures,
		CmdSetRenderTargets,
		CmdSetTextures,
		CmdSetRenderTargets,
	}, device.kinds())
	unbind := device.executed[2]
	assert.EqualValues(t, MaxTextureSlots, unbind.TextureCount)
	assert.Nil(t, unbind.Textures[0])
}

func TestCommandListSnapshotsConstantBuffers(t *testing.T) {
	device := &recordingDevice{initialized: true}
	cl := NewCommandList(device)
	buffer := NewBuffer(BufferDesc{Name: "cb", Kind: BufferConstant})

	buffer.SetData(1)
	cl.SetConstantBuffer(0, ScopeGlobal, buffer)
	buffer.SetData(2)
	cl.SetConstantBuffer(0, ScopeGlobal, buffer)
	require.NoError(t, cl.Submit())

	require.Len(t, device.executed, 2)
	assert.Equal(t, 1, device.executed[0].ConstantBufferData[0])
	assert.Equal(t, 2, device.executed[1].ConstantBufferData[0])
	assert.EqualValues(t, 2, buffer.Version())
}

func TestCommandListRejectsOutOfRangeSlots(t *testing.T) {
	cl := NewCommandList(&recordingDevice{initialized: true})

	cl.SetTextures(MaxTextureSlots-1, []*Texture{nil, nil})
	cl.SetSamplers(MaxSamplerSlots, []*Sampler{nil})
	cl.SetConstantBuffers(MaxConstantBufferSlots, ScopeGlobal, []*Buffer{nil})
	cl.SetRenderTargets(make([]*TargetView, MaxRenderTargetSlots+1), nil)
	assert.Zero(t, cl.Len())

	// clears of a nil view are ignored as well
	cl.ClearRenderTarget(nil, math.NewVec4(0, 0, 0, 0))
	cl.ClearDepthStencil(nil, ClearDepth, 1, 0)
	assert.Zero(t, cl.Len())
}
