package core

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/containers"
)

const AVG_COUNT int = 30

// Metrics holds the per-frame counters shown by the performance overlay.
type Metrics struct {
	frameTimes         *containers.RingQueue[float64]
	MSavg              float64
	Frames             int32
	AccumulatedFrameMS float64
	FPS                float64

	// renderer counters, reset every frame
	MeshesRendered uint32
	DrawCalls      uint32
	PassesExecuted uint32
}

func NewMetrics() *Metrics {
	return &Metrics{
		frameTimes: containers.NewRingQueue[float64](AVG_COUNT),
	}
}

// BeginFrame resets the renderer counters.
func (m *Metrics) BeginFrame() {
	m.MeshesRendered = 0
	m.DrawCalls = 0
	m.PassesExecuted = 0
}

// Update folds the elapsed seconds of the last frame into the averages.
func (m *Metrics) Update(frameElapsedTime float64) {
	frameMS := frameElapsedTime * 1000.0
	if m.frameTimes.IsFull() {
		_, _ = m.frameTimes.Dequeue()
	}
	_ = m.frameTimes.Enqueue(frameMS)

	sum := 0.0
	m.frameTimes.Each(func(v float64) {
		sum += v
	})
	m.MSavg = sum / float64(m.frameTimes.Len())

	// Calculate Frames per second.
	m.AccumulatedFrameMS += frameMS
	if m.AccumulatedFrameMS > 1000 {
		m.FPS = float64(m.Frames)
		m.AccumulatedFrameMS -= 1000
		m.Frames = 0
	}
	m.Frames++
}

func (m *Metrics) FrameTime() float64 {
	return m.MSavg
}

func (m *Metrics) String() string {
	return fmt.Sprintf("FPS:\t%.2f\nFrame:\t%.2f ms\nMeshes:\t%d\nDraws:\t%d", m.FPS, m.MSavg, m.MeshesRendered, m.DrawCalls)
}
