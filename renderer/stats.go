package renderer

import "time"

// The steps of a frame.
type Stage uint8

const (
	StageAcquire Stage = iota
	StageRecord
	StageSubmit
	StagePresent
	StageWait
	numStages
)

// The number of frame stages.
const StageCount = int(numStages)

var stageNames = [numStages]string{"acquire", "record", "submit", "present", "wait"}

func (s Stage) String() string {
	if s < numStages {
		return stageNames[s]
	}
	return "unknown"
}

type StageStat struct {
	Stage Stage

	// Time spent in this stage across all frames and the percentage of
	// total frame time it represents.
	Time         time.Duration
	FramePercent float32
}

type FrameStats struct {
	// The renderer variant and the device it runs on.
	Variant Variant
	Device  string

	// Drawn frames (including dropped ones) and dropped frames.
	Frames  uint64
	Dropped uint64

	// Individual stage stats.
	Stages []StageStat

	// Total render time for all frames and for the last frame.
	RenderTime    time.Duration
	LastFrameTime time.Duration
}

// Average time per frame.
func (s FrameStats) AvgFrameTime() time.Duration {
	if s.Frames == 0 {
		return 0
	}
	return s.RenderTime / time.Duration(s.Frames)
}

// Average frames per second.
func (s FrameStats) FPS() float64 {
	avg := s.AvgFrameTime()
	if avg == 0 {
		return 0
	}
	return float64(time.Second) / float64(avg)
}

// Accumulates per-stage timings.
type stageTimer struct {
	totals [numStages]time.Duration
	frame  time.Duration
	start  time.Time
	now    func() time.Time
}

func (t *stageTimer) begin() {
	t.start = t.now()
	t.frame = 0
}

// Attribute the time elapsed since the previous mark to stage.
func (t *stageTimer) mark(stage Stage) {
	now := t.now()
	elapsed := now.Sub(t.start)
	t.totals[stage] += elapsed
	t.frame += elapsed
	t.start = now
}

func (t *stageTimer) stats() []StageStat {
	var total time.Duration
	for _, d := range t.totals {
		total += d
	}

	out := make([]StageStat, numStages)
	for i, d := range t.totals {
		out[i] = StageStat{Stage: Stage(i), Time: d}
		if total > 0 {
			out[i].FramePercent = 100 * float32(d) / float32(total)
		}
	}
	return out
}
