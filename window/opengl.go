package window

import (
	"fmt"
	"image"
	"time"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/ktnlvr/wreckage-deprecated/renderer"
	"github.com/ktnlvr/wreckage-deprecated/types"
)

// Height in pixels of the stage time overlay.
const overlayHeight uint32 = 40

// Copies CPU-rendered frames to the default framebuffer and optionally
// draws a per-stage frame time overlay.
type glPresenter struct {
	frameW uint32
	frameH uint32

	texture uint32
	texFbo  uint32

	// Display options
	showUI bool
	stages *stageHistory
}

func newGLPresenter(frameW, frameH uint32) (*glPresenter, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("window: could not init opengl: %w", err)
	}

	p := &glPresenter{frameW: frameW, frameH: frameH}

	// Setup texture for image data
	gl.GenTextures(1, &p.texture)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, p.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(frameW), int32(frameH), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	// Attach texture to FBO
	gl.GenFramebuffers(1, &p.texFbo)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, p.texFbo)
	gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, p.texture, 0)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

	// Setup ortho projection for UI bits
	gl.Disable(gl.DEPTH_TEST)
	gl.MatrixMode(gl.PROJECTION)
	gl.LoadIdentity()
	gl.Ortho(0, float64(frameW), float64(frameH), 0, -1, 1)
	gl.Viewport(0, 0, int32(frameW), int32(frameH))
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadIdentity()

	p.stages = newStageHistory(int(frameW))
	return p, nil
}

func (p *glPresenter) present(img *image.RGBA) {
	w, h := int32(img.Rect.Dx()), int32(img.Rect.Dy())

	gl.BindTexture(gl.TEXTURE_2D, p.texture)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, w, h, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)

	// Image rows are stored top to bottom; flip them while copying to the
	// bottom-up default framebuffer.
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, p.texFbo)
	gl.BlitFramebuffer(0, 0, w, h, 0, int32(p.frameH), int32(p.frameW), 0, gl.COLOR_BUFFER_BIT, gl.NEAREST)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

	if p.showUI {
		p.stages.Render(p.frameH-overlayHeight, overlayHeight)
	}
}

// Append the stage times of the last frame to the overlay.
func (p *glPresenter) observe(stats renderer.FrameStats) {
	p.stages.Push(stats.Stages)
}

func (p *glPresenter) toggleUI() {
	p.showUI = !p.showUI
	if p.showUI {
		p.stages.Reset()
	}
}

func (p *glPresenter) release() {
	gl.DeleteFramebuffers(1, &p.texFbo)
	gl.DeleteTextures(1, &p.texture)
}

// Colors of the acquire, record, submit, present and wait stages.
var stageColors = [renderer.StageCount]types.Vec3{
	{0.9, 0.6, 0.1},
	{0.2, 0.6, 1.0},
	{0.6, 0.3, 0.9},
	{0.2, 0.8, 0.4},
	{0.9, 0.2, 0.3},
}

// A rolling window of per-frame stage times drawn as stacked columns.
type stageHistory struct {
	// Stage times in microseconds, one column per frame. head is the
	// oldest column and the next one to be overwritten.
	samples [][renderer.StageCount]float32
	head    int

	// Cumulative stage times at the last push.
	totals [renderer.StageCount]time.Duration
}

func newStageHistory(columns int) *stageHistory {
	return &stageHistory{samples: make([][renderer.StageCount]float32, columns)}
}

// Record the time each stage took since the previous push. Renderer stage
// stats are cumulative, so deltas are taken against the last totals.
func (h *stageHistory) Push(stages []renderer.StageStat) {
	var column [renderer.StageCount]float32
	for _, stat := range stages {
		index := int(stat.Stage)
		if index >= renderer.StageCount {
			continue
		}
		if delta := stat.Time - h.totals[index]; delta > 0 {
			column[index] = float32(delta.Microseconds())
		}
		h.totals[index] = stat.Time
	}
	h.samples[h.head] = column
	h.head = (h.head + 1) % len(h.samples)
}

// Drop the recorded columns. Totals are kept so the next push is still a
// single frame.
func (h *stageHistory) Reset() {
	for index := range h.samples {
		h.samples[index] = [renderer.StageCount]float32{}
	}
	h.head = 0
}

// Get the segment heights of column x (0 is the oldest frame) scaled so
// the stages of a frame fill height.
func (h *stageHistory) Column(x int, height float32) [renderer.StageCount]float32 {
	column := h.samples[(h.head+x)%len(h.samples)]
	var sum float32
	for _, v := range column {
		sum += v
	}
	if sum > 0 {
		for index := range column {
			column[index] *= height / sum
		}
	}
	return column
}

func (h *stageHistory) Render(top, height uint32) {
	gl.LineWidth(1.0)
	gl.Begin(gl.LINES)
	for x := range h.samples {
		y := float32(top)
		for stage, segment := range h.Column(x, float32(height)) {
			gl.Color3fv(&stageColors[stage][0])
			gl.Vertex2f(float32(x), y)
			gl.Vertex2f(float32(x), y+segment)
			y += segment
		}
	}
	gl.End()
}
