// Package window wraps a GLFW window and translates its input callbacks into
// scene events.
package window

import (
	"fmt"
	"image"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/ktnlvr/wreckage-deprecated/log"
	"github.com/ktnlvr/wreckage-deprecated/renderer"
	"github.com/ktnlvr/wreckage-deprecated/scene"
	"github.com/ktnlvr/wreckage-deprecated/types"
)

var logger = log.New("window")

// The client API of a window.
type API uint8

const (
	// No client API; a Vulkan surface is attached to the window.
	Vulkan API = iota

	// A legacy OpenGL context used for displaying CPU-rendered frames.
	OpenGL
)

// How often the title statistics are refreshed.
const titleRefreshInterval = time.Second

// KeyForward moves along local +Z while the view looks down -Z.
var keyBindings = map[glfw.Key]scene.Key{
	glfw.KeyW:     scene.KeyForward,
	glfw.KeyUp:    scene.KeyForward,
	glfw.KeyS:     scene.KeyBackward,
	glfw.KeyDown:  scene.KeyBackward,
	glfw.KeyA:     scene.KeyStrafeLeft,
	glfw.KeyLeft:  scene.KeyStrafeLeft,
	glfw.KeyD:     scene.KeyStrafeRight,
	glfw.KeyRight: scene.KeyStrafeRight,
}

type Window struct {
	api    API
	title  string
	width  uint32
	height uint32
	handle *glfw.Window

	// Events received since the last poll.
	events []scene.Event

	lastCursorPos types.Vec2
	hasCursorPos  bool

	// OpenGL state; nil for Vulkan windows.
	gl *glPresenter

	lastTitleUpdate time.Time
}

// Create a fixed-size window. Must be called from the main thread.
func New(title string, width, height uint32, api API) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("window: failed to initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.False)
	switch api {
	case Vulkan:
		glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	case OpenGL:
		glfw.WindowHint(glfw.ClientAPI, glfw.OpenGLAPI)
		glfw.WindowHint(glfw.ContextVersionMajor, 2)
		glfw.WindowHint(glfw.ContextVersionMinor, 1)
	}

	handle, err := glfw.CreateWindow(int(width), int(height), title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("window: could not create window: %w", err)
	}

	w := &Window{
		api:    api,
		title:  title,
		width:  width,
		height: height,
		handle: handle,
	}

	if api == OpenGL {
		handle.MakeContextCurrent()
		if w.gl, err = newGLPresenter(width, height); err != nil {
			w.Close()
			return nil, err
		}
	}

	// Hide the cursor so pointer deltas are not limited by the screen edges.
	handle.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	if glfw.RawMouseMotionSupported() {
		handle.SetInputMode(glfw.RawMouseMotion, glfw.True)
	}
	handle.SetKeyCallback(w.onKeyEvent)
	handle.SetCursorPosCallback(w.onCursorPosEvent)
	handle.SetCloseCallback(w.onClose)

	logger.Debugf("created %dx%d window %q", width, height, title)
	return w, nil
}

// Get the underlying GLFW window.
func (w *Window) Handle() *glfw.Window {
	return w.handle
}

// Get the window size.
func (w *Window) Extent() (uint32, uint32) {
	return w.width, w.height
}

// Get the Vulkan instance extensions required for presenting to the window.
func (w *Window) RequiredInstanceExtensions() []string {
	return w.handle.GetRequiredInstanceExtensions()
}

// Process pending OS events and return the translated input events.
func (w *Window) PollEvents() []scene.Event {
	glfw.PollEvents()
	events := w.events
	w.events = nil
	return events
}

// Display a CPU-rendered frame. Only OpenGL windows can present images.
func (w *Window) Present(img *image.RGBA) error {
	if w.gl == nil {
		return fmt.Errorf("window: presenting images requires an OpenGL window")
	}
	w.gl.present(img)
	w.handle.SwapBuffers()
	return nil
}

// Refresh the window title with the renderer statistics and feed the overlay.
func (w *Window) ObserveFrame(stats renderer.FrameStats) {
	if w.gl != nil {
		w.gl.observe(stats)
	}

	if now := time.Now(); now.Sub(w.lastTitleUpdate) >= titleRefreshInterval {
		w.lastTitleUpdate = now
		w.handle.SetTitle(fmt.Sprintf("%s - %s on %s - %.1f fps (%d dropped)", w.title, stats.Variant, stats.Device, stats.FPS(), stats.Dropped))
	}
}

// Destroy the window.
func (w *Window) Close() {
	if w.gl != nil {
		w.gl.release()
		w.gl = nil
	}
	if w.handle != nil {
		w.handle.Destroy()
		w.handle = nil
	}
	glfw.Terminate()
}

func (w *Window) onKeyEvent(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if action == glfw.Repeat {
		return
	}

	switch key {
	case glfw.KeyEscape:
		if action == glfw.Press {
			w.events = append(w.events, scene.Event{Type: scene.CloseRequested})
		}
		return
	case glfw.KeyTab:
		if action == glfw.Press && w.gl != nil {
			w.gl.toggleUI()
		}
		return
	}

	if ev, ok := translateKey(key, action); ok {
		w.events = append(w.events, ev)
	}
}

func (w *Window) onCursorPosEvent(_ *glfw.Window, xPos, yPos float64) {
	pos := types.XY(float32(xPos), float32(yPos))
	if !w.hasCursorPos {
		w.lastCursorPos = pos
		w.hasCursorPos = true
		return
	}

	delta := pos.Sub(w.lastCursorPos)
	w.lastCursorPos = pos
	w.events = append(w.events, scene.Event{Type: scene.PointerMoved, Delta: delta})
}

func (w *Window) onClose(_ *glfw.Window) {
	w.events = append(w.events, scene.Event{Type: scene.CloseRequested})
}

// Map a movement key transition to an input event.
func translateKey(key glfw.Key, action glfw.Action) (scene.Event, bool) {
	bound, ok := keyBindings[key]
	if !ok {
		return scene.Event{}, false
	}

	switch action {
	case glfw.Press:
		return scene.Event{Type: scene.KeyDown, Key: bound}, true
	case glfw.Release:
		return scene.Event{Type: scene.KeyUp, Key: bound}, true
	}
	return scene.Event{}, false
}
