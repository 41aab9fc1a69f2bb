package cmd

import (
	"bytes"
	"fmt"

	"github.com/ktnlvr/wreckage-deprecated/gpu"
	"github.com/ktnlvr/wreckage-deprecated/gpu/software"
	"github.com/ktnlvr/wreckage-deprecated/gpu/vulkan"
	"github.com/ktnlvr/wreckage-deprecated/renderer"
	"github.com/ktnlvr/wreckage-deprecated/window"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

const (
	appName = "wreckage"

	// Images in the software swapchain.
	softwareSwapchainImages = 3
)

// Render the scene interactively until the window is closed.
func RenderInteractive(ctx *cli.Context) error {
	setupLogging(ctx)

	opts := rendererOptions(ctx)
	sc, cam, err := loadScene(ctx)
	if err != nil {
		return err
	}

	var backend interactiveBackend
	switch device := ctx.String("device"); device {
	case "vulkan":
		backend, err = openVulkan(opts)
	case "software":
		backend, err = openSoftware(opts)
	default:
		return fmt.Errorf("unsupported device %q (supported: vulkan, software)", device)
	}
	if err != nil {
		return err
	}
	defer backend.release()

	r, err := renderer.New(backend.device, backend.swapchain, sc, cam, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	logger.Notice("rendering; press ESC to exit")
	err = r.RenderAll(backend.window)
	displayFrameStats(r.Stats())
	return err
}

// The window, device and swapchain driving an interactive session.
type interactiveBackend struct {
	window    *window.Window
	device    gpu.Device
	swapchain gpu.Swapchain

	// Released in reverse order.
	releasers []func()
}

func (b *interactiveBackend) onRelease(fn func()) {
	b.releasers = append(b.releasers, fn)
}

func (b *interactiveBackend) release() {
	for i := len(b.releasers) - 1; i >= 0; i-- {
		b.releasers[i]()
	}
	b.releasers = nil
}

// Open a window with a Vulkan surface and a swapchain on the best adapter.
func openVulkan(opts renderer.Options) (backend interactiveBackend, err error) {
	defer func() {
		if err != nil {
			backend.release()
		}
	}()

	if backend.window, err = window.New(appName, opts.FrameW, opts.FrameH, window.Vulkan); err != nil {
		return backend, err
	}
	backend.onRelease(backend.window.Close)

	if err = vulkan.Init(); err != nil {
		return backend, err
	}

	instance, err := vulkan.NewInstance(appName, backend.window.RequiredInstanceExtensions())
	if err != nil {
		return backend, err
	}
	backend.onRelease(instance.Release)

	surface, err := vulkan.NewSurface(instance, backend.window.Handle())
	if err != nil {
		return backend, err
	}
	backend.onRelease(surface.Release)

	adapters, err := instance.Adapters()
	if err != nil {
		return backend, err
	}
	adapter, err := vulkan.SelectAdapter(adapters, opts.BlackListedDevices, opts.ForcePrimaryDevice)
	if err != nil {
		return backend, err
	}

	dev, err := vulkan.Open(adapter, surface)
	if err != nil {
		return backend, err
	}
	backend.device = dev
	backend.onRelease(dev.Release)

	width, height := backend.window.Extent()
	swapchain, err := vulkan.NewSwapchain(dev, surface, width, height)
	if err != nil {
		return backend, err
	}
	backend.swapchain = swapchain
	backend.onRelease(swapchain.Release)

	return backend, nil
}

// Open an OpenGL window that displays frames rendered by the software device.
func openSoftware(opts renderer.Options) (backend interactiveBackend, err error) {
	if backend.window, err = window.New(appName, opts.FrameW, opts.FrameH, window.OpenGL); err != nil {
		return backend, err
	}
	backend.onRelease(backend.window.Close)

	dev := software.NewDevice()
	backend.device = dev
	backend.onRelease(dev.Release)

	width, height := backend.window.Extent()
	if backend.swapchain, err = software.NewSwapchain(dev, width, height, softwareSwapchainImages, gpu.FormatRGBA8Unorm, backend.window); err != nil {
		backend.release()
		return backend, err
	}
	return backend, nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Stage", "% of frame", "Time"})
	for _, stat := range stats.Stages {
		table.Append([]string{
			stat.Stage.String(),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			stat.Time.String(),
		})
	}
	table.SetFooter([]string{
		fmt.Sprintf("%d frames (%d dropped)", stats.Frames, stats.Dropped),
		fmt.Sprintf("%.1f fps", stats.FPS()),
		stats.RenderTime.String(),
	})

	table.Render()
	logger.Noticef("frame statistics (%s on %s)\n%s", stats.Variant, stats.Device, buf.String())
}
