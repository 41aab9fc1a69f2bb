package cmd

import (
	"bytes"
	"fmt"

	"github.com/ktnlvr/wreckage-deprecated/gpu"
	"github.com/ktnlvr/wreckage-deprecated/gpu/software"
	"github.com/ktnlvr/wreckage-deprecated/gpu/vulkan"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List the available devices.
func ListDevices(ctx *cli.Context) error {
	setupLogging(ctx)

	var adapters []gpu.AdapterInfo
	vkAdapters, err := vulkanAdapters()
	if err != nil {
		logger.Warningf("could not enumerate vulkan devices: %v", err)
	}
	for _, adapter := range vkAdapters {
		adapters = append(adapters, adapter.Info)
	}

	logger.Noticef("system provides %d vulkan device(s)\n%s", len(vkAdapters), adapterTable(adapters, software.Info()))
	return nil
}

func vulkanAdapters() ([]vulkan.Adapter, error) {
	if err := vulkan.Init(); err != nil {
		return nil, err
	}
	instance, err := vulkan.NewInstance(appName, nil)
	if err != nil {
		return nil, err
	}
	defer instance.Release()

	return instance.Adapters()
}

// Format a device table; the software device is always listed last.
func adapterTable(adapters []gpu.AdapterInfo, fallback gpu.AdapterInfo) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Device", "Backend", "Name", "Type", "API version", "Suitable queue"})
	for index, info := range adapters {
		table.Append(adapterRow(fmt.Sprintf("%02d", index), "vulkan", info))
	}
	table.Append(adapterRow("-", "software", fallback))
	table.Render()
	return buf.String()
}

func adapterRow(id, backend string, info gpu.AdapterInfo) []string {
	return []string{id, backend, info.Name, info.Type, info.APIVersion, fmt.Sprintf("%t", info.SuitableQueue)}
}
