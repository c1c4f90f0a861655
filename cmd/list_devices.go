package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"runtime"

	"github.com/olekukonko/tablewriter"
	"github.com/skarab/awesome-shader-nft/tracer/cpu"
	"github.com/skarab/awesome-shader-nft/tracer/opencl"
	"github.com/urfave/cli"
)

// List available tracer devices.
func ListDevices(ctx *cli.Context) error {
	setupLogging(ctx, "notice")

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Selector", "Name", "Type", "Platform", "Compute units", "Clock", "Speed"})
	table.Append([]string{
		cpu.DeviceId,
		"go runtime",
		"CPU",
		runtime.GOOS + "/" + runtime.GOARCH,
		fmt.Sprintf("%d", runtime.GOMAXPROCS(0)),
		"-",
		"-",
	})

	devices, err := opencl.Devices()
	switch {
	case errors.Is(err, opencl.ErrNotSupported):
		logger.Notice("opencl support not compiled in; rebuild with -tags opencl")
	case err != nil:
		logger.Warningf("could not enumerate opencl devices: %v", err)
	}
	for idx, info := range devices {
		table.Append([]string{
			fmt.Sprintf("opencl:%d", idx),
			info.Name,
			info.Type,
			info.Platform,
			fmt.Sprintf("%d", info.ComputeUnits),
			fmt.Sprintf("%d MHz", info.ClockSpeed),
			fmt.Sprintf("%d GFlops", info.Speed),
		})
	}

	table.Render()
	logger.Noticef("available devices\n%s", buf.String())
	return nil
}
