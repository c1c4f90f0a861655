package cmd

import (
	"bytes"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/skarab/awesome-shader-nft/driver"
	"github.com/skarab/awesome-shader-nft/generator"
	"github.com/skarab/awesome-shader-nft/renderer"
)

type runStats struct {
	driver    driver.Stats
	generator generator.Stats
	frame     renderer.FrameStats
	ticks     uint64
	elapsed   time.Duration
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Sample", "Time"})
	for _, sample := range stats.Samples {
		table.Append([]string{sample.Name, sample.Duration.String()})
	}
	table.Append([]string{"Generate (" + stats.Device.Id + ")", stats.Device.GenerateTime.String()})
	table.Append([]string{"Trace (" + stats.Device.Id + ")", stats.Device.TraceTime.String()})
	table.SetFooter([]string{"TOTAL", stats.RenderTime.String()})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}

func displayRunStats(stats runStats) {
	var avgCapture time.Duration
	if stats.driver.Captured > 0 {
		avgCapture = stats.driver.CaptureTime / time.Duration(stats.driver.Captured)
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Metric", "Value"})
	table.AppendBulk([][]string{
		{"Artifacts", fmt.Sprintf("%d", stats.driver.Captured)},
		{"Last artifact", stats.driver.LastPath},
		{"Host ticks", fmt.Sprintf("%d", stats.ticks)},
		{"Frames rendered", fmt.Sprintf("%d", stats.generator.Frames)},
		{"Skipped (resolution)", fmt.Sprintf("%d", stats.generator.SkippedResolution)},
		{"Skipped (idle)", fmt.Sprintf("%d", stats.generator.SkippedIdle)},
		{"Device", stats.frame.Device.Id},
		{"Avg capture time", avgCapture.String()},
	})
	table.SetFooter([]string{"TOTAL", stats.elapsed.String()})

	table.Render()
	logger.Noticef("run statistics\n%s", buf.String())
}
