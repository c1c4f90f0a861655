package main

import (
	"fmt"
	"os"

	"github.com/skarab/awesome-shader-nft/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "pearl"
	app.Usage = "generate a collection of procedural ray traced images"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "generate",
			Usage: "generate the artifact collection",
			Description: `
Run the iteration loop headless. Every iteration synthesizes the object
parameters for its seed, renders them through the generation kernel and the
ray tracing pass and writes <out>/<prefix>_<index>.png.

The run halts once the iteration limit is reached. A failed capture aborts
the run; restart it with --start to resume after the last written artifact.`,
			Flags:  cmd.GenerateFlags(),
			Action: cmd.Generate,
		},
		{
			Name:        "render",
			Usage:       "render a single seed",
			Description: `Render the frame for a single seed to an image file.`,
			Flags:       cmd.RenderFlags(),
			Action:      cmd.RenderFrame,
		},
		{
			Name:   "preview",
			Usage:  "watch the iteration loop in a window",
			Flags:  cmd.PreviewFlags(),
			Action: cmd.Preview,
		},
		{
			Name:   "list-devices",
			Usage:  "list available tracer devices",
			Action: cmd.ListDevices,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
