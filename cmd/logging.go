package cmd

import (
	"github.com/skarab/awesome-shader-nft/log"
	"github.com/urfave/cli"
)

var logger = log.New("pearl")

// Apply the configured log level; the -v and -vv flags take precedence.
func setupLogging(ctx *cli.Context, level string) {
	if lvl, err := log.ParseLevel(level); err == nil {
		log.SetLevel(lvl)
	} else {
		logger.Warning(err)
	}

	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
