package cmd

import (
	"github.com/ktnlvr/wreckage-deprecated/log"
	"github.com/urfave/cli"
)

var logger = log.New("wreckage")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
