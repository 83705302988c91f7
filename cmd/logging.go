package cmd

import (
	"github.com/photometric/go-mmlt/log"
	"github.com/urfave/cli"
)

var logger = log.New("mmlt")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
