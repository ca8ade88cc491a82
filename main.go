/*
This is an example of application that will use the
engine package to render the testbed scene headless
*/
package main

import (
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/lumen/engine"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/testbed"
)

func main() {
	configPath := flag.String("config", "lumen.toml", "TOML configuration file")
	frames := flag.Uint("frames", 0, "frames to render, overrides application.frames")
	output := flag.String("output", "", "TIFF file for the final frame, overrides application.output")
	flag.Parse()

	config, err := engine.LoadApplicationConfig(*configPath)
	if errors.Is(err, os.ErrNotExist) {
		core.LogWarn("%s not found, using the default configuration", *configPath)
		config, err = engine.DefaultApplicationConfig(), nil
	}
	if err != nil {
		core.LogFatal(err.Error())
	}
	if *frames > 0 {
		config.Application.Frames = uint32(*frames)
	}
	if *output != "" {
		config.Application.Output = *output
	}

	tb, err := testbed.NewTestGame(config)
	if err != nil {
		core.LogFatal(err.Error())
	}

	e, err := engine.New(tb.Game)
	if err != nil {
		core.LogFatal(err.Error())
	}

	if err := e.Initialize(); err != nil {
		_ = e.Shutdown()
		core.LogFatal(err.Error())
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	go func() {
		<-sigCh
		e.Quit()
	}()

	// run engine
	runErr := e.Run()
	if err := e.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
	if runErr != nil {
		core.LogFatal(runErr.Error())
	}
}
