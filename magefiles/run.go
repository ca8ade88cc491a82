//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Renders the testbed headless with lumen.toml and dumps the final frame.
func (Run) Engine() error {
	mg.Deps(Build.Engine)
	fmt.Println("Run engine...")
	if _, err := executeCmd("bin/lumen", withArgs("-config", "lumen.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Renders a single frame into frame.tif, handy to eyeball a change.
func (Run) Frame() error {
	mg.Deps(Build.Engine)
	_, err := executeCmd("bin/lumen", withArgs("-config", "lumen.toml", "-frames", "1", "-output", "frame.tif"), withStream())
	return err
}
