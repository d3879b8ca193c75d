package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/configuration"
	"github.com/fatih/color"
)

func main() {
	dir, err := configuration.ClientConfigDir()
	if err != nil {
		fail(err)
	}

	cfg, err := configuration.LoadClient(filepath.Join(dir, "config.toml"))
	if err != nil {
		fail(err)
	}

	if err := newRootCmd(&cfg).Execute(); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
	os.Exit(1)
}
