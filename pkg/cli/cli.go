// Package cli provides the command-line interface for camera-mapper.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"CAMERA_MAPPER_VERBOSE"},
	},
	&cli.StringFlag{
		Name:    "log-file",
		Usage:   "Write logs to a file instead of stderr",
		EnvVars: []string{"CAMERA_MAPPER_LOG_FILE"},
	},
}

// Execute runs the CLI.
func Execute() {
	app := &cli.App{
		Name:    "camera-mapper",
		Usage:   "Discover camera app control coordinates on Android devices",
		Version: Version,
		Description: `Camera Mapper walks the camera app of a connected Android device,
locating each UI control by calibrated position, OCR label, or sibling
offset, and emits the resulting coordinate map as JSON.

Examples:
  camera-mapper map --ip 192.168.240.101
  camera-mapper map --ip 192.168.240.101,192.168.240.102 --output maps/
  camera-mapper devices`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			mapCommand,
			devicesCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
