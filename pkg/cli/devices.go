package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/camera-mapper/pkg/adb"
)

var devicesCommand = &cli.Command{
	Name:  "devices",
	Usage: "List connected Android devices",
	Description: `List the serials of all devices adb currently reports in the
"device" state.

Examples:
  camera-mapper devices`,
	Action: runDevices,
}

func runDevices(c *cli.Context) error {
	serials, err := adb.Devices(c.Context)
	if err != nil {
		return err
	}
	if len(serials) == 0 {
		fmt.Println("No connected devices found")
		return nil
	}
	for _, serial := range serials {
		fmt.Println(serial)
	}
	return nil
}
