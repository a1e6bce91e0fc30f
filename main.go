package main

import "github.com/devicelab-dev/camera-mapper/pkg/cli"

func main() {
	cli.Execute()
}
