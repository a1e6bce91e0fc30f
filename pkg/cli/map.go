package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/devicelab-dev/camera-mapper/pkg/adb"
	"github.com/devicelab-dev/camera-mapper/pkg/calibration"
	"github.com/devicelab-dev/camera-mapper/pkg/compare"
	"github.com/devicelab-dev/camera-mapper/pkg/config"
	"github.com/devicelab-dev/camera-mapper/pkg/discovery"
	"github.com/devicelab-dev/camera-mapper/pkg/logger"
	"github.com/devicelab-dev/camera-mapper/pkg/ocr"
	"github.com/devicelab-dev/camera-mapper/pkg/resolver"
	"github.com/devicelab-dev/camera-mapper/pkg/session"
)

var mapCommand = &cli.Command{
	Name:  "map",
	Usage: "Map camera controls on one or more devices",
	Description: `Connect to each device over adb TCP/IP, walk the camera UI, and write
one JSON coordinate map per device. Multiple devices are mapped in
parallel.

Examples:
  camera-mapper map --ip 192.168.240.101
  camera-mapper map --ip 192.168.240.101,192.168.240.102 --output maps/
  camera-mapper map --ip 192.168.240.101 --hardware-version 1.0.0
  camera-mapper map --config camera-mapper.yaml`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "ip",
			Usage:   "Device IP address (can be comma-separated)",
			EnvVars: []string{"CAMERA_MAPPER_IP"},
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Workspace config file supplying defaults for the other flags",
		},
		&cli.StringFlag{
			Name:  "hardware-version",
			Usage: "Force a calibration override instead of the device-reported version",
		},
		&cli.StringFlag{
			Name:  "calibration",
			Usage: "Calibration YAML replacing the built-in defaults",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Directory for the JSON maps (default: stdout)",
		},
		&cli.IntFlag{
			Name:  "timeout",
			Usage: "Per-device time limit in seconds (0 = none)",
		},
		&cli.IntFlag{
			Name:  "retries",
			Usage: "Attempts per control before recording it absent",
			Value: discovery.DefaultMaxAttempts,
		},
		&cli.IntFlag{
			Name:  "settle-ms",
			Usage: "Delay between a tap and its verification screenshot",
			Value: int(discovery.DefaultSettleDelay / time.Millisecond),
		},
		&cli.StringFlag{
			Name:  "tesseract",
			Usage: "Path to the tesseract binary",
		},
	},
	Action: runMap,
}

// runOptions is the merged outcome of the config file and the flags.
type runOptions struct {
	devices         []string
	hardwareVersion string
	calibrationPath string
	outputDir       string
	timeout         time.Duration
	retries         int
	settleDelay     time.Duration
	tesseract       string
	logFile         string
	verbose         bool
}

func runMap(c *cli.Context) error {
	opts, err := buildOptions(c)
	if err != nil {
		return err
	}

	logger.SetVerbose(opts.verbose)
	if opts.logFile != "" {
		if err := logger.Init(opts.logFile); err != nil {
			return err
		}
		defer logger.Close()
	}

	if len(opts.devices) == 0 {
		return fmt.Errorf("no devices: set --ip or a devices list in the config file")
	}
	if opts.outputDir == "" && len(opts.devices) > 1 {
		return fmt.Errorf("--output is required when mapping multiple devices")
	}

	cal, err := loadCalibration(opts.calibrationPath)
	if err != nil {
		return err
	}

	if opts.outputDir != "" {
		if err := os.MkdirAll(opts.outputDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	var ocrOpts []ocr.TesseractOption
	if opts.tesseract != "" {
		ocrOpts = append(ocrOpts, ocr.WithBinary(opts.tesseract))
	}
	locator := ocr.NewTesseract(ocrOpts...)

	engineOpts := []discovery.Option{
		discovery.WithRetryBudget(opts.retries),
		discovery.WithSettleDelay(opts.settleDelay),
	}

	g, ctx := errgroup.WithContext(c.Context)
	for _, device := range opts.devices {
		device := device
		g.Go(func() error {
			return mapDevice(ctx, device, opts, cal, locator, engineOpts)
		})
	}
	return g.Wait()
}

// buildOptions loads the config file (when given) and overlays every flag
// the user set explicitly.
func buildOptions(c *cli.Context) (*runOptions, error) {
	opts := &runOptions{
		retries:     discovery.DefaultMaxAttempts,
		settleDelay: discovery.DefaultSettleDelay,
	}

	if path := c.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		opts.devices = cfg.Devices
		opts.hardwareVersion = cfg.HardwareVersion
		opts.calibrationPath = cfg.Calibration
		opts.outputDir = cfg.Output
		opts.timeout = time.Duration(cfg.Timeout) * time.Second
		if cfg.Retries > 0 {
			opts.retries = cfg.Retries
		}
		if cfg.SettleMS > 0 {
			opts.settleDelay = time.Duration(cfg.SettleMS) * time.Millisecond
		}
		opts.tesseract = cfg.Tesseract
		opts.logFile = cfg.LogFile
		opts.verbose = cfg.Verbose
	}

	if c.IsSet("ip") {
		opts.devices = parseIPs(c.String("ip"))
	}
	if c.IsSet("hardware-version") {
		opts.hardwareVersion = c.String("hardware-version")
	}
	if c.IsSet("calibration") {
		opts.calibrationPath = c.String("calibration")
	}
	if c.IsSet("output") {
		opts.outputDir = c.String("output")
	}
	if c.IsSet("timeout") {
		opts.timeout = time.Duration(c.Int("timeout")) * time.Second
	}
	if c.IsSet("retries") {
		opts.retries = c.Int("retries")
	}
	if c.IsSet("settle-ms") {
		opts.settleDelay = time.Duration(c.Int("settle-ms")) * time.Millisecond
	}
	if c.IsSet("tesseract") {
		opts.tesseract = c.String("tesseract")
	}
	if c.IsSet("log-file") {
		opts.logFile = c.String("log-file")
	}
	if c.Bool("verbose") {
		opts.verbose = true
	}

	return opts, nil
}

// mapDevice runs one full discovery session against one device and writes
// its JSON map.
func mapDevice(ctx context.Context, device string, opts *runOptions, cal *calibration.Calibration, locator ocr.Locator, engineOpts []discovery.Option) error {
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	bridge, err := adb.Connect(ctx, device)
	if err != nil {
		return fmt.Errorf("%s: %w", device, err)
	}
	logger.Info("connected to %s", bridge.Serial())

	profile, err := bridge.DeviceInfo(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", device, err)
	}
	hardware := profile.HardwareVersion
	if opts.hardwareVersion != "" {
		hardware = opts.hardwareVersion
	}
	logger.Info("%s: %s %s (hardware %s, camera %s)",
		bridge.Serial(), profile.Brand, profile.Model, hardware, profile.CameraVersion)

	if err := bridge.LaunchCamera(ctx); err != nil {
		return fmt.Errorf("%s: %w", device, err)
	}
	logger.Info("%s: camera app in the foreground", bridge.Serial())

	sess := session.New(profile)
	engine := discovery.New(bridge, resolver.New(cal, locator, hardware), compare.New(), engineOpts...)
	if err := engine.Run(ctx, sess); err != nil {
		return fmt.Errorf("%s: %w", device, err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: encode map: %w", device, err)
	}
	data = append(data, '\n')

	if opts.outputDir == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	path := filepath.Join(opts.outputDir, outputName(bridge.Serial()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%s: write map: %w", device, err)
	}
	logger.Info("%s: map written to %s", bridge.Serial(), path)
	return nil
}

func loadCalibration(path string) (*calibration.Calibration, error) {
	if path == "" {
		return calibration.Default()
	}
	return calibration.Load(path)
}

// parseIPs splits the comma-separated --ip flag, dropping empty entries.
func parseIPs(flag string) []string {
	var ips []string
	for _, part := range strings.Split(flag, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			ips = append(ips, part)
		}
	}
	return ips
}

// outputName builds a filesystem-safe map filename from a device serial.
func outputName(serial string) string {
	return strings.ReplaceAll(serial, ":", "-") + ".json"
}
