package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/headtrack/internal/cliconfig"
	"github.com/bft-labs/headtrack/pkg/headtrack"
	"github.com/bft-labs/headtrack/pkg/log"
	"github.com/bft-labs/headtrack/plugins/calibwatcher"
)

const helpDescription = `
Stream head pose from a tracked headset to a collector.

Highlights:
  - Shares one SDK instance between every session in the process.
  - Applies scale and offset calibration, reloaded live from a file.
  - Sinks: stdout, HTTP, MQTT and InfluxDB; configure via file, env, or flags.
  - Runs without hardware on the built-in "sim" driver.
`

var exampleUsage = strings.TrimSpace(`
  headtrack --driver sim --once
  headtrack --sink mqtt --mqtt-broker tcp://localhost:1883 --scale 100
  headtrack probe --device 0 -n 10
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string
	var deviceFlag string

	root := &cobra.Command{
		Use:     "headtrack",
		Short:   "Stream head pose from a tracked headset to a collector",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, &cfg, cfgPath, deviceFlag); err != nil {
				return err
			}
			logger := newLogger(cfg)
			logConfig(logger, cfg)
			return run(cmd.Context(), cfg, logger)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.headtrack/config.toml)")
	flags.StringVar(&cfg.Driver, "driver", cfg.Driver, "SDK driver (sim, or libovr when built with -tags libovr)")
	flags.StringVar(&deviceFlag, "device", "0", "device index")
	flags.Float64Var(&cfg.Scale, "scale", cfg.Scale, "position scale factor")
	flags.Float64Var(&cfg.OffsetX, "offset-x", cfg.OffsetX, "position offset X")
	flags.Float64Var(&cfg.OffsetY, "offset-y", cfg.OffsetY, "position offset Y")
	flags.Float64Var(&cfg.OffsetZ, "offset-z", cfg.OffsetZ, "position offset Z")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	rf := root.Flags()
	rf.StringVar(&cfg.CalibrationFile, "calibration-file", cfg.CalibrationFile, "TOML calibration file, reloaded on change")
	rf.StringVar(&cfg.Sink, "sink", cfg.Sink, "pose sink (stdout, http, mqtt, influx)")
	rf.StringVar(&cfg.ServiceURL, "service-url", cfg.ServiceURL, "collector base URL for the http sink")
	rf.StringVar(&cfg.AuthKey, "auth-key", cfg.AuthKey, "bearer token for the http sink")
	rf.DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout")

	rf.StringVar(&cfg.MQTTBroker, "mqtt-broker", cfg.MQTTBroker, "MQTT broker URL")
	rf.StringVar(&cfg.MQTTClientID, "mqtt-client-id", cfg.MQTTClientID, "MQTT client ID")
	rf.StringVar(&cfg.MQTTUsername, "mqtt-username", cfg.MQTTUsername, "MQTT username")
	rf.StringVar(&cfg.MQTTPassword, "mqtt-password", cfg.MQTTPassword, "MQTT password")
	rf.StringVar(&cfg.MQTTTopicPrefix, "mqtt-topic-prefix", cfg.MQTTTopicPrefix, "MQTT topic prefix")
	rf.IntVar(&cfg.MQTTQoS, "mqtt-qos", cfg.MQTTQoS, "MQTT QoS (0, 1 or 2)")

	rf.StringVar(&cfg.InfluxURL, "influx-url", cfg.InfluxURL, "InfluxDB URL")
	rf.StringVar(&cfg.InfluxToken, "influx-token", cfg.InfluxToken, "InfluxDB token")
	rf.StringVar(&cfg.InfluxOrg, "influx-org", cfg.InfluxOrg, "InfluxDB organization")
	rf.StringVar(&cfg.InfluxBucket, "influx-bucket", cfg.InfluxBucket, "InfluxDB bucket")
	rf.StringVar(&cfg.InfluxMeasurement, "influx-measurement", cfg.InfluxMeasurement, "InfluxDB measurement (default head_pose)")

	rf.DurationVar(&cfg.SampleInterval, "sample-interval", cfg.SampleInterval, "interval between pose samples")
	rf.DurationVar(&cfg.SendInterval, "send-interval", cfg.SendInterval, "soft send interval")
	rf.DurationVar(&cfg.HardInterval, "hard-interval", cfg.HardInterval, "hard send interval")
	rf.IntVar(&cfg.MaxBatchFrames, "max-batch-frames", cfg.MaxBatchFrames, "frames per batch")
	rf.StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "state directory for status.json (default: $HOME/.headtrack)")
	rf.BoolVar(&cfg.Once, "once", cfg.Once, "send one batch and exit")

	root.AddCommand(newProbeCmd(&cfg, &cfgPath, &deviceFlag), newDriversCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		log.NewConsoleAdapter(os.Stderr, cfg.Level()).Error("headtrack", log.Err(err))
		stop()
		os.Exit(1)
	}
}

// loadConfig layers file, env and flags: flags > env > file > defaults.
func loadConfig(cmd *cobra.Command, cfg *cliconfig.Config, cfgPath, deviceFlag string) error {
	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if changed["device"] {
		idx, err := cliconfig.ParseDeviceIndex(deviceFlag)
		if err != nil {
			return err
		}
		cfg.DeviceIndex = idx
	}

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}
	return cfg.Validate()
}

func newLogger(cfg cliconfig.Config) *log.ZerologAdapter {
	return log.NewConsoleAdapter(os.Stderr, cfg.Level())
}

// logConfig logs the effective configuration with secrets masked.
func logConfig(logger log.Logger, cfg cliconfig.Config) {
	masked := cfg
	for _, s := range []*string{&masked.AuthKey, &masked.MQTTPassword, &masked.InfluxToken} {
		if *s != "" {
			*s = "*****"
		}
	}
	logger.Info("configuration", log.Any("config", masked))
}

// run streams until a signal arrives or, with --once, one batch is sent.
func run(ctx context.Context, cfg cliconfig.Config, logger log.Logger) error {
	sink, closeSink, err := buildSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	opts := []headtrack.Option{headtrack.WithLogger(logger)}
	if sink != nil {
		opts = append(opts, headtrack.WithSink(sink))
	}
	if cfg.CalibrationFile != "" {
		opts = append(opts, calibwatcher.WithCalibrationWatcher(calibwatcher.DefaultConfig(cfg.CalibrationFile)))
	}

	t, err := headtrack.New(trackerConfig(cfg), opts...)
	if err != nil {
		return fmt.Errorf("create tracker: %w", err)
	}

	if err := t.Start(ctx); err != nil {
		return fmt.Errorf("start tracker: %w", err)
	}

	select {
	case <-ctx.Done():
		logger.Info("received signal, stopping")
	case <-t.Done():
	}

	if t.Status() == headtrack.StateCrashed {
		return fmt.Errorf("tracker crashed: %w", t.Err())
	}
	if err := t.Stop(); err != nil {
		return fmt.Errorf("stop tracker: %w", err)
	}
	return nil
}

func trackerConfig(cfg cliconfig.Config) headtrack.Config {
	return headtrack.Config{
		Driver:         cfg.Driver,
		DeviceIndex:    cfg.DeviceIndex,
		Calibration:    cfg.Calibration(),
		StateDir:       cfg.StateDir,
		ServiceURL:     cfg.ServiceURL,
		AuthKey:        cfg.AuthKey,
		HTTPTimeout:    cfg.HTTPTimeout,
		SampleInterval: cfg.SampleInterval,
		SendInterval:   cfg.SendInterval,
		HardInterval:   cfg.HardInterval,
		MaxBatchFrames: cfg.MaxBatchFrames,
		Once:           cfg.Once,
	}
}
