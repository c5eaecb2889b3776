package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/headtrack/internal/adapters/stream"
	"github.com/bft-labs/headtrack/internal/cliconfig"
	"github.com/bft-labs/headtrack/internal/domain"
	"github.com/bft-labs/headtrack/pkg/hmd"
	"github.com/bft-labs/headtrack/pkg/log"
	"github.com/bft-labs/headtrack/pkg/ovr"
)

// newProbeCmd opens one session and prints a few calibrated frames.
func newProbeCmd(cfg *cliconfig.Config, cfgPath, deviceFlag *string) *cobra.Command {
	var count int
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Open the device and print calibrated frames",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, cfg, *cfgPath, *deviceFlag); err != nil {
				return err
			}
			logger := newLogger(*cfg)

			sdk, err := ovr.Open(cfg.Driver)
			if err != nil {
				return err
			}
			mgr := hmd.NewManager(sdk, hmd.WithLogger(logger))

			session, err := hmd.Open(mgr,
				hmd.WithDeviceIndex(cfg.DeviceIndex),
				hmd.WithCalibration(cfg.Calibration()),
				hmd.WithSessionLogger(logger),
			)
			if err != nil {
				return err
			}
			defer session.Close()

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			out := cmd.OutOrStdout()
			for i := 1; i <= count; i++ {
				snap, err := session.Frame()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, stream.FormatFrame(domain.Frame{
					Seq:    uint64(i),
					Device: session.DeviceIndex(),
					Pose:   snap,
				}))

				if i == count {
					break
				}
				select {
				case <-cmd.Context().Done():
					logger.Info("probe interrupted", log.Int("frames", i))
					return nil
				case <-ticker.C:
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of frames to print")
	cmd.Flags().DurationVar(&interval, "interval", 100*time.Millisecond, "delay between frames")
	return cmd
}

// newDriversCmd lists the SDK drivers compiled into the binary.
func newDriversCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drivers",
		Short: "List available SDK drivers",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range ovr.Drivers() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}
