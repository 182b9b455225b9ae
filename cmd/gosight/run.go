package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gosight/config"
	"gosight/process"
	"gosight/remote"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "attach to a running process and scan it",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	targetFlags(cmd)
	cmd.Flags().Bool("no-levels", false, "scan only the persistent level")
	cmd.Flags().String("control", "", "control server address")
	return cmd
}

func runLive(cmd *cobra.Command, args []string) error {
	s, err := config.Current()
	if err != nil {
		return err
	}
	applyRunFlags(cmd, &s)

	lay, err := loadLayout(s)
	if err != nil {
		return err
	}
	base, err := s.Target.BaseAddress()
	if err != nil {
		return err
	}

	proc, name, err := attach(s.Target)
	if err != nil {
		return err
	}
	defer proc.Close()
	log.Infoln("attached to", name)

	acc := remote.New(proc, process.Handle{PID: proc.GetPID(), BaseAddress: base}, lay)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runPipeline(ctx, acc, s)
}

// applyRunFlags lets the run-only switches override the loaded settings.
func applyRunFlags(cmd *cobra.Command, s *config.Settings) {
	if noLevels, _ := cmd.Flags().GetBool("no-levels"); noLevels {
		s.Scan.Levels = false
	}
	if addr, _ := cmd.Flags().GetString("control"); addr != "" {
		s.Control.Addr = addr
	}
}
