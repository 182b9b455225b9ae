package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gosight/config"
	"gosight/process"
	"gosight/process_blob"
	"gosight/remote"

	"github.com/spf13/cobra"
)

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "scan a memory snapshot instead of a live process",
		Args:  cobra.NoArgs,
		RunE:  runReplay,
	}
	cmd.Flags().String("from", "", "snapshot directory")
	cmd.Flags().String("base", "", "image base address (hex)")
	cmd.Flags().Bool("no-levels", false, "scan only the persistent level")
	cmd.Flags().String("control", "", "control server address")
	_ = cmd.MarkFlagRequired("from")
	bindOnRun(cmd, map[string]string{"base": "target.base"})
	return cmd
}

func runReplay(cmd *cobra.Command, args []string) error {
	from, _ := cmd.Flags().GetString("from")

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

	img, err := process_blob.Load(from)
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}
	defer img.Close()
	log.Infoln("replaying", from)

	acc := remote.New(img, process.Handle{PID: img.GetPID(), BaseAddress: base}, lay)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runPipeline(ctx, acc, s)
}
