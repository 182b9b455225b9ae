package main

import (
	"fmt"

	"gosight/config"
	"gosight/process"
	"gosight/process_blob"

	"github.com/spf13/cobra"
)

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "save a running process's memory for later replay",
		Args:  cobra.NoArgs,
		RunE:  runSnapshot,
	}
	targetFlags(cmd)
	cmd.Flags().String("out", "", "output directory")
	cmd.Flags().Int64("max-region", 512<<20, "skip regions larger than this many bytes")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	maxRegion, _ := cmd.Flags().GetInt64("max-region")

	s, err := config.Current()
	if err != nil {
		return err
	}
	proc, name, err := attach(s.Target)
	if err != nil {
		return err
	}
	defer proc.Close()

	log.Infoln("saving", name, "to", out)
	if err := process_blob.Save(proc, name, out, process.ProcessMemorySize(maxRegion)); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	log.Infoln("snapshot saved")
	return nil
}
