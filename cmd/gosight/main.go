package main

import (
	"fmt"
	"os"

	"gosight/config"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "gosight",
		Short:         "read a running game's memory and preview what an overlay would draw",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.Load(configFile)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	flags.String("layout", "", "layout file overriding the built-in offsets")
	flags.String("renderer", config.RendererAuto, "auto, term or headless")
	flags.Bool("debug", false, "label nearby entities with their raw names")
	bind(flags, map[string]string{
		"layout":   "layout",
		"renderer": "renderer",
		"debug":    "scan.debug",
	})

	rootCmd.AddCommand(newRunCmd(), newReplayCmd(), newSnapshotCmd(), newLayoutCmd(), newInspectCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// bind makes viper read config keys from flags when they are set.
func bind(flags *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding --%s: %v", name, err))
		}
	}
}

// bindOnRun defers binding until cmd is the one running; several commands
// share config keys and viper keeps only the last binding.
func bindOnRun(cmd *cobra.Command, keys map[string]string) {
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		bind(cmd.Flags(), keys)
	}
}

// targetFlags adds the attach flags shared by run and snapshot.
func targetFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("pid", 0, "process id to attach to")
	f.String("process", "", "process name to look up when --pid is not given")
	f.String("base", "", "image base address (hex)")
	bindOnRun(cmd, map[string]string{
		"pid":     "target.pid",
		"process": "target.process",
		"base":    "target.base",
	})
}
