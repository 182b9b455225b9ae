package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"gosight/config"

	"github.com/spf13/cobra"
)

func newLayoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "validate and print the offset layout in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := config.Current()
			if err != nil {
				return err
			}
			lay, err := loadLayout(s)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "build\t%s\n", lay.Build)
			for _, e := range lay.Entries() {
				fmt.Fprintf(w, "%s\t0x%X\n", e.Name, e.Value)
			}
			return w.Flush()
		},
	}
}
