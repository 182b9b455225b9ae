package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gosight/config"
	"gosight/inspect"
	"gosight/process"
	"gosight/process_blob"
	"gosight/remote"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "look at raw memory while working on a layout",
	}
	cmd.PersistentFlags().String("from", "", "read from a snapshot directory instead of a live process")
	cmd.PersistentFlags().String("addr", "", "address to start at (hex)")
	cmd.AddCommand(newDumpCmd(), newFindCmd())
	return cmd
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "hex dump memory, listing qwords that point into mapped memory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			size, _ := cmd.Flags().GetInt("size")
			proc, addr, err := openInspect(cmd)
			if err != nil {
				return err
			}
			defer proc.Close()

			data, err := proc.ReadMemory(addr, process.ProcessMemorySize(size))
			if err != nil {
				return err
			}
			inspect.Dump(os.Stdout, data, inspect.DumpOptions{
				Base:    addr,
				Pointer: proc.IsValidAddress,
				Color:   isatty.IsTerminal(os.Stdout.Fd()),
			})
			return nil
		},
	}
	targetFlags(cmd)
	cmd.Flags().Int("size", 256, "number of bytes")
	return cmd
}

func newFindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find",
		Short: "find offset paths from an object to a known value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			depth, _ := cmd.Flags().GetInt("depth")
			size, _ := cmd.Flags().GetUint64("struct-size")

			match, err := matcherFromFlags(cmd)
			if err != nil {
				return err
			}
			proc, addr, err := openInspect(cmd)
			if err != nil {
				return err
			}
			defer proc.Close()

			paths, err := inspect.FindPaths(proc, proc.IsValidAddress, addr, match,
				inspect.WithDepth(depth), inspect.WithStructSize(size))
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Println(p)
			}
			log.Infoln(len(paths), "paths")
			return nil
		},
	}
	targetFlags(cmd)
	cmd.Flags().String("int32", "", "look for this int32, such as a name id")
	cmd.Flags().String("vector", "", "look for this location, as x,y,z")
	cmd.Flags().Float32("tolerance", 0.5, "per-axis tolerance for --vector")
	cmd.Flags().Int("depth", 2, "pointers to follow")
	cmd.Flags().Uint64("struct-size", 0x400, "bytes searched per object")
	return cmd
}

func matcherFromFlags(cmd *cobra.Command) (inspect.Matcher, error) {
	i32, _ := cmd.Flags().GetString("int32")
	vec, _ := cmd.Flags().GetString("vector")
	tol, _ := cmd.Flags().GetFloat32("tolerance")

	switch {
	case i32 != "" && vec != "":
		return nil, errors.New("give --int32 or --vector, not both")
	case i32 != "":
		v, err := strconv.ParseInt(i32, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("--int32: %w", err)
		}
		return inspect.Value(int32(v)), nil
	case vec != "":
		v, err := parseVector(vec)
		if err != nil {
			return nil, err
		}
		return inspect.VectorNear(v, tol), nil
	default:
		return nil, errors.New("one of --int32 or --vector is required")
	}
}

func parseVector(s string) (remote.FVector, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return remote.FVector{}, fmt.Errorf("vector %q: want x,y,z", s)
	}
	var xyz [3]float32
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return remote.FVector{}, fmt.Errorf("vector %q: %w", s, err)
		}
		xyz[i] = float32(f)
	}
	return remote.FVector{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

// openInspect opens the snapshot or live process named by the flags and
// parses --addr.
func openInspect(cmd *cobra.Command) (process.Process, process.ProcessMemoryAddress, error) {
	from, _ := cmd.Flags().GetString("from")
	rawAddr, _ := cmd.Flags().GetString("addr")

	v, err := strconv.ParseUint(strings.TrimPrefix(rawAddr, "0x"), 16, 64)
	if err != nil {
		return nil, 0, fmt.Errorf("--addr %q: %w", rawAddr, err)
	}
	addr := process.ProcessMemoryAddress(v)

	if from != "" {
		img, err := process_blob.Load(from)
		if err != nil {
			return nil, 0, fmt.Errorf("loading snapshot: %w", err)
		}
		return img, addr, nil
	}

	s, err := config.Current()
	if err != nil {
		return nil, 0, err
	}
	proc, _, err := attach(s.Target)
	if err != nil {
		return nil, 0, err
	}
	return proc, addr, nil
}
