//go:build linux

package process_linux

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Candidate is a running process found by name.
type Candidate struct {
	PID  int
	Name string
	// Via names the /proc field that matched: comm, exe or cmdline.
	Via string
}

// imageName returns the last path element of a Linux or Windows path, so
// "Z:\games\SoTGame.exe" and "/opt/SoTGame.exe" both give "SoTGame.exe".
func imageName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}

// matchProc checks one /proc/<pid> directory. Games under Wine or Proton
// run as wine64-preloader, so exe rarely matches and argv[0] carries the
// Windows image path instead.
func matchProc(dir, name string) (string, bool) {
	if comm, err := os.ReadFile(filepath.Join(dir, "comm")); err == nil {
		// the kernel truncates comm to 15 bytes; longer names match below
		if string(bytes.TrimSpace(comm)) == name {
			return "comm", true
		}
	}

	// may fail for zombies or foreign users
	if exe, err := os.Readlink(filepath.Join(dir, "exe")); err == nil && imageName(exe) == name {
		return "exe", true
	}

	if cmdline, err := os.ReadFile(filepath.Join(dir, "cmdline")); err == nil && len(cmdline) > 0 {
		argv0, _, _ := bytes.Cut(cmdline, []byte{0})
		if strings.EqualFold(imageName(string(argv0)), name) {
			return "cmdline", true
		}
	}
	return "", false
}

// ListByName returns every process whose comm, exe basename or argv[0]
// image name equals name, ordered by pid.
func ListByName(name string) ([]*Candidate, error) {
	if name == "" {
		return nil, errors.New("empty process name")
	}

	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, fmt.Errorf("read /proc: %w", err)
	}

	self := os.Getpid()
	var out []*Candidate
	for _, e := range entries {
		pid, err := strconv.Atoi(e.Name())
		if err != nil || !e.IsDir() || pid <= 0 || pid == self {
			continue
		}
		if via, ok := matchProc(filepath.Join("/proc", e.Name()), name); ok {
			out = append(out, &Candidate{PID: pid, Name: name, Via: via})
		}
	}

	slices.SortFunc(out, func(a, b *Candidate) int { return a.PID - b.PID })
	return out, nil
}

// OneByName returns the lowest-pid match for name, or an error wrapping
// os.ErrNotExist if there is none.
func OneByName(name string) (*Candidate, error) {
	ps, err := ListByName(name)
	if err != nil {
		return nil, err
	}
	if len(ps) == 0 {
		return nil, fmt.Errorf("%s: %w", name, os.ErrNotExist)
	}
	return ps[0], nil
}
