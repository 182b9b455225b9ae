package main

import (
	"fmt"

	"gosight/config"
	"gosight/process"
	"gosight/process_linux"
)

// attach opens the configured target, looking it up by name when no pid is
// given. It returns the process and the name it is known by.
func attach(t config.Target) (process.Process, string, error) {
	pid, name := t.PID, t.Process
	if pid == 0 {
		c, err := process_linux.OneByName(t.Process)
		if err != nil {
			return nil, "", fmt.Errorf("finding %s: %w", t.Process, err)
		}
		pid, name = c.PID, c.Name
		log.Infoln("found", name, "pid", pid, "via", c.Via)
	}
	if name == "" {
		name = fmt.Sprintf("pid-%d", pid)
	}

	proc, err := process_linux.NewWithPID(process.ProcessID(pid))
	if err != nil {
		return nil, "", fmt.Errorf("attaching to %d: %w", pid, err)
	}
	return proc, name, nil
}
