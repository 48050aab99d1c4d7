//go:build !unix

package runtime

import (
	"os"
	"os/exec"
	"time"
)

func startGroup(*exec.Cmd) {}

func interruptGroup(p *os.Process) error {
	return p.Signal(os.Interrupt)
}

func reapGroup(*os.Process, time.Time) {}
