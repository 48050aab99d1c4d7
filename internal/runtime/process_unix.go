//go:build unix

package runtime

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// startGroup puts the task in its own process group so that an interrupt
// reaches everything it spawned, including commands run through sh -c.
func startGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func interruptGroup(p *os.Process) error {
	err := syscall.Kill(-p.Pid, syscall.SIGINT)
	if errors.Is(err, syscall.ESRCH) {
		return os.ErrProcessDone
	}
	return err
}

// reapGroup waits until every member of the group led by p has exited or
// the deadline passes, then kills whatever is left.
func reapGroup(p *os.Process, deadline time.Time) {
	for time.Now().Before(deadline) {
		if !groupAlive(p.Pid) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	syscall.Kill(-p.Pid, syscall.SIGKILL)
}

func groupAlive(pgid int) bool {
	return syscall.Kill(-pgid, 0) == nil
}
