//go:build !windows

package audio

import (
	"os"
	"os/exec"
	"syscall"
)

// detach puts the child in its own process group so a Ctrl+C in the
// terminal does not reach it before we stop it ourselves.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func interrupt(p *os.Process) error {
	return p.Signal(os.Interrupt)
}

func alive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return p.Signal(syscall.Signal(0)) == nil
}
