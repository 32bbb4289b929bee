//go:build unix

package execx

import (
	"os/exec"
	"syscall"
)

// detach places the child in its own process group so terminal signals
// aimed at devrun (Ctrl-C on the next foreground run) do not reach a
// background tool.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
