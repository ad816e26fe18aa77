//go:build linux

package platform

import (
	"fmt"
	"os"

	"github.com/prometheus/procfs"
)

type procfsInfo struct {
	fs procfs.FS
}

// NewProcessInfo reads process credentials from /proc.
func NewProcessInfo() (ProcessInfo, error) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return nil, fmt.Errorf("failed to open procfs: %w", err)
	}
	return procfsInfo{fs: fs}, nil
}

func (p procfsInfo) EffectiveUID(pid int) (uint64, error) {
	proc, err := p.fs.Proc(pid)
	if err != nil {
		return 0, fmt.Errorf("failed to open process %d: %w", pid, err)
	}
	status, err := proc.NewStatus()
	if err != nil {
		return 0, fmt.Errorf("failed to read status of process %d: %w", pid, err)
	}
	// Real, effective, saved set, filesystem.
	return status.UIDs[1], nil
}

func (procfsInfo) SelfEffectiveUID() uint64 {
	return uint64(os.Geteuid())
}
