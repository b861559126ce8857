// Package volume inspects the filesystem holding the backup root before runs
// write to it. It answers three questions: is the path a real mountpoint, how
// much space is left, and can the current user actually read and write there.
package volume

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/moby/sys/mountinfo"
	"golang.org/x/sys/unix"
)

// Usage describes capacity on the filesystem containing a path.
type Usage struct {
	TotalBytes uint64
	FreeBytes  uint64
}

// FreeRatio returns the free fraction of the filesystem in [0, 1].
func (u Usage) FreeRatio() float64 {
	if u.TotalBytes == 0 {
		return 0
	}
	return float64(u.FreeBytes) / float64(u.TotalBytes)
}

// String renders the usage the way logs and status output present it.
func (u Usage) String() string {
	return fmt.Sprintf("%s free of %s (%.0f%%)",
		humanize.IBytes(u.FreeBytes), humanize.IBytes(u.TotalBytes), u.FreeRatio()*100)
}

// Stat reports disk usage for the filesystem containing path. FreeBytes
// counts blocks available to unprivileged users, matching df.
func Stat(path string) (Usage, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Usage{}, fmt.Errorf("statfs %q: %w", path, err)
	}
	blockSize := uint64(stat.Bsize)
	return Usage{
		TotalBytes: stat.Blocks * blockSize,
		FreeBytes:  stat.Bavail * blockSize,
	}, nil
}

// IsMountpoint reports whether path appears in the mount table, along with
// the filesystem type when it does. The mount table is read from
// /proc/self/mountinfo so the path itself is never touched and a dead mount
// cannot hang the check.
func IsMountpoint(path string) (bool, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, "", fmt.Errorf("resolve absolute path for %q: %w", path, err)
	}
	infos, err := mountinfo.GetMounts(mountinfo.SingleEntryFilter(abs))
	if err != nil {
		return false, "", fmt.Errorf("read mount table: %w", err)
	}
	if len(infos) == 0 {
		return false, "", nil
	}
	return true, infos[len(infos)-1].FSType, nil
}
