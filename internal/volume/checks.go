package volume

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"bulwark/internal/config"
)

// Result reports the outcome of a single volume check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all volume checks for the given config. The runner and the
// status command share this list so the two never disagree about what makes
// the backup target usable.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Backup root", cfg.Paths.BackupRoot))
	if cfg.Paths.RequireMounted {
		results = append(results, CheckMountpoint("Backup mount", cfg.Paths.BackupRoot))
	}
	results = append(results, CheckUsage("Backup volume", cfg.Paths.BackupRoot))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))

	return results
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckMountpoint verifies that the path is covered by a mount table entry.
// A backup root on an unmounted path means archives would land on the host
// disk behind the mountpoint, so runs refuse to proceed when this fails.
func CheckMountpoint(name, path string) Result {
	mounted, fstype, err := IsMountpoint(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if !mounted {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not a mountpoint)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, fstype)}
}

// CheckUsage reports disk usage for the filesystem holding path. The check
// is informational and only fails when the filesystem cannot be queried.
func CheckUsage(name, path string) Result {
	usage, err := Stat(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, usage)}
}
