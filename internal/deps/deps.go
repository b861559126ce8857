// Package deps reports the availability of the external binaries Bulwark
// shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"bulwark/internal/config"
)

// Requirement defines an external dependency Bulwark relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements builds the dependency list for the given config. Git is only
// required when repositories are configured for pre-run commits.
func Requirements(cfg *config.Config) []Requirement {
	requirements := []Requirement{
		{
			Name:        "7-Zip",
			Command:     cfg.SevenZipBinary(),
			Description: "Required for creating and verifying split archives",
		},
		{
			Name:        "par2",
			Command:     cfg.Par2Binary(),
			Description: "Required for building recovery volumes",
		},
	}
	if len(cfg.Git.Repos) > 0 {
		requirements = append(requirements, Requirement{
			Name:        "Git",
			Command:     cfg.GitBinary(),
			Description: "Required for committing tracked directories before runs",
		})
	}
	return requirements
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
