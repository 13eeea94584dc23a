// Package health provides startup checks for the agent's external
// collaborators: the capture device node and the messaging transport binary.
package health

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// CheckResult carries the outcome of one collaborator check.
type CheckResult struct {
	OK          bool
	Detail      string
	Error       string
	LastChecked string
}

// Checker verifies external collaborators before the agent starts watching.
type Checker struct {
	timeout time.Duration
}

func NewChecker(timeout time.Duration) *Checker {
	return &Checker{timeout: timeout}
}

// CheckDevice verifies the capture device node exists and is a character
// device.
func (c *Checker) CheckDevice(path string) CheckResult {
	result := CheckResult{LastChecked: time.Now().Format(time.RFC3339)}

	info, err := os.Stat(path)
	if err != nil {
		result.Error = fmt.Sprintf("stat %s: %v", path, err)
		return result
	}
	if info.Mode()&os.ModeCharDevice == 0 {
		result.Error = fmt.Sprintf("%s is not a character device", path)
		return result
	}

	result.OK = true
	result.Detail = path
	return result
}

// CheckTransport verifies the messaging client binary is on PATH and
// responds to a version probe within the timeout.
func (c *Checker) CheckTransport(binary string) CheckResult {
	result := CheckResult{LastChecked: time.Now().Format(time.RFC3339)}

	path, err := exec.LookPath(binary)
	if err != nil {
		result.Error = fmt.Sprintf("%s not found on PATH", binary)
		return result
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "--version").CombinedOutput()
	if err != nil {
		result.Error = fmt.Sprintf("%s --version: %v", binary, err)
		return result
	}

	result.OK = true
	result.Detail = strings.TrimSpace(string(out))
	return result
}
