// Package camera provides V4L2 device enumeration and a capture stream
// abstraction over a single open device.
package camera

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// Device is one enumerated camera with its candidate device nodes.
type Device struct {
	Name  string
	Paths []string
}

// ListDevices enumerates cameras via the v4l2-ctl command-line utility. An
// empty list (tool missing, no hardware) is returned without error; the
// caller decides whether that is fatal.
func ListDevices() []Device {
	out, err := exec.Command("v4l2-ctl", "--list-devices").CombinedOutput()
	if err != nil && len(out) == 0 {
		log.Warn().Err(err).Msg("v4l2-ctl enumeration failed")
		return nil
	}
	return parseDeviceList(string(out))
}

// parseDeviceList parses `v4l2-ctl --list-devices` output: blank-line
// separated blocks of a device title line followed by indented node paths.
// Blocks without video nodes are skipped.
func parseDeviceList(out string) []Device {
	var devices []Device
	for _, block := range strings.Split(out, "\n\n") {
		if !strings.Contains(block, "video") {
			continue
		}
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 2 {
			continue
		}
		name := strings.TrimSuffix(strings.TrimSpace(lines[0]), ":")
		var paths []string
		for _, line := range lines[1:] {
			if path := strings.TrimSpace(line); path != "" {
				paths = append(paths, path)
			}
		}
		if len(paths) == 0 {
			continue
		}
		devices = append(devices, Device{Name: name, Paths: paths})
	}
	return devices
}

// SelectDevice picks a device from the enumerated list: a single device is
// selected automatically, multiple devices prompt on in/out (normally the
// terminal) for a numeric choice.
func SelectDevice(devices []Device, in io.Reader, out io.Writer) (Device, error) {
	switch len(devices) {
	case 0:
		return Device{}, fmt.Errorf("no camera devices found")
	case 1:
		return devices[0], nil
	}

	fmt.Fprintln(out, "available camera devices:")
	for i, dev := range devices {
		fmt.Fprintf(out, "%d: %s\n", i, dev.Name)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "enter the number of the camera device to use [0-%d]: ", len(devices)-1)
		if !scanner.Scan() {
			return Device{}, fmt.Errorf("no device selected")
		}
		var idx int
		if _, err := fmt.Sscanf(strings.TrimSpace(scanner.Text()), "%d", &idx); err != nil || idx < 0 || idx >= len(devices) {
			fmt.Fprintf(out, "invalid selection, enter a number between 0 and %d\n", len(devices)-1)
			continue
		}
		return devices[idx], nil
	}
}
