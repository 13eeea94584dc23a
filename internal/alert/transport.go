package alert

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Transport delivers one message synchronously and reports success or
// failure. Any command-line or native messaging client satisfying this
// contract can back the dispatcher.
type Transport interface {
	Send(ctx context.Context, sender, recipient, message string) error
}

// SignalCLI delivers messages through the signal-cli command-line client.
type SignalCLI struct {
	// Binary is the client executable, "signal-cli" by default.
	Binary  string
	Timeout time.Duration
}

func NewSignalCLI(binary string, timeout time.Duration) *SignalCLI {
	if binary == "" {
		binary = "signal-cli"
	}
	return &SignalCLI{Binary: binary, Timeout: timeout}
}

// Send invokes `signal-cli -a <sender> send <recipient> -m <message>` and
// waits for it to exit. A non-zero exit or timeout is a transport error
// carrying the client's combined output.
func (s *SignalCLI) Send(ctx context.Context, sender, recipient, message string) error {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, s.Binary, "-a", sender, "send", recipient, "-m", message)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", s.Binary, err, strings.TrimSpace(string(out)))
	}
	return nil
}
