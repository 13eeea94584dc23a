package alert

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient writes its arguments to a file so tests can inspect the exact
// invocation.
func fakeClient(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-signal-cli")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestSignalCLISendArguments(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args")
	bin := fakeClient(t, `echo "$@" > `+argsFile+"\n")

	s := NewSignalCLI(bin, 5*time.Second)
	err := s.Send(context.Background(), "+15550001111", "+15552223333", "motion detected")
	require.NoError(t, err)

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, "-a +15550001111 send +15552223333 -m motion detected\n", string(args))
}

func TestSignalCLISendFailure(t *testing.T) {
	bin := fakeClient(t, "echo delivery refused >&2\nexit 1\n")

	s := NewSignalCLI(bin, 5*time.Second)
	err := s.Send(context.Background(), "+1", "+2", "motion detected")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delivery refused")
}

func TestSignalCLISendTimeout(t *testing.T) {
	bin := fakeClient(t, "sleep 5\n")

	s := NewSignalCLI(bin, 100*time.Millisecond)
	start := time.Now()
	err := s.Send(context.Background(), "+1", "+2", "motion detected")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNewSignalCLIDefaultBinary(t *testing.T) {
	s := NewSignalCLI("", time.Second)
	assert.Equal(t, "signal-cli", s.Binary)
}
