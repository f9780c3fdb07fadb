//go:build acceptance

package acceptance

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// The shim only ever reads these paths.
const (
	shimConfigPath = "/tmp/lost_write.cfg"
	shimLogPath    = "/tmp/lost_write.log"
)

func lostwriteBin(t *testing.T) string {
	t.Helper()
	if bin := os.Getenv("LOSTWRITE_BIN"); bin != "" {
		return bin
	}
	return "lostwrite"
}

// preloadLib returns the path of the built lost_write.so, skipping the test
// when it is not available.
func preloadLib(t *testing.T) string {
	t.Helper()
	lib := os.Getenv("LOSTWRITE_PRELOAD")
	if lib == "" {
		t.Skip("LOSTWRITE_PRELOAD not set")
	}
	abs, err := filepath.Abs(lib)
	require.NoError(t, err)
	return abs
}

func runCLI(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	return run(t, nil, lostwriteBin(t), args...)
}

func run(t *testing.T, env []string, bin string, args ...string) (string, string, int) {
	t.Helper()
	cmd := exec.Command(bin, args...)
	cmd.Env = append(os.Environ(), env...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			t.Fatalf("failed to run %s %v: %v", bin, args, err)
		}
	}
	return stdout.String(), stderr.String(), exitCode
}

func runWithTimeout(t *testing.T, timeout time.Duration, env []string, bin string, args ...string) (string, string, int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Env = append(os.Environ(), env...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		t.Fatalf("%s %v did not finish within %s", bin, args, timeout)
	}
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			t.Fatalf("failed to run %s %v: %v", bin, args, err)
		}
	}
	return stdout.String(), stderr.String(), exitCode
}

// preserve moves an existing file out of the way for the duration of the
// test and puts it back afterwards.
func preserve(t *testing.T, path string) {
	t.Helper()
	backup := path + ".acceptance-backup"
	if err := os.Rename(path, backup); err != nil {
		require.ErrorIs(t, err, os.ErrNotExist)
		t.Cleanup(func() { os.Remove(path) })
		return
	}
	t.Cleanup(func() {
		os.Remove(path)
		os.Rename(backup, path)
	})
}

// shimFiles gives the test exclusive use of the shim's rule file and log.
func shimFiles(t *testing.T) {
	t.Helper()
	preserve(t, shimConfigPath)
	preserve(t, shimLogPath)
}

func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}
