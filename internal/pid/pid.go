package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"codeberg.org/mutker/framectl/internal/errors"
)

const (
	pidFile = "framectl.pid"
	runDir  = "/run"
)

// path prefers /run, which is where a root daemon's PID file belongs,
// and falls back to the temp directory for unprivileged runs.
func path() string {
	if info, err := os.Stat(runDir); err == nil && info.IsDir() {
		probe := filepath.Join(runDir, pidFile+".probe")
		if f, err := os.OpenFile(probe, os.O_CREATE|os.O_WRONLY, 0o600); err == nil {
			f.Close()
			os.Remove(probe)
			return filepath.Join(runDir, pidFile)
		}
	}

	return filepath.Join(os.TempDir(), pidFile)
}

// Write records the current process ID, refusing to start when another
// live process already holds the file.
func Write() error {
	errFactory := errors.New()
	p := path()

	if bytes, err := os.ReadFile(p); err == nil {
		if existing, err := strconv.Atoi(string(bytes)); err == nil {
			if alive(existing) {
				return errFactory.WithData(errors.ErrAlreadyRunning, existing)
			}
		}
		// Stale file from a crashed run; overwrite it.
	}

	if err := os.WriteFile(p, []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

// Remove deletes the PID file.
func Remove() error {
	errFactory := errors.New()
	p := path()

	if _, err := os.Stat(p); os.IsNotExist(err) {
		return nil
	}

	if err := os.Remove(p); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

func alive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	return process.Signal(syscall.Signal(0)) == nil
}
