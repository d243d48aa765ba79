package dynstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"
)

// ErrLocked is returned when another live process holds the store lock.
var ErrLocked = errors.New("store locked by another writer")

// lockInfo is the advisory lock file format. The store is a whole-file
// read-modify-write, so two concurrent writers would silently drop each
// other's records; the lock turns that race into an explicit error.
type lockInfo struct {
	Holder    string    `json:"holder"`
	PID       int       `json:"pid"`
	Hostname  string    `json:"hostname"`
	StartedAt time.Time `json:"startedAt"`
}

// Lock claims the data directory for this process and returns a release
// function. A lock left behind by a dead process on this host is treated
// as stale and reclaimed; a lock from another host is assumed live.
func (s *Store) Lock() (release func(), err error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", s.dir, err)
	}

	lockPath := s.path + ".lock"
	if data, err := os.ReadFile(lockPath); err == nil {
		var existing lockInfo
		if json.Unmarshal(data, &existing) == nil && isProcessAlive(existing.PID, existing.Hostname) {
			return nil, fmt.Errorf("%w: pid %d on %s since %s", ErrLocked,
				existing.PID, existing.Hostname, existing.StartedAt.Format(time.RFC3339))
		}
		// Stale or unparsable lock: overwrite it.
		s.logger.Warn("reclaiming stale store lock", "path", lockPath)
	}

	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("resolve hostname: %w", err)
	}

	info := lockInfo{
		Holder:    "careerintel",
		PID:       os.Getpid(),
		Hostname:  hostname,
		StartedAt: time.Now().UTC(),
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal lock: %w", err)
	}
	if err := os.WriteFile(lockPath, data, 0644); err != nil {
		return nil, fmt.Errorf("create lock %s: %w", lockPath, err)
	}

	return func() {
		if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("releasing store lock", "path", lockPath, "error", err)
		}
	}, nil
}

// isProcessAlive reports whether the lock holder still runs. Remote hosts
// cannot be probed, so their locks are assumed live.
func isProcessAlive(pid int, hostname string) bool {
	currentHost, err := os.Hostname()
	if err != nil {
		return true
	}
	if !strings.EqualFold(hostname, currentHost) {
		return true
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// Signal 0 probes for existence without delivering anything. EPERM
	// means the process exists under another user.
	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	return errors.Is(err, syscall.EPERM)
}
