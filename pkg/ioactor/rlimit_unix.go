//go:build unix

package ioactor

import "golang.org/x/sys/unix"

// semaphoreLimit sizes the actor's concurrent-open-file semaphore from
// the process's soft NOFILE rlimit: min(100, soft/3), falling back to
// 50 if the limit cannot be read. This mirrors the teacher's
// `rlimit.getrlimit`-based sizing so the actor never starves the rest
// of the process of file descriptors under heavy batch reads.
func semaphoreLimit() int {
	var rlim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlim); err != nil {
		return defaultSemaphoreLimit
	}
	limit := int(rlim.Cur / 3)
	if limit > maxSemaphoreLimit {
		return maxSemaphoreLimit
	}
	if limit < 1 {
		return 1
	}
	return limit
}
