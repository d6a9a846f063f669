//go:build !unix

package ioactor

// semaphoreLimit falls back to the default on platforms without an
// rlimit concept (e.g. Windows).
func semaphoreLimit() int {
	return defaultSemaphoreLimit
}
