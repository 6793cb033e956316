//go:build !cgo

package scratchpad

// isCgoCorruptionError always reports false without cgo: the mattn/go-sqlite3
// driver cannot open connections, so its error type never occurs.
func isCgoCorruptionError(err error) bool {
	return false
}
