//go:build cgo

package scratchpad

import (
	errors "github.com/Laisky/errors/v2"
	"github.com/mattn/go-sqlite3"
)

// isCgoCorruptionError reports whether err is a mattn/go-sqlite3 corruption error.
func isCgoCorruptionError(err error) bool {
	var cgoErr sqlite3.Error
	return errors.As(err, &cgoErr) && cgoErr.Code == sqlite3.ErrCorrupt
}
