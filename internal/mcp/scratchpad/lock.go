package scratchpad

import (
	"context"

	errors "github.com/Laisky/errors/v2"
	"gorm.io/gorm"
)

// withWriteTx serializes writers and runs fn inside one transaction.
//
// Every row change and its paired index change go through here, so a failure
// anywhere in fn rolls both back.
func (s *Service) withWriteTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s.db == nil {
		return errors.New("db is required")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.db.WithContext(ctx).Transaction(fn)
}
