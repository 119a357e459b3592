// Package dbctx bounds individual store calls with a deadline.
package dbctx

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Scope returns db bound to ctx, limited to timeout when it is positive.
// The returned cancel func must be called once the statement has finished.
func Scope(ctx context.Context, db *gorm.DB, timeout time.Duration) (*gorm.DB, context.CancelFunc) {
	if timeout <= 0 {
		return db.WithContext(ctx), func() {}
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return db.WithContext(ctx), cancel
}
