package repository

import (
	"github.com/homesteadmarket/homestead/internal/domain"
)

// storageError classifies a storage fault as a retryable dependency
// failure. The gorm cause stays wrapped for logs; the presenter never
// serializes it.
func storageError(op string, err error) error {
	return domain.DependencyFailureError{Op: op, Cause: err}
}
