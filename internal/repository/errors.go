package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrCapacityReached is returned when the capacity re-check inside the insert transaction fails.
var ErrCapacityReached = errors.New("repository: team capacity reached")

// ErrStatusChanged is returned by a conditional update when the stored status no longer matches.
var ErrStatusChanged = errors.New("repository: team status changed")

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKey reports whether err is a unique index violation.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
