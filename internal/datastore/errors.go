package datastore

import (
	"database/sql"
	"errors"
)

// ErrVersionConflict is returned by versioned updates when the row changed
// since it was read.
var ErrVersionConflict = errors.New("version conflict")

var ErrActivityTaken = errors.New("activity id belongs to another user")

func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
