package models

import "errors"

// Store-level sentinels. Repositories return these; services translate them.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)
