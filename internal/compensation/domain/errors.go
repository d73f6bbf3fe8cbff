package domain

import "errors"

var (
	ErrEmptyBatch = errors.New("empty_batch")
)
