package domain

import "errors"

var (
	ErrUnknownKind = errors.New("unknown_rule_kind")
)
