package model

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrUnknownPerson        = errors.New("unknown person")
	ErrUnknownFamily        = errors.New("unknown family")
	ErrRoleTaken            = errors.New("family role already taken")
	ErrReferentialIntegrity = errors.New("referential integrity violation")
)
