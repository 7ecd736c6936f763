package models

import "errors"

var (
	ErrMissingId      = errors.New("solicitation id is required")
	ErrNoSolicitation = errors.New("requested solicitation does not exist")
	ErrNoUser         = errors.New("requested user does not exist")
)
