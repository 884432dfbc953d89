package domain

import "errors"

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrRemoteDisabled  = errors.New("remote store not configured")
)
