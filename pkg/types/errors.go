package types

import "errors"

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrPujaNotFound       = errors.New("puja not found")
)
