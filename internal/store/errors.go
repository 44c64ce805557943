package store

import "errors"

var (
	// ErrEmailConflict is returned when a profile email already exists
	ErrEmailConflict = errors.New("email already registered")

	// ErrConceptNotFound is returned by ReorderConcepts when an ID in the
	// requested order does not exist (0 rows updated).
	ErrConceptNotFound = errors.New("concept not found")

	// ErrInviteAlreadyAccepted is returned by MarkAdminInviteAccepted when
	// the invite was already consumed by a concurrent request (0 rows updated).
	ErrInviteAlreadyAccepted = errors.New("invite already accepted")
)
