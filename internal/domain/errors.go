package domain

import "errors"

var (
	// ErrValidation covers malformed or missing input: empty message
	// bodies, self-connection attempts, unknown roles.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized means the actor may not perform the operation,
	// e.g. a non-responder resolving a connection request.
	ErrUnauthorized = errors.New("not authorized")

	// ErrInvalidState means the entity is not in the state the
	// operation requires, e.g. responding to a resolved connection.
	ErrInvalidState = errors.New("invalid state")

	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned on uniqueness violations: a second
	// connection between the same pair, a duplicate account.
	ErrAlreadyExists = errors.New("already exists")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenRevoked       = errors.New("token has been revoked")
)
