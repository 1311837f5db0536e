package domain

import "errors"

// Request-scoped failures. Handlers map these to *-error events sent back to
// the originating connection only; none of them mutates shared state.
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrInvalidPassword     = errors.New("invalid password")
	ErrNotOwner            = errors.New("only the room owner can do this")
	ErrSelfTargetForbidden = errors.New("cannot target yourself")
	ErrTargetNotFound      = errors.New("target participant not found")
	ErrNotInRoom           = errors.New("not connected to a room")
)
