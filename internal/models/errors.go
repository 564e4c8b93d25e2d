package models

import "errors"

// Sentinel errors shared across the store and service layers. Expected
// matchmaking outcomes (room full, room disbanded) are JoinRoomResult
// values, not errors; these cover genuine lookup and invariant failures.
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomNotLive         = errors.New("room is not in a live session")
	ErrMemberNotFound      = errors.New("room membership not found")
	ErrDuplicateMembership = errors.New("user already joined this room")
	ErrAlreadyInRoom       = errors.New("user already holds an active room membership")
	ErrUserNotFound        = errors.New("user not found")
)
