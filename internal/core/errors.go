package core

import "errors"

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrRoomNotFound       = errors.New("room not found")
	ErrPeerUnreachable    = errors.New("peer unreachable")
	ErrDurableWriteFailed = errors.New("durable write failed")
	ErrBadRequest         = errors.New("bad request")
	ErrConflict           = errors.New("conflict")
	ErrRateLimited        = errors.New("too many requests")
)

// Error kinds as they appear on the wire.
const (
	KindUnauthorized       = "unauthorized"
	KindForbidden          = "forbidden"
	KindRoomNotFound       = "room_not_found"
	KindPeerUnreachable    = "peer_unreachable"
	KindDurableWriteFailed = "durable_write_failed"
	KindBadRequest         = "bad_request"
	KindConflict           = "conflict"
	KindRateLimited        = "rate_limited"
	KindInternal           = "internal"
)

// ErrorKind maps any error to its wire kind. Unknown errors are internal.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrRoomNotFound):
		return KindRoomNotFound
	case errors.Is(err, ErrPeerUnreachable):
		return KindPeerUnreachable
	case errors.Is(err, ErrDurableWriteFailed):
		return KindDurableWriteFailed
	case errors.Is(err, ErrBadRequest):
		return KindBadRequest
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	default:
		return KindInternal
	}
}
