package core

import "errors"

// Error codes
const (
	CodeDuplicateName    = "DUPLICATE_NAME"
	CodeSamePlayer       = "SAME_PLAYER"
	CodeUnknownPlayer    = "UNKNOWN_PLAYER"
	CodePlayerNotFound   = "PLAYER_NOT_FOUND"
	CodeMatchNotFound    = "MATCH_NOT_FOUND"
	CodePlayerHasHistory = "PLAYER_HAS_HISTORY"
	CodeConsistency      = "CONSISTENCY_FAULT"
	CodeRateLimit        = "RATE_LIMIT_EXCEEDED"
	CodeInvalidContent   = "INVALID_CONTENT_TYPE"
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeInternalError    = "INTERNAL_ERROR"
)

// Sentinel errors for registry/ledger operations. Handlers map these to
// HTTP statuses and wire codes. Validation and not-found errors are
// rejected before any mutation; ErrConsistency marks a replay invariant
// violation and aborts the whole operation without persisting.
var (
	ErrInvalidName      = errors.New("player name is empty or invalid")
	ErrInvalidScore     = errors.New("winner score must exceed loser score")
	ErrDuplicateName    = errors.New("player name already exists")
	ErrSamePlayer       = errors.New("match requires two distinct players")
	ErrUnknownPlayer    = errors.New("unknown player reference")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrMatchNotFound    = errors.New("match not found")
	ErrPlayerHasHistory = errors.New("player has recorded matches")
	ErrConsistency      = errors.New("replay consistency violation")
)

// ErrorCode translates a service error into its wire code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidName), errors.Is(err, ErrInvalidScore):
		return CodeInvalidRequest
	case errors.Is(err, ErrDuplicateName):
		return CodeDuplicateName
	case errors.Is(err, ErrSamePlayer):
		return CodeSamePlayer
	case errors.Is(err, ErrUnknownPlayer):
		return CodeUnknownPlayer
	case errors.Is(err, ErrPlayerNotFound):
		return CodePlayerNotFound
	case errors.Is(err, ErrMatchNotFound):
		return CodeMatchNotFound
	case errors.Is(err, ErrPlayerHasHistory):
		return CodePlayerHasHistory
	case errors.Is(err, ErrConsistency):
		return CodeConsistency
	default:
		return CodeInternalError
	}
}
