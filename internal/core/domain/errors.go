package domain

import "errors"

// Synchronizer outcomes. Every remote failure is converted into one of these
// before it leaves the synchronizer.
var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrAlreadyFavourited = errors.New("item is already favourited")
	ErrDuplicateRecord   = errors.New("duplicate favourite record")
	ErrInconsistentState = errors.New("favourites index is inconsistent")
	ErrToggleInProgress  = errors.New("toggle already in progress for item")
	ErrRemoteWriteFailed = errors.New("remote favourites write failed")
	ErrRemoteReadFailed  = errors.New("remote favourites read failed")
)

// Store and content errors.
var (
	ErrRecordNotFound   = errors.New("favourite record not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrMalformedRecord  = errors.New("malformed favourite record")
	ErrInvalidItem      = errors.New("invalid item")
	ErrItemNotFound     = errors.New("item not found")
	ErrUnknownItemKind  = errors.New("unknown item kind")
	ErrContentFetch     = errors.New("content source fetch failed")
)

// IsBenign reports outcomes the UI shows as a notice rather than an error.
func IsBenign(err error) bool {
	return errors.Is(err, ErrAlreadyFavourited) || errors.Is(err, ErrDuplicateRecord)
}

// IsRetryable reports failures the user may retry with a new intent.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRemoteWriteFailed) || errors.Is(err, ErrRemoteReadFailed)
}
