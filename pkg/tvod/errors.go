package tvod

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no candidate answered. It is an ordinary outcome.
	ErrNotFound = errors.New("couldn't find anything")
	// ErrUnavailable means a candidate answered once but no CDN confirmed it
	// on the re-check.
	ErrUnavailable = errors.New("got the URL but it was NOT available on Twitch servers")
	// ErrNotLive is returned by the live lookup for an offline channel.
	ErrNotLive = errors.New("the channel is not live")
)

// LookupError wraps a failed Twitch API lookup.
type LookupError struct {
	Op  string
	Err error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("couldn't get the info from the %s: %v", e.Op, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}
