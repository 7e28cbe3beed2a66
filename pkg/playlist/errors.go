package playlist

import "fmt"

// UnsupportedHostError is returned before any request is made when the
// playlist is not hosted on Twitch or its CloudFront mirrors.
type UnsupportedHostError struct {
	URL  string
	Host string
}

func (e *UnsupportedHostError) Error() string {
	return fmt.Sprintf("only twitch.tv and cloudfront.net URLs are supported (got %q)", e.Host)
}

// InputError is a playlist URL that can't be used.
type InputError struct {
	URL    string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid playlist url %q: %s", e.URL, e.Reason)
}

// NetworkError is a failed download of the playlist or of a segment check.
type NetworkError struct {
	URL    string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("couldn't process the url %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("couldn't process the url %s: statuscode %d", e.URL, e.Status)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// FormatError is a body that isn't a media playlist.
type FormatError struct {
	URL string
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("couldn't parse the playlist %s: %v", e.URL, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
