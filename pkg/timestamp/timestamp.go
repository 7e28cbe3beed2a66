package timestamp

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	layoutUTC       = "2006-01-02 15:04:05 UTC"
	layoutNoZone    = "2006-01-02 15:04:05"
	layoutNoSeconds = "02-01-2006 15:04"
)

var reUnix = regexp.MustCompile(`^\d*$`)

// FormatError is returned when a timestamp matches none of the known formats.
type FormatError struct {
	Text string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("couldn't parse the timestamp %q: %v", e.Text, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Range is an inclusive span of unix epochs.
type Range struct {
	From int64
	To   int64
}

// NewRange validates that from <= to.
func NewRange(from, to int64) (Range, error) {
	if from > to {
		return Range{}, fmt.Errorf("timestamp range is reversed (%d > %d)", from, to)
	}
	return Range{From: from, To: to}, nil
}

// Len is the number of epochs covered by the range.
func (r Range) Len() int64 {
	return r.To - r.From + 1
}

// Resolve turns a unix epoch or a date string into a unix epoch.
// The order of the checks matters: a bare number is always an epoch and a
// string carrying "UTC" is never tried against the other layouts.
func Resolve(text string) (int64, error) {
	if reUnix.MatchString(text) {
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return 0, &FormatError{Text: text, Err: err}
		}
		return n, nil
	}

	if strings.Contains(text, "UTC") {
		t, err := parse(layoutUTC, text)
		if err != nil {
			return 0, &FormatError{Text: text, Err: err}
		}
		return t.Unix(), nil
	}

	var errs []error
	for _, layout := range []string{time.RFC3339, layoutNoZone, layoutNoSeconds} {
		t, err := parse(layout, text)
		if err == nil {
			return t.Unix(), nil
		}
		errs = append(errs, err)
	}
	return 0, &FormatError{Text: text, Err: errors.Join(errs...)}
}

// parse reads text in layout and keeps the wall clock as UTC, dropping any
// offset and fraction. Fractional seconds are only accepted by RFC 3339.
func parse(layout, text string) (time.Time, error) {
	if layout != time.RFC3339 && strings.Contains(text, ".") {
		return time.Time{}, fmt.Errorf("unexpected fractional seconds for layout %q", layout)
	}
	t, err := time.Parse(layout, text)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
}

// ResolveRange resolves both ends of a bruteforce window.
func ResolveRange(from, to string) (Range, error) {
	f, err := Resolve(from)
	if err != nil {
		return Range{}, err
	}
	t, err := Resolve(to)
	if err != nil {
		return Range{}, err
	}
	return NewRange(f, t)
}
