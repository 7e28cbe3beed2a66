// Package playlist repairs Twitch VOD playlists whose segments were muted.
package playlist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/grafov/m3u8"
	"github.com/maruel/natural"
	"github.com/panjf2000/ants/v2"
)

const (
	mutedSuffix = "-muted.ts"
	// len("-unmuted.ts")
	unmutedTrim = 11
	// len(".ts")
	plainTrim = 3

	defaultConcurrency = 100
)

// Request describes one repair.
type Request struct {
	URL string
	// Output defaults to muted_{vod}.m3u8 in the working directory.
	Output string
	// Verify checks every segment over the network instead of trusting the
	// "unmuted" naming convention.
	Verify bool
}

// Fixer rewrites playlists so each segment points at a file Twitch still
// serves.
type Fixer struct {
	Client      *http.Client
	Concurrency int
	// OnSegments is called with the segment count once the playlist is parsed.
	OnSegments func(total int)
	// OnSegment is called once per resolved segment.
	OnSegment func()
}

func NewFixer(client *http.Client, concurrency int) *Fixer {
	return &Fixer{
		Client:      client,
		Concurrency: concurrency,
	}
}

// Fix downloads the playlist, resolves every segment and writes the result.
// Nothing is written unless every segment resolved.
func (f *Fixer) Fix(ctx context.Context, req Request) (string, error) {
	src, err := ParseSource(req.URL)
	if err != nil {
		return "", err
	}

	body, err := fetch(ctx, f.Client, src)
	if err != nil {
		return "", err
	}
	media, segments, err := decode(src, body)
	if err != nil {
		slog.Error("couldn't parse the playlist", slog.String("url", src.URL), slog.Any("error", err))
		return "", err
	}

	if f.OnSegments != nil {
		f.OnSegments(len(segments))
	}

	var resolved []Segment
	if req.Verify {
		resolved, err = f.resolveVerified(ctx, src, segments)
		if err != nil {
			return "", err
		}
	} else {
		resolved = f.resolvePattern(src, segments)
	}

	out, err := encode(media, resolved)
	if err != nil {
		return "", errors.Join(errors.New("encoding playlist"), err)
	}

	path := req.Output
	if path == "" {
		path = src.DefaultOutput()
	}
	if err := writeAtomic(path, out); err != nil {
		return "", errors.Join(errors.New("writing playlist"), err)
	}
	slog.Info("wrote the playlist", slog.String("path", path), slog.Int("segments", len(resolved)))
	return path, nil
}

func mutedURL(url string, trim int) string {
	if len(url) < trim {
		return url + mutedSuffix
	}
	return url[:len(url)-trim] + mutedSuffix
}

// resolvePattern swaps every "unmuted" segment for its muted twin, keeping
// order and durations.
func (f *Fixer) resolvePattern(src Source, segments []Segment) []Segment {
	base := src.BaseURL()
	resolved := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		url := base + seg.URI
		if seg.MutedHint {
			url = mutedURL(url, unmutedTrim)
			slog.Debug("found the muted version of this .ts file", slog.String("url", url))
		} else {
			slog.Debug("found the unmuted version of this .ts file", slog.String("url", url))
		}
		resolved = append(resolved, Segment{URI: url, Duration: seg.Duration, MutedHint: seg.MutedHint})
		if f.OnSegment != nil {
			f.OnSegment()
		}
	}
	return resolved
}

func (f *Fixer) concurrency(n int) int {
	c := f.Concurrency
	if c <= 0 {
		c = defaultConcurrency
	}
	return max(min(c, n), 1)
}

// resolveVerified asks the CDN about every segment. A 403 means the file we
// asked for is gone and its muted twin should be used instead.
//
// The resolved URIs are put back in natural order and paired by position with
// the original durations. That assumes natural order of the final URIs is the
// playlist order, which holds for Twitch's numeric segment names.
func (f *Fixer) resolveVerified(ctx context.Context, src Source, segments []Segment) ([]Segment, error) {
	base := src.BaseURL()
	urls := make([]string, len(segments))
	failures := make([]error, len(segments))

	pool, err := ants.NewPool(f.concurrency(len(segments)))
	if err != nil {
		return nil, errors.Join(errors.New("creating worker pool"), err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, seg := range segments {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			urls[i], failures[i] = f.check(ctx, base+seg.URI)
			if f.OnSegment != nil {
				f.OnSegment()
			}
		})
		if err != nil {
			wg.Done()
			failures[i] = err
			break
		}
	}
	wg.Wait()
	if err := errors.Join(failures...); err != nil {
		return nil, err
	}

	sort.Sort(natural.StringSlice(urls))
	resolved := make([]Segment, len(segments))
	for i, seg := range segments {
		resolved[i] = Segment{URI: urls[i], Duration: seg.Duration, MutedHint: strings.HasSuffix(urls[i], mutedSuffix)}
		slog.Debug("added this .ts file", slog.String("url", urls[i]))
	}
	return resolved, nil
}

func (f *Fixer) check(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &InputError{URL: url, Reason: err.Error()}
	}
	res, err := f.Client.Do(req)
	if err != nil {
		return "", &NetworkError{URL: url, Err: err}
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))

	switch res.StatusCode {
	case http.StatusForbidden:
		trim := plainTrim
		if strings.Contains(url, "unmuted") {
			trim = unmutedTrim
		}
		muted := mutedURL(url, trim)
		slog.Debug("found the muted version of this .ts file", slog.String("url", muted))
		return muted, nil
	case http.StatusOK:
		slog.Debug("found the unmuted version of this .ts file", slog.String("url", url))
	default:
		slog.Warn("unexpected status for segment, keeping it", slog.Int("status", res.StatusCode), slog.String("url", url))
	}
	return url, nil
}

// encode copies the container-level fields of src onto a new playlist holding
// segments.
func encode(src *m3u8.MediaPlaylist, segments []Segment) ([]byte, error) {
	out, err := m3u8.NewMediaPlaylist(0, uint(len(segments)))
	if err != nil {
		return nil, err
	}
	out.SetVersion(src.Version())
	out.TargetDuration = src.TargetDuration
	out.SeqNo = src.SeqNo
	out.DiscontinuitySeq = src.DiscontinuitySeq
	out.MediaType = src.MediaType
	out.Closed = src.Closed
	for _, seg := range segments {
		if err := out.Append(seg.URI, seg.Duration, ""); err != nil {
			return nil, fmt.Errorf("appending %s: %w", seg.URI, err)
		}
	}
	return out.Encode().Bytes(), nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".muted-*.m3u8")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
