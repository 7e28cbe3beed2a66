package playlist

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/grafov/m3u8"
)

var supportedDomains = []string{"twitch.tv", "cloudfront.net"}

// Source is a VOD playlist location split into the parts segment URIs are
// resolved against.
type Source struct {
	URL  string
	Host string
	// Dir is the storage directory, "{hash}_{username}_{id}_{epoch}" for VODs.
	Dir     string
	Quality string
}

// BaseURL is the prefix relative segment URIs are appended to.
func (s Source) BaseURL() string {
	return fmt.Sprintf("https://%s/%s/%s/", s.Host, s.Dir, s.Quality)
}

// DefaultOutput is the file name used when no output path is given.
func (s Source) DefaultOutput() string {
	return fmt.Sprintf("muted_%s.m3u8", s.Dir)
}

func supportedHost(host string) bool {
	for _, d := range supportedDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// ParseSource validates a playlist URL without touching the network.
func ParseSource(raw string) (Source, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Source{}, &InputError{URL: raw, Reason: err.Error()}
	}
	host := strings.ToLower(u.Hostname())
	if !supportedHost(host) {
		return Source{}, &UnsupportedHostError{URL: raw, Host: host}
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Source{}, &InputError{URL: raw, Reason: "expected /{vod}/{quality}/ in the path"}
	}
	return Source{
		URL:     raw,
		Host:    u.Host,
		Dir:     parts[0],
		Quality: parts[1],
	}, nil
}

// Segment is one media entry of a playlist.
type Segment struct {
	URI      string
	Duration float64
	// MutedHint is set when the URI names the unmuted variant, which Twitch
	// stops serving once a segment is muted.
	MutedHint bool
}

func fetch(ctx context.Context, client *http.Client, src Source) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, &InputError{URL: src.URL, Reason: err.Error()}
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: src.URL, Err: err}
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, &NetworkError{URL: src.URL, Status: res.StatusCode}
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &NetworkError{URL: src.URL, Err: errors.Join(errors.New("reading body"), err)}
	}
	return body, nil
}

// decode parses a media playlist and lists its segments in order.
func decode(src Source, body []byte) (*m3u8.MediaPlaylist, []Segment, error) {
	pl, listType, err := m3u8.DecodeFrom(bytes.NewReader(body), false)
	if err != nil {
		return nil, nil, &FormatError{URL: src.URL, Err: err}
	}
	media, ok := pl.(*m3u8.MediaPlaylist)
	if listType != m3u8.MEDIA || !ok {
		return nil, nil, &FormatError{URL: src.URL, Err: errors.New("expected a media playlist, got a master playlist")}
	}

	segments := make([]Segment, 0, media.Count())
	for _, seg := range media.Segments {
		if seg == nil {
			break
		}
		segments = append(segments, Segment{
			URI:       seg.URI,
			Duration:  seg.Duration,
			MutedHint: strings.Contains(seg.URI, "unmuted"),
		})
	}
	return media, segments, nil
}
