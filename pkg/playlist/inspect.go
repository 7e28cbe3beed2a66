package playlist

import (
	"context"
	"net/http"
	"time"
)

// Summary describes a VOD playlist.
type Summary struct {
	Source   Source
	Segments int
	// Unmuted counts segments whose URI names the unmuted variant.
	Unmuted  int
	Duration time.Duration
	Closed   bool
}

// Inspect downloads a playlist and summarizes it.
func Inspect(ctx context.Context, client *http.Client, url string) (Summary, error) {
	src, err := ParseSource(url)
	if err != nil {
		return Summary{}, err
	}
	body, err := fetch(ctx, client, src)
	if err != nil {
		return Summary{}, err
	}
	media, segments, err := decode(src, body)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{Source: src, Segments: len(segments), Closed: media.Closed}
	var total float64
	for _, seg := range segments {
		total += seg.Duration
		if seg.MutedHint {
			s.Unmuted++
		}
	}
	s.Duration = time.Duration(total * float64(time.Second))
	return s, nil
}
