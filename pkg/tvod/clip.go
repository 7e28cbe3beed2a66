package tvod

import (
	"context"
	"errors"
)

// Clips checks the clip assets of a VOD for every offset in [start, end) and
// returns all that exist.
func (r *Recoverer) Clips(ctx context.Context, vodID, start, end int64) ([]ReturnURL, Stats, error) {
	if end < start {
		return nil, Stats{}, errors.New("the end offset is before the start offset")
	}
	live, stats, err := r.Prober.All(ctx, ClipOffsets(vodID, start, end))
	if err != nil {
		return nil, stats, errors.Join(errors.New("probing clips"), err)
	}
	if len(live) == 0 {
		return nil, stats, ErrNotFound
	}
	clips := make([]ReturnURL, 0, len(live))
	for _, url := range live {
		clips = append(clips, ReturnURL{URL: url})
	}
	return clips, stats, nil
}
