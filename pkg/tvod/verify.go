package tvod

import (
	"context"

	"github.com/tortlewortle/vodrecover/pkg/cdn"
)

// ReturnURL is a playlist URL confirmed to be reachable.
type ReturnURL struct {
	URL   string
	Muted bool
}

// Verify re-checks a confirmed hash on every CDN, since Twitch mirrors a VOD on
// several of them. The result follows the set's sorted order and is empty when
// no CDN answers right now.
func (p *Prober) Verify(ctx context.Context, hash, username string, broadcastID, epoch int64, cdns cdn.Set) ([]ReturnURL, error) {
	hosts := cdns.Hosts()
	urls := make([]string, len(hosts))
	for i, host := range hosts {
		urls[i] = PlaylistURL(host, hash, username, broadcastID, epoch)
	}

	live, _, err := p.All(ctx, urls)
	if err != nil {
		return nil, err
	}
	valid := make([]ReturnURL, 0, len(live))
	for _, url := range live {
		valid = append(valid, ReturnURL{URL: url})
	}
	return valid, nil
}
