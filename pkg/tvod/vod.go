package tvod

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tortlewortle/vodrecover/pkg/cdn"
	"github.com/tortlewortle/vodrecover/pkg/timestamp"
)

// Mode is how a tracker's timestamps should be used.
type Mode int

const (
	ModeExact Mode = iota
	ModeBruteforce
)

func (m Mode) String() string {
	if m == ModeBruteforce {
		return "bruteforce"
	}
	return "exact"
}

// TrackerData is what a tracker site (TwitchTracker, StreamsCharts) tells us
// about a broadcast. End is only set for bruteforce windows.
type TrackerData struct {
	Username    string
	BroadcastID int64
	Start       string
	End         string
	Mode        Mode
}

// Result is the outcome of a discovery run.
type Result struct {
	URLs []ReturnURL
	// Candidate is the first URL that answered, set even when the re-check
	// found nothing.
	Candidate Candidate
	Stats     Stats
}

// Recoverer finds the storage URLs of a broadcast.
type Recoverer struct {
	Prober *Prober
	CDNs   cdn.Set
	GQL    *GQL
}

func NewRecoverer(prober *Prober, cdns cdn.Set, gql *GQL) *Recoverer {
	return &Recoverer{
		Prober: prober,
		CDNs:   cdns,
		GQL:    gql,
	}
}

// Exact checks a single known start time.
func (r *Recoverer) Exact(ctx context.Context, username string, broadcastID int64, stamp string) (Result, error) {
	epoch, err := timestamp.Resolve(stamp)
	if err != nil {
		return Result{}, err
	}
	return r.find(ctx, username, broadcastID, Exact(username, broadcastID, epoch, r.CDNs))
}

// Bruteforce checks every second between from and to, inclusive.
func (r *Recoverer) Bruteforce(ctx context.Context, username string, broadcastID int64, from, to string) (Result, error) {
	window, err := timestamp.ResolveRange(from, to)
	if err != nil {
		return Result{}, err
	}
	slog.Info("starting", slog.Int64("from", window.From), slog.Int64("to", window.To), slog.Int("cdns", r.CDNs.Len()))
	return r.find(ctx, username, broadcastID, Bruteforce(username, broadcastID, window, r.CDNs))
}

// FromTracker dispatches tracker data to exact or bruteforce mode.
func (r *Recoverer) FromTracker(ctx context.Context, data TrackerData) (Result, error) {
	switch data.Mode {
	case ModeBruteforce:
		if data.End == "" {
			return Result{}, errors.New("couldn't get the end date for the bruteforce method")
		}
		return r.Bruteforce(ctx, data.Username, data.BroadcastID, data.Start, data.End)
	default:
		return r.Exact(ctx, data.Username, data.BroadcastID, data.Start)
	}
}

// Live looks up the channel's running stream and checks its start time.
func (r *Recoverer) Live(ctx context.Context, username string) (Result, error) {
	if r.GQL == nil {
		return Result{}, errors.New("no twitch api client configured")
	}
	id, createdAt, err := r.GQL.LiveStream(ctx, username)
	if err != nil {
		return Result{}, err
	}
	slog.Info("found the live stream", slog.Int64("id", id), slog.String("started", createdAt))
	return r.Exact(ctx, username, id, createdAt)
}

func (r *Recoverer) find(ctx context.Context, username string, broadcastID int64, candidates []Candidate) (Result, error) {
	slog.Debug("finished making urls", slog.Int("count", len(candidates)))
	hit, ok, stats, err := r.Prober.First(ctx, candidates)
	res := Result{Stats: stats}
	if err != nil {
		return res, errors.Join(errors.New("probing candidates"), err)
	}
	if !ok {
		return res, ErrNotFound
	}
	res.Candidate = hit

	urls, err := r.Prober.Verify(ctx, hit.Hash, username, broadcastID, hit.Epoch, r.CDNs)
	if err != nil {
		return res, errors.Join(errors.New("checking availability"), err)
	}
	if len(urls) == 0 {
		return res, ErrUnavailable
	}
	res.URLs = urls
	return res, nil
}
