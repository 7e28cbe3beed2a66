package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/cheggaaa/pb/v3"
	"go.uber.org/ratelimit"

	"github.com/tortlewortle/vodrecover/pkg/playlist"
	"github.com/tortlewortle/vodrecover/pkg/tvod"
)

// progress returns a bar that grows as batches are announced, or nil when the
// progress bar is off.
func (a *app) progress() *pb.ProgressBar {
	if !a.opts.progress {
		return nil
	}
	return pb.StartNew(0)
}

func finish(bar *pb.ProgressBar) {
	if bar != nil {
		bar.Finish()
	}
}

func (a *app) prober(bar *pb.ProgressBar) *tvod.Prober {
	p := tvod.NewProber(a.client, a.opts.threads)
	if a.opts.rate > 0 {
		p.Limiter = ratelimit.New(a.opts.rate)
	}
	if bar != nil {
		p.OnBatch = func(total int) { bar.SetTotal(bar.Total() + int64(total)) }
		p.OnProbe = func(tvod.Outcome) { bar.Increment() }
	}
	return p
}

func (a *app) recoverer(bar *pb.ProgressBar) *tvod.Recoverer {
	return tvod.NewRecoverer(a.prober(bar), a.cdns, tvod.NewGQL(a.client))
}

func (a *app) fixer(bar *pb.ProgressBar) *playlist.Fixer {
	f := playlist.NewFixer(a.client, a.opts.threads)
	if bar != nil {
		f.OnSegments = func(total int) { bar.SetTotal(int64(total)) }
		f.OnSegment = func() { bar.Increment() }
	}
	return f
}

func printURLs(w io.Writer, simple bool, header string, urls []tvod.ReturnURL) {
	if !simple {
		fmt.Fprintln(w, header)
	}
	for _, u := range urls {
		fmt.Fprintln(w, u.URL)
	}
}

// report prints the outcome of a discovery run. Not finding anything is a
// normal result, not an error.
func report(w io.Writer, simple bool, res tvod.Result, err error) error {
	slog.Debug("probe stats",
		slog.Int64("checked", res.Stats.Checked),
		slog.Int64("throttled", res.Stats.Throttled),
		slog.Int64("failed", res.Stats.Failed))
	switch {
	case err == nil:
		printURLs(w, simple, "Got the URL and it was available on Twitch servers. Here are the valid URLs:", res.URLs)
		return nil
	case errors.Is(err, tvod.ErrUnavailable):
		if !simple {
			fmt.Fprintln(w, "Got the URL and it was NOT available on Twitch servers :(")
			fmt.Fprintf(w, "Here's the URL for debug purposes - %s\n", res.Candidate.URL)
		}
		return nil
	case errors.Is(err, tvod.ErrNotFound):
		if !simple {
			fmt.Fprintln(w, "Couldn't find anything :(")
		}
		if res.Stats.Throttled > 0 || res.Stats.Failed > 0 {
			slog.Warn("some requests were throttled or failed, the result may be incomplete",
				slog.Int64("throttled", res.Stats.Throttled), slog.Int64("failed", res.Stats.Failed))
		}
		return nil
	}
	return err
}
