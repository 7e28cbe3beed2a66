package tvod

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/ratelimit"

	"github.com/tortlewortle/vodrecover/pkg/cdn"
	"github.com/tortlewortle/vodrecover/pkg/timestamp"
)

func TestClassify(t *testing.T) {
	tests := map[int]Outcome{
		http.StatusOK:                  Hit,
		http.StatusForbidden:           Miss,
		http.StatusNotFound:            Miss,
		http.StatusTooManyRequests:     Throttled,
		http.StatusServiceUnavailable:  Throttled,
		http.StatusInternalServerError: Throttled,
		http.StatusMovedPermanently:    Throttled,
	}
	for status, want := range tests {
		assert.Equal(t, want, Classify(status), "status %d", status)
	}
}

func TestFirstNotFoundChecksEverything(t *testing.T) {
	fake := newFakeTwitch(http.StatusForbidden)
	set := cdn.Compile("")
	r, err := timestamp.NewRange(100, 104)
	require.NoError(t, err)
	candidates := Bruteforce("nobody", 1, r, set)

	var seen atomic.Int64
	p := NewProber(fake.client(), 8)
	p.OnProbe = func(Outcome) { seen.Add(1) }

	_, ok, stats, err := p.First(context.Background(), candidates)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.EqualValues(t, 5*set.Len(), stats.Checked)
	assert.EqualValues(t, 5*set.Len(), stats.Misses)
	assert.Equal(t, 5*set.Len(), fake.count())
	assert.EqualValues(t, 5*set.Len(), seen.Load())
}

func TestFirstFindsHit(t *testing.T) {
	set := cdn.NewSet("a.cloudfront.net", "b.cloudfront.net")
	r, _ := timestamp.NewRange(1622854200, 1622854230)
	want := PlaylistURL("b.cloudfront.net", Hash("dansgaming", 42218705421, 1622854217), "dansgaming", 42218705421, 1622854217)
	fake := newFakeTwitch(http.StatusNotFound).reply(want, http.StatusOK, "#EXTM3U")

	hit, ok, stats, err := NewProber(fake.client(), 4).First(context.Background(), Bruteforce("dansgaming", 42218705421, r, set))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, hit.URL)
	assert.EqualValues(t, 1622854217, hit.Epoch)
	assert.EqualValues(t, 1, stats.Hits)
}

func TestThrottlingAndFailuresAreMisses(t *testing.T) {
	set := cdn.NewSet("a.cloudfront.net", "b.cloudfront.net", "c.cloudfront.net")
	candidates := Exact("dansgaming", 1, 2, set)

	fake := newFakeTwitch(http.StatusTooManyRequests)
	fake.errs[candidates[0].URL] = errors.New("connection reset")

	_, ok, stats, err := NewProber(fake.client(), 2).First(context.Background(), candidates)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Stats{Checked: 3, Throttled: 2, Failed: 1}, stats)
}

func TestFirstCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := newFakeTwitch(http.StatusForbidden)
	_, ok, _, err := NewProber(fake.client(), 2).First(ctx, Exact("u", 1, 2, cdn.Compile("")))
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, fake.count())
}

func TestAllKeepsInputOrder(t *testing.T) {
	urls := ClipOffsets(7, 0, 50)
	fake := newFakeTwitch(http.StatusForbidden).
		reply(urls[40], http.StatusOK, "").
		reply(urls[3], http.StatusOK, "").
		reply(urls[17], http.StatusOK, "")

	p := NewProber(fake.client(), 16)
	p.Limiter = ratelimit.NewUnlimited()
	live, stats, err := p.All(context.Background(), urls)
	require.NoError(t, err)
	assert.Equal(t, []string{urls[3], urls[17], urls[40]}, live)
	assert.EqualValues(t, 50, stats.Checked)
	assert.EqualValues(t, 3, stats.Hits)
}

func TestVerifyFollowsCDNOrder(t *testing.T) {
	set := cdn.NewSet("c.cloudfront.net", "a.cloudfront.net", "b.cloudfront.net", "d.cloudfront.net")
	hash := Hash("dansgaming", 42218705421, 1622854217)
	fake := newFakeTwitch(http.StatusForbidden)
	for _, host := range []string{"d.cloudfront.net", "a.cloudfront.net", "c.cloudfront.net"} {
		fake.reply(PlaylistURL(host, hash, "dansgaming", 42218705421, 1622854217), http.StatusOK, "")
	}

	urls, err := NewProber(fake.client(), 4).Verify(context.Background(), hash, "dansgaming", 42218705421, 1622854217, set)
	require.NoError(t, err)
	assert.Equal(t, []ReturnURL{
		{URL: PlaylistURL("a.cloudfront.net", hash, "dansgaming", 42218705421, 1622854217)},
		{URL: PlaylistURL("c.cloudfront.net", hash, "dansgaming", 42218705421, 1622854217)},
		{URL: PlaylistURL("d.cloudfront.net", hash, "dansgaming", 42218705421, 1622854217)},
	}, urls)
	assert.Equal(t, 4, fake.count())
}

func TestVerifyEmpty(t *testing.T) {
	fake := newFakeTwitch(http.StatusForbidden)
	urls, err := NewProber(fake.client(), 4).Verify(context.Background(), "x", "u", 1, 2, cdn.NewSet("a.example"))
	require.NoError(t, err)
	assert.NotNil(t, urls)
	assert.Empty(t, urls)
}

func TestFirstCancelledWhilePaced(t *testing.T) {
	r, err := timestamp.NewRange(1, 1000)
	require.NoError(t, err)
	candidates := Bruteforce("nobody", 1, r, cdn.NewSet("a.cloudfront.net"))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	fake := newFakeTwitch(http.StatusForbidden)
	p := NewProber(fake.client(), 40)
	p.Limiter = ratelimit.New(20)

	start := time.Now()
	_, ok, _, err := p.First(ctx, candidates)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
	assert.Less(t, fake.count(), 40)
}
