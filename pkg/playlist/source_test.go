package playlist

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSource(t *testing.T) {
	src, err := ParseSource(vodURL)
	require.NoError(t, err)
	assert.Equal(t, vodDir, src.Dir)
	assert.Equal(t, "chunked", src.Quality)
	assert.Equal(t, baseURL, src.BaseURL())
	assert.Equal(t, "muted_"+vodDir+".m3u8", src.DefaultOutput())

	for _, url := range []string{
		"https://vod-secure.twitch.tv/" + vodDir + "/chunked/index-dvr.m3u8",
		"https://twitch.tv/" + vodDir + "/720p60/index-dvr.m3u8",
		"https://D1M7JFOE9ZDC1J.CLOUDFRONT.NET/" + vodDir + "/chunked/index-dvr.m3u8",
	} {
		_, err := ParseSource(url)
		assert.NoError(t, err, url)
	}
}

func TestParseSourceErrors(t *testing.T) {
	_, err := ParseSource("https://d1m7jfoe9zdc1j.cloudfront.net/index-dvr.m3u8")
	var ierr *InputError
	assert.True(t, errors.As(err, &ierr))

	_, err = ParseSource("://bad")
	assert.True(t, errors.As(err, &ierr))

	_, err = ParseSource("https://example.com/a/b/index-dvr.m3u8")
	var herr *UnsupportedHostError
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, "example.com", herr.Host)
}

func TestInspect(t *testing.T) {
	fake := newFakeCDN(http.StatusForbidden).serve(vodURL, http.StatusOK, mutedVOD)

	s, err := Inspect(context.Background(), &http.Client{Transport: fake}, vodURL)
	require.NoError(t, err)
	assert.Equal(t, 6, s.Segments)
	assert.Equal(t, 3, s.Unmuted)
	assert.Equal(t, 52*time.Second, s.Duration)
	assert.True(t, s.Closed)
}
