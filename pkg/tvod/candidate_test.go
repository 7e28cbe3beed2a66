package tvod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tortlewortle/vodrecover/pkg/cdn"
	"github.com/tortlewortle/vodrecover/pkg/timestamp"
)

func TestHash(t *testing.T) {
	h := Hash("dansgaming", 42218705421, 1622854217)
	assert.Equal(t, "d3dcbaf880c9e36ed8c8", h)
	assert.Len(t, h, 20)
	for range 5 {
		assert.Equal(t, h, Hash("dansgaming", 42218705421, 1622854217))
	}
	assert.NotEqual(t, h, Hash("dansgaming", 42218705421, 1622854218))
}

func TestExact(t *testing.T) {
	set := cdn.NewSet("b.cloudfront.net", "a.cloudfront.net")
	candidates := Exact("dansgaming", 42218705421, 1622854217, set)
	require.Len(t, candidates, 2)
	assert.Equal(t, Candidate{
		URL:   "https://a.cloudfront.net/d3dcbaf880c9e36ed8c8_dansgaming_42218705421_1622854217/chunked/index-dvr.m3u8",
		Hash:  "d3dcbaf880c9e36ed8c8",
		Epoch: 1622854217,
	}, candidates[0])
	assert.Equal(t, "https://b.cloudfront.net/d3dcbaf880c9e36ed8c8_dansgaming_42218705421_1622854217/chunked/index-dvr.m3u8", candidates[1].URL)
}

func TestBruteforceSize(t *testing.T) {
	set := cdn.Compile("")
	r, err := timestamp.NewRange(1622854216, 1622854218)
	require.NoError(t, err)

	candidates := Bruteforce("dansgaming", 42218705421, r, set)
	assert.Len(t, candidates, 3*set.Len())

	seen := make(map[string]bool)
	for _, c := range candidates {
		assert.False(t, seen[c.URL], c.URL)
		seen[c.URL] = true
		assert.Equal(t, Hash("dansgaming", 42218705421, c.Epoch), c.Hash)
	}
}

func TestClipOffsets(t *testing.T) {
	urls := ClipOffsets(39905263305, 10, 13)
	assert.Equal(t, []string{
		"https://clips-media-assets2.twitch.tv/39905263305-offset-10.mp4",
		"https://clips-media-assets2.twitch.tv/39905263305-offset-11.mp4",
		"https://clips-media-assets2.twitch.tv/39905263305-offset-12.mp4",
	}, urls)
	assert.Empty(t, ClipOffsets(1, 5, 5))
	assert.Empty(t, ClipOffsets(1, 6, 5))
}
