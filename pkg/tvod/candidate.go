package tvod

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/tortlewortle/vodrecover/pkg/cdn"
	"github.com/tortlewortle/vodrecover/pkg/timestamp"
)

const hashLen = 20

// Candidate is one guessed playlist location.
type Candidate struct {
	URL   string
	Hash  string
	Epoch int64
}

// Hash returns the storage key Twitch files a broadcast under: the first 20 hex
// characters of sha1("{username}_{broadcastID}_{epoch}").
func Hash(username string, broadcastID, epoch int64) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s_%d_%d", username, broadcastID, epoch)))
	return hex.EncodeToString(sum[:])[:hashLen]
}

// PlaylistURL builds the source-quality playlist URL for a hash on one CDN.
func PlaylistURL(host, hash, username string, broadcastID, epoch int64) string {
	return fmt.Sprintf("https://%s/%s_%s_%d_%d/chunked/index-dvr.m3u8", host, hash, username, broadcastID, epoch)
}

// Exact builds one candidate per CDN for a known start epoch.
func Exact(username string, broadcastID, epoch int64, cdns cdn.Set) []Candidate {
	hash := Hash(username, broadcastID, epoch)
	candidates := make([]Candidate, 0, cdns.Len())
	for _, host := range cdns.Hosts() {
		candidates = append(candidates, Candidate{
			URL:   PlaylistURL(host, hash, username, broadcastID, epoch),
			Hash:  hash,
			Epoch: epoch,
		})
	}
	return candidates
}

// Bruteforce builds the candidates for every epoch in r on every CDN.
func Bruteforce(username string, broadcastID int64, r timestamp.Range, cdns cdn.Set) []Candidate {
	candidates := make([]Candidate, 0, int(r.Len())*cdns.Len())
	for epoch := r.From; epoch <= r.To; epoch++ {
		candidates = append(candidates, Exact(username, broadcastID, epoch, cdns)...)
	}
	return candidates
}

// ClipOffsets lists the clip asset URLs for offsets in [start, end).
func ClipOffsets(vodID, start, end int64) []string {
	if end <= start {
		return []string{}
	}
	urls := make([]string, 0, end-start)
	for n := start; n < end; n++ {
		urls = append(urls, fmt.Sprintf("https://clips-media-assets2.twitch.tv/%d-offset-%d.mp4", vodID, n))
	}
	return urls
}
