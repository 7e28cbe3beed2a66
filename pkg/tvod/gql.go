package tvod

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	clientID   = "kimne78kx3ncx6brgo4mv6wki5h1ko"
	gqlURL     = "https://gql.twitch.tv/gql"
	liveQuery  = "query($login:String){user(login: $login){stream{id createdAt}}}"
	clipQuery  = "query($slug:ID!){clip(slug: $slug){broadcaster{login}broadcast{id}}}"
	maxGQLBody = 1 << 20
)

// RetryPolicy controls how often a lookup is attempted and how long to wait
// between attempts.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, Backoff: 2 * time.Second}

// GQL talks to Twitch's public GraphQL endpoint.
type GQL struct {
	Client   *http.Client
	Endpoint string
	Retry    RetryPolicy
}

func NewGQL(client *http.Client) *GQL {
	return &GQL{
		Client:   client,
		Endpoint: gqlURL,
		Retry:    DefaultRetryPolicy,
	}
}

type gqlRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

var errRetryable = errors.New("retryable response")

func (g *GQL) do(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Join(errors.New("creating request"), err)
	}
	req.Header.Set("Client-ID", clientID)
	req.Header.Set("Content-Type", "application/json")
	res, err := g.Client.Do(req)
	if err != nil {
		return nil, errors.Join(errRetryable, errors.New("performing"), err)
	}
	defer res.Body.Close()
	slog.Debug("gql response", slog.Int("status", res.StatusCode))
	body, err := io.ReadAll(io.LimitReader(res.Body, maxGQLBody))
	if err != nil {
		return nil, errors.Join(errRetryable, errors.New("reading body"), err)
	}
	switch {
	case res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500:
		return nil, errors.Join(errRetryable, fmt.Errorf("statuscode: %d", res.StatusCode))
	case res.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("statuscode: %d", res.StatusCode)
	}
	return body, nil
}

func (g *GQL) query(ctx context.Context, query string, vars map[string]string) (gjson.Result, error) {
	payload, err := json.Marshal(gqlRequest{Query: query, Variables: vars})
	if err != nil {
		return gjson.Result{}, errors.Join(errors.New("marshalling json"), err)
	}

	attempts := max(g.Retry.MaxAttempts, 1)
	var body []byte
	for attempt := 1; ; attempt++ {
		body, err = g.do(ctx, payload)
		if err == nil || !errors.Is(err, errRetryable) || attempt >= attempts {
			break
		}
		slog.Debug("retrying gql request", slog.Int("attempt", attempt), slog.Any("error", err))
		select {
		case <-ctx.Done():
			return gjson.Result{}, ctx.Err()
		case <-time.After(g.Retry.Backoff):
		}
	}
	if err != nil {
		return gjson.Result{}, err
	}

	if !gjson.ValidBytes(body) {
		return gjson.Result{}, errors.New("invalid json in response")
	}
	res := gjson.ParseBytes(body)
	if msg := res.Get("errors.0.message"); msg.Exists() {
		return gjson.Result{}, errors.New(msg.String())
	}
	return res.Get("data"), nil
}

// LiveStream returns the broadcast id and start time of a channel's current
// stream.
func (g *GQL) LiveStream(ctx context.Context, login string) (int64, string, error) {
	data, err := g.query(ctx, liveQuery, map[string]string{"login": login})
	if err != nil {
		return 0, "", &LookupError{Op: "username", Err: err}
	}
	stream := data.Get("user.stream")
	if !stream.Exists() || stream.Type == gjson.Null {
		return 0, "", ErrNotLive
	}
	id, err := strconv.ParseInt(stream.Get("id").String(), 10, 64)
	if err != nil {
		return 0, "", &LookupError{Op: "username", Err: err}
	}
	return id, stream.Get("createdAt").String(), nil
}

// ClipBroadcast returns the broadcaster login and broadcast id a clip was cut
// from.
func (g *GQL) ClipBroadcast(ctx context.Context, slug string) (string, int64, error) {
	data, err := g.query(ctx, clipQuery, map[string]string{"slug": slug})
	if err != nil {
		return "", 0, &LookupError{Op: "clip", Err: err}
	}
	clip := data.Get("clip")
	if !clip.Exists() || clip.Type == gjson.Null {
		return "", 0, &LookupError{Op: "clip", Err: fmt.Errorf("clip %q not found", slug)}
	}
	id, err := strconv.ParseInt(clip.Get("broadcast.id").String(), 10, 64)
	if err != nil {
		return "", 0, &LookupError{Op: "clip", Err: fmt.Errorf("couldn't parse the broadcast id: %w", err)}
	}
	return clip.Get("broadcaster.login").String(), id, nil
}

// ExtractSlug accepts twitch.tv/<user>/clip/<slug>, clips.twitch.tv/<slug> or a
// bare slug.
func ExtractSlug(s string) (string, error) {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return s, nil
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	switch strings.ToLower(u.Hostname()) {
	case "twitch.tv", "www.twitch.tv":
		if len(segments) > 2 && segments[1] == "clip" && segments[2] != "" {
			return segments[2], nil
		}
		return "", errors.New("not a clip URL")
	case "clips.twitch.tv":
		if segments[0] == "" {
			return "", errors.New("not a clip URL")
		}
		return segments[0], nil
	}
	return "", errors.New("only twitch.tv URLs are supported")
}

// TrackerURL is the TwitchTracker page for a broadcast.
func TrackerURL(login string, broadcastID int64) string {
	return fmt.Sprintf("https://twitchtracker.com/%s/streams/%d", login, broadcastID)
}
