// Package cdn compiles the list of hostnames Twitch serves VOD storage from.
package cdn

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Baseline is the built-in list of known VOD storage hosts.
var Baseline = []string{
	"d1m7jfoe9zdc1j.cloudfront.net",
	"d1mhjrowxxagfy.cloudfront.net",
	"d1oca24q5dwo6d.cloudfront.net",
	"d1w2poirtb3as9.cloudfront.net",
	"d1xhnb4ptk05mw.cloudfront.net",
	"d1ymi26ma8va5x.cloudfront.net",
	"d2aba1wr3818hz.cloudfront.net",
	"d2e2de1etea730.cloudfront.net",
	"d2nvs31859zcd8.cloudfront.net",
	"d2um2qdswy1tb0.cloudfront.net",
	"d2vjef5jvl6bfs.cloudfront.net",
	"d2xmjdvx03ij56.cloudfront.net",
	"d36nr0u3xmc4mm.cloudfront.net",
	"d3aqoihi2n8ty8.cloudfront.net",
	"d3c27h4odz752x.cloudfront.net",
	"d3vd9lfkzbru3h.cloudfront.net",
	"d6d4ismr40iw.cloudfront.net",
	"d6tizftlrpuof.cloudfront.net",
	"ddacn6pr5v0tl.cloudfront.net",
	"dgeft87wbj63p.cloudfront.net",
	"dqrpb9wgowsf5.cloudfront.net",
	"ds0h3roq6wcgc.cloudfront.net",
	"dykkng5hnh52u.cloudfront.net",
	"vod-metro.twitch.tv",
	"vod-pop-secure.twitch.tv",
	"vod-secure.twitch.tv",
}

var errUnsupportedExtension = errors.New("it must either be a text file, a JSON file, a TOML file or a YAML file")

// Set is a sorted, deduplicated list of CDN hostnames.
type Set struct {
	hosts []string
}

// NewSet sorts and deduplicates hosts.
func NewSet(hosts ...string) Set {
	h := slices.Clone(hosts)
	slices.Sort(h)
	return Set{hosts: slices.Compact(h)}
}

// Hosts returns a copy of the hostnames in sorted order.
func (s Set) Hosts() []string {
	return slices.Clone(s.hosts)
}

func (s Set) Len() int {
	return len(s.hosts)
}

func (s Set) Contains(host string) bool {
	_, ok := slices.BinarySearch(s.hosts, host)
	return ok
}

// Merge returns the union of s and hosts.
func (s Set) Merge(hosts ...string) Set {
	return NewSet(append(s.Hosts(), hosts...)...)
}

type file struct {
	CDNs []string `json:"cdns" toml:"cdns" yaml:"cdns"`
}

// Compile merges the baseline with the hostnames from an override file.
// A missing or broken override file never fails: it is logged and the
// baseline is used on its own.
func Compile(path string) Set {
	base := NewSet(Baseline...)
	if path == "" {
		return base
	}

	extra, err := Load(path)
	if err != nil {
		slog.Warn("couldn't load the CDN list file, using the built-in list",
			slog.String("path", path), slog.Any("error", err))
		return base
	}

	set := base.Merge(extra...)
	if set.Len() != base.Len() {
		slog.Debug("compiled the new CDN list", slog.Int("initial", base.Len()), slog.Int("new", set.Len()))
	} else {
		slog.Debug("no new CDNs added", slog.Int("initial", base.Len()), slog.Int("new", set.Len()))
	}
	return set
}

// Load reads the hostnames from a .txt, .json, .toml, .yaml or .yml file.
// Files without an extension are read as text.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(errors.New("opening CDN file"), err)
	}

	var f file
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &f)
	case ".toml":
		err = toml.Unmarshal(data, &f)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	case ".txt", "":
		return parseLines(string(data)), nil
	default:
		return nil, fmt.Errorf("unsupported extension %q: %w", ext, errUnsupportedExtension)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", strings.TrimPrefix(filepath.Ext(path), "."), err)
	}
	return f.CDNs, nil
}

func parseLines(body string) []string {
	hosts := make([]string, 0)
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		hosts = append(hosts, line)
	}
	return hosts
}
