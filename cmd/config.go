package cmd

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tortlewortle/vodrecover/pkg/cdn"
	"github.com/tortlewortle/vodrecover/pkg/tvod"
)

const (
	envPrefix      = "VODRECOVER_"
	defaultTimeout = 10 * time.Second
)

type options struct {
	threads  int
	simple   bool
	verbose  bool
	cdnFile  string
	progress bool
	rate     int
	timeout  time.Duration
}

// app holds what every command shares for one run.
type app struct {
	opts   options
	client *http.Client
	cdns   cdn.Set
}

type appKey struct{}

func withApp(ctx context.Context, a *app) context.Context {
	return context.WithValue(ctx, appKey{}, a)
}

func appFrom(cmd *cobra.Command) *app {
	a, _ := cmd.Context().Value(appKey{}).(*app)
	return a
}

// envName maps a flag to its environment variable, "cdnfile" -> VODRECOVER_CDNFILE.
func envName(flag string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// applyEnv fills every flag that wasn't set on the command line from the
// environment, after loading .env if there is one.
func applyEnv(flags *pflag.FlagSet) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Join(errors.New("loading .env"), err)
	}

	var errs []error
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			return
		}
		v, ok := os.LookupEnv(envName(f.Name))
		if !ok {
			return
		}
		if err := flags.Set(f.Name, v); err != nil {
			errs = append(errs, errors.Join(errors.New("reading "+envName(f.Name)), err))
		}
	})
	return errors.Join(errs...)
}

func readOptions(flags *pflag.FlagSet) (options, error) {
	var o options
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	var err error
	o.threads, err = flags.GetInt("threads")
	collect(err)
	o.simple, err = flags.GetBool("simple")
	collect(err)
	o.verbose, err = flags.GetBool("verbose")
	collect(err)
	o.cdnFile, err = flags.GetString("cdnfile")
	collect(err)
	o.progress, err = flags.GetBool("progressbar")
	collect(err)
	o.rate, err = flags.GetInt("rate")
	collect(err)
	o.timeout, err = flags.GetDuration("timeout")
	collect(err)
	if o.threads <= 0 {
		errs = append(errs, errors.New("threads must be positive"))
	}
	return o, errors.Join(errs...)
}

func setupLogging(o options) {
	level := slog.LevelInfo
	switch {
	case o.verbose:
		level = slog.LevelDebug
	case o.simple:
		level = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func setup(cmd *cobra.Command) (*app, error) {
	flags := cmd.Flags()
	if err := applyEnv(flags); err != nil {
		return nil, err
	}
	o, err := readOptions(flags)
	if err != nil {
		return nil, err
	}
	setupLogging(o)

	return &app{
		opts:   o,
		client: tvod.NewClient(o.timeout, o.threads),
		cdns:   cdn.Compile(o.cdnFile),
	}, nil
}
