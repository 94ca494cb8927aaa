// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/z5labs/container"
	"github.com/z5labs/container/file"
	"github.com/z5labs/container/internal/logging"
	"github.com/z5labs/container/internal/telemetry"
	"github.com/z5labs/container/redis"
	"github.com/z5labs/container/remote"
	cviper "github.com/z5labs/container/viper"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const serviceName = "containerctl"

// InvalidOverrideError is returned when a --set value is not of the form key=value.
type InvalidOverrideError struct {
	Value string
}

// Error implements the [builtin.error] interface.
func (e InvalidOverrideError) Error() string {
	return fmt.Sprintf("invalid override, expected key=value: %s", e.Value)
}

type app struct {
	v        *viper.Viper
	resolver *container.Nested
	closers  []func(context.Context) error
}

func newRootCmd() *cobra.Command {
	a := &app{
		v: viper.New(),
	}
	return a.rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          serviceName,
		Short:        "Resolve identifiers through layered containers",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.build(cmd.Context(), cmd.ErrOrStderr())
		},
	}

	fs := cmd.PersistentFlags()
	fs.StringSlice("file", nil, "configuration file, relative to --dir, later files override earlier ones")
	fs.String("dir", ".", "directory the configuration files are read from")
	fs.Bool("strict", false, "fail if a configuration file does not exist")
	fs.String("redis-addr", "", "address of the redis server holding definitions")
	fs.String("redis-hash", redis.DefaultHashName, "name of the redis hash holding definitions")
	fs.Bool("no-prefill", false, "query redis for every lookup instead of loading the whole hash")
	fs.String("remote-url", "", "url of a remote configuration document")
	fs.Int("cache", container.DefaultHasCacheCapacity, "number of remembered origins, 0 disables the cache")
	fs.Bool("check-nested-has", true, "consult every source when checking for an id")
	fs.Bool("save-if-found", false, "copy values found in sources into the local overrides")
	fs.String("env-prefix", "CONTAINERCTL_VAR", "prefix of environment variables resolved as ids")
	fs.String("log-level", "error", "log level: debug, info, warn or error")
	fs.Bool("trace", false, "print spans to stderr")
	fs.String("otlp-target", "", "export spans to this OTLP gRPC collector")
	fs.Bool("detect-gcp", false, "describe the Google Cloud resource in exported spans")
	fs.StringArray("set", nil, "local override as key=value, may be repeated")

	a.v.SetEnvPrefix(serviceName)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	// only fails for a nil flag set
	_ = a.v.BindPFlags(fs)

	cmd.AddCommand(
		a.getCmd(),
		a.hasCmd(),
		a.setCmd(),
	)
	return cmd
}

// build composes the resolver. If it fails, everything opened so far is
// closed again since no command runs to do so.
func (a *app) build(ctx context.Context, errOut io.Writer) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(err, a.close(ctx))
		}
	}()

	logHandler, err := newLogHandler(a.v.GetString("log-level"), errOut)
	if err != nil {
		return err
	}

	var telemetryOpts []telemetry.CommonOption
	if a.v.GetBool("detect-gcp") {
		telemetryOpts = append(telemetryOpts, telemetry.DetectGCP())
	}

	var initializer telemetry.Initializer = telemetry.Noop
	switch {
	case a.v.GetString("otlp-target") != "":
		initializer = telemetry.OTLP(serviceName, a.v.GetString("otlp-target"), telemetryOpts...)
	case a.v.GetBool("trace"):
		initializer = telemetry.Stdout(serviceName, errOut, telemetryOpts...)
	}
	shutdown, err := telemetry.Install(ctx, initializer)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, shutdown)

	overrides, err := parseOverrides(a.v.GetStringSlice("set"))
	if err != nil {
		return err
	}

	opts := []container.NestedOption{
		container.LogHandler(logHandler),
		container.CheckNestedHas(a.v.GetBool("check-nested-has")),
		container.SaveIfFound(a.v.GetBool("save-if-found")),
		container.Named("env", a.envContainer()),
	}
	if capacity := a.v.GetInt("cache"); capacity > 0 {
		opts = append(opts, container.HasCache(capacity))
	}

	if files := a.v.GetStringSlice("file"); len(files) > 0 {
		fileOpts := []file.Option{file.LogHandler(logHandler)}
		if a.v.GetBool("strict") {
			fileOpts = append(fileOpts, file.Strict())
		}
		fc, err := file.New(os.DirFS(a.v.GetString("dir")), files, fileOpts...)
		if err != nil {
			return err
		}
		opts = append(opts, container.Named("file", fc))
	}

	if addr := a.v.GetString("redis-addr"); addr != "" {
		client := goredis.NewClient(&goredis.Options{Addr: addr})
		a.closers = append(a.closers, func(context.Context) error {
			return client.Close()
		})

		rc, err := redis.New(
			client,
			redis.HashName(a.v.GetString("redis-hash")),
			redis.Prefill(!a.v.GetBool("no-prefill")),
			redis.LogHandler(logHandler),
			redis.CircuitBreaker(gobreaker.Settings{Name: "redis"}),
		)
		if err != nil {
			return err
		}
		opts = append(opts, container.Named("redis", rc))
	}

	if u := a.v.GetString("remote-url"); u != "" {
		opts = append(opts, container.Named("remote", remote.New(u, remote.LogHandler(logHandler))))
	}

	a.resolver = container.NewNested(overrides, opts...)
	return nil
}

// envContainer resolves ids from environment variables, e.g. db.host
// from CONTAINERCTL_VAR_DB_HOST.
func (a *app) envContainer() *cviper.Container {
	env := viper.New()
	env.SetEnvPrefix(a.v.GetString("env-prefix"))
	env.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	env.AutomaticEnv()
	return cviper.New(env)
}

// runE closes every resource opened by build once f returns.
func (a *app) runE(f func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			err = errors.Join(err, a.close(cmd.Context()))
		}()
		return f(cmd, args)
	}
}

func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err := a.closers[i](ctx)
		if err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func newLogHandler(level string, out io.Writer) (slog.Handler, error) {
	var lvl slog.Level
	err := lvl.UnmarshalText([]byte(level))
	if err != nil {
		return nil, err
	}
	h := slog.NewTextHandler(out, &slog.HandlerOptions{Level: lvl})
	return logging.Mask(h, map[string]logging.MaskFunc{
		"url": logging.URLPassword,
	}), nil
}

func parseOverrides(pairs []string) (map[string]any, error) {
	m := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, InvalidOverrideError{Value: pair}
		}
		m[k] = parseValue(v)
	}
	return m, nil
}

// parseValue interprets s as a YAML scalar so "8080" becomes an int and
// "true" a bool. Anything else is kept as the raw string.
func parseValue(s string) any {
	var v any
	err := yaml.Unmarshal([]byte(s), &v)
	if err != nil || v == nil {
		return s
	}
	switch v.(type) {
	case map[string]any, []any:
		return s
	}
	return v
}
