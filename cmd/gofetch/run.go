package main

import (
	"context"
	"crypto/tls"
	"io"
	"maps"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/gofetch/config"
	"github.com/kbukum/gofetch/errors"
	"github.com/kbukum/gofetch/fetch"
	"github.com/kbukum/gofetch/logger"
	"github.com/kbukum/gofetch/observability"
	"github.com/kbukum/gofetch/validation"
	"github.com/kbukum/gofetch/version"
	"github.com/kbukum/gofetch/xhr"
)

const shutdownTimeout = 5 * time.Second

func run(ctx context.Context, f *flags, changed func(string) bool, rawURL string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(config.WithConfigFile(f.configFile), config.WithEnvFile(f.envFile))
	if err != nil {
		return err
	}
	if err := applyFlags(cfg, f, changed); err != nil {
		return err
	}
	if err := validation.New().AbsoluteURL("url", rawURL).Err(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logOut := stderr
	if cfg.Log.Output == "stdout" {
		logOut = stdout
	}
	logger.SetGlobalLogger(logger.NewWithWriter(&cfg.Log, "gofetch", logOut))
	log := logger.WithComponent("cli")

	if cfg.Telemetry.Enabled {
		otelCfg := observability.DefaultConfig("gofetch", version.Get().Short())
		otelCfg.Endpoint = cfg.Telemetry.Endpoint
		otelCfg.Insecure = cfg.Telemetry.Insecure
		shutdown, err := observability.Setup(ctx, otelCfg)
		if err != nil {
			return errors.Internal(err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				log.Warn("telemetry shutdown failed", logger.MergeWithError(nil, err))
			}
		}()
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanRun, trace.WithAttributes(
		attribute.String(observability.AttrURL, rawURL),
		attribute.String(observability.AttrBackend, cfg.Request.Backend),
	))
	defer span.End()

	if cfg.Request.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Request.Timeout)
		defer cancel()
	}

	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return err
	}

	req := fetch.New(rawURL, requestInit(cfg),
		fetch.WithTransport(transportFactory(cfg.Request, tlsCfg)),
		fetch.WithLogger(logger.WithComponent("fetch")),
	)

	started := time.Now()
	res, err := req.Fetch().Await(ctx)
	if err != nil {
		if ctx.Err() != nil {
			// Stop the transport; the promise stays pending.
			req.Cancel()
		}
		observability.SetSpanError(ctx, err)
		return errors.ConnectionFailed(rawURL, err)
	}

	observability.SetSpanAttribute(ctx, observability.AttrStatusCode, res.Status)
	observability.SetSpanAttribute(ctx, observability.AttrBodySize, res.Blob().Size())
	log.WithContext(ctx).Info("response", logger.Fields(
		logger.FieldStatus, res.Status,
		logger.FieldURL, res.URL,
		logger.FieldSize, humanize.Bytes(uint64(res.Blob().Size())),
		logger.FieldDuration, time.Since(started).Milliseconds(),
	))

	if err := writeResponse(stdout, cfg.Output.Format, res); err != nil {
		observability.SetSpanError(ctx, err)
		return err
	}
	if cfg.Output.Fail && !res.OK {
		err := errors.HTTPStatus(res.Status, res.StatusText)
		observability.SetSpanError(ctx, err)
		return err
	}
	return nil
}

// applyFlags overlays the flags set on the command line onto cfg.
func applyFlags(cfg *config.Config, f *flags, changed func(string) bool) error {
	v := validation.New()

	if changed("request") {
		cfg.Request.Method = f.method
	}
	if changed("header") {
		headers := maps.Clone(cfg.Request.Headers)
		if headers == nil {
			headers = make(map[string]string, len(f.headers))
		}
		// A flag replaces a config header of the same name; repeated flags
		// for one name keep the last value.
		for _, line := range f.headers {
			name, value := v.HeaderLine("header", line)
			if name == "" {
				continue
			}
			maps.DeleteFunc(headers, func(k, _ string) bool { return strings.EqualFold(k, name) })
			headers[name] = value
		}
		cfg.Request.Headers = headers
	}
	if changed("data") {
		cfg.Request.Body = f.data
	}
	if changed("data-file") {
		body, err := readBody(f.dataFile)
		if err != nil {
			return errors.InvalidInput("data-file", err.Error())
		}
		cfg.Request.Body = body
	}
	if changed("credentials") {
		cfg.Request.Credentials = f.credentials
	}
	if changed("backend") {
		cfg.Request.Backend = f.backend
	}
	if changed("timeout") {
		cfg.Request.Timeout = f.timeout
	}
	if changed("max-redirects") {
		cfg.Request.MaxRedirects = f.maxRedirects
	}
	if changed("output") {
		cfg.Output.Format = f.output
	}
	if changed("fail") {
		cfg.Output.Fail = f.fail
	}
	if changed("bearer") {
		cfg.Auth.Bearer = f.bearer
	}
	if changed("user") {
		user, password, _ := strings.Cut(f.user, ":")
		v.Required("user", user)
		cfg.Auth.User, cfg.Auth.Password = user, password
	}
	if changed("api-key") {
		cfg.Auth.APIKey = f.apiKey
	}
	if changed("api-key-header") {
		cfg.Auth.APIKeyHeader = f.apiKeyHeader
	}
	if changed("insecure") {
		cfg.TLS.Insecure = f.insecure
	}
	if changed("cacert") {
		cfg.TLS.CAFile = f.caFile
	}
	if changed("cert") {
		cfg.TLS.CertFile = f.certFile
	}
	if changed("key") {
		cfg.TLS.KeyFile = f.keyFile
	}
	if f.verbose {
		cfg.Log.Level = "debug"
	}
	if changed("otel-endpoint") {
		cfg.Telemetry.Enabled = f.otelEndpoint != ""
		cfg.Telemetry.Endpoint = f.otelEndpoint
	}
	if changed("otel-insecure") {
		cfg.Telemetry.Insecure = f.otelInsecure
	}
	return v.Err()
}

func readBody(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

func requestInit(cfg *config.Config) fetch.RequestInit {
	ri := fetch.RequestInit{
		Method:      cfg.Request.Method,
		Headers:     cfg.Request.Headers,
		Body:        []byte(cfg.Request.Body),
		Credentials: fetch.Credentials(cfg.Request.Credentials),
	}

	a := cfg.Auth
	switch {
	case a.Bearer != "":
		return ri.WithAuth(fetch.BearerAuth(a.Bearer))
	case a.User != "":
		return ri.WithAuth(fetch.BasicAuth(a.User, a.Password))
	case a.APIKey != "":
		return ri.WithAuth(fetch.APIKeyAuthHeader(a.APIKey, a.APIKeyHeader))
	}
	return ri
}

func transportFactory(rc config.RequestConfig, tlsCfg *tls.Config) func() xhr.XMLHttpRequest {
	opts := []xhr.Option{
		xhr.WithMaxRedirects(rc.MaxRedirects),
		xhr.WithLogger(logger.WithComponent("xhr")),
		xhr.WithTLSConfig(tlsCfg),
	}
	if rc.Backend == "fast" {
		return func() xhr.XMLHttpRequest { return xhr.NewFast(opts...) }
	}
	return func() xhr.XMLHttpRequest { return xhr.New(opts...) }
}
