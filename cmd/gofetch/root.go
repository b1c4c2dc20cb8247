package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/gofetch/errors"
	"github.com/kbukum/gofetch/version"
)

// flags holds the raw command line values. Only flags that were set on the
// command line override the loaded configuration.
type flags struct {
	configFile   string
	envFile      string
	method       string
	headers      []string
	data         string
	dataFile     string
	credentials  string
	backend      string
	timeout      time.Duration
	maxRedirects int
	output       string
	fail         bool
	bearer       string
	user         string
	apiKey       string
	apiKeyHeader string
	insecure     bool
	caFile       string
	certFile     string
	keyFile      string
	verbose      bool
	otelEndpoint string
	otelInsecure bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "gofetch [flags] URL",
		Short: "Issue one HTTP request through the fetch adapter",
		Long: `gofetch sends a single request through the promise-based fetch adapter
over an XMLHttpRequest-style transport and prints the response.

Settings come from flags, GOFETCH_* environment variables, a .env file and
an optional YAML config file, in that order of precedence.`,
		Version:       version.Get().Short(),
		Args:          exactlyOneURL,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f, cmd.Flags().Changed, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.InvalidInput("flag", err.Error())
	})

	fs := cmd.Flags()
	fs.StringVarP(&f.configFile, "config", "c", "", "config file path (default ./gofetch.yml or the user config dir)")
	fs.StringVar(&f.envFile, "env-file", "", ".env file to load (default .env.gofetch or .env)")
	fs.StringVarP(&f.method, "request", "X", "", "request method (default get)")
	fs.StringArrayVarP(&f.headers, "header", "H", nil, `request header "Name: value", repeatable`)
	fs.StringVarP(&f.data, "data", "d", "", "request body")
	fs.StringVar(&f.dataFile, "data-file", "", "read the request body from a file, - for stdin")
	fs.StringVar(&f.credentials, "credentials", "", "credentials mode: omit, same-origin or include")
	fs.StringVar(&f.backend, "backend", "", "transport backend: net or fast (default net)")
	fs.DurationVar(&f.timeout, "timeout", 0, "abort the request after this long")
	fs.IntVar(&f.maxRedirects, "max-redirects", 0, "redirects to follow (default 20)")
	fs.StringVarP(&f.output, "output", "o", "", "output format: body, json, yaml or headers (default body)")
	fs.BoolVarP(&f.fail, "fail", "f", false, "exit with status 4 on a non-2xx response")
	fs.StringVar(&f.bearer, "bearer", "", "send an Authorization: Bearer token")
	fs.StringVarP(&f.user, "user", "u", "", `basic auth credentials "user:password"`)
	fs.StringVar(&f.apiKey, "api-key", "", "send an API key header")
	fs.StringVar(&f.apiKeyHeader, "api-key-header", "", "API key header name (default X-API-Key)")
	fs.BoolVarP(&f.insecure, "insecure", "k", false, "skip server certificate verification")
	fs.StringVar(&f.caFile, "cacert", "", "PEM file with the CA certificates to trust")
	fs.StringVar(&f.certFile, "cert", "", "client certificate PEM file for mutual TLS")
	fs.StringVar(&f.keyFile, "key", "", "client key PEM file for mutual TLS")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log transport activity to stderr")
	fs.StringVar(&f.otelEndpoint, "otel-endpoint", "", "export traces and metrics to this OTLP/HTTP host:port")
	fs.BoolVar(&f.otelInsecure, "otel-insecure", false, "use plain HTTP for the OTLP endpoint")
	cmd.MarkFlagsMutuallyExclusive("data", "data-file")
	cmd.MarkFlagsRequiredTogether("cert", "key")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func exactlyOneURL(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.InvalidInput("url", fmt.Sprintf("expected exactly one URL, got %d arguments", len(args)))
	}
	return nil
}

// execute runs the command and maps its error to an exit status.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	fmt.Fprintf(stderr, "gofetch: %v\n", err)
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.ExitCode()
	}
	// cobra reports mutually exclusive flags and unknown commands as
	// plain errors.
	return errors.ExitCode(errors.ErrCodeInvalidInput)
}
