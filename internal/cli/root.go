package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cuongbtq/quantum-tracker/internal/provider"
	"github.com/cuongbtq/quantum-tracker/shared/logger"
)

const (
	EnvAPIURL   = "QUANTUM_API_URL"
	EnvToken    = "QUANTUM_TOKEN"
	EnvInstance = "QUANTUM_INSTANCE"

	defaultAPIURL = "https://quantum.cloud.ibm.com/api/v1"
)

// Version is set at build time
var Version = "dev"

// getEnvOrDefault returns the value of an environment variable or a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

type options struct {
	apiURL   string
	token    string
	instance string
	timeout  time.Duration
	jsonOut  bool
	noColor  bool
	debug    bool
}

// newClient builds a provider client from the global flags
func (o *options) newClient() (*provider.Client, error) {
	if o.token == "" {
		return nil, fmt.Errorf("no API token: pass --token or set %s", EnvToken)
	}

	log := logger.NewNop()
	if o.debug {
		var err error
		log, err = logger.New(&logger.Config{Level: "debug", Format: "console", Output: "stderr"})
		if err != nil {
			return nil, err
		}
	}

	return provider.NewClient(&provider.Config{
		BaseURL:   o.apiURL,
		Token:     o.token,
		Instance:  o.instance,
		Timeout:   o.timeout,
		UserAgent: "qtrack/" + Version,
	}, log.Logger, nil)
}

// NewRootCmd builds the qtrack command tree. Flag defaults are read from the
// environment when the tree is built.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "qtrack",
		Short: "Inspect quantum cloud jobs and backends",
		Long: `qtrack talks to the quantum provider's REST API and prints jobs and
backends in the same normalized form the tracker API serves.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor || opts.jsonOut {
				color.NoColor = true
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.apiURL, "api-url", getEnvOrDefault(EnvAPIURL, defaultAPIURL), "Base URL of the provider API")
	flags.StringVar(&opts.token, "token", os.Getenv(EnvToken), "API token")
	flags.StringVar(&opts.instance, "instance", os.Getenv(EnvInstance), "Service instance (CRN) to scope requests to")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "Per-request timeout")
	flags.BoolVar(&opts.jsonOut, "json", false, "Print JSON instead of a table")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	flags.BoolVar(&opts.debug, "debug", false, "Log provider requests to stderr")

	root.AddCommand(
		newCheckCmd(opts),
		newJobsCmd(opts),
		newJobCmd(opts),
		newBackendsCmd(opts),
	)

	return root
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		badColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
