// Package cli implements ccpair-harness, a command line driver for CC pair
// lifecycle operations against a running Danswer API server.
package cli

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/hashicorp/terraform-plugin-log/tfsdklog"
	"github.com/spf13/cobra"

	"github.com/clintdigital/terraform-provider-danswer/internal/ccpair"
	"github.com/clintdigital/terraform-provider-danswer/internal/client"
	"github.com/clintdigital/terraform-provider-danswer/internal/config"
)

// EnvLogLevel selects the log level of the harness (TRACE, DEBUG, INFO, WARN, ERROR).
const EnvLogLevel = "CCPAIR_HARNESS_LOG"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath  string
	APIURL      string
	APIKey      string
	Timeout     time.Duration
	UserHeaders map[string]string
	Verbose     bool
	Format      string // "json" | "text"

	version string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for ccpair-harness.
func NewRootCommand(version string) *cobra.Command {
	opts := &RootOptions{version: version}

	cmd := &cobra.Command{
		Use:   "ccpair-harness",
		Short: "Drive and verify CC pair lifecycles on a Danswer server",
		Long: `Create, pause, index, prune, sync and delete connector-credential pairs
on a running Danswer API server, wait for the server's background work to
finish and verify the observed state against what was requested.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cmd.SetContext(tfsdklog.NewRootProviderLogger(cmd.Context(),
				tfsdklog.WithLogName("ccpair-harness"),
				tfsdklog.WithLevelFromEnv(EnvLogLevel),
				tfsdklog.WithoutLocation(),
			))
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.APIURL, "api-url", "", "API server URL (overrides config and "+config.EnvAPIServerURL+")")
	cmd.PersistentFlags().StringVar(&opts.APIKey, "api-key", "", "API key (overrides config and "+config.EnvAPIKey+")")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 0, "wait timeout (overrides config)")
	cmd.PersistentFlags().StringToStringVar(&opts.UserHeaders, "user-header", nil, "header identifying the acting user, as name=value (repeatable)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts, "pause", client.CCPairStatusPaused))
	cmd.AddCommand(NewStatusCommand(opts, "resume", client.CCPairStatusActive))
	cmd.AddCommand(NewRunOnceCommand(opts))
	cmd.AddCommand(NewPruneCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewWaitCommand(opts))

	return cmd
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// loadConfig reads the config file, or the environment when none is given,
// and applies flag overrides.
func (o *RootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	if o.ConfigPath != "" {
		loaded, err := config.Load(o.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.FromEnv()
	}

	if o.APIURL != "" {
		cfg.APIServerURL = o.APIURL
	}
	if o.APIKey != "" {
		cfg.APIKey = o.APIKey
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Wait.Timeout = config.Duration(o.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// manager builds the CC pair manager for one command invocation.
func (o *RootOptions) manager(cmd *cobra.Command) (*ccpair.Manager, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	var opts []ccpair.Option
	if len(o.UserHeaders) > 0 {
		opts = append(opts, ccpair.WithDefaultUser(&client.User{Headers: o.UserHeaders}))
	}
	return ccpair.FromConfig(cfg, o.version, opts...), nil
}

// parseID parses a positional CC pair ID.
func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid cc pair id %q", arg))
	}
	return id, nil
}
