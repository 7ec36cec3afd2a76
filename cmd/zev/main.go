package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/adelmans/zev/internal/config"
	"github.com/adelmans/zev/internal/environ"
	"github.com/adelmans/zev/internal/history"
	"github.com/adelmans/zev/internal/llm"
	"github.com/adelmans/zev/internal/logging"
	"github.com/adelmans/zev/internal/ui"
)

var (
	// version is set by goreleaser at build time
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const helpText = `zev turns a description of what you want to do into shell commands.

Usage:
  zev <what you want to do>   suggest commands for a request
  zev                         ask for the request interactively
  zev --setup,   -s           choose the LLM provider and credentials
  zev --recent,  -r           pick again from recent queries
  zev --config,  -c           show the current configuration
  zev --version, -v           print the version
  zev --help,    -h           show this help

Set ZEV_DEBUG=1 to print debug logs to stderr.
`

// specialCase is a single-token invocation that does something other than a query
type specialCase int

const (
	caseNone specialCase = iota
	caseSetup
	caseRecent
	caseHelp
	caseVersion
	caseConfig
)

var specialCases = map[string]specialCase{
	"--setup":   caseSetup,
	"-s":        caseSetup,
	"--recent":  caseRecent,
	"-r":        caseRecent,
	"--help":    caseHelp,
	"-h":        caseHelp,
	"--version": caseVersion,
	"-v":        caseVersion,
	"--config":  caseConfig,
	"-c":        caseConfig,
}

// parseSpecialCase recognizes flags only when they are the whole input.
// Anything with more than one word is a query.
func parseSpecialCase(args []string) specialCase {
	if len(args) != 1 {
		return caseNone
	}
	arg := strings.ToLower(strings.TrimSpace(args[0]))
	if strings.ContainsAny(arg, " \t") {
		return caseNone
	}
	return specialCases[arg]
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "zev [what you want to do]",
		Short: "Natural language to shell commands",
		Long:  helpText,
		// Flags are only meaningful as the entire input, so words like "-la"
		// inside a request reach the query untouched.
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE:               runCommand,
	}

	if err := rootCmd.Execute(); err != nil {
		var cfgErr *config.Error
		if errors.As(err, &cfgErr) {
			ui.ShowError(cfgErr.Error())
		} else {
			ui.ShowError(err.Error())
		}
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log := logging.New(logging.DebugEnabled(), os.Stderr)
	ctx = log.WithContext(ctx)

	a := newApp(cmd.OutOrStdout(), log)

	switch parseSpecialCase(args) {
	case caseSetup:
		return runSetup()
	case caseRecent:
		return a.showRecent(ctx)
	case caseHelp:
		fmt.Fprint(a.out, helpText)
		return nil
	case caseVersion:
		fmt.Fprintf(a.out, "zev %s (commit %s, built %s)\n", version, commit, date)
		return nil
	case caseConfig:
		return a.showConfig()
	}

	ready, err := ensureConfigured(config.Exists, runSetup)
	if err != nil || !ready {
		return err
	}

	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		query, err = ui.AskQuery()
		if err != nil {
			if ui.IsInterrupt(err) {
				return nil
			}
			return err
		}
		query = strings.TrimSpace(query)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return a.answer(ctx, cfg, query)
}

// ensureConfigured runs setup when no config file exists yet. It reports
// whether a config file is present afterwards.
func ensureConfigured(exists func() (bool, error), setup func() error) (bool, error) {
	ok, err := exists()
	if err != nil {
		return false, fmt.Errorf("failed to check configuration: %w", err)
	}
	if ok {
		return true, nil
	}

	ui.ShowInfo("No configuration found. Let's set up zev.\n")
	if err := setup(); err != nil {
		return false, err
	}

	ok, err = exists()
	if err != nil {
		return false, fmt.Errorf("failed to check configuration: %w", err)
	}
	return ok, nil
}

// app holds the collaborators of a query run
type app struct {
	out      io.Writer
	log      zerolog.Logger
	selector *ui.Selector

	newProvider func(config.Config, llm.Options) (llm.Provider, error)
	openHistory func(config.Config, history.Options) (history.Store, error)
	envContext  func() string
}

func newApp(out io.Writer, log zerolog.Logger) *app {
	sel := ui.NewSelector()
	sel.Out = out
	return &app{
		out:         out,
		log:         log,
		selector:    sel,
		newProvider: llm.New,
		openHistory: history.Open,
		envContext:  environ.Context,
	}
}

// answer asks the provider for commands, records the result and lets the
// user pick one.
func (a *app) answer(ctx context.Context, cfg config.Config, query string) error {
	if query == "" {
		return nil
	}

	provider, err := a.newProvider(cfg, llm.Options{Out: a.out, Logger: &a.log})
	if err != nil {
		return err
	}
	a.log.Debug().Str("provider", provider.Name()).Str("model", provider.Model()).Msg("provider ready")

	store, err := a.openHistory(cfg, history.Options{})
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	envContext := a.envContext()
	a.log.Debug().Str("env", envContext).Str("query", query).Msg("asking for options")

	fmt.Fprintln(a.out, "Thinking...")
	resp := provider.GetOptions(ctx, query, envContext)
	if resp == nil {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprintln(a.out, "Could not get an answer. Try again.")
		return nil
	}
	if !resp.IsValid {
		fmt.Fprintln(a.out, "Couldn't generate a valid command for that request.")
		return nil
	}
	if len(resp.Commands) == 0 {
		fmt.Fprintln(a.out, ui.NoCommandsMessage)
		return nil
	}

	if err := store.Save(query, resp); err != nil {
		a.log.Debug().Err(err).Str("path", store.Path()).Msg("history save failed")
		ui.ShowWarning(fmt.Sprintf("failed to save history: %v", err))
	}

	return a.selector.SelectOption(ctx, resp)
}

func (a *app) showRecent(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := a.openHistory(cfg, history.Options{})
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	entries, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	a.log.Debug().Int("entries", len(entries)).Str("path", store.Path()).Msg("history loaded")

	return a.selector.SelectHistory(ctx, entries)
}

func (a *app) showConfig() error {
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return writeConfig(a.out, path, cfg)
}

// writeConfig prints the configuration as YAML with secrets masked
func writeConfig(w io.Writer, path string, cfg config.Config) error {
	masked := cfg.Masked()
	if len(masked) == 0 {
		fmt.Fprintf(w, "No configuration found at %s. Run `zev --setup` to create one.\n", path)
		return nil
	}

	data, err := yaml.Marshal(masked)
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	fmt.Fprintf(w, "# %s\n%s", path, data)
	return nil
}
