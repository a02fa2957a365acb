package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"deepresearch/config"
	"deepresearch/model"
	"deepresearch/provider"
	"deepresearch/research"
	"deepresearch/storage"
	"deepresearch/ui"
)

const (
	Version = "v0.01.00"
	License = "Apache-2.0"
)

// cliOptions holds the flags shared by every command.
type cliOptions struct {
	settingsPath string
	envFile      string
	promptFile   string
	output       string
	mode         string
	interval     time.Duration
	heartbeat    int
	preview      bool
	copy         bool
	noHistory    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	console := ui.NewStdoutConsole()
	if err := newRootCommand(console).ExecuteContext(ctx); err != nil {
		console.Errorf("%v", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand(console *ui.Console) *cobra.Command {
	opts := &cliOptions{}

	runCmd := func(cmd *cobra.Command, args []string) error {
		prompt, err := readPrompt(opts, args)
		if err != nil {
			return err
		}
		if prompt == "" {
			return cmd.Help()
		}
		return runResearch(cmd, console, opts, prompt)
	}

	rootCmd := &cobra.Command{
		Use:   "deepresearch [prompt]",
		Short: "Run an Azure AI Foundry Deep Research agent and save its report",
		Long: `deepresearch creates a temporary agent with the Deep Research tool, posts your
prompt, streams new agent output while the run is in progress and writes the
final answer with its references to a Markdown file. The agent is deleted on
exit, including on Ctrl-C.

Examples:
  deepresearch "Survey the latest developments in solid-state batteries"
  deepresearch --prompt-file prompt.md --output report.md --preview
  deepresearch connections
  deepresearch history --limit 5`,
		Version:       Version + " (" + License + ")",
		Args:          rejectMistypedCommand,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.settingsPath, "config", "", "settings file (default ~/.config/deepresearch/settings.toml)")
	flags.StringVar(&opts.envFile, "env-file", config.DefaultEnvFile, "dotenv file merged below the environment")

	runFlags := func(cmd *cobra.Command) {
		f := cmd.Flags()
		f.StringVarP(&opts.promptFile, "prompt-file", "f", "", "read the prompt from a file ('-' for stdin)")
		f.StringVarP(&opts.output, "output", "o", "", "summary file path (default research_summary.md)")
		f.StringVar(&opts.mode, "mode", "", "scheduling mode: sync or async")
		f.DurationVar(&opts.interval, "interval", 0, "delay between status polls (e.g. 1s)")
		f.IntVar(&opts.heartbeat, "heartbeat", 0, "print a progress line every N polls")
		f.BoolVar(&opts.preview, "preview", false, "render the summary in the terminal when done")
		f.BoolVar(&opts.copy, "copy", false, "copy the summary to the clipboard when done")
		f.BoolVar(&opts.noHistory, "no-history", false, "do not record this run in the history database")
	}
	runFlags(rootCmd)

	run := &cobra.Command{
		Use:           "run [prompt]",
		Short:         "Run a deep research prompt",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCmd,
	}
	runFlags(run)

	rootCmd.AddCommand(run)
	rootCmd.AddCommand(newConnectionsCommand(console, opts))
	rootCmd.AddCommand(newHistoryCommand(console, opts))
	rootCmd.AddCommand(newInitCommand(console, opts))

	return rootCmd
}

// rejectMistypedCommand refuses a lone word on the root command that is
// close to a subcommand name, so "deepresearch histroy" never starts a run.
// Such a word can still be researched through the run subcommand.
func rejectMistypedCommand(cmd *cobra.Command, args []string) error {
	if len(args) != 1 || strings.ContainsAny(args[0], " \t\n") {
		return nil
	}
	suggestions := cmd.SuggestionsFor(args[0])
	if len(suggestions) == 0 {
		return nil
	}
	return fmt.Errorf("unknown command %q for %q; did you mean %s? To research it as a prompt, use '%s run %s'",
		args[0], cmd.CommandPath(), strings.Join(suggestions, " or "), cmd.CommandPath(), args[0])
}

// readPrompt joins positional arguments, or reads --prompt-file.
func readPrompt(opts *cliOptions, args []string) (string, error) {
	if opts.promptFile != "" {
		if len(args) > 0 {
			return "", errors.New("pass the prompt as an argument or with --prompt-file, not both")
		}
		var data []byte
		var err error
		if opts.promptFile == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(config.ExpandPath(opts.promptFile))
		}
		if err != nil {
			return "", fmt.Errorf("failed to read prompt: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return strings.TrimSpace(strings.Join(args, " ")), nil
}

// loadConfig resolves the configuration, applying flag
// overrides on top of settings, dotenv and environment.
func loadConfig(cmd *cobra.Command, opts *cliOptions) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		SettingsPath: config.ExpandPath(opts.settingsPath),
		EnvFile:      opts.envFile,
	})
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.SummaryPath = opts.output
	}
	if flags.Changed("mode") {
		cfg.Mode = opts.mode
	}
	if flags.Changed("interval") {
		cfg.PollInterval = opts.interval
	}
	if flags.Changed("heartbeat") {
		cfg.HeartbeatEvery = opts.heartbeat
	}
	if flags.Changed("no-history") {
		cfg.HistoryEnabled = !opts.noHistory
	}

	config.InitDebugLog(cfg.DataDir(), os.Getenv)
	config.Debugf("Loaded configuration: endpoint=%s mode=%s interval=%s", cfg.ProjectEndpoint, cfg.Mode, cfg.PollInterval)

	return cfg, nil
}

func newService(cfg *config.Config) (model.AgentService, error) {
	service, err := provider.NewProvider(provider.ConfigFromSettings(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create agents client: %w", err)
	}
	return service, nil
}

func runResearch(cmd *cobra.Command, console *ui.Console, opts *cliOptions, prompt string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	service, err := newService(cfg)
	if err != nil {
		return err
	}

	sched, err := research.NewScheduler(cfg.Mode)
	if err != nil {
		return err
	}

	runner := research.NewRunner(cfg, service, sched, console)

	if cfg.HistoryEnabled {
		if err := config.EnsureDir(cfg.DataDir()); err != nil {
			console.Warnf("Run history disabled: %v", err)
		} else if history, err := storage.NewHistoryStorage(cfg.DataDir()); err != nil {
			console.Warnf("Run history disabled: %v", err)
		} else {
			defer history.Close()
			runner.WithHistory(history)
		}
	}

	res, err := runner.Run(cmd.Context(), prompt)
	if err != nil {
		return err
	}

	if res.SummaryPath == "" || !(opts.preview || opts.copy) {
		return nil
	}

	content, err := os.ReadFile(res.SummaryPath)
	if err != nil {
		return fmt.Errorf("failed to read summary: %w", err)
	}
	if opts.preview {
		console.Preview(string(content))
	}
	if opts.copy {
		if err := ui.CopyToClipboard(string(content)); err != nil {
			console.Warnf("Failed to copy summary to clipboard: %v", err)
		} else {
			console.Successf("Research summary copied to clipboard.")
		}
	}

	return nil
}
