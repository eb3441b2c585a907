package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"imgen/core"
	"imgen/db"
	"imgen/imagegen"
	"imgen/input"
	"imgen/logging"
	"imgen/progress"

	"github.com/chzyer/readline"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	apiKey     string
	configPath string
	logFile    string
	noHistory  bool
	verbose    bool
}

// generatorFactory builds the API client for one invocation.
type generatorFactory func(cfg *core.Config, requestID string, logger *logging.Logger) (imagegen.Generator, error)

// app holds the process-level collaborators of one CLI invocation. Tests
// replace the streams, environment and factories.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// stdinIsTerminal is true when stdin is an interactive terminal
	stdinIsTerminal bool

	// environment replaces the process environment when non-nil
	environment map[string]string

	newGenerator generatorFactory
	readSecret   func(prompt string) (string, error)
	newSpinner   func(message string) *progress.Spinner

	flags globalFlags

	cfg     *core.Config
	logger  *logging.Logger
	printer *progress.Printer

	// startupWarnings are reported once the logger exists
	startupWarnings []error
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	a := &app{
		stdin:           stdin,
		stdout:          stdout,
		stderr:          stderr,
		stdinIsTerminal: progress.IsTerminal(stdin),
		newGenerator:    newOpenAIGenerator,
		logger:          logging.NewNop(),
		printer:         progress.NewPrinter(stderr),
	}
	a.readSecret = a.readSecretFromTerminal
	a.newSpinner = func(message string) *progress.Spinner {
		return progress.NewSpinner(a.stderr, message)
	}
	return a
}

// execute runs the command line and returns the process exit code.
func (a *app) execute(ctx context.Context, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	defer a.logger.Sync()

	if err == nil {
		return core.ExitCodeSuccess
	}

	code := exitCodeFor(err)
	a.logger.Error("command failed", zap.Error(err), zap.String("exit", core.ExitCodeName(code)))
	a.printer.Error(err)
	return code
}

// initialize loads configuration and builds the logger. It runs before
// every command.
func (a *app) initialize() error {
	cfg, err := core.LoadConfig(core.LoadOptions{
		ConfigPath:  a.flags.configPath,
		Environment: a.environment,
	})
	if err != nil {
		return err
	}
	cfg.Apply(core.Overrides{
		APIKey:    a.flags.apiKey,
		LogFile:   a.flags.logFile,
		NoHistory: a.flags.noHistory,
		Verbose:   a.flags.verbose,
	})
	a.cfg = cfg

	a.logger = logging.New(logging.Options{
		Level:    logging.ParseLogLevelString(cfg.LogLevel, logging.DefaultLevel),
		Console:  a.stderr,
		Color:    progress.IsTerminal(a.stderr),
		FilePath: cfg.LogFile,
	})

	for _, w := range append(a.startupWarnings, cfg.Warnings...) {
		a.logger.Warn("configuration warning", zap.Error(w))
	}
	a.logger.Debug("configuration loaded",
		zap.String("config_path", cfg.ConfigPath),
		zap.String("base_url", cfg.BaseURL),
		zap.Duration("timeout", cfg.Timeout),
		zap.String("output_dir", cfg.OutputDir),
		zap.Bool("history", cfg.History),
		zap.Bool("api_key_set", cfg.OpenAIAPIKey != ""),
	)
	return nil
}

// newOpenAIGenerator is the production generatorFactory.
func newOpenAIGenerator(cfg *core.Config, requestID string, logger *logging.Logger) (imagegen.Generator, error) {
	return imagegen.NewClient(imagegen.ClientConfig{
		APIKey:     cfg.OpenAIAPIKey,
		BaseURL:    cfg.BaseURL,
		HTTPClient: core.GetHTTPClient(cfg.Timeout),
		RequestID:  requestID,
		Logger:     logger.Named("api"),
	})
}

// readSecretFromTerminal prompts on stderr without echoing the input.
func (a *app) readSecretFromTerminal(prompt string) (string, error) {
	rl, err := readline.NewEx(&readline.Config{
		Stdin:  io.NopCloser(a.stdin),
		Stdout: a.stderr,
		Stderr: a.stderr,
	})
	if err != nil {
		return "", fmt.Errorf("failed to open terminal: %w", err)
	}
	defer rl.Close()

	secret, err := rl.ReadPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(secret), nil
}

// openHistory opens the history database, or returns nil when history is
// disabled or unavailable. Failures are logged, never returned: history
// must not break a generation.
func (a *app) openHistory(ctx context.Context) *db.Database {
	if !a.cfg.History {
		return nil
	}
	path, err := a.historyPath()
	if err != nil {
		a.logger.Warn("history disabled", zap.Error(err))
		return nil
	}
	database, err := db.Open(ctx, path)
	if err != nil {
		a.logger.Warn("failed to open history database", zap.String("path", path), zap.Error(err))
		return nil
	}
	return database
}

func (a *app) historyPath() (string, error) {
	dir := a.cfg.DataDir
	if dir == "" {
		dir = core.GetDataDirectory()
	}
	if dir == "" {
		return "", errors.New("no data directory available")
	}
	dir, err := core.EnsureDataDirectory(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, core.HistoryFileName), nil
}

// usageError marks errors caused by invalid flags or arguments.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func newUsageError(err error) error {
	if err == nil {
		return nil
	}
	return &usageError{err: err}
}

// exitCodeFor maps an error returned by a command to the process exit code.
func exitCodeFor(err error) int {
	var ue *usageError
	switch {
	case err == nil:
		return core.ExitCodeSuccess
	case errors.Is(err, context.Canceled):
		return core.ExitCodeSIGINT
	case errors.As(err, &ue), input.IsUserError(err), isCobraUsageError(err):
		return core.ExitCodeUsage
	default:
		return core.ExitCodeError
	}
}

// isCobraUsageError recognises the errors cobra itself returns for unknown
// commands and flags.
func isCobraUsageError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag") ||
		strings.HasPrefix(msg, "required flag(s)") ||
		strings.HasPrefix(msg, "if any flags in the group")
}

// describeAPIError adds the API's error type and status to the log.
func describeAPIError(err error) []zap.Field {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return []zap.Field{
			zap.Int("status", apiErr.HTTPStatusCode),
			zap.String("type", apiErr.Type),
			zap.Any("code", apiErr.Code),
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return []zap.Field{zap.Int("status", reqErr.HTTPStatusCode)}
	}
	return nil
}
