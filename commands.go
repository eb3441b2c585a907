package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"imgen/core"
	"imgen/db"
	"imgen/imagegen"
	"imgen/progress"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   core.AppName,
		Short: "Generate and edit images with the OpenAI image API",
		Long: `imgen sends prompts, and optionally source images and a mask, to the
OpenAI image API (gpt-image-1) and saves the results.

Prompt, image and mask arguments accept a file path, "@path" to force a
file, or "-" to read from stdin (at most one argument may use stdin).

Examples:
  $ imgen create "a cute baby otter floating on its back"
  $ imgen create @prompt.txt -n 3 --quality high
  $ echo "a watercolor fox" | imgen create - -o fox.png
  $ imgen edit "add a party hat" -i cat.png -m mask.png
  $ imgen edit "combine into a gift basket" -i soap.png -i lotion.png -o - > basket.png`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize()
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return newUsageError(err)
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&a.flags.apiKey, "api-key", "a", "", "OpenAI API key (overrides OPENAI_API_KEY and the config file)")
	pf.StringVar(&a.flags.configPath, "config", "", "config file (default "+displayConfigPath()+")")
	pf.StringVar(&a.flags.logFile, "log-file", "", "also write JSON logs to this file")
	pf.BoolVar(&a.flags.noHistory, "no-history", false, "do not record this generation in the local history")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "enable debug logging on stderr")

	root.AddCommand(
		newCreateCmd(a),
		newEditCmd(a),
		newSetupCmd(a),
		newHistoryCmd(a),
		newVersionCmd(a),
	)
	return root
}

func displayConfigPath() string {
	if p := core.GetConfigFilePath(); p != "" {
		return p
	}
	return "none"
}

// exactArgs is cobra.ExactArgs with the error marked as a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return newUsageError(cobra.ExactArgs(n)(cmd, args))
	}
}

type createOptions struct {
	count             int
	size              string
	quality           string
	background        string
	moderation        string
	outputCompression int
	outputFormat      string
	output            string
}

func newCreateCmd(a *app) *cobra.Command {
	defaults := imagegen.DefaultCreateRequest("")
	opts := createOptions{}

	cmd := &cobra.Command{
		Use:   "create PROMPT",
		Short: "Generate images from a text prompt",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCreate(cmd.Context(), args[0], opts)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.count, "count", "n", defaults.N, fmt.Sprintf("number of images to generate (%d-%d)", imagegen.MinImages, imagegen.MaxImages))
	f.StringVar(&opts.size, "size", defaults.Size, "image size: 1024x1024, 1536x1024, 1024x1536 or auto")
	f.StringVar(&opts.quality, "quality", defaults.Quality, "image quality: low, medium, high or auto")
	f.StringVar(&opts.background, "background", defaults.Background, "background: transparent, opaque or auto")
	f.StringVar(&opts.moderation, "moderation", defaults.Moderation, "content moderation: low or auto")
	f.IntVar(&opts.outputCompression, "output-compression", defaults.OutputCompression, "compression level for jpeg and webp (0-100)")
	f.StringVar(&opts.outputFormat, "output-format", defaults.OutputFormat, "output format: png, jpeg or webp")
	f.StringVarP(&opts.output, "output", "o", "", `output file, or "-" for stdout (requires -n 1)`)
	return cmd
}

type editOptions struct {
	images  []string
	mask    string
	count   int
	size    string
	quality string
	output  string
}

func newEditCmd(a *app) *cobra.Command {
	opts := editOptions{}

	cmd := &cobra.Command{
		Use:   "edit PROMPT",
		Short: "Edit or extend one or more images",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEdit(cmd.Context(), args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&opts.images, "image", "i", nil, `source image path or "-" for stdin (repeatable)`)
	f.StringVarP(&opts.mask, "mask", "m", "", "mask image; transparent areas mark what to edit")
	f.IntVarP(&opts.count, "count", "n", 1, fmt.Sprintf("number of images to generate (%d-%d)", imagegen.MinImages, imagegen.MaxImages))
	f.StringVar(&opts.size, "size", imagegen.DefaultSize, "image size: 1024x1024, 1536x1024, 1024x1536 or auto")
	f.StringVar(&opts.quality, "quality", imagegen.DefaultQuality, "image quality: low, medium, high or auto")
	f.StringVarP(&opts.output, "output", "o", "", `output file, or "-" for stdout (requires -n 1)`)
	cmd.MarkFlagRequired("image")
	return cmd
}

func newSetupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Store an OpenAI API key in the config file",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSetup()
		},
	}
}

type historyOptions struct {
	limit     int
	pruneDays int
	requestID string
	clear     bool
}

func newHistoryCmd(a *app) *cobra.Command {
	opts := historyOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent generations",
		Long: `List recent generations with their cost, newest first.

--request shows every detail of one generation; the short request id from
the listing is enough. --prune-days deletes old entries and --clear drops
the whole history.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHistory(cmd, opts)
		},
	}
	cmd.Flags().IntVar(&opts.limit, "limit", db.DefaultListLimit, "number of generations to show")
	cmd.Flags().IntVar(&opts.pruneDays, "prune-days", 0, "delete generations older than this many days instead of listing")
	cmd.Flags().StringVarP(&opts.requestID, "request", "r", "", "show the generation with this request id (or id prefix)")
	cmd.Flags().BoolVar(&opts.clear, "clear", false, "delete all recorded generations")
	cmd.MarkFlagsMutuallyExclusive("request", "prune-days", "clear")
	return cmd
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.stdout, "%s %s\n", core.AppName, core.GetVersionInfo())
			return nil
		},
	}
}

func (a *app) runSetup() error {
	path := a.cfg.ConfigPath
	if path == "" {
		return core.ErrConfigDirUnknown()
	}

	key, err := a.readSecret("OpenAI API key: ")
	if err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return newUsageError(fmt.Errorf("no API key entered"))
	}

	// Keep the other settings of an existing file.
	file, err := core.LoadFileConfig(path)
	if err != nil {
		a.logger.Warn("replacing unreadable config file", zap.String("path", path), zap.Error(err))
		file = core.FileConfig{}
	}
	file.OpenAIAPIKey = key
	if err := core.SaveFileConfig(path, file); err != nil {
		return err
	}

	a.printer.Success("Saved API key to %s", path)
	return nil
}

func (a *app) runHistory(cmd *cobra.Command, opts historyOptions) error {
	if opts.pruneDays < 0 {
		return newUsageError(fmt.Errorf("--prune-days must not be negative, got %d", opts.pruneDays))
	}
	ctx := cmd.Context()

	path, err := a.historyPath()
	if err != nil {
		return fmt.Errorf("history unavailable: %w", err)
	}

	if opts.clear {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			a.printer.Success("History is already empty")
			return nil
		}
		if err := db.MigrateDown(ctx, path, -1); err != nil {
			return err
		}
		a.logger.Info("history cleared", zap.String("path", path))
		a.printer.Success("Cleared generation history")
		return nil
	}

	database, err := db.Open(ctx, path)
	if err != nil {
		return err
	}
	defer database.Close()

	if version, dirty, err := db.MigrationVersion(ctx, path); err == nil {
		a.logger.Debug("history database opened",
			zap.String("path", path),
			zap.Uint("schema_version", version),
			zap.Bool("dirty", dirty))
	}

	if opts.pruneDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -opts.pruneDays)
		result, err := database.Cleanup(ctx, cutoff)
		if err != nil {
			return err
		}
		a.logger.Info("history pruned", zap.Int64("deleted", result.Deleted), zap.Duration("duration", result.Duration))
		a.printer.Success("Deleted %d generation(s) older than %d day(s)", result.Deleted, opts.pruneDays)
		return nil
	}

	repo := db.NewRepository(database)
	out := progress.NewPrinter(a.stdout)

	if opts.requestID != "" {
		records, err := repo.FindByRequestID(ctx, strings.TrimSpace(opts.requestID))
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return newUsageError(fmt.Errorf("no generation with request id %q", opts.requestID))
		}
		for i, rec := range records {
			if i > 0 {
				fmt.Fprintln(a.stdout)
			}
			out.Details(rec)
		}
		return nil
	}

	records, err := repo.ListGenerations(ctx, opts.limit)
	if err != nil {
		return err
	}
	stored, err := repo.CountGenerations(ctx)
	if err != nil {
		return err
	}
	total, err := repo.TotalCost(ctx)
	if err != nil {
		return err
	}

	out.History(records, stored, total)
	return nil
}
