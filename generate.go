package main

import (
	"context"
	"fmt"
	"time"

	"imgen/core"
	"imgen/db"
	"imgen/imagegen"
	"imgen/input"
	"imgen/logging"
	"imgen/progress"

	"go.uber.org/zap"
)

// slowRequestAfter is when the spinner starts telling the user the API is
// still working. High quality images routinely take over a minute.
const slowRequestAfter = 45 * time.Second

const stdinHint = "Reading from stdin, finish with Ctrl+D"

// generation is the part of a create or edit run shared by both commands:
// call the API, write the images, record history and report.
type generation struct {
	command      string
	prompt       string
	n            int
	size         string
	quality      string
	outputFormat string
	inputImages  int
	output       input.Output
	call         func(ctx context.Context, gen imagegen.Generator) (*imagegen.Response, error)
}

func (a *app) runCreate(ctx context.Context, promptArg string, opts createOptions) error {
	prompt, err := input.ParsePrompt(promptArg)
	if err != nil {
		return err
	}
	req := input.Request{
		Prompt: prompt,
		Output: input.ParseOutput(opts.output),
		N:      opts.count,
	}
	if err := req.Validate(); err != nil {
		return err
	}

	apiReq := imagegen.CreateRequest{
		N:                 opts.count,
		Size:              opts.size,
		Quality:           opts.quality,
		Background:        opts.background,
		Moderation:        opts.moderation,
		OutputCompression: opts.outputCompression,
		OutputFormat:      opts.outputFormat,
	}
	if err := apiReq.Validate(); err != nil {
		return newUsageError(err)
	}
	if err := a.cfg.RequireAPIKey(); err != nil {
		return err
	}

	a.noteInputs(req)
	text, err := req.ReadPrompt(a.stdin)
	if err != nil {
		return err
	}
	apiReq.Prompt = text

	return a.generate(ctx, generation{
		command:      "create",
		prompt:       text,
		n:            apiReq.N,
		size:         apiReq.Size,
		quality:      apiReq.Quality,
		outputFormat: apiReq.OutputFormat,
		output:       req.Output,
		call: func(ctx context.Context, gen imagegen.Generator) (*imagegen.Response, error) {
			return gen.Create(ctx, apiReq)
		},
	})
}

func (a *app) runEdit(ctx context.Context, promptArg string, opts editOptions) error {
	prompt, err := input.ParsePrompt(promptArg)
	if err != nil {
		return err
	}
	images, err := input.ParseImages(opts.images)
	if err != nil {
		return err
	}
	req := input.Request{
		Prompt: prompt,
		Images: images,
		Output: input.ParseOutput(opts.output),
		N:      opts.count,
	}
	if opts.mask != "" {
		mask, err := input.ParseMask(opts.mask)
		if err != nil {
			return err
		}
		req.Mask = &mask
	}
	if err := req.Validate(); err != nil {
		return err
	}

	apiReq := imagegen.EditRequest{
		N:       opts.count,
		Size:    opts.size,
		Quality: opts.quality,
	}
	if err := imagegen.ValidateCount(opts.count); err != nil {
		return newUsageError(err)
	}
	if err := a.cfg.RequireAPIKey(); err != nil {
		return err
	}

	a.noteInputs(req)
	text, err := req.ReadPrompt(a.stdin)
	if err != nil {
		return err
	}
	data, err := req.ReadImages(a.stdin)
	if err != nil {
		return err
	}
	mask, err := req.ReadMask(a.stdin)
	if err != nil {
		return err
	}
	apiReq.Prompt = text
	apiReq.Images = data
	apiReq.Mask = mask

	return a.generate(ctx, generation{
		command:      "edit",
		prompt:       text,
		n:            apiReq.N,
		size:         apiReq.Size,
		quality:      apiReq.Quality,
		outputFormat: imagegen.FormatPNG,
		inputImages:  len(data),
		output:       req.Output,
		call: func(ctx context.Context, gen imagegen.Generator) (*imagegen.Response, error) {
			return gen.Edit(ctx, apiReq)
		},
	})
}

// noteInputs logs prompt tokens that were read as files because a file of
// that name exists, and tells an interactive user when input is expected
// on stdin.
func (a *app) noteInputs(req input.Request) {
	if req.Prompt.IsImplicitFile() {
		a.logger.Debugw("prompt argument names an existing file, reading it as the prompt",
			"path", req.Prompt.Value)
	}
	if !req.UsesStdin() {
		return
	}
	a.logger.Debug("reading input from stdin", zap.Bool("terminal", a.stdinIsTerminal))
	if a.stdinIsTerminal {
		fmt.Fprintln(a.stderr, stdinHint)
	}
}

func (a *app) generate(ctx context.Context, g generation) error {
	requestID := core.NewRequestID()
	logger := a.logger.With(zap.String("request_id", requestID))

	gen, err := a.newGenerator(a.cfg, requestID, logger)
	if err != nil {
		return err
	}

	history := a.openHistory(ctx)
	if history != nil {
		defer history.Close()
	}

	record := db.GenerationRecord{
		RequestID:    requestID,
		Command:      g.command,
		Prompt:       g.prompt,
		Model:        imagegen.Model,
		N:            g.n,
		Size:         g.size,
		Quality:      g.quality,
		OutputFormat: g.outputFormat,
		InputImages:  g.inputImages,
	}

	logger.Info("starting generation",
		zap.String("command", g.command),
		zap.Int("n", g.n),
		zap.Int("input_images", g.inputImages),
		zap.String("output", g.output.String()),
	)

	spinner := a.newSpinner(spinnerMessage(g))
	spinner.Start()
	start := time.Now()
	slow := time.AfterFunc(slowRequestAfter, func() {
		spinner.SetMessage(spinnerMessage(g) + ", still waiting for the API")
	})
	resp, err := g.call(ctx, gen)
	slow.Stop()
	spinner.Stop()
	record.DurationMS = time.Since(start).Milliseconds()

	if err != nil {
		logger.Error("generation failed", append(describeAPIError(err), zap.Error(err))...)
		record.Status = db.StatusError
		record.ErrorMessage = err.Error()
		a.recordHistory(history, record, logger)
		return err
	}

	writer := imagegen.NewWriter(imagegen.WriterConfig{
		OutputDir: a.cfg.OutputDir,
		Stdout:    a.stdout,
		Logger:    logger,
	})
	saved, err := writer.Save(resp, g.output, imagegen.PromptPrefix(g.prompt), imagegen.FileExtension(g.outputFormat))

	record.InputTokens = resp.Usage.InputTokens
	record.OutputTokens = resp.Usage.OutputTokens
	record.TotalTokens = resp.Usage.TotalTokens
	record.CostUSD = resp.Usage.Cost()
	for _, s := range saved {
		record.Outputs = append(record.Outputs, s.Path)
	}

	if err != nil {
		record.Status = db.StatusError
		record.ErrorMessage = err.Error()
		a.recordHistory(history, record, logger)
		return err
	}

	record.Status = db.StatusSuccess
	a.recordHistory(history, record, logger)

	logger.Info("generation complete",
		zap.Int("images", len(saved)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Float64("cost_usd", resp.Usage.Cost()),
	)
	a.printer.Report(progress.Summary{
		Saved:     saved,
		Usage:     resp.Usage,
		Duration:  time.Duration(record.DurationMS) * time.Millisecond,
		RequestID: requestID,
	})
	return nil
}

func (a *app) recordHistory(history *db.Database, record db.GenerationRecord, logger *logging.Logger) {
	if history == nil {
		return
	}
	// Record even when the command context was cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.NewRepository(history).InsertGeneration(ctx, record); err != nil {
		logger.Warn("failed to record generation history", zap.Error(err))
	}
}

func spinnerMessage(g generation) string {
	noun := "image"
	if g.n > 1 {
		noun = "images"
	}
	verb := "Generating"
	if g.command == "edit" {
		verb = "Editing"
	}
	return verb + " " + noun
}
