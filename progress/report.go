package progress

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"imgen/core"
	"imgen/db"
	"imgen/imagegen"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// Printer writes coloured, human-readable output. Colour is decided once
// when the Printer is created.
type Printer struct {
	out     io.Writer
	success *color.Color
	failure *color.Color
	dim     *color.Color
	accent  *color.Color
}

// NewPrinter creates a Printer for out, coloured only when out is a terminal.
func NewPrinter(out io.Writer) *Printer {
	return NewPrinterWithColor(out, IsTerminal(out))
}

// NewPrinterWithColor creates a Printer with colour forced on or off.
func NewPrinterWithColor(out io.Writer, enabled bool) *Printer {
	p := &Printer{
		out:     out,
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
		dim:     color.New(color.FgHiBlack),
		accent:  color.New(color.FgCyan, color.Bold),
	}
	for _, c := range []*color.Color{p.success, p.failure, p.dim, p.accent} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Summary is what Report prints after a generation.
type Summary struct {
	Saved     []imagegen.SavedImage
	Usage     imagegen.Usage
	Duration  time.Duration
	RequestID string
}

// Report prints one line per saved image followed by token usage, cost
// and timing.
func (p *Printer) Report(s Summary) {
	for _, img := range s.Saved {
		where := img.Path
		if img.Path == imagegen.StdoutPath {
			where = "stdout"
		}
		p.success.Fprintf(p.out, "✓ Saved %s", where)
		p.dim.Fprintf(p.out, " (%s)\n", describeImage(img))
	}

	u := s.Usage
	fmt.Fprintf(p.out, "  Tokens: %d input (%d text, %d image) + %d output = %d total\n",
		u.InputTokens, u.TextTokens, u.ImageTokens, u.OutputTokens, u.TotalTokens)
	fmt.Fprint(p.out, "  Cost:   ")
	p.accent.Fprintf(p.out, "%s\n", FormatCost(u.Cost()))
	fmt.Fprintf(p.out, "  Time:   %s", s.Duration.Round(100*time.Millisecond))
	if s.RequestID != "" {
		p.dim.Fprintf(p.out, "  request %s", core.ShortID(s.RequestID))
	}
	fmt.Fprintln(p.out)
}

func describeImage(img imagegen.SavedImage) string {
	parts := make([]string, 0, 3)
	if img.Width > 0 && img.Height > 0 {
		parts = append(parts, fmt.Sprintf("%dx%d", img.Width, img.Height))
	}
	if img.Format != "" {
		parts = append(parts, img.Format)
	}
	parts = append(parts, core.FormatBytes(img.Size))
	return strings.Join(parts, ", ")
}

// FormatCost renders a USD amount with four decimals.
// This is a pure function with no side effects.
func FormatCost(usd float64) string {
	return fmt.Sprintf("$%.4f", usd)
}

// Error prints err in red. Configuration errors also print the action the
// user should take.
func (p *Printer) Error(err error) {
	if err == nil {
		return
	}
	p.failure.Fprintf(p.out, "✗ Error: %s\n", err.Error())

	var cfgErr *core.ConfigError
	if errors.As(err, &cfgErr) && cfgErr.Action != "" {
		p.dim.Fprintf(p.out, "  └─ %s\n", cfgErr.Action)
	}
}

// Success prints a single green line.
func (p *Printer) Success(format string, args ...interface{}) {
	p.success.Fprintf(p.out, "✓ "+format+"\n", args...)
}

// History prints generation records as an aligned table, newest first as
// given. stored is the number of records in the database.
func (p *Printer) History(records []db.GenerationRecord, stored int64, totalCost float64) {
	if len(records) == 0 {
		p.dim.Fprintln(p.out, "No generations recorded yet.")
		return
	}

	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tCOMMAND\tSTATUS\tCOST\tREQUEST\tPROMPT")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			humanize.Time(r.CreatedAt),
			r.Command,
			r.Status,
			FormatCost(r.CostUSD),
			core.ShortID(r.RequestID),
			truncate(oneLine(r.Prompt), 50),
		)
	}
	tw.Flush()

	if stored > int64(len(records)) {
		p.dim.Fprintf(p.out, "Showing %d of %d generations\n", len(records), stored)
	}
	fmt.Fprint(p.out, "Total cost of successful generations: ")
	p.accent.Fprintln(p.out, FormatCost(totalCost))
}

// Details prints every stored field of one generation.
func (p *Printer) Details(r db.GenerationRecord) {
	status := p.success
	if r.Status != db.StatusSuccess {
		status = p.failure
	}

	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Request:\t%s\n", r.RequestID)
	fmt.Fprintf(tw, "When:\t%s\n", r.CreatedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(tw, "Command:\t%s (%s)\n", r.Command, r.Model)
	fmt.Fprintf(tw, "Prompt:\t%s\n", oneLine(r.Prompt))
	fmt.Fprintf(tw, "Images:\t%d requested, %d input\n", r.N, r.InputImages)
	fmt.Fprintf(tw, "Options:\tsize=%s quality=%s format=%s\n", orDefault(r.Size), orDefault(r.Quality), orDefault(r.OutputFormat))
	fmt.Fprintf(tw, "Tokens:\t%d input + %d output = %d total\n", r.InputTokens, r.OutputTokens, r.TotalTokens)
	fmt.Fprintf(tw, "Cost:\t%s\n", FormatCost(r.CostUSD))
	fmt.Fprintf(tw, "Time:\t%s\n", (time.Duration(r.DurationMS) * time.Millisecond).Round(100*time.Millisecond))
	for _, out := range r.Outputs {
		if out == imagegen.StdoutPath {
			out = "stdout"
		}
		fmt.Fprintf(tw, "Output:\t%s\n", out)
	}
	tw.Flush()

	fmt.Fprint(p.out, "Status:  ")
	status.Fprintln(p.out, r.Status)
	if r.ErrorMessage != "" {
		p.dim.Fprintf(p.out, "  └─ %s\n", r.ErrorMessage)
	}
}

func orDefault(s string) string {
	if s == "" {
		return "default"
	}
	return s
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate shortens s to at most max runes, marking the cut with "…".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
