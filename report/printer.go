package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/weiihann/duelist/cache"
	"github.com/weiihann/duelist/match"
)

const (
	heavyRule = "======================================================================="
	lightRule = "-----------------------------------------------------------------------"
)

// Printer writes human-readable benchmark progress.
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer, color bool) *Printer {
	return &Printer{w: w, color: color}
}

// ColorEnabled reports whether w is a terminal that should get colored
// output. NO_COLOR in the environment disables color.
func ColorEnabled(w io.Writer, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}

	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// BenchmarkStarted announces a fresh benchmark of an ordered pair.
func (p *Printer) BenchmarkStarted(agent1, agent2 string, iterations int) {
	fmt.Fprintln(p.w, p.rule(heavyRule))
	fmt.Fprintf(p.w, "Running %d matches between %s and %s\n",
		iterations, p.name(agent1), p.name(agent2))
	fmt.Fprintln(p.w, p.rule(heavyRule))
}

// MatchStarted announces a single match.
func (p *Printer) MatchStarted(agent1, agent2 string) {
	fmt.Fprintf(p.w, "\tRunning match: %s vs %s\n", agent1, agent2)
}

// MatchFinished reports how a match ended.
func (p *Printer) MatchFinished(o match.Outcome) {
	if name := o.WinnerName(); name != "" {
		fmt.Fprintf(p.w, "\t> Game was won by %s\n\n", p.name(name))
		return
	}

	fmt.Fprintf(p.w, "\t> %s\n\n",
		p.style("Game has ceased unexpectedly", lipgloss.Color("214")))
}

// Cached reports a result taken from the cache instead of being run.
func (p *Printer) Cached(r cache.Result) {
	fmt.Fprintln(p.w, p.rule(heavyRule))
	fmt.Fprintf(p.w, "Already ran %d matches between %s and %s\n",
		r.Iterations, p.name(r.Agent1), p.name(r.Agent2))
	p.Result(r)
}

// Result prints the win ratios of a benchmark.
func (p *Printer) Result(r cache.Result) {
	fmt.Fprintln(p.w, "Result:")
	fmt.Fprintln(p.w, p.rule(lightRule))
	fmt.Fprintf(p.w, "%s win ratio: %s\n", r.Agent1, p.percent(r.Agent1WinRatio))
	fmt.Fprintf(p.w, "%s win ratio: %s\n", r.Agent2, p.percent(r.Agent2WinRatio))
	fmt.Fprintln(p.w, p.rule(heavyRule))
	fmt.Fprintln(p.w)
}

func (p *Printer) percent(r float64) string {
	return p.style(formatPercent(r), lipgloss.Color("42"))
}

func (p *Printer) name(s string) string {
	return p.style(s, lipgloss.Color("33"))
}

func (p *Printer) rule(s string) string {
	return p.style(s, lipgloss.Color("240"))
}

func (p *Printer) style(text string, color lipgloss.Color) string {
	if !p.color || strings.TrimSpace(text) == "" {
		return text
	}

	return lipgloss.NewStyle().Foreground(color).Render(text)
}
