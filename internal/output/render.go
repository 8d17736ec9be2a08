package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/council-go/council"
)

var (
	stageStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	completeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	ruleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// Renderer writes progressive per-stage output to a terminal. It
// implements council.Observer, so stage results appear as each stage
// settles rather than after the whole run.
//
// Quiet suppresses everything except the final synthesis and errors.
type Renderer struct {
	w         io.Writer
	markdown  *glamour.TermRenderer
	quiet     bool
	requested int
}

var _ council.Observer = (*Renderer)(nil)

// NewRenderer creates a Renderer writing to w. requested is the council
// size, used for the "N/M responded" line.
func NewRenderer(w io.Writer, requested int, quiet bool) *Renderer {
	r := &Renderer{w: w, quiet: quiet, requested: requested}

	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err == nil {
		r.markdown = md
	}
	return r
}

// renderMarkdown falls back to the raw text when the terminal renderer is
// unavailable.
func (r *Renderer) renderMarkdown(text string) string {
	if r.markdown == nil {
		return text + "\n"
	}
	out, err := r.markdown.Render(text)
	if err != nil {
		return text + "\n"
	}
	return out
}

// RunStart announces Stage 1 before the first model call.
func (r *Renderer) RunStart() {
	if r.quiet {
		return
	}
	fmt.Fprintf(r.w, "\n%s Collecting responses from %d models...\n",
		stageStyle.Render("Stage 1:"), r.requested)
}

func (r *Renderer) Stage1Complete(results []council.Stage1Result) {
	if r.quiet {
		return
	}
	responded := 0
	for _, res := range results {
		if !res.Failed {
			responded++
		}
	}
	fmt.Fprintf(r.w, "%s [%d/%d responded]\n\n",
		completeStyle.Render("Stage 1 Complete"), responded, len(results))

	for _, res := range results {
		if res.Failed {
			fmt.Fprintf(r.w, "%s\n\n", dimStyle.Render(res.Model+": no response"))
			continue
		}
		fmt.Fprintf(r.w, "%s\n%s\n", stageStyle.Render(res.Model),
			r.renderMarkdown(res.Response))
	}

	fmt.Fprintf(r.w, "%s Peer evaluation in progress...\n",
		stageStyle.Render("Stage 2:"))
}

func (r *Renderer) Stage2Complete(submissions []council.RankingSubmission, aggregate []council.AggregateRanking) {
	if r.quiet {
		return
	}
	valid := 0
	for _, s := range submissions {
		if s.Valid() {
			valid++
		}
	}
	fmt.Fprintf(r.w, "%s [%d/%d valid rankings]\n\n",
		completeStyle.Render("Stage 2 Complete"), valid, len(submissions))

	if len(aggregate) > 0 {
		var table strings.Builder
		table.WriteString("| Rank | Model | Avg Rank |\n")
		table.WriteString("|------|-------|----------|\n")
		for i, agg := range aggregate {
			table.WriteString(fmt.Sprintf("| %d | %s | %.2f |\n", i+1, agg.Model, agg.AverageRank))
		}
		fmt.Fprint(r.w, r.renderMarkdown(table.String()))
	} else {
		fmt.Fprintf(r.w, "%s\n", dimStyle.Render("no valid rankings"))
	}

	fmt.Fprintf(r.w, "\n%s Chairman synthesizing...\n",
		stageStyle.Render("Stage 3:"))
}

func (r *Renderer) Stage3Complete(result council.Stage3Result) {
	fmt.Fprintf(r.w, "\n%s\n", ruleStyle.Render(strings.Repeat("─", 24)+" FINAL ANSWER "+strings.Repeat("─", 24)))
	fmt.Fprintf(r.w, "%s\n\n", dimStyle.Render("Chairman: "+result.Model))
	fmt.Fprint(r.w, r.renderMarkdown(result.Response))
}

// Error reports a fatal run failure.
func (r *Renderer) Error(message string) {
	fmt.Fprintf(r.w, "%s %s\n", errorStyle.Render("Error:"), message)
}
