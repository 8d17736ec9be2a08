// Package output formats deliberation results for terminals, pipes, and
// files: stable JSON for agents, plain Markdown, and a progressive rich
// renderer for interactive runs.
package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dshills/council-go/council"
)

// jsonDocument is the stable machine-readable shape. Stage data keeps the
// council package's field names; run-level bookkeeping is grouped under
// metadata.
type jsonDocument struct {
	Query    string                      `json:"query"`
	Stage1   []council.Stage1Result      `json:"stage1"`
	Stage2   []council.RankingSubmission `json:"stage2"`
	Stage3   *council.Stage3Result       `json:"stage3"`
	Metadata jsonMetadata                `json:"metadata"`
}

type jsonMetadata struct {
	LabelToModel      map[string]string          `json:"label_to_model"`
	AggregateRankings []council.AggregateRanking `json:"aggregate_rankings"`
	Responded         int                        `json:"responded"`
	Requested         int                        `json:"requested"`
}

// FormatJSON renders the result as indented JSON.
func FormatJSON(result *council.Result) (string, error) {
	doc := jsonDocument{
		Query:  result.Query,
		Stage1: result.Stage1,
		Stage2: result.Stage2,
		Stage3: result.Stage3,
		Metadata: jsonMetadata{
			LabelToModel:      result.LabelToModel,
			AggregateRankings: result.AggregateRankings,
			Responded:         result.Responded,
			Requested:         result.Requested,
		},
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	return string(data), nil
}

// FormatMarkdown renders the result as a Markdown document: query, each
// Stage-1 response under its model heading, the aggregate ranking table,
// and the synthesis.
func FormatMarkdown(result *council.Result) string {
	var sb strings.Builder

	sb.WriteString("# Council Deliberation\n\n")
	sb.WriteString("**Query:** " + result.Query + "\n\n")

	sb.WriteString("## Stage 1: Individual Responses\n\n")
	for _, r := range result.Stage1 {
		sb.WriteString("### " + r.Model + "\n\n")
		if r.Failed {
			sb.WriteString("_no response_\n\n")
			continue
		}
		sb.WriteString(r.Response + "\n\n")
	}

	sb.WriteString("## Stage 2: Peer Evaluation\n\n")
	sb.WriteString("### Aggregate Rankings\n\n")
	sb.WriteString("| Rank | Model | Average Rank |\n")
	sb.WriteString("|------|-------|--------------|\n")
	for i, agg := range result.AggregateRankings {
		sb.WriteString(fmt.Sprintf("| %d | %s | %.2f |\n", i+1, agg.Model, agg.AverageRank))
	}
	sb.WriteString("\n")

	sb.WriteString("## Stage 3: Final Synthesis\n\n")
	if result.Stage3 != nil {
		sb.WriteString("**Chairman:** " + result.Stage3.Model + "\n\n")
		sb.WriteString(result.Stage3.Response + "\n")
	} else {
		sb.WriteString("_synthesis unavailable_\n")
	}

	return sb.String()
}
