package council

import (
	"fmt"
	"regexp"
	"sort"
)

// labelPattern matches anonymized labels in reviewer free text. "#" and
// flexible spacing are tolerated since reviewers restate labels loosely.
var labelPattern = regexp.MustCompile(`Response\s*#?\s*(\d+)`)

// parseRanking resolves a reviewer's free-text output into a complete
// best-to-worst label ordering.
//
// The text is scanned for known labels; their order of appearance is the
// reviewer's ranking. The result is either the full ordering or a
// RankingParseError — never a partial ranking. A submission is invalid
// when any known label is missing, any label appears more than once, or
// the text names a label outside the known set.
func parseRanking(text string, known []string) ([]string, error) {
	knownSet := make(map[string]bool, len(known))
	for _, label := range known {
		knownSet[label] = true
	}

	matches := labelPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil, &RankingParseError{Reason: "no labels found"}
	}

	seen := make(map[string]bool, len(known))
	ordered := make([]string, 0, len(known))
	for _, m := range matches {
		label := "Response " + m[1]
		if !knownSet[label] {
			return nil, &RankingParseError{Reason: fmt.Sprintf("unknown label %q", label)}
		}
		if seen[label] {
			return nil, &RankingParseError{Reason: fmt.Sprintf("duplicate label %q", label)}
		}
		seen[label] = true
		ordered = append(ordered, label)
	}

	for _, label := range known {
		if !seen[label] {
			return nil, &RankingParseError{Reason: fmt.Sprintf("missing label %q", label)}
		}
	}
	return ordered, nil
}

// aggregateRankings computes the mean 1-indexed rank position per model
// across all valid submissions that name it.
//
// Models named in zero valid submissions are omitted rather than given a
// worst-case rank. The result is sorted ascending by average rank; ties
// break by council-list order so the output is deterministic.
func aggregateRankings(submissions []RankingSubmission, assignment LabelAssignment, council []string) []AggregateRanking {
	positions := make(map[string][]int)
	for _, sub := range submissions {
		if !sub.Valid() {
			continue
		}
		for rank, label := range sub.Parsed {
			model, ok := assignment.ModelFor(label)
			if !ok {
				continue
			}
			positions[model] = append(positions[model], rank+1)
		}
	}

	councilIndex := make(map[string]int, len(council))
	for i, m := range council {
		councilIndex[m] = i
	}

	out := make([]AggregateRanking, 0, len(positions))
	for model, ranks := range positions {
		sum := 0
		for _, r := range ranks {
			sum += r
		}
		out = append(out, AggregateRanking{
			Model:       model,
			AverageRank: float64(sum) / float64(len(ranks)),
			Rankings:    len(ranks),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AverageRank != out[j].AverageRank {
			return out[i].AverageRank < out[j].AverageRank
		}
		return councilIndex[out[i].Model] < councilIndex[out[j].Model]
	})
	return out
}
