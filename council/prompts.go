package council

import (
	"fmt"
	"strings"

	"github.com/dshills/council-go/council/model"
)

// stage1Messages builds the identical message set sent to every council
// model: the user's query, nothing else.
func stage1Messages(query string) []model.Message {
	return []model.Message{{Role: model.RoleUser, Content: query}}
}

// stage2Messages builds the peer-review prompt. Each Stage-1 response is
// introduced by its anonymized label only; model identity is withheld so
// reviewers cannot favor a provider or themselves.
func stage2Messages(query string, assignment LabelAssignment, responses map[string]string) []model.Message {
	var sb strings.Builder

	sb.WriteString("You are evaluating anonymous responses to the following question:\n\n")
	sb.WriteString(query)
	sb.WriteString("\n\nHere are the responses:\n\n")

	for _, label := range assignment.Labels() {
		modelName, _ := assignment.ModelFor(label)
		sb.WriteString("## ")
		sb.WriteString(label)
		sb.WriteString("\n\n")
		sb.WriteString(responses[modelName])
		sb.WriteString("\n\n")
	}

	sb.WriteString("Evaluate each response for accuracy, depth, and clarity. ")
	sb.WriteString("Then rank ALL of them from best to worst.\n\n")
	sb.WriteString("End your reply with a single line of the form:\n\n")
	sb.WriteString("FINAL RANKING: ")
	sb.WriteString(strings.Join(assignment.Labels(), ", "))
	sb.WriteString("\n\n(listing every label exactly once, in your order, best first)")

	return []model.Message{{Role: model.RoleUser, Content: sb.String()}}
}

// stage3Messages builds the chairman synthesis prompt: the query, each
// responder identified by its real model name, and the aggregate ranking
// table from peer review. The table may be empty when no submission
// parsed; synthesis proceeds on Stage-1 content alone.
func stage3Messages(query string, stage1 []Stage1Result, aggregate []AggregateRanking) []model.Message {
	var sb strings.Builder

	sb.WriteString("You are the chairman of a council of AI models. ")
	sb.WriteString("The council was asked:\n\n")
	sb.WriteString(query)
	sb.WriteString("\n\nEach member responded individually:\n\n")

	for _, r := range stage1 {
		if r.Failed {
			continue
		}
		sb.WriteString("## ")
		sb.WriteString(r.Model)
		sb.WriteString("\n\n")
		sb.WriteString(r.Response)
		sb.WriteString("\n\n")
	}

	sb.WriteString("The members then anonymously ranked each other's responses. ")
	sb.WriteString("Aggregate ranking (lower average is better):\n\n")
	sb.WriteString("| Rank | Model | Average Rank |\n")
	sb.WriteString("|------|-------|--------------|\n")
	for i, agg := range aggregate {
		sb.WriteString(fmt.Sprintf("| %d | %s | %.2f |\n", i+1, agg.Model, agg.AverageRank))
	}

	sb.WriteString("\nSynthesize the best possible final answer to the original ")
	sb.WriteString("question, drawing on the strongest parts of each response and ")
	sb.WriteString("weighing the peer ranking. Respond with the final answer only.")

	return []model.Message{{Role: model.RoleUser, Content: sb.String()}}
}
