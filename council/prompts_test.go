package council

import (
	"strings"
	"testing"
)

func TestStage1Messages(t *testing.T) {
	msgs := stage1Messages("why is the sky blue?")

	if len(msgs) != 1 {
		t.Fatalf("len(messages) = %d, want 1", len(msgs))
	}
	if msgs[0].Role != "user" {
		t.Errorf("role = %q, want user", msgs[0].Role)
	}
	if msgs[0].Content != "why is the sky blue?" {
		t.Errorf("content = %q", msgs[0].Content)
	}
}

func TestStage2Messages_WithholdsIdentity(t *testing.T) {
	assignment := testAssignment()
	responses := map[string]string{
		"A": "answer alpha",
		"B": "answer beta",
		"C": "answer gamma",
	}

	msgs := stage2Messages("the question", assignment, responses)
	if len(msgs) != 1 {
		t.Fatalf("len(messages) = %d, want 1", len(msgs))
	}
	prompt := msgs[0].Content

	// Every label and every response body appears; no model identity does.
	for _, label := range assignment.Labels() {
		if !strings.Contains(prompt, label) {
			t.Errorf("prompt missing label %q", label)
		}
	}
	for _, body := range responses {
		if !strings.Contains(prompt, body) {
			t.Errorf("prompt missing response %q", body)
		}
	}
	for model := range responses {
		if strings.Contains(prompt, "## "+model) {
			t.Errorf("prompt leaks model identity %q", model)
		}
	}
	if !strings.Contains(prompt, "the question") {
		t.Error("prompt missing the original query")
	}
	if !strings.Contains(prompt, "FINAL RANKING:") {
		t.Error("prompt missing the ranking output instruction")
	}
}

func TestStage2Messages_ResponsesInLabelOrder(t *testing.T) {
	assignment := testAssignment()
	responses := map[string]string{"A": "alpha", "B": "beta", "C": "gamma"}

	prompt := stage2Messages("q", assignment, responses)[0].Content

	// Response bodies must follow label numeric order: B (Response 1)
	// before A (Response 2) before C (Response 3).
	iBeta := strings.Index(prompt, "beta")
	iAlpha := strings.Index(prompt, "alpha")
	iGamma := strings.Index(prompt, "gamma")
	if !(iBeta < iAlpha && iAlpha < iGamma) {
		t.Errorf("response order = beta@%d alpha@%d gamma@%d, want label order", iBeta, iAlpha, iGamma)
	}
}

func TestStage3Messages_DeanonymizedWithRankingTable(t *testing.T) {
	stage1 := []Stage1Result{
		{Model: "A", Response: "answer alpha"},
		{Model: "B", Failed: true},
		{Model: "C", Response: "answer gamma"},
	}
	aggregate := []AggregateRanking{
		{Model: "C", AverageRank: 1.5, Rankings: 2},
		{Model: "A", AverageRank: 2.5, Rankings: 2},
	}

	prompt := stage3Messages("the question", stage1, aggregate)[0].Content

	if !strings.Contains(prompt, "## A") || !strings.Contains(prompt, "## C") {
		t.Error("prompt missing de-anonymized responder names")
	}
	if strings.Contains(prompt, "## B") {
		t.Error("prompt includes failed responder B")
	}
	if !strings.Contains(prompt, "| 1 | C | 1.50 |") {
		t.Errorf("prompt missing ranking table row for C:\n%s", prompt)
	}
	if !strings.Contains(prompt, "| 2 | A | 2.50 |") {
		t.Error("prompt missing ranking table row for A")
	}
}

func TestStage3Messages_EmptyAggregate(t *testing.T) {
	stage1 := []Stage1Result{{Model: "A", Response: "alpha"}}

	prompt := stage3Messages("q", stage1, nil)[0].Content

	// Empty table is permitted; the header still frames the synthesis.
	if !strings.Contains(prompt, "| Rank | Model | Average Rank |") {
		t.Error("prompt missing ranking table header")
	}
	if !strings.Contains(prompt, "## A") {
		t.Error("prompt missing responder content")
	}
}
