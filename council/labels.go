package council

import (
	"fmt"
	"math/rand"
)

// LabelAssignment is the per-run bijection between anonymized labels and
// the models that produced a successful Stage-1 response. It is created
// once by assignLabels and read-only thereafter.
type LabelAssignment struct {
	labels       []string
	labelToModel map[string]string
	modelToLabel map[string]string
}

// assignLabels anonymizes the given models for peer review.
//
// The label order is a seeded random permutation of the input, so labels
// carry no positional signal a reviewer could correlate with submission
// order or model identity. Labels are "Response 1".."Response N" assigned
// to the permuted sequence. The seed is injectable so tests can pin the
// exact assignment; production draws a fresh seed per run.
func assignLabels(models []string, seed int64) LabelAssignment {
	perm := rand.New(rand.NewSource(seed)).Perm(len(models))

	a := LabelAssignment{
		labels:       make([]string, len(models)),
		labelToModel: make(map[string]string, len(models)),
		modelToLabel: make(map[string]string, len(models)),
	}
	for i, j := range perm {
		label := fmt.Sprintf("Response %d", i+1)
		a.labels[i] = label
		a.labelToModel[label] = models[j]
		a.modelToLabel[models[j]] = label
	}
	return a
}

// Len returns the number of labeled models.
func (a LabelAssignment) Len() int {
	return len(a.labels)
}

// Labels returns the labels in numeric order ("Response 1" first).
func (a LabelAssignment) Labels() []string {
	out := make([]string, len(a.labels))
	copy(out, a.labels)
	return out
}

// ModelFor resolves a label back to its model.
func (a LabelAssignment) ModelFor(label string) (string, bool) {
	m, ok := a.labelToModel[label]
	return m, ok
}

// LabelFor returns the label assigned to a model.
func (a LabelAssignment) LabelFor(model string) (string, bool) {
	l, ok := a.modelToLabel[model]
	return l, ok
}

// LabelToModel returns a copy of the full mapping.
func (a LabelAssignment) LabelToModel() map[string]string {
	out := make(map[string]string, len(a.labelToModel))
	for k, v := range a.labelToModel {
		out[k] = v
	}
	return out
}
