// Package domain holds the label vocabulary and phase strategy: the only
// part of soba with zero I/O. Everything here is a pure function over a
// label set, kept deliberately free of GitHub, tmux, or git concerns so it
// can be exhaustively property-tested.
package domain

import "strings"

// Phase is a stage in the Issue lifecycle, keyed to its trigger label.
// PhaseNone means the Issue carries no trigger label right now — either
// it's untouched or a process already owns it via an in-progress label.
type Phase string

const (
	PhaseNone             Phase = ""
	PhasePlan             Phase = "plan"
	PhaseQueuedToPlanning Phase = "queued_to_planning"
	PhaseImplement        Phase = "implement"
	PhaseReview           Phase = "review"
	PhaseRevise           Phase = "revise"
)

// Label vocabulary. Exact strings matter — they are the external contract
// with the GitHub repository's label set.
const (
	LabelTodo            = "soba:todo"
	LabelQueued          = "soba:queued"
	LabelPlanning        = "soba:planning"
	LabelReady           = "soba:ready"
	LabelDoing           = "soba:doing"
	LabelReviewRequested = "soba:review-requested"
	LabelReviewing       = "soba:reviewing"
	LabelDone            = "soba:done"
	LabelRequiresChanges = "soba:requires-changes"
	LabelRevising        = "soba:revising"
	LabelLGTM            = "soba:lgtm"
	LabelMerged          = "soba:merged"
)

// SobaLabels lists the full closed vocabulary in GitHub-bootstrap order,
// paired with the fixed human-readable descriptions from spec §6.
var SobaLabels = []struct {
	Name        string
	Description string
	Color       string
}{
	{LabelTodo, "To-do task waiting to be queued", "ededed"},
	{LabelQueued, "Queued for processing", "c5def5"},
	{LabelPlanning, "Planning phase", "fbca04"},
	{LabelReady, "Ready for implementation", "0e8a16"},
	{LabelDoing, "In progress", "1d76db"},
	{LabelReviewRequested, "Review requested", "d93f0b"},
	{LabelReviewing, "Under review", "5319e7"},
	{LabelDone, "Review completed", "0e8a16"},
	{LabelRequiresChanges, "Changes requested", "e11d21"},
	{LabelRevising, "Revising based on review feedback", "f9d0c4"},
	{LabelMerged, "PR merged and issue closed", "6f42c1"},
	{LabelLGTM, "PR approved for auto-merge", "2ea44f"},
}

// inProgressLabels are owned by a running process; an Issue carrying one
// of these resolves to PhaseNone regardless of any other label present.
var inProgressLabels = map[string]bool{
	LabelPlanning:  true,
	LabelDoing:     true,
	LabelReviewing: true,
	LabelRevising:  true,
}

// triggerOrder maps each trigger label to its phase and next label, and
// doubles as the priority order determine_phase scans in: queued, todo,
// ready, review-requested, requires-changes.
var triggerOrder = []struct {
	label string
	phase Phase
	next  string
}{
	{LabelQueued, PhaseQueuedToPlanning, LabelPlanning},
	{LabelTodo, PhasePlan, LabelPlanning},
	{LabelReady, PhaseImplement, LabelDoing},
	{LabelReviewRequested, PhaseReview, LabelReviewing},
	{LabelRequiresChanges, PhaseRevise, LabelRevising},
}

// phaseToNext and phaseToTrigger are triggerOrder, indexed for O(1) lookup.
var (
	phaseToNext    = map[Phase]string{}
	phaseToTrigger = map[Phase]string{}
)

func init() {
	for _, t := range triggerOrder {
		phaseToNext[t.phase] = t.next
		phaseToTrigger[t.phase] = t.label
	}
}

// IsInProgress reports whether labels carries any of the in-progress labels
// (planning, doing, reviewing, revising) — the Blocking Checker's "some
// Issue is currently owned by a running process" test.
func IsInProgress(labels []string) bool {
	for _, l := range labels {
		if inProgressLabels[l] {
			return true
		}
	}
	return false
}

// DeterminePhase scans labels in the fixed priority order above and
// returns the first matching trigger's phase, or PhaseNone if any
// in-progress label is present or no trigger label is present. The input
// order of labels never affects the result; a nil or empty slice, or one
// containing only unrelated labels, also yields PhaseNone.
func DeterminePhase(labels []string) Phase {
	for _, l := range labels {
		if inProgressLabels[l] {
			return PhaseNone
		}
	}
	for _, t := range triggerOrder {
		for _, l := range labels {
			if l == t.label {
				return t.phase
			}
		}
	}
	return PhaseNone
}

// NextLabel returns the label the Scheduler writes to claim phase as
// in-flight (the transition "lock"). Returns "" for PhaseNone.
func NextLabel(phase Phase) string {
	return phaseToNext[phase]
}

// TriggerLabel returns the label that must be present for phase to be
// selectable — the "from" side of the swap_label call. Returns "" for
// PhaseNone.
func TriggerLabel(phase Phase) string {
	return phaseToTrigger[phase]
}

// dagEdges is the monotone walk of spec §3 invariant 3:
// todo → queued → planning → ready → doing → review-requested → reviewing
// → {done | requires-changes → revising → ready}.
var dagEdges = map[string]map[string]bool{
	LabelTodo:            {LabelQueued: true},
	LabelQueued:          {LabelPlanning: true},
	LabelPlanning:        {LabelReady: true},
	LabelReady:           {LabelDoing: true},
	LabelDoing:           {LabelReviewRequested: true},
	LabelReviewRequested: {LabelReviewing: true},
	LabelReviewing:       {LabelDone: true, LabelRequiresChanges: true},
	LabelRequiresChanges: {LabelRevising: true},
	LabelRevising:        {LabelReady: true},
	LabelDone:            {LabelMerged: true},
	LabelLGTM:            {LabelMerged: true},
}

// ValidateTransition reports whether from→to is an edge of the label DAG.
// It rejects empty strings, labels missing the "soba:" prefix, and any
// pair not present as a forward edge above — including backward edges.
func ValidateTransition(from, to string) bool {
	if from == "" || to == "" {
		return false
	}
	if !strings.HasPrefix(from, "soba:") || !strings.HasPrefix(to, "soba:") {
		return false
	}
	return dagEdges[from][to]
}
