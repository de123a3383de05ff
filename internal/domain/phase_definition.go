package domain

// ExecutionType distinguishes phases that merely flip a label from phases
// that also spawn an external agent command. Keeping this as a field on a
// data table — rather than a subclass per phase — is deliberate: the five
// phases are data, not behavior, and a new phase is a table row.
type ExecutionType string

const (
	ExecutionTypeLabelOnly ExecutionType = "label_only"
	ExecutionTypeCommand   ExecutionType = "command"
)

// PhaseDefinition is the static, phase-keyed metadata the Workflow
// Executor needs to run a phase: which label it consumes and produces,
// whether it needs a provisioned worktree, and whether it needs a fresh
// tmux pane (as opposed to reusing the window's last pane).
type PhaseDefinition struct {
	Phase            Phase
	TriggerLabel     string
	ExecutionLabel   string
	ExecutionType    ExecutionType
	RequiresWorktree bool
	RequiresPane     bool
}

// PhaseDefinitions is the authoritative phase table of spec §3/§4.6. All
// five phases spawn a command; plan and queued_to_planning run at the
// repository root, implement and revise run inside the Issue's worktree.
var PhaseDefinitions = map[string]*PhaseDefinition{
	string(PhasePlan): {
		Phase:            PhasePlan,
		TriggerLabel:     LabelTodo,
		ExecutionLabel:   LabelPlanning,
		ExecutionType:    ExecutionTypeCommand,
		RequiresWorktree: false,
		RequiresPane:     true,
	},
	string(PhaseQueuedToPlanning): {
		Phase:            PhaseQueuedToPlanning,
		TriggerLabel:     LabelQueued,
		ExecutionLabel:   LabelPlanning,
		ExecutionType:    ExecutionTypeCommand,
		RequiresWorktree: false,
		RequiresPane:     true,
	},
	string(PhaseImplement): {
		Phase:            PhaseImplement,
		TriggerLabel:     LabelReady,
		ExecutionLabel:   LabelDoing,
		ExecutionType:    ExecutionTypeCommand,
		RequiresWorktree: true,
		RequiresPane:     true,
	},
	string(PhaseReview): {
		Phase:            PhaseReview,
		TriggerLabel:     LabelReviewRequested,
		ExecutionLabel:   LabelReviewing,
		ExecutionType:    ExecutionTypeCommand,
		RequiresWorktree: false,
		RequiresPane:     true,
	},
	string(PhaseRevise): {
		Phase:            PhaseRevise,
		TriggerLabel:     LabelRequiresChanges,
		ExecutionLabel:   LabelRevising,
		ExecutionType:    ExecutionTypeCommand,
		RequiresWorktree: true,
		RequiresPane:     true,
	},
}
