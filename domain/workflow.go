package domain

import "context"

// WorkflowRepository defines the interface for managing roles and workflow definitions.
// The workflow is stored as configuration only; nothing in this module executes it.
type WorkflowRepository interface {
	// RoleExists reports whether a role with the given name exists.
	RoleExists(ctx context.Context, name string) (bool, error)

	// CreateRole stores a new role.
	CreateRole(ctx context.Context, name string) error

	// GetWorkflow retrieves a workflow with its states and transitions.
	// It returns ErrNotFound if no workflow has that name.
	GetWorkflow(ctx context.Context, name string) (*Workflow, error)

	// CreateWorkflow stores a workflow together with its states and transitions.
	CreateWorkflow(ctx context.Context, workflow *Workflow) error

	// AddWorkflowState appends a state to an existing workflow.
	AddWorkflowState(ctx context.Context, workflow string, state WorkflowState) error

	// AddWorkflowTransition appends a transition to an existing workflow.
	AddWorkflowTransition(ctx context.Context, workflow string, transition WorkflowTransition) error
}

// Role is a named permission group that workflow states and transitions refer to.
type Role struct {
	Name string
}

// Workflow describes the approval states of a document type and the actions that move between them.
type Workflow struct {
	Name           string
	DocumentType   string
	IsActive       bool
	OverrideStatus string
	SendEmailAlert bool
	States         []WorkflowState
	Transitions    []WorkflowTransition
}

// WorkflowState is a single state of a workflow. States are unique by State within a workflow.
type WorkflowState struct {
	State     string `yaml:"state"`
	DocStatus int    `yaml:"doc_status"` // 0 draft, 1 submitted, 2 cancelled.
	AllowEdit string `yaml:"allow_edit"` // Role allowed to edit a document in this state.
}

// WorkflowTransition moves a document from State to NextState when a user with the Allowed role
// performs Action. Transitions are unique by (State, Action) within a workflow.
type WorkflowTransition struct {
	State             string `yaml:"state"`
	Action            string `yaml:"action"`
	NextState         string `yaml:"next_state"`
	Allowed           string `yaml:"allowed"`
	AllowSelfApproval bool   `yaml:"allow_self_approval"`
}

// HasState reports whether the workflow already defines the named state.
func (w *Workflow) HasState(state string) bool {
	for _, s := range w.States {
		if s.State == state {
			return true
		}
	}
	return false
}

// HasTransition reports whether the workflow already defines a transition for action out of state.
func (w *Workflow) HasTransition(state, action string) bool {
	for _, t := range w.Transitions {
		if t.State == state && t.Action == action {
			return true
		}
	}
	return false
}
