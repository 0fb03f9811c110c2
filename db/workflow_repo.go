package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avohilabs/destiin/domain"
	"github.com/jmoiron/sqlx"
)

var _ domain.WorkflowRepository = (*Repository)(nil)

// dbWorkflow represents a workflow header row.
type dbWorkflow struct {
	Name           string `db:"name"`
	DocumentType   string `db:"document_type"`
	IsActive       bool   `db:"is_active"`
	OverrideStatus string `db:"override_status"`
	SendEmailAlert bool   `db:"send_email_alert"`
}

// dbWorkflowState represents a row of the workflow_state child table.
type dbWorkflowState struct {
	Workflow  string `db:"workflow"`
	Idx       int    `db:"idx"`
	State     string `db:"state"`
	DocStatus int    `db:"doc_status"`
	AllowEdit string `db:"allow_edit"`
}

// dbWorkflowTransition represents a row of the workflow_transition child table.
type dbWorkflowTransition struct {
	Workflow          string `db:"workflow"`
	Idx               int    `db:"idx"`
	State             string `db:"state"`
	Action            string `db:"action"`
	NextState         string `db:"next_state"`
	Allowed           string `db:"allowed"`
	AllowSelfApproval bool   `db:"allow_self_approval"`
}

// RoleExists reports whether the role has been created.
func (repo *Repository) RoleExists(ctx context.Context, name string) (bool, error) {
	var count int
	err := sqlx.GetContext(ctx, repo.ext, &count, `SELECT COUNT(*) FROM role WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("checking role %s: %w", name, err)
	}
	return count > 0, nil
}

// CreateRole stores a new role.
func (repo *Repository) CreateRole(ctx context.Context, name string) error {
	_, err := repo.ext.ExecContext(ctx, `INSERT INTO role (name) VALUES (?)`, name)
	if err != nil {
		return fmt.Errorf("creating role %s: %w", name, err)
	}
	return nil
}

// GetWorkflow loads a workflow with its states and transitions in insertion order.
func (repo *Repository) GetWorkflow(ctx context.Context, name string) (*domain.Workflow, error) {
	var header dbWorkflow
	err := sqlx.GetContext(ctx, repo.ext, &header,
		`SELECT name, document_type, is_active, override_status, send_email_alert FROM workflow WHERE name = ?`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting workflow %s: %w", name, err)
	}

	var states []*dbWorkflowState
	err = sqlx.SelectContext(ctx, repo.ext, &states,
		`SELECT workflow, idx, state, doc_status, allow_edit FROM workflow_state WHERE workflow = ? ORDER BY idx`, name)
	if err != nil {
		return nil, fmt.Errorf("getting states of workflow %s: %w", name, err)
	}

	var transitions []*dbWorkflowTransition
	err = sqlx.SelectContext(ctx, repo.ext, &transitions,
		`SELECT workflow, idx, state, action, next_state, allowed, allow_self_approval
		 FROM workflow_transition WHERE workflow = ? ORDER BY idx`, name)
	if err != nil {
		return nil, fmt.Errorf("getting transitions of workflow %s: %w", name, err)
	}

	workflow := &domain.Workflow{
		Name:           header.Name,
		DocumentType:   header.DocumentType,
		IsActive:       header.IsActive,
		OverrideStatus: header.OverrideStatus,
		SendEmailAlert: header.SendEmailAlert,
		States:         make([]domain.WorkflowState, len(states)),
		Transitions:    make([]domain.WorkflowTransition, len(transitions)),
	}
	for i, s := range states {
		workflow.States[i] = domain.WorkflowState{State: s.State, DocStatus: s.DocStatus, AllowEdit: s.AllowEdit}
	}
	for i, t := range transitions {
		workflow.Transitions[i] = domain.WorkflowTransition{
			State:             t.State,
			Action:            t.Action,
			NextState:         t.NextState,
			Allowed:           t.Allowed,
			AllowSelfApproval: t.AllowSelfApproval,
		}
	}
	return workflow, nil
}

// CreateWorkflow stores the workflow header and all of its child rows.
func (repo *Repository) CreateWorkflow(ctx context.Context, workflow *domain.Workflow) error {
	query := `INSERT INTO workflow (name, document_type, is_active, override_status, send_email_alert)
		      VALUES (?, ?, ?, ?, ?)`

	_, err := repo.ext.ExecContext(ctx, query, workflow.Name, workflow.DocumentType,
		boolToInt(workflow.IsActive), workflow.OverrideStatus, boolToInt(workflow.SendEmailAlert))
	if err != nil {
		return fmt.Errorf("creating workflow %s: %w", workflow.Name, err)
	}

	for _, state := range workflow.States {
		if err := repo.AddWorkflowState(ctx, workflow.Name, state); err != nil {
			return err
		}
	}
	for _, transition := range workflow.Transitions {
		if err := repo.AddWorkflowTransition(ctx, workflow.Name, transition); err != nil {
			return err
		}
	}
	return nil
}

// AddWorkflowState appends a state after the existing ones.
func (repo *Repository) AddWorkflowState(ctx context.Context, workflow string, state domain.WorkflowState) error {
	query := `INSERT INTO workflow_state (workflow, idx, state, doc_status, allow_edit)
		      VALUES (?, (SELECT IFNULL(MAX(idx), 0) + 1 FROM workflow_state WHERE workflow = ?), ?, ?, ?)`

	_, err := repo.ext.ExecContext(ctx, query, workflow, workflow, state.State, state.DocStatus, state.AllowEdit)
	if err != nil {
		return fmt.Errorf("adding state %s to workflow %s: %w", state.State, workflow, err)
	}
	return nil
}

// AddWorkflowTransition appends a transition after the existing ones.
func (repo *Repository) AddWorkflowTransition(ctx context.Context, workflow string, transition domain.WorkflowTransition) error {
	query := `INSERT INTO workflow_transition (workflow, idx, state, action, next_state, allowed, allow_self_approval)
		      VALUES (?, (SELECT IFNULL(MAX(idx), 0) + 1 FROM workflow_transition WHERE workflow = ?), ?, ?, ?, ?, ?)`

	_, err := repo.ext.ExecContext(ctx, query, workflow, workflow, transition.State, transition.Action,
		transition.NextState, transition.Allowed, boolToInt(transition.AllowSelfApproval))
	if err != nil {
		return fmt.Errorf("adding transition %s from %s to workflow %s: %w", transition.Action, transition.State, workflow, err)
	}
	return nil
}
