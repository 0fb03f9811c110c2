package destiin

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/avohilabs/destiin/domain"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed workflow/travel_request.yaml
var travelRequestWorkflow []byte

// WorkflowDefinition is the YAML form of a workflow together with the roles it needs.
type WorkflowDefinition struct {
	Name           string                      `yaml:"name"`
	DocumentType   string                      `yaml:"document_type"`
	IsActive       bool                        `yaml:"is_active"`
	OverrideStatus string                      `yaml:"override_status"`
	SendEmailAlert bool                        `yaml:"send_email_alert"`
	Roles          []string                    `yaml:"roles"`
	States         []domain.WorkflowState      `yaml:"states"`
	Transitions    []domain.WorkflowTransition `yaml:"transitions"`
}

// WorkflowReport lists what a provisioning run changed. Transitions are rendered as "Action from State".
type WorkflowReport struct {
	Workflow    string
	Created     bool
	Roles       []string
	States      []string
	Transitions []string
}

// Changed reports whether the run wrote anything.
func (r *WorkflowReport) Changed() bool {
	return r.Created || len(r.Roles) > 0 || len(r.States) > 0 || len(r.Transitions) > 0
}

// TravelRequestWorkflow returns the built-in Travel Request approval workflow.
func TravelRequestWorkflow() (*WorkflowDefinition, error) {
	return ParseWorkflowDefinition(bytes.NewReader(travelRequestWorkflow))
}

// LoadWorkflowDefinition reads a workflow definition from a YAML file.
func LoadWorkflowDefinition(path string) (*WorkflowDefinition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening workflow definition %s: %w", path, err)
	}
	defer f.Close()
	return ParseWorkflowDefinition(f)
}

// ParseWorkflowDefinition decodes and validates a YAML workflow definition. Unknown keys are rejected.
func ParseWorkflowDefinition(r io.Reader) (*WorkflowDefinition, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var def WorkflowDefinition
	if err := decoder.Decode(&def); err != nil {
		return nil, fmt.Errorf("decoding workflow definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks that states are unique, transitions are unique per (state, action)
// and that every transition and role reference points at something defined.
func (def *WorkflowDefinition) Validate() error {
	if def.Name == "" {
		return errors.New("workflow name is required")
	}
	if def.DocumentType == "" {
		return fmt.Errorf("workflow %s: document type is required", def.Name)
	}
	states := make(map[string]bool, len(def.States))
	for _, s := range def.States {
		if s.State == "" {
			return fmt.Errorf("workflow %s: state name is required", def.Name)
		}
		if states[s.State] {
			return fmt.Errorf("workflow %s: duplicate state %q", def.Name, s.State)
		}
		if s.DocStatus < 0 || s.DocStatus > 2 {
			return fmt.Errorf("workflow %s: state %q has invalid doc_status %d", def.Name, s.State, s.DocStatus)
		}
		if s.AllowEdit != "" && !slices.Contains(def.Roles, s.AllowEdit) {
			return fmt.Errorf("workflow %s: state %q refers to undeclared role %q", def.Name, s.State, s.AllowEdit)
		}
		states[s.State] = true
	}
	seen := make(map[[2]string]bool, len(def.Transitions))
	for _, t := range def.Transitions {
		key := [2]string{t.State, t.Action}
		if seen[key] {
			return fmt.Errorf("workflow %s: duplicate transition %s from %s", def.Name, t.Action, t.State)
		}
		if !states[t.State] || !states[t.NextState] {
			return fmt.Errorf("workflow %s: transition %s from %s refers to an undefined state", def.Name, t.Action, t.State)
		}
		if t.Allowed != "" && !slices.Contains(def.Roles, t.Allowed) {
			return fmt.Errorf("workflow %s: transition %s from %s refers to undeclared role %q", def.Name, t.Action, t.State, t.Allowed)
		}
		seen[key] = true
	}
	return nil
}

func (def *WorkflowDefinition) workflow() *domain.Workflow {
	return &domain.Workflow{
		Name:           def.Name,
		DocumentType:   def.DocumentType,
		IsActive:       def.IsActive,
		OverrideStatus: def.OverrideStatus,
		SendEmailAlert: def.SendEmailAlert,
		States:         slices.Clone(def.States),
		Transitions:    slices.Clone(def.Transitions),
	}
}

// SetupTravelRequestWorkflow provisions the built-in Travel Request approval workflow.
func (app *App) SetupTravelRequestWorkflow(ctx context.Context) (*WorkflowReport, error) {
	def, err := TravelRequestWorkflow()
	if err != nil {
		return nil, err
	}
	return app.SetupWorkflow(ctx, def)
}

// SetupWorkflow makes sure the roles and the workflow of def exist. An existing workflow only gains
// the states and transitions it is missing; rows already stored are left untouched.
// Running it again with the same definition changes nothing.
func (app *App) SetupWorkflow(ctx context.Context, def *WorkflowDefinition) (*WorkflowReport, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	report := &WorkflowReport{Workflow: def.Name}

	err := app.Repo.InTx(ctx, func(tx domain.Store) error {
		for _, role := range def.Roles {
			exists, err := tx.RoleExists(ctx, role)
			if err != nil {
				return fmt.Errorf("checking role %s : %w", role, err)
			}
			if exists {
				continue
			}
			if err := tx.CreateRole(ctx, role); err != nil {
				return fmt.Errorf("creating role %s : %w", role, err)
			}
			report.Roles = append(report.Roles, role)
		}

		existing, err := tx.GetWorkflow(ctx, def.Name)
		if errors.Is(err, domain.ErrNotFound) {
			if err := tx.CreateWorkflow(ctx, def.workflow()); err != nil {
				return fmt.Errorf("creating workflow %s : %w", def.Name, err)
			}
			report.Created = true
			return nil
		}
		if err != nil {
			return fmt.Errorf("getting workflow %s : %w", def.Name, err)
		}

		for _, state := range def.States {
			if existing.HasState(state.State) {
				continue
			}
			if err := tx.AddWorkflowState(ctx, def.Name, state); err != nil {
				return fmt.Errorf("adding state %s : %w", state.State, err)
			}
			report.States = append(report.States, state.State)
		}
		for _, transition := range def.Transitions {
			if existing.HasTransition(transition.State, transition.Action) {
				continue
			}
			if err := tx.AddWorkflowTransition(ctx, def.Name, transition); err != nil {
				return fmt.Errorf("adding transition %s from %s : %w", transition.Action, transition.State, err)
			}
			report.Transitions = append(report.Transitions, fmt.Sprintf("%s from %s", transition.Action, transition.State))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, role := range report.Roles {
		app.Logger.Info("created missing role", zap.String("role", role))
	}
	for _, state := range report.States {
		app.Logger.Info("added missing state", zap.String("workflow", def.Name), zap.String("state", state))
	}
	for _, transition := range report.Transitions {
		app.Logger.Info("added missing transition", zap.String("workflow", def.Name), zap.String("transition", transition))
	}
	if report.Created {
		app.Logger.Info("created new workflow", zap.String("workflow", def.Name))
	} else {
		app.Logger.Info("updated existing workflow", zap.String("workflow", def.Name))
	}
	return report, nil
}
