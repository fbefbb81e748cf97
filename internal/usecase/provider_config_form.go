package usecase

import (
	"context"
	"net/http"

	"warden.dev/warden/internal/domain"
	"warden.dev/warden/internal/metrics"
	"warden.dev/warden/internal/provider"
)

// PermissionFlags are the account permission checkboxes of the edit form.
type PermissionFlags struct {
	AllowRegistration bool
	AllowLink         bool
	AllowUnlink       bool
}

// FlagsOf returns the current permission flags of cfg.
func FlagsOf(cfg *domain.ProviderConfig) PermissionFlags {
	return PermissionFlags{
		AllowRegistration: cfg.AllowRegistration,
		AllowLink:         cfg.AllowLink,
		AllowUnlink:       cfg.AllowUnlink,
	}
}

// FormState is what the edit form renders.
type FormState struct {
	Errors     []string
	Issues     provider.Issues
	Properties domain.Properties
	Flags      PermissionFlags
}

// Submission is one POST of the edit form.
type Submission struct {
	Request *http.Request
	Flags   PermissionFlags
	// FlagErrors are parse errors of the permission flags; they block the submission.
	FlagErrors    []string
	Actor         string
	ContentSource string
}

// SubmitResult carries the re-render state on validation failure, or the apply result.
type SubmitResult struct {
	Form    FormState
	Applied *ApplyResult
}

// InitialForm reads current values for the first render. No validation runs.
func (e *ProviderConfigEditor) InitialForm(res *Resolution) FormState {
	return FormState{
		Issues:     provider.Issues{},
		Properties: res.Provider.ReadFormValuesFromProvider(res.Config),
		Flags:      FlagsOf(res.Config),
	}
}

// Process runs provider-side extraction and validation of a submitted form.
func (e *ProviderConfigEditor) Process(r *http.Request, res *Resolution) provider.EditFormResult {
	current := res.Provider.ReadFormValuesFromProvider(res.Config)
	values := res.Provider.ReadFormValuesFromRequest(r)
	result := res.Provider.ProcessEditForm(r, values, current)
	if result.Issues == nil {
		result.Issues = provider.Issues{}
	}
	if result.Properties == nil {
		result.Properties = values
	}
	return result
}

// Submit processes the form and, when it is free of errors, builds and applies
// the changes. Any error leaves storage untouched.
func (e *ProviderConfigEditor) Submit(ctx context.Context, res *Resolution, sub Submission) (*SubmitResult, error) {
	processed := e.Process(sub.Request, res)

	form := FormState{
		Issues:     processed.Issues,
		Properties: processed.Properties,
		Flags:      sub.Flags,
	}
	form.Errors = append(form.Errors, sub.FlagErrors...)
	form.Errors = append(form.Errors, processed.Errors...)
	if len(form.Errors) > 0 {
		e.metrics.Submission(metrics.OutcomeInvalid)
		return &SubmitResult{Form: form}, nil
	}

	changes := BuildChanges(res.IsNew, sub.Flags, processed.Properties)
	applied, err := e.Apply(ctx, res, changes, sub.Actor, sub.ContentSource)
	if err != nil {
		e.metrics.Submission(metrics.OutcomeFailed)
		return nil, err
	}
	if applied.Created {
		e.metrics.Submission(metrics.OutcomeCreated)
	} else {
		e.metrics.Submission(metrics.OutcomeUpdated)
	}
	return &SubmitResult{Form: form, Applied: applied}, nil
}

// BuildChanges returns the changes of a valid submission in their fixed order:
// Enable (new configs only), the three permission flags, then one SetProperty
// per normalized property in field order.
func BuildChanges(isNew bool, flags PermissionFlags, props domain.Properties) []domain.Change {
	changes := make([]domain.Change, 0, 4+len(props))
	if isNew {
		changes = append(changes, domain.Enable{Enabled: true})
	}
	changes = append(changes,
		domain.AllowRegistration{Allow: flags.AllowRegistration},
		domain.AllowLink{Allow: flags.AllowLink},
		domain.AllowUnlink{Allow: flags.AllowUnlink},
	)
	for _, p := range props {
		changes = append(changes, domain.SetProperty{Key: p.Key, Value: p.Value})
	}
	return changes
}
