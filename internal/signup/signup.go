// Package signup implements the three-step registration wizard: step 1
// collects identity fields, step 2 location and terms agreement, step 3
// (craftsmen only) specialty and bio. Each forward transition validates
// its field subset against an embedded JSON Schema; backward transitions
// are unconditional.
package signup

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ahmed-hamed0/sani3y.com/pkg/models"
	"github.com/qri-io/jsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	StepIdentity  = 1
	StepLocation  = 2
	StepCraftsman = 3
)

// Form carries every field the wizard collects.
type Form struct {
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	CountryCode     string          `json:"country_code,omitempty"`
	Password        string          `json:"password"`
	ConfirmPassword string          `json:"confirm_password"`
	Governorate     string          `json:"governorate"`
	City            string          `json:"city"`
	AgreeTerms      bool            `json:"agree_terms"`
	Role            models.UserRole `json:"role"`
	Specialty       string          `json:"specialty,omitempty"`
	Bio             string          `json:"bio,omitempty"`
	RememberMe      bool            `json:"remember_me,omitempty"`
}

// FullPhone returns the phone prefixed with the country code when the
// number does not already carry it.
func (f *Form) FullPhone() string {
	if f.CountryCode == "" || strings.HasPrefix(f.Phone, f.CountryCode) {
		return f.Phone
	}
	return f.CountryCode + f.Phone
}

// FieldError points at one offending form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator holds the compiled per-step schemas.
type Validator struct {
	steps map[int]*jsonschema.Schema
}

var stepSchemaFiles = map[int]string{
	StepIdentity:  "schemas/step1.json",
	StepLocation:  "schemas/step2.json",
	StepCraftsman: "schemas/step3.json",
}

// NewValidator loads and compiles the embedded step schemas.
func NewValidator() (*Validator, error) {
	steps := make(map[int]*jsonschema.Schema, len(stepSchemaFiles))
	for step, name := range stepSchemaFiles {
		b, err := schemaFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal(b, rs); err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		steps[step] = rs
	}

	return &Validator{steps: steps}, nil
}

// ValidateStep checks the field subset owned by one step. Cross-field
// rules the schemas cannot express (password confirmation) are applied
// after the schema pass.
func (v *Validator) ValidateStep(ctx context.Context, step int, f *Form) ([]FieldError, error) {
	rs, ok := v.steps[step]
	if !ok {
		return nil, fmt.Errorf("unknown step %d", step)
	}

	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}

	keyErrs, err := rs.ValidateBytes(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("validate step %d: %w", step, err)
	}

	out := make([]FieldError, 0, len(keyErrs))
	for _, ke := range keyErrs {
		field := fieldFromPath(ke.PropertyPath)
		if field == "" {
			// required-key violations are reported against the object,
			// with the key name quoted inside the message
			field = fieldFromMessage(ke.Message)
		}
		out = append(out, FieldError{Field: field, Message: ke.Message})
	}

	if step == StepIdentity && f.Password != f.ConfirmPassword {
		out = append(out, FieldError{Field: "confirm_password", Message: "passwords do not match"})
	}

	return out, nil
}

func fieldFromPath(path string) string {
	return strings.TrimPrefix(path, "/")
}

func fieldFromMessage(msg string) string {
	if i := strings.Index(msg, `"`); i >= 0 {
		if j := strings.Index(msg[i+1:], `"`); j >= 0 {
			return msg[i+1 : i+1+j]
		}
	}
	return ""
}

// Wizard tracks the current step of one registration attempt.
type Wizard struct {
	validator *Validator
	form      *Form
	step      int
}

func NewWizard(v *Validator, f *Form) *Wizard {
	return &Wizard{validator: v, form: f, step: StepIdentity}
}

func (w *Wizard) Step() int { return w.step }

// Next validates the current step's fields and advances on success. The
// craftsman step only exists for the craftsman role; a client stays on
// the location step, ready to submit.
func (w *Wizard) Next(ctx context.Context) ([]FieldError, error) {
	fieldErrs, err := w.validator.ValidateStep(ctx, w.step, w.form)
	if err != nil {
		return nil, err
	}
	if len(fieldErrs) > 0 {
		return fieldErrs, nil
	}

	switch w.step {
	case StepIdentity:
		w.step = StepLocation
	case StepLocation:
		if w.form.Role == models.RoleCraftsman {
			w.step = StepCraftsman
		}
	}

	return nil, nil
}

// Back moves one step backward unconditionally.
func (w *Wizard) Back() {
	if w.step > StepIdentity {
		w.step--
	}
}

// Validate runs every step applicable to the form's role, accumulating
// field errors. A craftsman cannot pass with an empty specialty.
func (v *Validator) Validate(ctx context.Context, f *Form) ([]FieldError, error) {
	steps := []int{StepIdentity, StepLocation}
	if f.Role == models.RoleCraftsman {
		steps = append(steps, StepCraftsman)
	}

	var out []FieldError
	for _, step := range steps {
		fieldErrs, err := v.ValidateStep(ctx, step, f)
		if err != nil {
			return nil, err
		}
		out = append(out, fieldErrs...)
	}

	if f.Role != models.RoleClient && f.Role != models.RoleCraftsman {
		out = append(out, FieldError{Field: "role", Message: "role must be client or craftsman"})
	}

	return out, nil
}
