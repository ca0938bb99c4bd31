package event

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/felicity/backend/internal/domain/shared"
)

// FieldType enumerates the supported custom form field types
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDropdown FieldType = "dropdown"
	FieldTypeTextarea FieldType = "textarea"
)

// IsValid checks if the field type is supported
func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeText, FieldTypeEmail, FieldTypeNumber, FieldTypeDropdown, FieldTypeTextarea:
		return true
	}
	return false
}

// FormField is one field of an event's registration form
type FormField struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty"`
	Order    int       `json:"order"`
}

// CustomForm is the ordered set of registration form fields
type CustomForm []FormField

// Validate checks the form definition for consistency
func (f CustomForm) Validate() error {
	seen := make(map[string]bool)
	for _, field := range f {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			return shared.NewDomainError("INVALID_FORM", "Form field key cannot be empty")
		}
		if seen[key] {
			return shared.NewDomainError("INVALID_FORM", "Duplicate form field key: "+key)
		}
		seen[key] = true
		if strings.TrimSpace(field.Label) == "" {
			return shared.NewDomainError("INVALID_FORM", "Form field label cannot be empty")
		}
		if !field.Type.IsValid() {
			return shared.NewDomainError("INVALID_FORM", "Unknown form field type: "+string(field.Type))
		}
		if field.Type == FieldTypeDropdown && len(field.Options) == 0 {
			return shared.NewDomainError("INVALID_FORM", "Dropdown field needs at least one option")
		}
	}
	return nil
}

// SameFieldSet reports whether the other form has exactly the same field
// keys and types. Label text, options and ordering may differ; this is the
// comparison used to enforce the form lock.
func (f CustomForm) SameFieldSet(other CustomForm) bool {
	if len(f) != len(other) {
		return false
	}
	types := make(map[string]FieldType, len(f))
	for _, field := range f {
		types[field.Key] = field.Type
	}
	for _, field := range other {
		t, ok := types[field.Key]
		if !ok || t != field.Type {
			return false
		}
	}
	return true
}

var formEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateResponses checks submitted responses against the form definition:
// required fields must be present and non-empty, typed fields must parse,
// and dropdown answers must be one of the declared options.
func (f CustomForm) ValidateResponses(responses map[string]string) error {
	for _, field := range f {
		value, ok := responses[field.Key]
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			if field.Required {
				return shared.NewDomainError("MISSING_FORM_FIELD", "Missing required field: "+field.Label)
			}
			continue
		}

		switch field.Type {
		case FieldTypeEmail:
			if !formEmailRegex.MatchString(value) {
				return shared.NewDomainError("INVALID_FORM_RESPONSE", "Invalid email for field: "+field.Label)
			}
		case FieldTypeNumber:
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				return shared.NewDomainError("INVALID_FORM_RESPONSE", "Invalid number for field: "+field.Label)
			}
		case FieldTypeDropdown:
			found := false
			for _, opt := range field.Options {
				if opt == value {
					found = true
					break
				}
			}
			if !found {
				return shared.NewDomainError("INVALID_FORM_RESPONSE", "Value is not an option for field: "+field.Label)
			}
		}
	}

	// Reject answers for fields that do not exist on the form
	known := make(map[string]bool, len(f))
	for _, field := range f {
		known[field.Key] = true
	}
	for key := range responses {
		if !known[key] {
			return shared.NewDomainError("INVALID_FORM_RESPONSE", "Unknown form field: "+key)
		}
	}

	return nil
}
