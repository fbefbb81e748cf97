package provider

import (
	"net/http"
	"strings"

	"warden.dev/warden/internal/domain"
)

// FieldSpec declares one provider property.
type FieldSpec struct {
	Key         string
	Label       string
	Type        FieldType
	Caption     string
	Placeholder string
	Default     string
	Required    bool
	Secret      bool
	// Validate returns a sentence describing the problem, or "" when value is fine.
	Validate func(value string) string
}

// Base implements Provider from a list of field specs. Concrete providers embed
// it and override what they need.
type Base struct {
	KindKey     string
	DisplayName string
	Description string
	TypeKey     string
	Domain      string
	BuiltIn     bool
	Fields      []FieldSpec
	// Check runs cross-field validation on the normalized values.
	Check func(values domain.Properties) ([]string, Issues)
}

func (b *Base) Kind() string           { return b.KindKey }
func (b *Base) ProviderName() string   { return b.DisplayName }
func (b *Base) ProviderType() string   { return b.TypeKey }
func (b *Base) ProviderDomain() string { return b.Domain }

// Describe builds the descriptor and a JSON-schema view of the fields.
func (b *Base) Describe() TypeDescriptor {
	props := map[string]interface{}{}
	required := []string{}
	fields := make([]FieldDescriptor, 0, len(b.Fields))
	for _, f := range b.Fields {
		fields = append(fields, FieldDescriptor{Key: f.Key, Label: f.Label, Secret: f.Secret})
		prop := map[string]interface{}{"type": "string", "title": f.Label}
		if f.Type == FieldCheckbox {
			prop["enum"] = []string{"0", "1"}
		}
		if f.Secret {
			prop["writeOnly"] = true
		}
		if f.Default != "" {
			prop["default"] = f.Default
		}
		props[f.Key] = prop
		if f.Required {
			required = append(required, f.Key)
		}
	}
	return TypeDescriptor{
		Kind:         b.KindKey,
		DisplayName:  b.DisplayName,
		Description:  b.Description,
		ProviderType: b.TypeKey,
		Domain:       b.Domain,
		BuiltIn:      b.BuiltIn,
		Fields:       fields,
		ConfigSchema: map[string]interface{}{
			"type":                 "object",
			"additionalProperties": false,
			"properties":           props,
			"required":             required,
		},
	}
}

func (b *Base) SecretKeys() []string {
	var keys []string
	for _, f := range b.Fields {
		if f.Secret {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

func (b *Base) ReadFormValuesFromRequest(r *http.Request) domain.Properties {
	values := make(domain.Properties, 0, len(b.Fields))
	for _, f := range b.Fields {
		raw := strings.TrimSpace(r.PostFormValue(f.Key))
		if f.Type == FieldCheckbox {
			raw = checkboxValue(raw)
		}
		values = append(values, domain.Property{Key: f.Key, Value: raw})
	}
	return values
}

func (b *Base) ReadFormValuesFromProvider(cfg *domain.ProviderConfig) domain.Properties {
	values := make(domain.Properties, 0, len(b.Fields))
	for _, f := range b.Fields {
		v, ok := cfg.Properties[f.Key]
		if !ok {
			v = f.Default
		}
		values = append(values, domain.Property{Key: f.Key, Value: v})
	}
	return values
}

func (b *Base) ProcessEditForm(_ *http.Request, values, current domain.Properties) EditFormResult {
	result := EditFormResult{Issues: Issues{}}
	for _, f := range b.Fields {
		v := values.Value(f.Key)
		if f.Secret && v == SecretMask {
			v = current.Value(f.Key)
		}
		switch {
		case f.Required && v == "":
			result.Issues[f.Key] = "Required"
			result.Errors = append(result.Errors, f.Label+" is required.")
		case v != "" && f.Validate != nil:
			if msg := f.Validate(v); msg != "" {
				result.Issues[f.Key] = "Invalid"
				result.Errors = append(result.Errors, msg)
			}
		}
		result.Properties = append(result.Properties, domain.Property{Key: f.Key, Value: v})
	}
	if b.Check != nil && len(result.Errors) == 0 {
		errs, issues := b.Check(result.Properties)
		result.Errors = append(result.Errors, errs...)
		for k, v := range issues {
			result.Issues[k] = v
		}
	}
	return result
}

func (b *Base) ExtendEditForm(form *Form, values domain.Properties, issues Issues) {
	for _, f := range b.Fields {
		v := values.Value(f.Key)
		field := FormField{
			Name:        f.Key,
			Label:       f.Label,
			Type:        f.Type,
			Value:       v,
			Caption:     f.Caption,
			Placeholder: f.Placeholder,
			Issue:       issues[f.Key],
		}
		if field.Type == "" {
			field.Type = FieldText
		}
		if f.Secret {
			field.Type = FieldPassword
			field.Value = ""
			if v != "" {
				field.Value = SecretMask
			}
		}
		if f.Type == FieldCheckbox {
			field.Value = "1"
			field.Checked = v == "1"
		}
		form.Append(field)
	}
}

func checkboxValue(raw string) string {
	if raw == "" || raw == "0" {
		return "0"
	}
	return "1"
}
