package provider

// FieldType selects how a form field renders.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldPassword FieldType = "password"
	FieldCheckbox FieldType = "checkbox"
	FieldTextArea FieldType = "textarea"
	FieldStatic   FieldType = "static"
)

// FormField is one rendered control of the edit form.
type FormField struct {
	Name        string
	Label       string
	Type        FieldType
	Value       string
	Checked     bool
	Caption     string
	Placeholder string
	// Issue is the short per-field problem shown next to the control.
	Issue string
	// Tone colors static values ("green", "red"); empty for plain text.
	Tone string
}

// Form is an ordered list of fields.
type Form struct {
	Fields []FormField
}

// Append adds fields to the end of the form.
func (f *Form) Append(fields ...FormField) {
	f.Fields = append(f.Fields, fields...)
}
