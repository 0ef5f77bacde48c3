// internal/ui/component/form.go
package component

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/oyevasu/spl-token-studio/internal/ui/style"
)

// FieldType represents the type of form field
type FieldType int

const (
	FieldTypeText FieldType = iota
	FieldTypeNumber
	FieldTypeSelect
)

// FormField represents a single form field
type FormField struct {
	Name        string
	Label       string
	Type        FieldType
	Value       string
	Options     []string // For select fields
	Labels      []string // Optional display text per option
	Placeholder string
	Required    bool
	Validation  func(string) error
	Error       string

	textInput   textinput.Model
	selectedIdx int
}

// Form is a vertical list of inputs. Tab moves between fields and enter on
// the last field marks the form submitted.
type Form struct {
	fields     []FormField
	focusIndex int
	width      int
	submitted  bool
	disabled   bool

	labelStyle   lipgloss.Style
	inputStyle   lipgloss.Style
	focusedStyle lipgloss.Style
	errorStyle   lipgloss.Style
}

// NewForm creates a new form component
func NewForm() *Form {
	palette := style.DefaultPalette()

	return &Form{
		labelStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Bold(true).
			MarginRight(1),

		inputStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Background(palette.BackgroundAlt).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),

		focusedStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Background(palette.BackgroundAlt).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary),

		errorStyle: lipgloss.NewStyle().
			Foreground(palette.Error),
	}
}

// AddField adds a field to the form
func (f *Form) AddField(name string, fieldType FieldType, label string, required bool, placeholder string) *Form {
	ti := textinput.New()
	ti.Width = 44
	ti.Placeholder = placeholder
	ti.CharLimit = 64

	if fieldType == FieldTypeNumber && placeholder == "" {
		ti.Placeholder = "0"
	}

	f.fields = append(f.fields, FormField{
		Name:        name,
		Label:       label,
		Type:        fieldType,
		Placeholder: placeholder,
		Required:    required,
		textInput:   ti,
	})

	if len(f.fields) == 1 {
		f.focus(0)
	}
	return f
}

// SetFieldValue sets the value of a field
func (f *Form) SetFieldValue(name, value string) *Form {
	if field := f.field(name); field != nil {
		field.Value = value
		field.textInput.SetValue(value)
		for i, opt := range field.Options {
			if opt == value {
				field.selectedIdx = i
			}
		}
	}
	return f
}

// SetSelectOptions sets the values of a select field and, optionally, the
// text shown for each. The first option becomes the value unless the current
// value is still offered.
func (f *Form) SetSelectOptions(name string, options, labels []string) *Form {
	field := f.field(name)
	if field == nil || field.Type != FieldTypeSelect {
		return f
	}
	field.Options = options
	field.Labels = labels
	field.selectedIdx = 0
	for i, opt := range options {
		if opt == field.Value {
			field.selectedIdx = i
		}
	}
	field.Value = ""
	if len(options) > 0 {
		field.Value = options[field.selectedIdx]
	}
	return f
}

// SetFieldValidation sets a validation function for a field
func (f *Form) SetFieldValidation(name string, validation func(string) error) *Form {
	if field := f.field(name); field != nil {
		field.Validation = validation
	}
	return f
}

// SetFieldError attaches an error shown under the field.
func (f *Form) SetFieldError(name, msg string) *Form {
	if field := f.field(name); field != nil {
		field.Error = msg
	}
	return f
}

// SetDisabled ignores input while an operation runs.
func (f *Form) SetDisabled(disabled bool) *Form {
	f.disabled = disabled
	return f
}

// SetWidth sets the form width
func (f *Form) SetWidth(width int) *Form {
	f.width = width
	inputWidth := width - 6 // padding and borders
	if inputWidth > 10 {
		for i := range f.fields {
			f.fields[i].textInput.Width = inputWidth
		}
	}
	return f
}

// Submitted reports whether enter was pressed on the last field and clears
// the flag.
func (f *Form) Submitted() bool {
	s := f.submitted
	f.submitted = false
	return s
}

// Update handles form input and updates
func (f *Form) Update(msg tea.Msg) (*Form, tea.Cmd) {
	if len(f.fields) == 0 || f.disabled {
		return f, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		field := &f.fields[f.focusIndex]
		switch msg.String() {
		case "tab", "down":
			if msg.String() == "down" && field.Type == FieldTypeSelect {
				f.cycleOption(1)
				return f, nil
			}
			f.focus((f.focusIndex + 1) % len(f.fields))
			return f, nil
		case "shift+tab", "up":
			if msg.String() == "up" && field.Type == FieldTypeSelect {
				f.cycleOption(-1)
				return f, nil
			}
			f.focus((f.focusIndex - 1 + len(f.fields)) % len(f.fields))
			return f, nil
		case "left", "right":
			if field.Type == FieldTypeSelect {
				if msg.String() == "left" {
					f.cycleOption(-1)
				} else {
					f.cycleOption(1)
				}
				return f, nil
			}
		case "enter":
			if f.focusIndex == len(f.fields)-1 {
				f.submitted = true
			} else {
				f.focus(f.focusIndex + 1)
			}
			return f, nil
		}
	}

	field := &f.fields[f.focusIndex]
	if field.Type == FieldTypeSelect {
		return f, nil
	}

	var cmd tea.Cmd
	field.textInput, cmd = field.textInput.Update(msg)
	v := field.textInput.Value()
	if field.Type == FieldTypeNumber && numericInput(v) != nil {
		// drop characters that cannot be part of an amount
		field.textInput.SetValue(field.Value)
		return f, cmd
	}
	if v != field.Value {
		field.Value = v
		field.Error = ""
	}
	return f, cmd
}

// View renders the form
func (f *Form) View() string {
	if len(f.fields) == 0 {
		return ""
	}

	var content strings.Builder
	for i, field := range f.fields {
		label := field.Label
		if field.Required {
			label += " *"
		}
		content.WriteString(f.labelStyle.Render(label))
		content.WriteString("\n")

		fieldStyle := f.inputStyle
		if i == f.focusIndex && !f.disabled {
			fieldStyle = f.focusedStyle
		}

		switch field.Type {
		case FieldTypeSelect:
			text := field.display()
			if text == "" {
				text = style.MutedStyle.Render(field.Placeholder)
			}
			if i == f.focusIndex && len(field.Options) > 1 {
				text = "◀ " + text + " ▶"
			}
			content.WriteString(fieldStyle.Render(text))
		default:
			content.WriteString(fieldStyle.Render(field.textInput.View()))
		}
		content.WriteString("\n")

		if field.Error != "" {
			content.WriteString(f.errorStyle.Render("⚠ " + field.Error))
			content.WriteString("\n")
		}
	}

	return strings.TrimRight(content.String(), "\n")
}

// Validate checks required fields and runs custom validators.
func (f *Form) Validate() bool {
	valid := true

	for i := range f.fields {
		field := &f.fields[i]
		field.Error = ""

		if field.Required && strings.TrimSpace(field.Value) == "" {
			field.Error = "This field is required"
			valid = false
			continue
		}
		if field.Validation != nil && field.Value != "" {
			if err := field.Validation(field.Value); err != nil {
				field.Error = err.Error()
				valid = false
			}
		}
	}

	return valid
}

// GetValues returns all form field values as a map
func (f *Form) GetValues() map[string]string {
	values := make(map[string]string, len(f.fields))
	for _, field := range f.fields {
		values[field.Name] = strings.TrimSpace(field.Value)
	}
	return values
}

// GetValue returns the value of a specific field
func (f *Form) GetValue(name string) string {
	for _, field := range f.fields {
		if field.Name == name {
			return strings.TrimSpace(field.Value)
		}
	}
	return ""
}

// FocusedField returns the name of the focused field.
func (f *Form) FocusedField() string {
	if len(f.fields) == 0 {
		return ""
	}
	return f.fields[f.focusIndex].Name
}

// Reset clears all text fields and moves focus to the first field. Select
// fields keep their options.
func (f *Form) Reset() *Form {
	for i := range f.fields {
		field := &f.fields[i]
		field.Error = ""
		if field.Type == FieldTypeSelect {
			continue
		}
		field.Value = ""
		field.textInput.SetValue("")
	}
	f.submitted = false
	if len(f.fields) > 0 {
		f.focus(0)
	}
	return f
}

func (f *Form) field(name string) *FormField {
	for i := range f.fields {
		if f.fields[i].Name == name {
			return &f.fields[i]
		}
	}
	return nil
}

func (f *Form) focus(index int) {
	for i := range f.fields {
		f.fields[i].textInput.Blur()
	}
	f.focusIndex = index
	if f.fields[index].Type != FieldTypeSelect {
		f.fields[index].textInput.Focus()
	}
}

func (f *Form) cycleOption(delta int) {
	field := &f.fields[f.focusIndex]
	if len(field.Options) == 0 {
		return
	}
	field.selectedIdx = (field.selectedIdx + delta + len(field.Options)) % len(field.Options)
	field.Value = field.Options[field.selectedIdx]
	field.Error = ""
}

func (field FormField) display() string {
	if len(field.Options) == 0 {
		return ""
	}
	if field.selectedIdx < len(field.Labels) {
		return field.Labels[field.selectedIdx]
	}
	return field.Options[field.selectedIdx]
}

var errNotNumeric = errors.New("digits and one decimal point only")

// numericInput allows digits and a single decimal point while typing.
func numericInput(s string) error {
	dot := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' && !dot:
			dot = true
		default:
			return errNotNumeric
		}
	}
	return nil
}
