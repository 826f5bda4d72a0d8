package validation

import (
	"strings"
)

// FieldError is a single human-readable message attached to a field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors collects field errors in the order they were added. It implements
// error so services can return it next to their sentinel errors.
type Errors struct {
	list []FieldError
}

// Add appends msg to field.
func (e *Errors) Add(field, msg string) {
	e.list = append(e.list, FieldError{Field: field, Message: msg})
}

// Empty reports whether no errors were added.
func (e *Errors) Empty() bool {
	return e == nil || len(e.list) == 0
}

// On returns the messages attached to field.
func (e *Errors) On(field string) []string {
	if e == nil {
		return nil
	}
	var out []string
	for _, fe := range e.list {
		if fe.Field == field {
			out = append(out, fe.Message)
		}
	}
	return out
}

// Fields returns the distinct field names in insertion order.
func (e *Errors) Fields() []string {
	if e == nil {
		return nil
	}
	seen := make(map[string]bool, len(e.list))
	var out []string
	for _, fe := range e.list {
		if !seen[fe.Field] {
			seen[fe.Field] = true
			out = append(out, fe.Field)
		}
	}
	return out
}

// Rename moves every message from one field name to another.
func (e *Errors) Rename(from, to string) {
	if e == nil {
		return
	}
	for i := range e.list {
		if e.list[i].Field == from {
			e.list[i].Field = to
		}
	}
}

// FullMessages renders each error prefixed with its humanized field name.
func (e *Errors) FullMessages() []string {
	if e == nil {
		return nil
	}
	out := make([]string, 0, len(e.list))
	for _, fe := range e.list {
		out = append(out, FullMessage(fe.Field, fe.Message))
	}
	return out
}

func (e *Errors) Error() string {
	return strings.Join(e.FullMessages(), ", ")
}

// FullMessage joins a humanized field name and a message: ("occurred_at",
// "can't be blank") -> "Occurred at can't be blank".
func FullMessage(field, msg string) string {
	h := Humanize(field)
	if h == "" {
		return msg
	}
	return h + " " + msg
}

// Humanize turns a snake_case field name into a capitalized phrase.
func Humanize(field string) string {
	s := strings.TrimSpace(strings.ReplaceAll(field, "_", " "))
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
