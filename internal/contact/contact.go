// Package contact validates the front-end contact form.
package contact

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinNameLength    = 2
	MinMessageLength = 10
)

// Messages shown next to each field and after a successful submit.
const (
	ErrName     = "Please enter your name (2+ characters)."
	ErrEmail    = "Please enter a valid email address."
	ErrMessage  = "Message should be at least 10 characters."
	SuccessNote = "Thanks! This form is front-end only—connect it to a backend to send messages."
)

// EmailPattern accepts local@domain.tld with no whitespace or extra @. It is
// written for the browser, where \s covers Unicode whitespace.
const EmailPattern = `^[^\s@]+@[^\s@]+\.[^\s@]+$`

// emailRe is EmailPattern for RE2, whose \s is ASCII only. The class lists
// the rest of JavaScript's whitespace set.
var emailRe = regexp.MustCompile(`^` + emailPart + `+@` + emailPart + `+\.` + emailPart + `+$`)

const emailPart = `[^\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}@]`

// Field names used as keys in Result.Errors.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldMessage = "message"
)

// Fields is the raw form input.
type Fields struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Result is the outcome of a validation. Errors holds one message per
// failing field; Note is set only when every field passed.
type Result struct {
	Errors map[string]string `json:"errors,omitempty"`
	Note   string            `json:"note,omitempty"`
}

// OK reports whether no field failed.
func (r Result) OK() bool { return len(r.Errors) == 0 }

// Validate checks all three fields and reports every failure together.
func Validate(f Fields) Result {
	name := strings.TrimSpace(f.Name)
	email := strings.TrimSpace(f.Email)
	message := strings.TrimSpace(f.Message)

	errs := make(map[string]string)
	if utf8.RuneCountInString(name) < MinNameLength {
		errs[FieldName] = ErrName
	}
	if !emailRe.MatchString(email) {
		errs[FieldEmail] = ErrEmail
	}
	if utf8.RuneCountInString(message) < MinMessageLength {
		errs[FieldMessage] = ErrMessage
	}

	if len(errs) > 0 {
		return Result{Errors: errs}
	}
	return Result{Note: SuccessNote}
}

// Form holds field state between submits.
type Form struct {
	Fields Fields
	Last   Result
}

// Submit validates the current fields. On success the fields are cleared;
// on failure they are left as typed.
func (f *Form) Submit() Result {
	f.Last = Validate(f.Fields)
	if f.Last.OK() {
		f.Fields = Fields{}
	}
	return f.Last
}
