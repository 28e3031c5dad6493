package utils

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/itchan-dev/feedback/shared/domain"
	"github.com/itchan-dev/feedback/shared/errors"
	"github.com/microcosm-cc/bluemonday"
)

const (
	TitleMinLen = 3
	TitleMaxLen = 200
	BodyMaxLen  = 20_000
)

// Validator checks user-supplied thread and reply fields.
type Validator struct {
	policy *bluemonday.Policy
}

func NewValidator() *Validator {
	return &Validator{policy: bluemonday.StrictPolicy()}
}

// Sanitize strips markup and surrounding whitespace. Bodies are stored as
// plain text, so escaped entities are turned back into characters.
func (v *Validator) Sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(v.policy.Sanitize(s)))
}

func (v *Validator) Title(title domain.ThreadTitle) error {
	n := utf8.RuneCountInString(title)
	if n < TitleMinLen || n > TitleMaxLen {
		return errors.Validation("Title must be between %d and %d characters", TitleMinLen, TitleMaxLen)
	}
	return nil
}

func (v *Validator) Body(body domain.Body) error {
	if body == "" {
		return errors.Validation("Body is required")
	}
	if utf8.RuneCountInString(body) > BodyMaxLen {
		return errors.Validation("Body is too long")
	}
	return nil
}

func (v *Validator) Category(category domain.Category) error {
	if !category.Valid() {
		return errors.Validation("Category must be one of FEATURES, BUGS, GENERAL, FEEDBACK")
	}
	return nil
}

func (v *Validator) ThreadId(id domain.ThreadId) error {
	if id <= 0 {
		return errors.Validation("Thread id must be a positive number")
	}
	return nil
}
