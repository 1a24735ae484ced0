package sitechat

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Default question length limits, in characters.
const (
	DefaultMinQuestionLength = 5
	DefaultMaxQuestionLength = 1000
)

// Validation is the verdict of a question check.
type Validation struct {
	Valid   bool   `json:"is_valid"`
	Details string `json:"details"`
}

// Err returns nil for a valid question and an EINVALID error carrying
// the details otherwise.
func (v Validation) Err() error {
	if v.Valid {
		return nil
	}
	return Errorf(EINVALID, "%s", v.Details)
}

// QuestionPolicy holds the inclusive length bounds for questions.
type QuestionPolicy struct {
	MinLength int
	MaxLength int
}

// DefaultQuestionPolicy returns the policy with the default bounds.
func DefaultQuestionPolicy() QuestionPolicy {
	return QuestionPolicy{
		MinLength: DefaultMinQuestionLength,
		MaxLength: DefaultMaxQuestionLength,
	}
}

// Validate checks q against the policy. Rules apply in order and the
// first failure wins. Length is counted in characters of the untrimmed
// question.
func (p QuestionPolicy) Validate(q string) Validation {
	if strings.TrimSpace(q) == "" {
		return Validation{Details: "No question provided"}
	}

	n := utf8.RuneCountInString(q)
	if n < p.MinLength {
		return Validation{Details: fmt.Sprintf("Question is too short. Minimum length is %d characters", p.MinLength)}
	}
	if n > p.MaxLength {
		return Validation{Details: fmt.Sprintf("Question is too long. Maximum length is %d characters", p.MaxLength)}
	}

	return Validation{Valid: true, Details: "Question is valid"}
}

// ValidateQuestion checks q against the given inclusive bounds.
func ValidateQuestion(q string, minLength, maxLength int) Validation {
	return QuestionPolicy{MinLength: minLength, MaxLength: maxLength}.Validate(q)
}
