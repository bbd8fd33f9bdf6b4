package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// FormStatus is the lifecycle state of a form.
type FormStatus string

const (
	FormStatusDraft     FormStatus = "draft"
	FormStatusPublished FormStatus = "published"
	FormStatusPaused    FormStatus = "paused"
	FormStatusArchived  FormStatus = "archived"
)

// ValidFormStatus reports whether s is a known form status.
func ValidFormStatus(s FormStatus) bool {
	switch s {
	case FormStatusDraft, FormStatusPublished, FormStatusPaused, FormStatusArchived:
		return true
	}
	return false
}

// CanTransition reports whether a form may move from one status to another.
// draft <-> published and published <-> paused are both walkable; any live
// status can be archived; archived is terminal.
func CanTransition(from, to FormStatus) bool {
	if from == to {
		return false
	}
	switch from {
	case FormStatusDraft:
		return to == FormStatusPublished || to == FormStatusArchived
	case FormStatusPublished:
		return to == FormStatusDraft || to == FormStatusPaused || to == FormStatusArchived
	case FormStatusPaused:
		return to == FormStatusPublished || to == FormStatusArchived
	case FormStatusArchived:
		return false
	}
	return false
}

// FormChannel is the feedback-collection surface a form targets.
type FormChannel string

const (
	ChannelQR     FormChannel = "qr"
	ChannelWidget FormChannel = "widget"
	ChannelLink   FormChannel = "link"
)

// ValidFormChannel reports whether c is a known channel.
func ValidFormChannel(c FormChannel) bool {
	switch c {
	case ChannelQR, ChannelWidget, ChannelLink:
		return true
	}
	return false
}

// Form is a feedback form. It belongs to one project and, denormalized for
// quota counting, one account.
type Form struct {
	ID              uuid.UUID
	AccountID       uuid.UUID
	ProjectID       uuid.UUID
	Name            string
	Description     string
	Channel         FormChannel
	Status          FormStatus
	ThankYouMessage string
	RedirectURL     string
	Settings        json.RawMessage
	Version         int32
	PublishedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionTypeNPS          QuestionType = "nps"
	QuestionTypeRating       QuestionType = "rating"
	QuestionTypeSingleSelect QuestionType = "single_select"
	QuestionTypeMultiSelect  QuestionType = "multi_select"
	QuestionTypeShortText    QuestionType = "short_text"
	QuestionTypeLongText     QuestionType = "long_text"
)

// ValidQuestionType reports whether t is a known question type.
func ValidQuestionType(t QuestionType) bool {
	switch t {
	case QuestionTypeNPS, QuestionTypeRating, QuestionTypeSingleSelect,
		QuestionTypeMultiSelect, QuestionTypeShortText, QuestionTypeLongText:
		return true
	}
	return false
}

// RequiresOptions reports whether the question type needs a non-empty
// options list.
func (t QuestionType) RequiresOptions() bool {
	return t == QuestionTypeSingleSelect || t == QuestionTypeMultiSelect
}

// FormQuestion is one ordered question on a form.
type FormQuestion struct {
	ID          uuid.UUID
	FormID      uuid.UUID
	Position    int32
	Type        QuestionType
	Label       string
	Description string
	Placeholder string
	Options     []string
	IsRequired  bool
	Metadata    json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// QuestionParams holds input for one question when creating a form.
type QuestionParams struct {
	Type        QuestionType
	Label       string
	Description string
	Placeholder string
	Options     []string
	IsRequired  bool
	Metadata    json.RawMessage
}

// CreateFormParams holds input for creating a form with its questions.
type CreateFormParams struct {
	AccountID       uuid.UUID
	ProjectID       uuid.UUID
	Name            string
	Description     string
	Channel         FormChannel
	ThankYouMessage string
	RedirectURL     string
	Settings        json.RawMessage
	Questions       []QuestionParams
}

// FormWithQuestions bundles a form with its ordered questions.
type FormWithQuestions struct {
	Form      Form
	Questions []FormQuestion
}
