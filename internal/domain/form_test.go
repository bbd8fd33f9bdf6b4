package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from FormStatus
		to   FormStatus
		want bool
	}{
		{FormStatusDraft, FormStatusPublished, true},
		{FormStatusDraft, FormStatusPaused, false},
		{FormStatusDraft, FormStatusArchived, true},
		{FormStatusPublished, FormStatusDraft, true},
		{FormStatusPublished, FormStatusPaused, true},
		{FormStatusPublished, FormStatusArchived, true},
		{FormStatusPaused, FormStatusPublished, true},
		{FormStatusPaused, FormStatusDraft, false},
		{FormStatusPaused, FormStatusArchived, true},
		{FormStatusArchived, FormStatusDraft, false},
		{FormStatusArchived, FormStatusPublished, false},
		{FormStatusArchived, FormStatusPaused, false},
		{FormStatusDraft, FormStatusDraft, false},
		{FormStatusPublished, FormStatusPublished, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestValidFormStatus(t *testing.T) {
	assert.True(t, ValidFormStatus(FormStatusDraft))
	assert.True(t, ValidFormStatus(FormStatusPublished))
	assert.True(t, ValidFormStatus(FormStatusPaused))
	assert.True(t, ValidFormStatus(FormStatusArchived))
	assert.False(t, ValidFormStatus(FormStatus("live")))
	assert.False(t, ValidFormStatus(FormStatus("")))
}

func TestValidFormChannel(t *testing.T) {
	assert.True(t, ValidFormChannel(ChannelQR))
	assert.True(t, ValidFormChannel(ChannelWidget))
	assert.True(t, ValidFormChannel(ChannelLink))
	assert.False(t, ValidFormChannel(FormChannel("email")))
}

func TestQuestionTypeRequiresOptions(t *testing.T) {
	assert.True(t, QuestionTypeSingleSelect.RequiresOptions())
	assert.True(t, QuestionTypeMultiSelect.RequiresOptions())
	assert.False(t, QuestionTypeNPS.RequiresOptions())
	assert.False(t, QuestionTypeRating.RequiresOptions())
	assert.False(t, QuestionTypeShortText.RequiresOptions())
	assert.False(t, QuestionTypeLongText.RequiresOptions())
}
