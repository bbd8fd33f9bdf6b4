package service

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebreed/formpulse/internal/domain"
)

func makeQuestion(t domain.QuestionType, label string, required bool) domain.FormQuestion {
	return domain.FormQuestion{
		ID:         uuid.New(),
		Type:       t,
		Label:      label,
		IsRequired: required,
	}
}

func TestValidateAnswers(t *testing.T) {
	rating := makeQuestion(domain.QuestionTypeRating, "How was it?", true)
	comment := makeQuestion(domain.QuestionTypeLongText, "Tell us more", false)
	questions := []domain.FormQuestion{rating, comment}

	t.Run("valid submission passes", func(t *testing.T) {
		err := validateAnswers("test", questions, []domain.AnswerParams{
			{QuestionID: rating.ID, Value: json.RawMessage(`5`)},
			{QuestionID: comment.ID, Value: json.RawMessage(`"Lovely"`)},
		})
		assert.NoError(t, err)
	})

	t.Run("optional question may be skipped", func(t *testing.T) {
		err := validateAnswers("test", questions, []domain.AnswerParams{
			{QuestionID: rating.ID, Value: json.RawMessage(`3`)},
		})
		assert.NoError(t, err)
	})

	t.Run("empty submission fails even with no required questions", func(t *testing.T) {
		optionalOnly := []domain.FormQuestion{comment}
		err := validateAnswers("test", optionalOnly, nil)
		require.Error(t, err)
		ve, ok := err.(*domain.ValidationError)
		require.True(t, ok)
		assert.Contains(t, ve.Fields, "answers")
	})

	t.Run("missing required question fails", func(t *testing.T) {
		err := validateAnswers("test", questions, []domain.AnswerParams{
			{QuestionID: comment.ID, Value: json.RawMessage(`"text only"`)},
		})
		require.Error(t, err)
		ve, ok := err.(*domain.ValidationError)
		require.True(t, ok)
		assert.Contains(t, ve.Fields["answers"], "How was it?")
	})

	t.Run("answer to foreign question fails", func(t *testing.T) {
		err := validateAnswers("test", questions, []domain.AnswerParams{
			{QuestionID: rating.ID, Value: json.RawMessage(`5`)},
			{QuestionID: uuid.New(), Value: json.RawMessage(`"intruder"`)},
		})
		require.Error(t, err)
		ve, ok := err.(*domain.ValidationError)
		require.True(t, ok)
		assert.Contains(t, ve.Fields, "answers[1].question_id")
	})

	t.Run("empty answer value fails", func(t *testing.T) {
		err := validateAnswers("test", questions, []domain.AnswerParams{
			{QuestionID: rating.ID, Value: nil},
		})
		require.Error(t, err)
		ve, ok := err.(*domain.ValidationError)
		require.True(t, ok)
		assert.Contains(t, ve.Fields, "answers[0].value")
	})
}

func TestExtractRating(t *testing.T) {
	rating := makeQuestion(domain.QuestionTypeRating, "Rate us", false)
	nps := makeQuestion(domain.QuestionTypeNPS, "Recommend us?", false)
	text := makeQuestion(domain.QuestionTypeShortText, "Anything else?", false)
	questions := []domain.FormQuestion{rating, nps, text}

	t.Run("rating answer is lifted", func(t *testing.T) {
		got := extractRating(questions, []domain.AnswerParams{
			{QuestionID: text.ID, Value: json.RawMessage(`"hi"`)},
			{QuestionID: rating.ID, Value: json.RawMessage(`4`)},
		})
		require.True(t, got.Valid)
		assert.Equal(t, int32(4), got.Int32)
	})

	t.Run("nps counts as a rating", func(t *testing.T) {
		got := extractRating(questions, []domain.AnswerParams{
			{QuestionID: nps.ID, Value: json.RawMessage(`9`)},
		})
		require.True(t, got.Valid)
		assert.Equal(t, int32(9), got.Int32)
	})

	t.Run("non numeric rating value is skipped", func(t *testing.T) {
		got := extractRating(questions, []domain.AnswerParams{
			{QuestionID: rating.ID, Value: json.RawMessage(`"five"`)},
		})
		assert.False(t, got.Valid)
	})

	t.Run("text answers never produce a rating", func(t *testing.T) {
		got := extractRating(questions, []domain.AnswerParams{
			{QuestionID: text.ID, Value: json.RawMessage(`7`)},
		})
		assert.False(t, got.Valid)
	})
}

func TestHashClientIP(t *testing.T) {
	t.Run("empty address hashes to nothing", func(t *testing.T) {
		assert.Equal(t, "", hashClientIP(""))
	})

	t.Run("hash is stable and opaque", func(t *testing.T) {
		a := hashClientIP("203.0.113.9")
		b := hashClientIP("203.0.113.9")
		assert.Equal(t, a, b)
		assert.Len(t, a, 64)
		assert.NotContains(t, a, "203")
	})

	t.Run("different addresses differ", func(t *testing.T) {
		assert.NotEqual(t, hashClientIP("203.0.113.9"), hashClientIP("203.0.113.10"))
	})
}

func TestNewShortCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := newShortCode()
		require.NoError(t, err)
		assert.Len(t, code, domain.ShortCodeLength)
		assert.Equal(t, strings.ToLower(code), code, "short codes are lowercase")
		seen[code] = true
	}
	assert.Greater(t, len(seen), 45, "codes should be effectively unique")
}
