package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitsFromJSON(t *testing.T, raw string) PlanLimits {
	t.Helper()
	return ParsePlanLimits(&Plan{RawLimits: json.RawMessage(raw)})
}

func TestParsePlanLimits(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want PlanLimits
	}{
		{
			name: "empty map is fully unlimited",
			raw:  `{}`,
			want: PlanLimits{},
		},
		{
			name: "all recognized metrics",
			raw:  `{"projects": 2, "forms_per_project": 5, "responses_per_month": 500, "members": 3, "qr_codes_per_form": 10}`,
			want: PlanLimits{
				Projects:          int64Ptr(2),
				FormsPerProject:   int64Ptr(5),
				ResponsesPerMonth: int64Ptr(500),
				Members:           int64Ptr(3),
				QRCodesPerForm:    int64Ptr(10),
			},
		},
		{
			name: "non-numeric values are treated as absent",
			raw:  `{"projects": "2", "forms_per_project": true, "responses_per_month": null, "qr_codes_per_form": [5]}`,
			want: PlanLimits{},
		},
		{
			name: "unrecognized keys are ignored",
			raw:  `{"projects": 1, "widgets_per_page": 99}`,
			want: PlanLimits{Projects: int64Ptr(1)},
		},
		{
			name: "malformed json fails open",
			raw:  `{not json`,
			want: PlanLimits{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, limitsFromJSON(t, tt.raw))
		})
	}
}

func TestParsePlanLimits_NilPlan(t *testing.T) {
	limits := ParsePlanLimits(nil)
	assert.Nil(t, limits.Projects)
	assert.Nil(t, limits.FormsPerProject)
	assert.Nil(t, limits.ResponsesPerMonth)
	assert.Nil(t, limits.Members)
	assert.Nil(t, limits.QRCodesPerForm)
}

func TestAssertProjectsLimit(t *testing.T) {
	limits := limitsFromJSON(t, `{"projects": 2}`)

	assert.NoError(t, AssertProjectsLimit(limits, 0))
	assert.NoError(t, AssertProjectsLimit(limits, 1))

	err := AssertProjectsLimit(limits, 2)
	require.Error(t, err)
	assert.Equal(t, EPLANLIMIT, ErrorCode(err))
	assert.Contains(t, ErrorMessage(err), "2 projects")

	// over the ceiling is still a violation
	assert.Error(t, AssertProjectsLimit(limits, 3))

	// no ceiling configured means unlimited
	assert.NoError(t, AssertProjectsLimit(PlanLimits{}, 100000))
}

func TestAssertProjectsLimit_SingularMessage(t *testing.T) {
	limits := limitsFromJSON(t, `{"projects": 1}`)
	err := AssertProjectsLimit(limits, 1)
	require.Error(t, err)
	assert.Contains(t, ErrorMessage(err), "1 project allowed")
}

func TestAssertFormsLimit(t *testing.T) {
	limits := limitsFromJSON(t, `{"forms_per_project": 1}`)

	assert.NoError(t, AssertFormsLimit(limits, 0))

	err := AssertFormsLimit(limits, 1)
	require.Error(t, err)
	assert.Equal(t, EPLANLIMIT, ErrorCode(err))
	assert.Contains(t, ErrorMessage(err), "1 forms per project")
}

func TestAssertResponsesLimit(t *testing.T) {
	limits := limitsFromJSON(t, `{"responses_per_month": 500}`)

	assert.NoError(t, AssertResponsesLimit(limits, 499))

	err := AssertResponsesLimit(limits, 500)
	require.Error(t, err)
	assert.Equal(t, EPLANLIMIT, ErrorCode(err))
	assert.Contains(t, ErrorMessage(err), "500 per month")
}

func TestAssertResponsesLimit_UnlimitedByDefault(t *testing.T) {
	// A missing or mistyped responses_per_month entry never signals a
	// violation, regardless of current count.
	for _, raw := range []string{`{}`, `{"responses_per_month": "lots"}`, `{"responses_per_month": false}`} {
		limits := limitsFromJSON(t, raw)
		assert.NoError(t, AssertResponsesLimit(limits, 1_000_000), "raw=%s", raw)
	}
}

func TestAssertQRLimit(t *testing.T) {
	limits := limitsFromJSON(t, `{"qr_codes_per_form": 3}`)

	assert.NoError(t, AssertQRLimit(limits, 2))

	err := AssertQRLimit(limits, 3)
	require.Error(t, err)
	assert.Equal(t, EPLANLIMIT, ErrorCode(err))
	assert.Contains(t, ErrorMessage(err), "3 per form")
}

func int64Ptr(n int64) *int64 {
	return &n
}
