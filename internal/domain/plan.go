// Package domain contains core business types and interfaces.
//
// This file defines subscription plans and the quota rules derived from them.
// A plan carries a freeform limits map (metric name -> integer ceiling); a
// missing or malformed entry means the metric is unlimited. Malformed plan
// configuration never blocks usage, it only fails to cap it.
package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Plan limit metric names as they appear in the plans.limits jsonb column.
const (
	MetricProjects          = "projects"
	MetricFormsPerProject   = "forms_per_project"
	MetricResponsesPerMonth = "responses_per_month"
	MetricMembers           = "members"
	MetricQRCodesPerForm    = "qr_codes_per_form"
)

// Plan is a subscription tier. Plans are managed externally (seeded by
// billing tooling) and are immutable from the application's perspective.
type Plan struct {
	ID                uuid.UUID
	Slug              string
	Name              string
	Description       string
	MonthlyPriceCents int64
	YearlyPriceCents  int64
	RawLimits         json.RawMessage // freeform metric -> ceiling map
	IsDefault         bool
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// PlanLimits holds the recognized resource ceilings of a plan.
// A nil field means the metric is unlimited.
type PlanLimits struct {
	Projects          *int64
	FormsPerProject   *int64
	ResponsesPerMonth *int64
	Members           *int64
	QRCodesPerForm    *int64
}

// ParsePlanLimits extracts the recognized ceilings from a plan's freeform
// limits map. A nil plan, unparseable map, or non-numeric entry yields an
// unlimited field. This never returns an error: the parse is deliberately
// permissive so that broken plan configuration fails open.
func ParsePlanLimits(plan *Plan) PlanLimits {
	var limits PlanLimits
	if plan == nil || len(plan.RawLimits) == 0 {
		return limits
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(plan.RawLimits, &raw); err != nil {
		return limits
	}

	limits.Projects = numericLimit(raw, MetricProjects)
	limits.FormsPerProject = numericLimit(raw, MetricFormsPerProject)
	limits.ResponsesPerMonth = numericLimit(raw, MetricResponsesPerMonth)
	limits.Members = numericLimit(raw, MetricMembers)
	limits.QRCodesPerForm = numericLimit(raw, MetricQRCodesPerForm)
	return limits
}

// numericLimit returns the value for key if it is a JSON number, else nil.
func numericLimit(raw map[string]interface{}, key string) *int64 {
	v, ok := raw[key]
	if !ok {
		return nil
	}
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	n := int64(f)
	return &n
}

// AssertProjectsLimit returns an EPLANLIMIT error when the plan caps projects
// and the account already holds at least that many. The boundary is
// current >= limit: a ceiling of N permits at most N existing projects.
func AssertProjectsLimit(limits PlanLimits, currentProjects int64) error {
	if limits.Projects == nil || currentProjects < *limits.Projects {
		return nil
	}
	plural := "s"
	if *limits.Projects == 1 {
		plural = ""
	}
	return PlanLimit("plan.assert_projects",
		fmt.Sprintf("Plan limit reached: only %d project%s allowed.", *limits.Projects, plural))
}

// AssertFormsLimit enforces the forms-per-project ceiling.
func AssertFormsLimit(limits PlanLimits, currentForms int64) error {
	if limits.FormsPerProject == nil || currentForms < *limits.FormsPerProject {
		return nil
	}
	return PlanLimit("plan.assert_forms",
		fmt.Sprintf("Plan limit reached: %d forms per project on this plan.", *limits.FormsPerProject))
}

// AssertResponsesLimit enforces the monthly response quota.
func AssertResponsesLimit(limits PlanLimits, currentResponsesThisPeriod int64) error {
	if limits.ResponsesPerMonth == nil || currentResponsesThisPeriod < *limits.ResponsesPerMonth {
		return nil
	}
	return PlanLimit("plan.assert_responses",
		fmt.Sprintf("Response quota reached: %d per month on current plan.", *limits.ResponsesPerMonth))
}

// AssertQRLimit enforces the QR-codes-per-form ceiling.
func AssertQRLimit(limits PlanLimits, currentQRCodes int64) error {
	if limits.QRCodesPerForm == nil || currentQRCodes < *limits.QRCodesPerForm {
		return nil
	}
	return PlanLimit("plan.assert_qr",
		fmt.Sprintf("QR code limit reached: %d per form on this plan.", *limits.QRCodesPerForm))
}
