package handler

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/calebreed/formpulse/internal/domain"
	"github.com/calebreed/formpulse/internal/service"
)

// Wire representations. Timestamps are RFC 3339 via time.Time's default
// JSON encoding.

type projectDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	IsArchived  bool       `json:"is_archived"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toProjectDTO(p domain.Project) projectDTO {
	return projectDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		IsArchived:  p.IsArchived,
		ArchivedAt:  p.ArchivedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProjectDTOs(projects []domain.Project) []projectDTO {
	out := make([]projectDTO, len(projects))
	for i, p := range projects {
		out[i] = toProjectDTO(p)
	}
	return out
}

type questionDTO struct {
	ID          uuid.UUID       `json:"id"`
	Position    int32           `json:"position"`
	Type        string          `json:"type"`
	Label       string          `json:"label"`
	Description string          `json:"description,omitempty"`
	Placeholder string          `json:"placeholder,omitempty"`
	Options     []string        `json:"options,omitempty"`
	IsRequired  bool            `json:"is_required"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
}

func toQuestionDTO(q domain.FormQuestion) questionDTO {
	return questionDTO{
		ID:          q.ID,
		Position:    q.Position,
		Type:        string(q.Type),
		Label:       q.Label,
		Description: q.Description,
		Placeholder: q.Placeholder,
		Options:     q.Options,
		IsRequired:  q.IsRequired,
		Metadata:    q.Metadata,
	}
}

type formDTO struct {
	ID              uuid.UUID       `json:"id"`
	ProjectID       uuid.UUID       `json:"project_id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Channel         string          `json:"channel"`
	Status          string          `json:"status"`
	ThankYouMessage string          `json:"thank_you_message,omitempty"`
	RedirectURL     string          `json:"redirect_url,omitempty"`
	Settings        json.RawMessage `json:"settings,omitempty"`
	Version         int32           `json:"version"`
	PublishedAt     *time.Time      `json:"published_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Questions       []questionDTO   `json:"questions,omitempty"`
}

func toFormDTO(f domain.Form) formDTO {
	return formDTO{
		ID:              f.ID,
		ProjectID:       f.ProjectID,
		Name:            f.Name,
		Description:     f.Description,
		Channel:         string(f.Channel),
		Status:          string(f.Status),
		ThankYouMessage: f.ThankYouMessage,
		RedirectURL:     f.RedirectURL,
		Settings:        f.Settings,
		Version:         f.Version,
		PublishedAt:     f.PublishedAt,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}

func toFormWithQuestionsDTO(fq *domain.FormWithQuestions) formDTO {
	dto := toFormDTO(fq.Form)
	dto.Questions = make([]questionDTO, len(fq.Questions))
	for i, q := range fq.Questions {
		dto.Questions[i] = toQuestionDTO(q)
	}
	return dto
}

func toFormDTOs(forms []domain.Form) []formDTO {
	out := make([]formDTO, len(forms))
	for i, f := range forms {
		out[i] = toFormDTO(f)
	}
	return out
}

type qrCodeDTO struct {
	ID             uuid.UUID  `json:"id"`
	FormID         uuid.UUID  `json:"form_id"`
	Label          string     `json:"label"`
	ShortCode      string     `json:"short_code"`
	DestinationURL string     `json:"destination_url"`
	ImagePath      string     `json:"image_path"`
	ScanCount      int64      `json:"scan_count"`
	LastScannedAt  *time.Time `json:"last_scanned_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toQRCodeDTO(c domain.QRCode) qrCodeDTO {
	return qrCodeDTO{
		ID:             c.ID,
		FormID:         c.FormID,
		Label:          c.Label,
		ShortCode:      c.ShortCode,
		DestinationURL: c.DestinationURL,
		ImagePath:      "/api/public/forms/" + c.FormID.String() + "/qr/" + c.ShortCode + ".png",
		ScanCount:      c.ScanCount,
		LastScannedAt:  c.LastScannedAt,
		CreatedAt:      c.CreatedAt,
	}
}

type responseDTO struct {
	ID           uuid.UUID       `json:"id"`
	FormID       uuid.UUID       `json:"form_id"`
	QRCodeID     *uuid.UUID      `json:"qr_code_id,omitempty"`
	SubmittedAt  time.Time       `json:"submitted_at"`
	Channel      string          `json:"channel"`
	LocationName string          `json:"location_name,omitempty"`
	Attributes   json.RawMessage `json:"attributes,omitempty"`
	Rating       *int32          `json:"rating,omitempty"`
	Tags         []string        `json:"tags,omitempty"`
}

func toResponseDTO(r domain.Response) responseDTO {
	return responseDTO{
		ID:           r.ID,
		FormID:       r.FormID,
		QRCodeID:     r.QRCodeID,
		SubmittedAt:  r.SubmittedAt,
		Channel:      string(r.Channel),
		LocationName: r.LocationName,
		Attributes:   r.Attributes,
		Rating:       r.Rating,
		Tags:         r.Tags,
	}
}

func toResponseDTOs(responses []domain.Response) []responseDTO {
	out := make([]responseDTO, len(responses))
	for i, r := range responses {
		out[i] = toResponseDTO(r)
	}
	return out
}

type usageDTO struct {
	Projects           int64     `json:"projects"`
	ProjectsLimit      *int64    `json:"projects_limit"`
	ResponsesThisMonth int64     `json:"responses_this_month"`
	ResponsesLimit     *int64    `json:"responses_limit"`
	PeriodStart        time.Time `json:"period_start"`
	PeriodEnd          time.Time `json:"period_end"`
}

func toUsageDTO(u *domain.QuotaUsage) usageDTO {
	return usageDTO{
		Projects:           u.Projects,
		ProjectsLimit:      u.ProjectsLimit,
		ResponsesThisMonth: u.ResponsesThisMonth,
		ResponsesLimit:     u.ResponsesLimit,
		PeriodStart:        u.PeriodStart,
		PeriodEnd:          u.PeriodEnd,
	}
}

type summaryDTO struct {
	TotalResponses    int64    `json:"total_responses"`
	ResponsesThisWeek int64    `json:"responses_this_week"`
	ResponsesLastWeek int64    `json:"responses_last_week"`
	AverageRating     *float64 `json:"average_rating,omitempty"`
	QRShare           int      `json:"qr_share"`
	WidgetShare       int      `json:"widget_share"`
}

type trendPointDTO struct {
	Date          string   `json:"date"`
	Responses     int64    `json:"responses"`
	AverageRating *float64 `json:"average_rating,omitempty"`
}

type dashboardDTO struct {
	Summary summaryDTO      `json:"summary"`
	Trend   []trendPointDTO `json:"trend"`
	Recent  []responseDTO   `json:"recent"`
}

func toDashboardDTO(d *service.Dashboard) dashboardDTO {
	trend := make([]trendPointDTO, len(d.Trend))
	for i, p := range d.Trend {
		trend[i] = trendPointDTO{Date: p.Date, Responses: p.Responses, AverageRating: p.AverageRating}
	}
	return dashboardDTO{
		Summary: summaryDTO{
			TotalResponses:    d.Summary.TotalResponses,
			ResponsesThisWeek: d.Summary.ResponsesThisWeek,
			ResponsesLastWeek: d.Summary.ResponsesLastWeek,
			AverageRating:     d.Summary.AverageRating,
			QRShare:           d.Summary.QRShare,
			WidgetShare:       d.Summary.WidgetShare,
		},
		Trend:  trend,
		Recent: toResponseDTOs(d.Recent),
	}
}

type userDTO struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

func toUserDTO(u *domain.User) userDTO {
	return userDTO{ID: u.ID, Email: u.Email, Name: u.Name}
}
