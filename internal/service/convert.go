package service

import (
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/calebreed/formpulse/internal/domain"
	"github.com/calebreed/formpulse/internal/repository"
)

// Null helpers for translating optional domain fields to repository params.

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func toNullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func fromNullUUID(id uuid.NullUUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	u := id.UUID
	return &u
}

func repoProjectToDomain(p repository.Project) domain.Project {
	project := domain.Project{
		ID:          p.ID,
		AccountID:   p.AccountID,
		Name:        p.Name,
		Description: p.Description.String,
		IsArchived:  p.IsArchived,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.ArchivedAt.Valid {
		t := p.ArchivedAt.Time
		project.ArchivedAt = &t
	}
	return project
}

func repoFormToDomain(f repository.Form) domain.Form {
	form := domain.Form{
		ID:              f.ID,
		AccountID:       f.AccountID,
		ProjectID:       f.ProjectID,
		Name:            f.Name,
		Description:     f.Description.String,
		Channel:         domain.FormChannel(f.Channel),
		Status:          domain.FormStatus(f.Status),
		ThankYouMessage: f.ThankYouMessage.String,
		RedirectURL:     f.RedirectURL.String,
		Settings:        f.Settings,
		Version:         f.Version,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
	if f.PublishedAt.Valid {
		t := f.PublishedAt.Time
		form.PublishedAt = &t
	}
	return form
}

func repoQuestionToDomain(q repository.FormQuestion) domain.FormQuestion {
	question := domain.FormQuestion{
		ID:          q.ID,
		FormID:      q.FormID,
		Position:    q.Position,
		Type:        domain.QuestionType(q.Type),
		Label:       q.Label,
		Description: q.Description.String,
		Placeholder: q.Placeholder.String,
		IsRequired:  q.IsRequired,
		Metadata:    q.Metadata,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}
	if q.Options.Valid {
		// Options are stored as a jsonb string array. A corrupt value
		// degrades to no options rather than failing the read.
		_ = json.Unmarshal(q.Options.RawMessage, &question.Options)
	}
	return question
}

func repoQRCodeToDomain(c repository.FormQRCode) domain.QRCode {
	code := domain.QRCode{
		ID:             c.ID,
		FormID:         c.FormID,
		Label:          c.Label,
		ShortCode:      c.ShortCode,
		DestinationURL: c.DestinationURL,
		ScanCount:      c.ScanCount,
		CreatedAt:      c.CreatedAt,
	}
	if c.LastScannedAt.Valid {
		t := c.LastScannedAt.Time
		code.LastScannedAt = &t
	}
	return code
}

func repoResponseToDomain(r repository.Response) domain.Response {
	resp := domain.Response{
		ID:           r.ID,
		AccountID:    r.AccountID,
		FormID:       r.FormID,
		QRCodeID:     fromNullUUID(r.QRCodeID),
		SubmittedAt:  r.SubmittedAt,
		Channel:      domain.FormChannel(r.Channel),
		LocationName: r.LocationName.String,
		Attributes:   r.Attributes,
		IPHash:       r.IPHash.String,
		UserAgent:    r.UserAgent.String,
		Tags:         r.Tags,
		CreatedAt:    r.CreatedAt,
	}
	if r.Rating.Valid {
		v := r.Rating.Int32
		resp.Rating = &v
	}
	return resp
}

func repoResponsesToDomain(rs []repository.Response) []domain.Response {
	out := make([]domain.Response, len(rs))
	for i, r := range rs {
		out[i] = repoResponseToDomain(r)
	}
	return out
}

func repoUserToDomain(u repository.User) domain.User {
	return domain.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func repoAccountToDomain(a repository.Account) domain.Account {
	return domain.Account{
		ID:        a.ID,
		Name:      a.Name,
		OwnerID:   a.OwnerID,
		PlanID:    fromNullUUID(a.PlanID),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// accountWithPlanToDomain folds the joined plan columns into the account.
// An account without a plan row keeps a nil Plan, which downstream quota
// checks treat as unlimited.
func accountWithPlanToDomain(r repository.GetAccountWithPlanRow) domain.Account {
	account := repoAccountToDomain(r.Account)
	if !r.PlanID.Valid {
		return account
	}
	plan := &domain.Plan{
		ID:        r.PlanID.UUID,
		Slug:      r.PlanSlug.String,
		Name:      r.PlanName.String,
		IsDefault: r.PlanIsDefault.Bool,
		IsActive:  r.PlanIsActive.Bool,
	}
	if r.PlanLimits.Valid {
		plan.RawLimits = r.PlanLimits.RawMessage
	}
	account.Plan = plan
	return account
}
