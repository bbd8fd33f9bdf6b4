package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Project is a row in the projects table.
type Project struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	Name        string
	Description sql.NullString
	IsArchived  bool
	ArchivedAt  sql.NullTime
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const projectColumns = `id, account_id, name, description, is_archived, archived_at, created_at, updated_at`

func scanProjectRow(row *sql.Row) (Project, error) {
	var p Project
	err := row.Scan(
		&p.ID, &p.AccountID, &p.Name, &p.Description,
		&p.IsArchived, &p.ArchivedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

type CreateProjectParams struct {
	AccountID   uuid.UUID
	Name        string
	Description sql.NullString
}

const createProject = `
INSERT INTO projects (account_id, name, description)
VALUES ($1, $2, $3)
RETURNING ` + projectColumns

func (q *Queries) CreateProject(ctx context.Context, arg CreateProjectParams) (Project, error) {
	return scanProjectRow(q.db.QueryRowContext(ctx, createProject, arg.AccountID, arg.Name, arg.Description))
}

const getProjectByIDAndAccountID = `
SELECT ` + projectColumns + ` FROM projects WHERE id = $1 AND account_id = $2`

func (q *Queries) GetProjectByIDAndAccountID(ctx context.Context, id, accountID uuid.UUID) (Project, error) {
	return scanProjectRow(q.db.QueryRowContext(ctx, getProjectByIDAndAccountID, id, accountID))
}

const listProjectsByAccountID = `
SELECT ` + projectColumns + ` FROM projects WHERE account_id = $1 ORDER BY created_at`

func (q *Queries) ListProjectsByAccountID(ctx context.Context, accountID uuid.UUID) ([]Project, error) {
	rows, err := q.db.QueryContext(ctx, listProjectsByAccountID, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(
			&p.ID, &p.AccountID, &p.Name, &p.Description,
			&p.IsArchived, &p.ArchivedAt, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type UpdateProjectParams struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	Name        sql.NullString
	Description sql.NullString
	IsArchived  sql.NullBool
	ArchivedAt  sql.NullTime
}

const updateProject = `
UPDATE projects
SET name = COALESCE($3, name),
    description = COALESCE($4, description),
    is_archived = COALESCE($5, is_archived),
    archived_at = CASE WHEN $5::boolean IS NULL THEN archived_at ELSE $6 END,
    updated_at = now()
WHERE id = $1 AND account_id = $2
RETURNING ` + projectColumns

func (q *Queries) UpdateProject(ctx context.Context, arg UpdateProjectParams) (Project, error) {
	return scanProjectRow(q.db.QueryRowContext(ctx, updateProject,
		arg.ID, arg.AccountID, arg.Name, arg.Description, arg.IsArchived, arg.ArchivedAt))
}

const countProjectsByAccountID = `
SELECT count(*) FROM projects WHERE account_id = $1`

// CountProjectsByAccountID counts all projects, archived included.
func (q *Queries) CountProjectsByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countProjectsByAccountID, accountID).Scan(&count)
	return count, err
}

const countActiveProjectsByAccountID = `
SELECT count(*) FROM projects WHERE account_id = $1 AND is_archived = false`

// CountActiveProjectsByAccountID counts only projects that are not archived.
func (q *Queries) CountActiveProjectsByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countActiveProjectsByAccountID, accountID).Scan(&count)
	return count, err
}
