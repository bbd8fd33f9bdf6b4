package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/calebreed/formpulse/internal/domain"
	"github.com/calebreed/formpulse/internal/repository"
)

const (
	// BcryptCost is the cost factor for bcrypt password hashing.
	BcryptCost = 12

	// SessionTokenBytes is the number of random bytes for session tokens.
	SessionTokenBytes = 32

	// SessionDuration is how long a session stays valid.
	SessionDuration = 30 * 24 * time.Hour

	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 8

	// MaxPasswordLength stays under bcrypt's 72-byte input limit.
	MaxPasswordLength = 72
)

// UserService defines authentication and registration operations.
type UserService interface {
	// Register creates a user plus their initial account on the default
	// plan, with an owner membership binding the two.
	Register(ctx context.Context, params domain.RegisterParams) (*domain.User, error)

	// Login verifies credentials and opens a session. The returned token
	// goes to the client; only its hash is stored.
	Login(ctx context.Context, email, password string) (*domain.LoginResult, error)

	// Logout revokes the session for the given token.
	Logout(ctx context.Context, token string) error

	// GetBySessionToken resolves a session token to its user.
	GetBySessionToken(ctx context.Context, token string) (*domain.User, error)

	// DeleteExpiredSessions removes sessions past their expiry.
	DeleteExpiredSessions(ctx context.Context) error
}

type userService struct {
	db      *sql.DB
	queries *repository.Queries
	logger  *slog.Logger
}

// NewUserService creates a new UserService. The *sql.DB is needed so that
// registration creates the user, account and membership atomically.
func NewUserService(db *sql.DB, queries *repository.Queries, logger *slog.Logger) UserService {
	return &userService{
		db:      db,
		queries: queries,
		logger:  logger,
	}
}

// Register creates a user plus their initial account.
func (s *userService) Register(ctx context.Context, params domain.RegisterParams) (*domain.User, error) {
	const op = "UserService.Register"

	email := strings.ToLower(strings.TrimSpace(params.Email))
	if err := validateEmail(email); err != nil {
		return nil, domain.NewValidationError(op, "email", err.Error())
	}
	if err := validatePassword(params.Password); err != nil {
		return nil, domain.NewValidationError(op, "password", err.Error())
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, domain.NewValidationError(op, "name", "Name is required")
	}

	if _, err := s.queries.GetUserByEmail(ctx, email); err == nil {
		return nil, domain.Conflict(op, "An account with this email already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		s.logger.Error("failed to check email", "error", err, "op", op)
		return nil, domain.Internal(err, op, "Failed to register")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(params.Password), BcryptCost)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to register")
	}

	// New accounts land on the default plan. A missing default is not
	// fatal; the account simply starts without limits.
	var planID uuid.NullUUID
	if plan, err := s.queries.GetDefaultPlan(ctx); err == nil {
		planID = uuid.NullUUID{UUID: plan.ID, Valid: true}
	} else if !errors.Is(err, sql.ErrNoRows) {
		s.logger.Error("failed to load default plan", "error", err, "op", op)
		return nil, domain.Internal(err, op, "Failed to register")
	}

	accountName := strings.TrimSpace(params.AccountName)
	if accountName == "" {
		accountName = name
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to register")
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	repoUser, err := qtx.CreateUser(ctx, repository.CreateUserParams{
		Email:        email,
		Name:         name,
		PasswordHash: string(passwordHash),
	})
	if err != nil {
		s.logger.Error("failed to create user", "error", err, "op", op)
		return nil, domain.Internal(err, op, "Failed to register")
	}

	repoAccount, err := qtx.CreateAccount(ctx, repository.CreateAccountParams{
		Name:    accountName,
		OwnerID: repoUser.ID,
		PlanID:  planID,
	})
	if err != nil {
		s.logger.Error("failed to create account", "error", err, "op", op)
		return nil, domain.Internal(err, op, "Failed to register")
	}

	if _, err := qtx.CreateAccountMember(ctx, repository.CreateAccountMemberParams{
		AccountID:  repoAccount.ID,
		UserID:     repoUser.ID,
		Role:       string(domain.AccountRoleOwner),
		AcceptedAt: sql.NullTime{Time: time.Now().UTC(), Valid: true},
	}); err != nil {
		s.logger.Error("failed to create membership", "error", err, "op", op)
		return nil, domain.Internal(err, op, "Failed to register")
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.Internal(err, op, "Failed to register")
	}

	user := repoUserToDomain(repoUser)
	s.logger.Info("user registered", "user_id", user.ID, "account_id", repoAccount.ID)

	return &user, nil
}

// Login verifies credentials and opens a session.
func (s *userService) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	const op = "UserService.Login"

	email = strings.ToLower(strings.TrimSpace(email))

	repoUser, err := s.queries.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Burn a bcrypt comparison so missing users cost the same
			// as wrong passwords.
			dummyHash := "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return nil, domain.Unauthorized(op, "Invalid email or password")
		}
		s.logger.Error("failed to get user", "error", err, "op", op)
		return nil, domain.Internal(err, op, "Failed to log in")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(repoUser.PasswordHash), []byte(password)); err != nil {
		return nil, domain.Unauthorized(op, "Invalid email or password")
	}

	token, err := generateSessionToken()
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to log in")
	}

	if _, err := s.queries.CreateSession(ctx, repository.CreateSessionParams{
		UserID:    repoUser.ID,
		TokenHash: hashSessionToken(token),
		ExpiresAt: time.Now().UTC().Add(SessionDuration),
	}); err != nil {
		s.logger.Error("failed to create session", "error", err, "op", op, "user_id", repoUser.ID)
		return nil, domain.Internal(err, op, "Failed to log in")
	}

	user := repoUserToDomain(repoUser)
	s.logger.Info("user logged in", "user_id", user.ID)

	return &domain.LoginResult{User: &user, Token: token}, nil
}

// Logout revokes the session for the given token.
func (s *userService) Logout(ctx context.Context, token string) error {
	const op = "UserService.Logout"

	if err := s.queries.DeleteSessionByTokenHash(ctx, hashSessionToken(token)); err != nil {
		s.logger.Error("failed to delete session", "error", err, "op", op)
		return domain.Internal(err, op, "Failed to log out")
	}
	return nil
}

// GetBySessionToken resolves a session token to its user.
func (s *userService) GetBySessionToken(ctx context.Context, token string) (*domain.User, error) {
	const op = "UserService.GetBySessionToken"

	repoUser, err := s.queries.GetUserBySessionTokenHash(ctx, hashSessionToken(token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Unauthorized(op, "Session expired or invalid")
		}
		s.logger.Error("failed to resolve session", "error", err, "op", op)
		return nil, domain.Internal(err, op, "Failed to resolve session")
	}

	user := repoUserToDomain(repoUser)
	return &user, nil
}

// DeleteExpiredSessions removes sessions past their expiry.
func (s *userService) DeleteExpiredSessions(ctx context.Context) error {
	const op = "UserService.DeleteExpiredSessions"

	count, err := s.queries.DeleteExpiredSessions(ctx)
	if err != nil {
		s.logger.Error("failed to delete expired sessions", "error", err, "op", op)
		return domain.Internal(err, op, "Failed to clean up sessions")
	}
	if count > 0 {
		s.logger.Info("expired sessions deleted", "count", count)
	}
	return nil
}

// generateSessionToken returns a hex-encoded high-entropy random token.
func generateSessionToken() (string, error) {
	b := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// hashSessionToken hashes a session token for storage. Tokens are already
// high entropy, so a single SHA-256 pass is enough.
func hashSessionToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// validateEmail applies a light shape check; the unique index is the
// real authority on addresses.
func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("Email is required")
	}
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return fmt.Errorf("Email address is not valid")
	}
	if len(email) > 254 {
		return fmt.Errorf("Email address is too long")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("Password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("Password must be at most %d characters", MaxPasswordLength)
	}
	return nil
}
