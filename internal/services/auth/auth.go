// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth registers practitioners and checks their credentials.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"codeberg.org/oliverandrich/nutrilab/internal/apperr"
	"codeberg.org/oliverandrich/nutrilab/internal/models"
	"codeberg.org/oliverandrich/nutrilab/internal/repository"
	"codeberg.org/oliverandrich/nutrilab/internal/services/activation"
	"codeberg.org/oliverandrich/nutrilab/internal/validate"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactive           = errors.New("account not activated")
)

// Registration steps, in order.
const (
	StepValidate   = "validate"
	StepCreateUser = "create_user"
	StepIssueToken = "issue_token"
	StepSendEmail  = "send_email"
)

// StepError reports the registration step that failed. It matches
// apperr.ErrInternal. Compensated tells whether the user created by an
// earlier step was removed again.
type StepError struct {
	Step        string
	Err         error
	Compensated bool
}

func (e *StepError) Error() string {
	return fmt.Sprintf("registration failed at %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Is matches apperr.ErrInternal.
func (e *StepError) Is(target error) bool { return target == apperr.ErrInternal }

// dummyHash is used for constant-time login to prevent timing attacks
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

type Service struct {
	repo              *repository.Repository
	activation        *activation.Service
	passwordValidator *PasswordValidator
	cost              int
}

func NewService(repo *repository.Repository, act *activation.Service) *Service {
	return &Service{
		repo:              repo,
		activation:        act,
		passwordValidator: DefaultPasswordValidator(),
		cost:              bcrypt.DefaultCost,
	}
}

// SetHashCost changes the bcrypt cost for new passwords.
func (s *Service) SetHashCost(cost int) {
	s.cost = cost
}

// PasswordValidator returns the password validator for use in handlers
func (s *Service) PasswordValidator() *PasswordValidator {
	return s.passwordValidator
}

// RegisterParams holds the registration form.
type RegisterParams struct {
	Username        string `form:"usuario" validate:"required,max=150"`
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"senha" validate:"required"`
	PasswordConfirm string `form:"confirmar_senha" validate:"required,eqfield=Password"`
}

// Registration is the outcome of a successful registration.
type Registration struct {
	User       *models.User
	Activation *activation.Issued
}

// Register validates the form, creates an inactive user and sends the
// activation email. Invalid input yields an *apperr.ValidationError and
// changes nothing. A failure after the user was created yields a
// *StepError and the user is deleted again, taking the token with it.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*Registration, error) {
	params.Username = strings.TrimSpace(params.Username)
	params.Email = strings.TrimSpace(params.Email)

	if err := s.validate(ctx, params); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.cost)
	if err != nil {
		return nil, &StepError{Step: StepCreateUser, Err: err}
	}

	user, err := s.repo.CreateUser(ctx, params.Username, params.Email, string(hash))
	if err != nil {
		slog.Error("register_failed", "step", StepCreateUser, "username", params.Username, "error", err)
		return nil, &StepError{Step: StepCreateUser, Err: err}
	}

	issued, err := s.activation.IssueToken(ctx, user)
	if err != nil {
		step := StepIssueToken
		if errors.Is(err, activation.ErrDispatch) {
			step = StepSendEmail
		}
		return nil, s.compensate(ctx, user, step, err)
	}

	slog.Info("register_success", "user_id", user.ID, "username", user.Username)
	return &Registration{User: user, Activation: issued}, nil
}

func (s *Service) validate(ctx context.Context, params RegisterParams) error {
	if err := validate.Struct(params); err != nil {
		return err
	}

	if result := s.passwordValidator.Validate(params.Password); !result.Valid {
		return apperr.Validation("senha", result.Errors[0].MessageID)
	}

	exists, err := s.repo.UsernameExists(ctx, params.Username)
	if err != nil {
		return &StepError{Step: StepValidate, Err: err}
	}
	if exists {
		return apperr.Validation("usuario", "ValidationUsernameTaken")
	}
	return nil
}

// compensate removes a user whose registration could not be completed.
func (s *Service) compensate(ctx context.Context, user *models.User, step string, cause error) error {
	stepErr := &StepError{Step: step, Err: cause}

	// Cleanup runs even when the request was cancelled.
	if err := s.repo.DeleteUser(context.WithoutCancel(ctx), user.ID); err != nil {
		slog.Error("register_compensation_failed", "step", step, "user_id", user.ID, "error", err)
		stepErr.Err = errors.Join(cause, err)
		return stepErr
	}

	stepErr.Compensated = true
	slog.Warn("register_failed", "step", step, "user_id", user.ID, "error", cause, "compensated", true)
	return stepErr
}

// Login authenticates a user and returns the user if successful.
// Inactive accounts with a correct password yield ErrInactive.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Constant-time: always perform bcrypt comparison to prevent timing attacks
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			slog.Warn("login_failed", "username", username, "reason", "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("login_failed", "username", username, "reason", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		slog.Warn("login_failed", "username", username, "reason", "inactive")
		return nil, ErrInactive
	}

	slog.Info("login_success", "user_id", user.ID, "username", username)
	return user, nil
}
