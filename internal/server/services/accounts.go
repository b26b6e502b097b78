// Package services contains server-side business logic. This file implements
// AccountService, which drives an account through registration, activation,
// login and password reset.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/dmitrijs2005/linkkeeper/internal/cryptox"
	"github.com/dmitrijs2005/linkkeeper/internal/dbx"
	"github.com/dmitrijs2005/linkkeeper/internal/logging"
	"github.com/dmitrijs2005/linkkeeper/internal/server/auth"
	"github.com/dmitrijs2005/linkkeeper/internal/server/config"
	"github.com/dmitrijs2005/linkkeeper/internal/server/models"
	"github.com/dmitrijs2005/linkkeeper/internal/server/notify"
	"github.com/dmitrijs2005/linkkeeper/internal/server/repositories/repomanager"
)

// Collaborator names reported in internal errors.
const (
	collabAccountStore = "account store"
	collabLinkStore    = "link store"
	collabTokens       = "token service"
	collabHasher       = "password hasher"
	collabNotifier     = "notifier"
	collabCodegen      = "code generator"
)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenService
	notifier    notify.Notifier
	messages    *notify.Messages
	log         logging.Logger

	activationTTL time.Duration
	sessionTTL    time.Duration
	resetTTL      time.Duration
	hashCost      int

	now func() time.Time
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, tokens *auth.TokenService,
	notifier notify.Notifier, cfg *config.Config, log logging.Logger) *AccountService {
	return &AccountService{
		db:            db,
		repomanager:   m,
		tokens:        tokens,
		notifier:      notifier,
		messages:      notify.NewMessages(cfg.FrontendURL),
		log:           log.With("module", "accounts"),
		activationTTL: cfg.ActivationTokenValidityDuration,
		sessionTTL:    cfg.SessionTokenValidityDuration,
		resetTTL:      cfg.ResetTokenValidityDuration,
		hashCost:      cfg.PasswordHashCost,
		now:           time.Now,
	}
}

// Register creates an inactive account and mails an activation link. The
// account row is rolled back when the message can not be delivered, so the
// email stays free for another attempt.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) error {
	const op = "register"

	if in.Email == "" || in.Password == "" {
		return common.ErrorInvalidInput
	}

	hash, err := s.hash(op, in.Password)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.repomanager.Users(tx).Create(ctx, &models.User{
			Email:        in.Email,
			PasswordHash: hash,
			FirstName:    in.FirstName,
			LastName:     in.LastName,
		})
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return common.ErrorAlreadyExists
			}
			return common.Internal(collabAccountStore, op, err)
		}

		token, err := s.tokens.Issue(user.ID, auth.PurposeActivation, s.activationTTL)
		if err != nil {
			return common.Internal(collabTokens, op, err)
		}

		body, err := s.messages.Activation(token)
		if err != nil {
			return common.Internal(collabNotifier, op, err)
		}
		if err := s.notifier.Deliver(ctx, user.Email, notify.SubjectActivation, body); err != nil {
			return common.Internal(collabNotifier, op, err)
		}

		s.log.Debug(ctx, "user registered", "user_id", user.ID)
		return nil
	})
}

// hash rejects passwords bcrypt can not take as invalid input.
func (s *AccountService) hash(op, password string) (string, error) {
	if len(password) > cryptox.MaxPasswordBytes {
		return "", common.ErrorInvalidInput
	}
	hash, err := cryptox.HashPassword(password, s.hashCost)
	if err != nil {
		if errors.Is(err, cryptox.ErrPasswordTooLong) {
			return "", common.ErrorInvalidInput
		}
		return "", common.Internal(collabHasher, op, err)
	}
	return hash, nil
}

// Activate flips the account named by an activation token to active.
// A token for a user that no longer exists is reported as ErrInvalidToken.
func (s *AccountService) Activate(ctx context.Context, token string) error {
	userID, err := s.tokens.Verify(token, auth.PurposeActivation)
	if err != nil {
		return common.ErrInvalidToken
	}

	err = s.repomanager.Users(s.db).Activate(ctx, userID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorNotFound):
		return common.ErrInvalidToken
	case errors.Is(err, common.ErrorAlreadyActive):
		return common.ErrorAlreadyActive
	default:
		return common.Internal(collabAccountStore, "activate", err)
	}
}

// Login checks credentials and returns a session token with the user's
// public profile. NotActivated is only reported once the password matched.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, *models.PublicProfile, error) {
	const op = "login"

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			cryptox.BurnCompare(password)
			return "", nil, common.ErrorInvalidCredentials
		}
		return "", nil, common.Internal(collabAccountStore, op, err)
	}

	if !cryptox.CheckPassword(user.PasswordHash, password) {
		return "", nil, common.ErrorInvalidCredentials
	}
	if !user.Active {
		return "", nil, common.ErrorNotActivated
	}

	token, err := s.tokens.Issue(user.ID, auth.PurposeSession, s.sessionTTL)
	if err != nil {
		return "", nil, common.Internal(collabTokens, op, err)
	}

	profile := user.Profile()
	return token, &profile, nil
}

// ForgotPassword stores a fresh reset token on the account and mails a reset
// link. Any earlier reset token of the account stops working.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	const op = "forgot password"

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.Internal(collabAccountStore, op, err)
	}

	token, err := s.tokens.Issue(user.ID, auth.PurposeReset, s.resetTTL)
	if err != nil {
		return common.Internal(collabTokens, op, err)
	}

	if err := repo.SetResetToken(ctx, user.ID, token, s.now().Add(s.resetTTL)); err != nil {
		return common.Internal(collabAccountStore, op, err)
	}

	body, err := s.messages.Reset(token)
	if err != nil {
		return common.Internal(collabNotifier, op, err)
	}
	if err := s.notifier.Deliver(ctx, user.Email, notify.SubjectReset, body); err != nil {
		return common.Internal(collabNotifier, op, err)
	}

	return nil
}

// ResetPassword replaces the password when token is valid, equals the stored
// reset token and the stored expiry is still ahead. A failed attempt leaves
// the stored token in place.
func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	const op = "reset password"

	userID, err := s.tokens.Verify(token, auth.PurposeReset)
	if err != nil {
		return common.ErrInvalidToken
	}
	if newPassword == "" {
		return common.ErrorInvalidInput
	}

	hash, err := s.hash(op, newPassword)
	if err != nil {
		return err
	}

	err = s.repomanager.Users(s.db).CompleteReset(ctx, userID, token, hash, s.now())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidToken
		}
		return common.Internal(collabAccountStore, op, err)
	}

	return nil
}

// Authenticate resolves a session token to the id of an existing, active
// user. Any failure is reported as ErrorUnauthorized, except store faults.
func (s *AccountService) Authenticate(ctx context.Context, token string) (string, error) {
	userID, err := s.tokens.Verify(token, auth.PurposeSession)
	if err != nil {
		return "", common.ErrorUnauthorized
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", common.Internal(collabAccountStore, "authenticate", err)
	}
	if !user.Active {
		return "", common.ErrorUnauthorized
	}

	return user.ID, nil
}
