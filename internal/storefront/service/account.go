package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/internal/storefront/store"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/idx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

var (
	ErrNoSuchUser      = errors.New("there is no user with that email")
	ErrInvalidPassword = errors.New("invalid password")
	ErrEmailTaken      = &ValidationError{Message: "an account with that email already exists"}
)

// SignoutMessage is returned to callers that sign out.
const SignoutMessage = "Goodbye!"

type AccountService struct {
	Store    store.Store
	Sessions *SessionService
}

// Signup creates a USER account and signs it in.
func (s *AccountService) Signup(ctx context.Context, name, email, password string) (domain.User, Session, error) {
	log := slogx.FromContext(ctx)

	name = strings.TrimSpace(name)
	email = domain.NormalizeEmail(email)
	switch {
	case name == "":
		return domain.User{}, Session{}, invalid("name is required")
	case email == "" || !strings.Contains(email, "@"):
		return domain.User{}, Session{}, invalid("a valid email is required")
	case password == "":
		return domain.User{}, Session{}, invalid("password is required")
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, Session{}, err
	}

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.NewAt(now).String(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Permissions:  domain.Permissions{domain.PermissionUser},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Info("signup with existing email")
			return domain.User{}, Session{}, ErrEmailTaken
		}
		log.Error("failed to create user", slog.Any("error", err))
		return domain.User{}, Session{}, err
	}

	sess, err := s.Sessions.Mint(u, now)
	if err != nil {
		log.Error("failed to mint session", slog.String("user_id", u.ID), slog.Any("error", err))
		return domain.User{}, Session{}, err
	}

	log.Info("user signed up", slog.String("user_id", u.ID))
	return u, sess, nil
}

// Signin checks credentials and mints a session.
func (s *AccountService) Signin(ctx context.Context, email, password string) (domain.User, Session, error) {
	log := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("signin for unknown email")
			return domain.User{}, Session{}, ErrNoSuchUser
		}
		log.Error("failed to fetch user", slog.Any("error", err))
		return domain.User{}, Session{}, err
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Warn("signin with wrong password", slog.String("user_id", u.ID))
			return domain.User{}, Session{}, ErrInvalidPassword
		}
		log.Error("stored password hash unusable", slog.String("user_id", u.ID), slog.Any("error", err))
		return domain.User{}, Session{}, err
	}

	sess, err := s.Sessions.Mint(u, time.Now().UTC())
	if err != nil {
		log.Error("failed to mint session", slog.String("user_id", u.ID), slog.Any("error", err))
		return domain.User{}, Session{}, err
	}

	log.Info("user signed in", slog.String("user_id", u.ID))
	return u, sess, nil
}

// CurrentUser returns the caller's own record.
func (s *AccountService) CurrentUser(ctx context.Context, callerID string) (domain.User, error) {
	return loadCaller(ctx, s.Store.Users(), callerID)
}

// Signout has no server state to clear; the transport drops the cookie.
func (s *AccountService) Signout(ctx context.Context, callerID string) string {
	if callerID != "" {
		slogx.FromContext(ctx).Info("user signed out", slog.String("user_id", callerID))
	}
	return SignoutMessage
}
