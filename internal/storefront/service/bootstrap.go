package service

import (
	"context"
	"crypto/subtle"
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
	ErrAlreadyBootstrapped   = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
)

// BootstrapService creates the first administrator on an empty store.
type BootstrapService struct {
	Store store.Store
	Token string // Pre-configured bootstrap token; empty disables bootstrap
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

func (s *BootstrapService) Bootstrap(ctx context.Context, token, name, email, password string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	// 1. Validate provided token
	if s.Token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
		l.Warn("unauthorized bootstrap attempt")
		return domain.User{}, ErrBootstrapUnauthorized
	}

	name = strings.TrimSpace(name)
	email = domain.NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return domain.User{}, invalid("name, email and password are required")
	}

	// 2. Hash password
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		l.Error("failed to hash admin password", slog.Any("error", err))
		return domain.User{}, err
	}

	now := time.Now().UTC()
	admin := domain.User{
		ID:           idx.NewAt(now).String(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Permissions:  domain.Permissions{domain.PermissionAdmin, domain.PermissionUser},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// 3. Check and create in one transaction so two racing bootstraps
	// cannot both succeed
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		empty, err := tx.Users().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return ErrAlreadyBootstrapped
		}
		return tx.Users().CreateUser(ctx, admin)
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyBootstrapped) {
			l.Warn("attempted bootstrap on already-bootstrapped system")
			return domain.User{}, err
		}
		l.Error("failed to create admin user", slog.Any("error", err))
		return domain.User{}, err
	}

	l.Info("bootstrap completed", slog.String("admin_user_id", admin.ID))
	return admin, nil
}
