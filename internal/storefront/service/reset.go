package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/internal/storefront/store"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/mailx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

var (
	ErrNoAccountForEmail     = errors.New("no such user found for email")
	ErrInvalidOrExpiredToken = errors.New("this token is either invalid or expired")
	ErrPasswordsDoNotMatch   = &ValidationError{Message: "your passwords don't match"}
	ErrResetTTL              = errors.New("reset token ttl must be positive")
)

// ResetAcknowledgement is returned once a reset token has been stored. Mail
// delivery happens afterwards and does not change the answer.
const ResetAcknowledgement = "Check your email to reset your password!"

const mailTimeout = 30 * time.Second

// ResetService issues and redeems single-use password reset tokens.
type ResetService struct {
	Store  store.Store
	Mailer mailx.Mailer
	TTL    time.Duration

	// FrontendURL is the base of the link placed in reset emails.
	FrontendURL string

	// Now defaults to time.Now.
	Now func() time.Time

	wg sync.WaitGroup
}

func (s *ResetService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// RequestReset stores a fresh token for the account behind email, replacing
// any earlier one, and mails the raw token to the account holder.
func (s *ResetService) RequestReset(ctx context.Context, email string) (string, error) {
	log := slogx.FromContext(ctx)

	if s.TTL <= 0 {
		return "", ErrResetTTL
	}

	// 1. Find the account
	u, err := s.Store.Users().GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("reset requested for unknown email")
			return "", ErrNoAccountForEmail
		}
		log.Error("failed to fetch user", slog.Any("error", err))
		return "", err
	}

	// 2. Generate the token; only its fingerprint is stored
	token, err := cryptox.GenerateHexToken(cryptox.ResetTokenSize)
	if err != nil {
		log.Error("failed to generate reset token", slog.Any("error", err))
		return "", err
	}
	expiry := s.now().Add(s.TTL)

	// 3. Persist, overwriting any previous token
	if err := s.Store.Users().SetResetToken(ctx, u.ID, cryptox.FingerprintToken(token), expiry); err != nil {
		log.Error("failed to store reset token", slog.String("user_id", u.ID), slog.Any("error", err))
		return "", err
	}

	// 4. Deliver out of band
	s.deliver(ctx, u, token, expiry)

	log.Info("reset token issued", slog.String("user_id", u.ID), slog.Time("expires_at", expiry))
	return ResetAcknowledgement, nil
}

func (s *ResetService) deliver(ctx context.Context, u domain.User, token string, expiry time.Time) {
	log := slogx.FromContext(ctx).With(slog.String("user_id", u.ID))

	msg, err := resetEmail(u, s.FrontendURL, token, expiry)
	if err != nil {
		log.Error("failed to render reset email", slog.Any("error", err))
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mailTimeout)
		defer cancel()

		if err := s.Mailer.Send(ctx, msg); err != nil {
			log.Error("failed to send reset email", slog.Any("error", err))
			return
		}
		log.Debug("reset email sent")
	}()
}

// Wait blocks until in-flight reset emails have been handed to the mailer.
func (s *ResetService) Wait() {
	s.wg.Wait()
}

// ResetPassword redeems token and sets a new password. The token is spent
// even if the caller never uses the returned user.
func (s *ResetService) ResetPassword(ctx context.Context, token, password, confirm string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input
	if password != confirm {
		return domain.User{}, ErrPasswordsDoNotMatch
	}
	if password == "" {
		return domain.User{}, invalid("password is required")
	}
	if token == "" {
		return domain.User{}, ErrInvalidOrExpiredToken
	}

	fingerprint := cryptox.FingerprintToken(token)

	// 2. Hash the new password before any transaction is open
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	now := s.now()

	var updated domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 3. Look up a live token
		u, err := tx.Users().GetUserByResetTokenHash(ctx, fingerprint, now)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidOrExpiredToken
			}
			return err
		}
		if !u.HasPendingReset(now) {
			return ErrInvalidOrExpiredToken
		}

		// 4. Spend the token; losing a race here means someone else spent it
		if err := tx.Users().ConsumeResetToken(ctx, u.ID, fingerprint, hash); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidOrExpiredToken
			}
			return err
		}

		updated, err = tx.Users().GetUserByID(ctx, u.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrInvalidOrExpiredToken) {
			log.Warn("reset with invalid or expired token")
			return domain.User{}, err
		}
		log.Error("failed to reset password", slog.Any("error", err))
		return domain.User{}, err
	}

	log.Info("password reset", slog.String("user_id", updated.ID))
	return updated, nil
}
