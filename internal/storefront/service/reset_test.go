package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/internal/storefront/store/drivers/sqlite"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResetService(t *testing.T, st *sqlite.Store, mailer *fakeMailer) *ResetService {
	t.Helper()
	svc := &ResetService{
		Store:       st,
		Mailer:      mailer,
		TTL:         time.Hour,
		FrontendURL: "https://shop.example.com/",
	}
	t.Cleanup(svc.Wait)
	return svc
}

// tokenFromMail pulls the raw token out of the link in the text body.
func tokenFromMail(t *testing.T, body string) string {
	t.Helper()
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "https://") {
			continue
		}
		u, err := url.Parse(strings.TrimSpace(line))
		require.NoError(t, err)
		require.Equal(t, "/reset", u.Path)
		return u.Query().Get("resetToken")
	}
	t.Fatalf("no reset link in %q", body)
	return ""
}

func TestResetService_RequestReset(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	mailer := &fakeMailer{}
	svc := newResetService(t, st, mailer)
	u := seedUser(t, st, "wes@example.com", domain.PermissionUser)

	msg, err := svc.RequestReset(ctx, " WES@example.com")
	require.NoError(t, err)
	require.Equal(t, ResetAcknowledgement, msg)

	svc.Wait()
	sent := mailer.messages()
	require.Len(t, sent, 1)
	require.Equal(t, "wes@example.com", sent[0].To)
	require.Equal(t, resetEmailSubject, sent[0].Subject)
	require.Contains(t, sent[0].HTML, "Click Here to Reset")

	token := tokenFromMail(t, sent[0].Text)
	require.Len(t, token, 2*cryptox.ResetTokenSize)

	stored, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ResetTokenHash)
	require.Equal(t, cryptox.FingerprintToken(token), *stored.ResetTokenHash)
	require.NotEqual(t, token, *stored.ResetTokenHash)
	require.True(t, stored.HasPendingReset(time.Now()))
	require.False(t, stored.HasPendingReset(time.Now().Add(2*time.Hour)))
}

func TestResetService_RequestReset_UnknownEmail(t *testing.T) {
	st := newTestStore(t)
	mailer := &fakeMailer{}
	svc := newResetService(t, st, mailer)

	_, err := svc.RequestReset(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, ErrNoAccountForEmail)
	svc.Wait()
	require.Empty(t, mailer.messages())
}

func TestResetService_RequestReset_MailFailureStillAcknowledges(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newResetService(t, st, &fakeMailer{err: errMailDown})
	u := seedUser(t, st, "wes@example.com", domain.PermissionUser)

	msg, err := svc.RequestReset(ctx, "wes@example.com")
	require.NoError(t, err)
	require.Equal(t, ResetAcknowledgement, msg)
	svc.Wait()

	stored, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ResetTokenHash)
}

func TestResetService_RequestReset_ReplacesPreviousToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	mailer := &fakeMailer{}
	svc := newResetService(t, st, mailer)
	seedUser(t, st, "wes@example.com", domain.PermissionUser)

	_, err := svc.RequestReset(ctx, "wes@example.com")
	require.NoError(t, err)
	_, err = svc.RequestReset(ctx, "wes@example.com")
	require.NoError(t, err)
	svc.Wait()

	sent := mailer.messages()
	require.Len(t, sent, 2)
	first, second := tokenFromMail(t, sent[0].Text), tokenFromMail(t, sent[1].Text)
	require.NotEqual(t, first, second)

	_, err = svc.ResetPassword(ctx, first, "newpass1", "newpass1")
	require.ErrorIs(t, err, ErrInvalidOrExpiredToken)

	_, err = svc.ResetPassword(ctx, second, "newpass1", "newpass1")
	require.NoError(t, err)
}

func TestResetService_RequestReset_RequiresTTL(t *testing.T) {
	st := newTestStore(t)
	svc := newResetService(t, st, &fakeMailer{})
	svc.TTL = 0
	seedUser(t, st, "wes@example.com", domain.PermissionUser)

	_, err := svc.RequestReset(context.Background(), "wes@example.com")
	require.ErrorIs(t, err, ErrResetTTL)
}

func requestToken(t *testing.T, svc *ResetService, mailer *fakeMailer, email string) string {
	t.Helper()
	_, err := svc.RequestReset(context.Background(), email)
	require.NoError(t, err)
	svc.Wait()
	sent := mailer.messages()
	require.NotEmpty(t, sent)
	return tokenFromMail(t, sent[len(sent)-1].Text)
}

func TestResetService_ResetPassword(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	mailer := &fakeMailer{}
	svc := newResetService(t, st, mailer)
	u := seedUser(t, st, "wes@example.com", domain.PermissionUser)
	token := requestToken(t, svc, mailer, "wes@example.com")

	got, err := svc.ResetPassword(ctx, token, "brand-new", "brand-new")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Nil(t, got.ResetTokenHash)
	require.Nil(t, got.ResetTokenExpiry)
	require.NoError(t, cryptox.VerifyPassword("brand-new", got.PasswordHash))
	require.ErrorIs(t, cryptox.VerifyPassword("hunter22", got.PasswordHash), cryptox.ErrPasswordMismatch)

	t.Run("token is single use", func(t *testing.T) {
		_, err := svc.ResetPassword(ctx, token, "again-new", "again-new")
		require.ErrorIs(t, err, ErrInvalidOrExpiredToken)
	})
}

func TestResetService_ResetPassword_Validation(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	mailer := &fakeMailer{}
	svc := newResetService(t, st, mailer)
	u := seedUser(t, st, "wes@example.com", domain.PermissionUser)
	token := requestToken(t, svc, mailer, "wes@example.com")

	_, err := svc.ResetPassword(ctx, token, "one", "two")
	require.ErrorIs(t, err, ErrPasswordsDoNotMatch)
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.ResetPassword(ctx, token, "", "")
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.ResetPassword(ctx, "", "pw", "pw")
	require.ErrorIs(t, err, ErrInvalidOrExpiredToken)

	_, err = svc.ResetPassword(ctx, "deadbeef", "pw", "pw")
	require.ErrorIs(t, err, ErrInvalidOrExpiredToken)

	// None of the rejected attempts spent the token.
	stored, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ResetTokenHash)
	require.NoError(t, cryptox.VerifyPassword("hunter22", stored.PasswordHash))
}

func TestResetService_ResetPassword_Expired(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	mailer := &fakeMailer{}
	svc := newResetService(t, st, mailer)
	seedUser(t, st, "wes@example.com", domain.PermissionUser)

	issued := time.Now().UTC()
	svc.Now = func() time.Time { return issued }
	token := requestToken(t, svc, mailer, "wes@example.com")

	svc.Now = func() time.Time { return issued.Add(time.Hour) }
	_, err := svc.ResetPassword(ctx, token, "brand-new", "brand-new")
	require.ErrorIs(t, err, ErrInvalidOrExpiredToken)

	svc.Now = func() time.Time { return issued.Add(59 * time.Minute) }
	_, err = svc.ResetPassword(ctx, token, "brand-new", "brand-new")
	require.NoError(t, err)
}

func TestResetService_ResetPassword_ConcurrentRedeem(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	mailer := &fakeMailer{}
	svc := newResetService(t, st, mailer)
	seedUser(t, st, "wes@example.com", domain.PermissionUser)
	token := requestToken(t, svc, mailer, "wes@example.com")

	const n = 4
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ResetPassword(ctx, token, "brand-new", "brand-new")
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
		}()
	}
	wg.Wait()
	require.Equal(t, 1, wins)
}

func TestResetService_ResetPassword_ConcurrentRedeemOnDisk(t *testing.T) {
	ctx := context.Background()
	st := newFileStore(t)
	mailer := &fakeMailer{}
	svc := newResetService(t, st, mailer)
	u := seedUser(t, st, "wes@example.com", domain.PermissionUser)
	token := requestToken(t, svc, mailer, "wes@example.com")

	const n = 8
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		wins  int
		loses int
		start = make(chan struct{})
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			pw := fmt.Sprintf("brand-new-%d", i)
			_, err := svc.ResetPassword(ctx, token, pw, pw)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
				return
			}
			loses++
			assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
		}()
	}
	close(start)
	wg.Wait()

	require.Equal(t, 1, wins)
	require.Equal(t, n-1, loses)

	stored, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Nil(t, stored.ResetTokenHash)
	require.Nil(t, stored.ResetTokenExpiry)
}

func TestResetService_ResetPassword_ConcurrentUsersOnDisk(t *testing.T) {
	ctx := context.Background()
	st := newFileStore(t)
	mailer := &fakeMailer{}
	svc := newResetService(t, st, mailer)
	items := &ItemService{Store: st}

	alice := seedUser(t, st, "alice@example.com", domain.PermissionUser)
	bob := seedUser(t, st, "bob@example.com", domain.PermissionUser)
	seller := seedUser(t, st, "seller@example.com", domain.PermissionUser)
	aliceToken := requestToken(t, svc, mailer, "alice@example.com")
	bobToken := requestToken(t, svc, mailer, "bob@example.com")

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
	)
	for _, tok := range []string{aliceToken, bobToken} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.ResetPassword(ctx, tok, "brand-new", "brand-new")
			assert.NoError(t, err)
		}()
	}
	for i := range 6 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := items.CreateItem(ctx, seller.ID, ItemInput{
				Title:       fmt.Sprintf("Item %d", i),
				Description: "Concurrent",
				Price:       100,
			})
			assert.NoError(t, err)
		}()
	}
	close(start)
	wg.Wait()

	for _, id := range []string{alice.ID, bob.ID} {
		stored, err := st.Users().GetUserByID(ctx, id)
		require.NoError(t, err)
		require.Nil(t, stored.ResetTokenHash)
		require.NoError(t, cryptox.VerifyPassword("brand-new", stored.PasswordHash))
	}

	listed, err := st.Items().ListItems(ctx, 100, 0)
	require.NoError(t, err)
	require.Len(t, listed, 6)
}

func TestResetLink(t *testing.T) {
	link, err := resetLink("http://localhost:7777/", "abc123")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:7777/reset?resetToken=abc123", link)
}
