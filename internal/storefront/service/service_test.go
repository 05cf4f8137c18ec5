package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/internal/storefront/store/drivers/sqlite"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/idx"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/aussiebroadwan/storefront/pkg/mailx"
	"github.com/stretchr/testify/require"
)

const testIssuer = "storefront-test"

func TestMain(m *testing.M) {
	cryptox.SetPepper("test-pepper")
	os.Exit(m.Run())
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())
	return st
}

// newFileStore opens an on-disk database with the production DSN so
// concurrent transactions really overlap.
func newFileStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.NewStore(sqlite.FileDSN(filepath.Join(t.TempDir(), "storefront.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTestSessions(t *testing.T) *SessionService {
	t.Helper()
	secret := []byte("0123456789abcdef0123456789abcdef")
	signer, err := jwtx.NewSignerHS256(secret)
	require.NoError(t, err)
	return &SessionService{
		Signer:   signer,
		Verifier: jwtx.NewVerifierHS256(secret, testIssuer, 0),
		Issuer:   testIssuer,
		TTL:      time.Hour,
	}
}

// seedUser creates a user whose password is "hunter22".
func seedUser(t *testing.T, st *sqlite.Store, email string, perms ...domain.Permission) domain.User {
	t.Helper()
	hash, err := cryptox.HashPassword("hunter22")
	require.NoError(t, err)

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Name:         "Test User",
		PasswordHash: hash,
		Permissions:  perms,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), u))
	return u
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailx.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mailx.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) messages() []mailx.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailx.Message(nil), m.sent...)
}

var errMailDown = errors.New("smtp: connection refused")
