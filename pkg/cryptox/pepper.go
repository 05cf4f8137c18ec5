package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Argon2id parameters applied to new hashes.
const (
	memory      = 19 * 1024 // KiB
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

var (
	pepperMu sync.RWMutex
	pepper   string
)

// LoadPepper reads the server-wide pepper from path, creating the file with a
// fresh random value when it does not exist yet.
func LoadPepper(path string) error {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create pepper dir: %w", err)
	}

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		SetPepper(string(b))
		return nil
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("read pepper: %w", err)
	}

	raw := make([]byte, keyLength)
	if _, err := rand.Read(raw); err != nil {
		return err
	}
	p := base64.RawURLEncoding.EncodeToString(raw)
	if err := os.WriteFile(path, []byte(p), 0o600); err != nil {
		return fmt.Errorf("write pepper: %w", err)
	}
	SetPepper(p)
	return nil
}

// SetPepper replaces the in-memory pepper. Existing argon2id hashes only
// verify against the pepper they were created with.
func SetPepper(p string) {
	pepperMu.Lock()
	pepper = p
	pepperMu.Unlock()
}

func currentPepper() string {
	pepperMu.RLock()
	defer pepperMu.RUnlock()
	return pepper
}
