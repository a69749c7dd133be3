package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pdfmailer/internal/crypto"
	"github.com/pdfmailer/internal/model"
)

// SettingsKey is the fixed key the settings record is stored under.
const SettingsKey = "userSettings"

// ErrCorruptSettings is returned by Load when a stored record exists but
// cannot be decrypted or decoded.
var ErrCorruptSettings = errors.New("settings: stored record is corrupt")

type kv interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

type SettingsStore struct {
	kv      kv
	crypter *crypto.Crypter
}

func NewSettingsStore(kv kv, crypter *crypto.Crypter) *SettingsStore {
	return &SettingsStore{kv: kv, crypter: crypter}
}

// Load decrypts and returns the current settings. Returns the default record
// if nothing was saved yet.
func (s *SettingsStore) Load(ctx context.Context) (*model.UserSettings, error) {
	data, ok, err := s.kv.Get(ctx, SettingsKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return model.DefaultUserSettings(), nil
	}

	plaintext, err := s.crypter.Decrypt(data)
	if err != nil {
		slog.Error("settings: decryption failed", "err", err)
		return nil, fmt.Errorf("%w: %v", ErrCorruptSettings, err)
	}
	var settings model.UserSettings
	if err := json.Unmarshal(plaintext, &settings); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSettings, err)
	}
	return &settings, nil
}

// Save encrypts and persists settings, replacing the stored record.
func (s *SettingsStore) Save(ctx context.Context, settings *model.UserSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	ciphertext, err := s.crypter.Encrypt(raw)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, SettingsKey, ciphertext)
}

// Exists reports whether a settings record has ever been saved.
func (s *SettingsStore) Exists(ctx context.Context) (bool, error) {
	_, ok, err := s.kv.Get(ctx, SettingsKey)
	return ok, err
}
