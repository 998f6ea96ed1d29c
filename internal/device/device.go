package device

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/bigbadman-lab/onesol/internal/interfaces"
	"github.com/bigbadman-lab/onesol/internal/logger"
)

// Keystore keys for the device identity and the user's privacy choices.
const (
	DeviceIDKey      = "device_uuid"
	FriendlyNameKey  = "device_friendly_name"
	ConsentKey       = "user_consent_given"
	EmailKey         = "user_email"
	NotificationsKey = "notifications_enabled"
)

// ErrNoConsent means the user has not granted consent, so no identity may
// be created or read.
var ErrNoConsent = errors.New("user consent not given")

// Identity is the pseudonymous pair that represents this device on the
// leaderboard.
type Identity struct {
	UUID         string
	FriendlyName string
}

var adjectives = []string{
	"Swift", "Brave", "Clever", "Bold", "Nimble", "Sharp", "Bright", "Quick",
	"Wise", "Fierce", "Calm", "Lucky", "Mighty", "Royal",
	"Golden", "Silver", "Crimson", "Azure", "Emerald", "Amber", "Violet", "Cobalt",
}

var animals = []string{
	"Tiger", "Eagle", "Fox", "Wolf", "Lion", "Bear", "Hawk", "Falcon",
	"Panther", "Jaguar", "Raven", "Phoenix", "Dragon", "Griffin", "Shark", "Orca",
	"Leopard", "Cheetah", "Lynx", "Cobra", "Viper", "Stallion", "Stag", "Ram",
}

// GenerateFriendlyName returns a readable handle like SwiftFalcon417.
func GenerateFriendlyName() string {
	adj := adjectives[rand.Intn(len(adjectives))]
	animal := animals[rand.Intn(len(animals))]
	return fmt.Sprintf("%s%s%d", adj, animal, rand.Intn(999)+1)
}

// HasConsent reports whether the user granted consent.
func HasConsent(ctx context.Context, kv interfaces.KeyValue) (bool, error) {
	v, err := kv.Get(ctx, ConsentKey)
	if err != nil {
		return false, fmt.Errorf("read consent: %w", err)
	}
	return v == "true", nil
}

// GrantConsent records the user's consent.
func GrantConsent(ctx context.Context, kv interfaces.KeyValue) error {
	if err := kv.Set(ctx, ConsentKey, "true"); err != nil {
		return fmt.Errorf("record consent: %w", err)
	}
	return nil
}

// RevokeConsent withdraws consent and wipes the identity and stored email.
func RevokeConsent(ctx context.Context, kv interfaces.KeyValue) error {
	for _, key := range []string{ConsentKey, DeviceIDKey, FriendlyNameKey, EmailKey} {
		if err := kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}

// NotificationsEnabled reports whether daily reminders are wanted.
func NotificationsEnabled(ctx context.Context, kv interfaces.KeyValue) (bool, error) {
	v, err := kv.Get(ctx, NotificationsKey)
	if err != nil {
		return false, fmt.Errorf("read notification preference: %w", err)
	}
	return v == "true", nil
}

// SetNotificationsEnabled stores the reminder preference.
func SetNotificationsEnabled(ctx context.Context, kv interfaces.KeyValue, enabled bool) error {
	v := "false"
	if enabled {
		v = "true"
	}
	if err := kv.Set(ctx, NotificationsKey, v); err != nil {
		return fmt.Errorf("write notification preference: %w", err)
	}
	return nil
}

// EnsureIdentity loads the stored identity, creating and persisting any
// missing half. Requires consent. A write failure is logged and the fresh
// identity is still returned, so one bad keystore never blocks play.
func EnsureIdentity(ctx context.Context, kv interfaces.KeyValue) (*Identity, error) {
	ok, err := HasConsent(ctx, kv)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoConsent
	}

	id, err := kv.Get(ctx, DeviceIDKey)
	if err != nil {
		logger.Warn(ctx, "Keystore read failed, generating fallback device id", "error", err)
	}
	if id == "" {
		id = uuid.NewString()
		if err := kv.Set(ctx, DeviceIDKey, id); err != nil {
			logger.Warn(ctx, "Failed to persist device id", "error", err)
		}
	}

	name, err := kv.Get(ctx, FriendlyNameKey)
	if err != nil {
		logger.Warn(ctx, "Keystore read failed, generating fallback friendly name", "error", err)
	}
	if name == "" {
		name = GenerateFriendlyName()
		if err := kv.Set(ctx, FriendlyNameKey, name); err != nil {
			logger.Warn(ctx, "Failed to persist friendly name", "error", err)
		}
	}

	return &Identity{UUID: id, FriendlyName: name}, nil
}
