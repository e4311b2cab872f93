package kiosk

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	identityKey    = "bukutamu_device_id"
	fallbackKey    = "bukutamu_device_id_fallback"
	identityPrefix = "dev_"
	fallbackPrefix = "fallback_"
)

// IdentityStore persists the device identity across sessions. Implementations
// must tolerate concurrent page loads reading the same key.
type IdentityStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// Signals are the environment observations a fingerprint is derived from.
// None of them are secrets; the result is a dedup hint, not a credential.
type Signals struct {
	UserAgent    string
	Locale       string
	ScreenWidth  int
	ScreenHeight int
	ColorDepth   int
	Timezone     string
	CPUCount     int
	Platform     string
}

// Generator derives a stable pseudo-identity for the current device. An
// identity found in the store is always returned unchanged: stability takes
// priority over freshness.
type Generator struct {
	store   IdentityStore
	signals func() (Signals, error)
	now     func() time.Time
}

func NewGenerator(store IdentityStore, signals func() (Signals, error)) *Generator {
	return &Generator{
		store:   store,
		signals: signals,
		now:     time.Now,
	}
}

// DeviceIdentity never fails. If fingerprinting or the store is unavailable
// it degrades to a random identity persisted under a separate key; the
// degradation is logged but not surfaced, since it only weakens dedup.
func (g *Generator) DeviceIdentity() string {
	if id, ok := g.store.Get(identityKey); ok && id != "" {
		return id
	}
	if id, ok := g.store.Get(fallbackKey); ok && id != "" {
		return id
	}

	id, err := g.fingerprint()
	if err == nil {
		if err = g.store.Set(identityKey, id); err == nil {
			return id
		}
	}
	log.Printf("device identity degraded to random fallback: %v", err)

	fallback := g.randomIdentity()
	if err := g.store.Set(fallbackKey, fallback); err != nil {
		log.Printf("failed to persist fallback identity: %v", err)
	}
	return fallback
}

func (g *Generator) fingerprint() (string, error) {
	sig, err := g.signals()
	if err != nil {
		return "", fmt.Errorf("signal collection failed: %w", err)
	}

	joined := strings.Join([]string{
		sig.UserAgent,
		sig.Locale,
		fmt.Sprintf("%dx%d", sig.ScreenWidth, sig.ScreenHeight),
		strconv.Itoa(sig.ColorDepth),
		sig.Timezone,
		strconv.Itoa(sig.CPUCount),
		sig.Platform,
	}, "|")

	// Freshly generated identities carry the calendar day: a device whose
	// persisted identity is wiped re-enters as a new device the next day
	// instead of colliding with identical hardware.
	return identityPrefix + base36Hash(joined) + daySalt(g.now()), nil
}

// base36Hash is a polynomial rolling hash over the fingerprint runes,
// rendered base-36. Non-cryptographic on purpose; the server-side unique
// constraint is the real guarantee.
func base36Hash(s string) string {
	var h uint32
	for _, c := range s {
		h = h*31 + uint32(c)
	}
	return strconv.FormatUint(uint64(h), 36)
}

func daySalt(now time.Time) string {
	return now.Format("20060102")
}

func (g *Generator) randomIdentity() string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fallbackPrefix + strconv.FormatInt(g.now().UnixNano(), 36) + "_" + suffix
}
