package kiosk

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSignals() (Signals, error) {
	return Signals{
		UserAgent:    "Mozilla/5.0 (X11; Linux x86_64)",
		Locale:       "id-ID",
		ScreenWidth:  1920,
		ScreenHeight: 1080,
		ColorDepth:   24,
		Timezone:     "Asia/Jakarta",
		CPUCount:     8,
		Platform:     "Linux x86_64",
	}, nil
}

func TestDeviceIdentity_StableAcrossCalls(t *testing.T) {
	store := NewMemoryIdentityStore()
	gen := NewGenerator(store, testSignals)

	first := gen.DeviceIdentity()
	second := gen.DeviceIdentity()

	require.NotEmpty(t, first)
	assert.Equal(t, first, second, "identity must be stable within one storage lifetime")
}

func TestDeviceIdentity_PersistedValueWins(t *testing.T) {
	store := NewMemoryIdentityStore()
	require.NoError(t, store.Set(identityKey, "dev_previous123"))

	gen := NewGenerator(store, testSignals)

	// A stored identity is returned unchanged even though fingerprinting
	// would produce something else today
	assert.Equal(t, "dev_previous123", gen.DeviceIdentity())
}

func TestDeviceIdentity_FingerprintShape(t *testing.T) {
	store := NewMemoryIdentityStore()
	gen := NewGenerator(store, testSignals)
	gen.now = func() time.Time {
		return time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	}

	id := gen.DeviceIdentity()

	assert.True(t, strings.HasPrefix(id, "dev_"))
	assert.True(t, strings.HasSuffix(id, "20260314"), "fresh identity carries the day salt, got %s", id)

	persisted, ok := store.Get(identityKey)
	require.True(t, ok, "identity must be persisted on first generation")
	assert.Equal(t, id, persisted)
}

func TestDeviceIdentity_SameSignalsSameDaySameIdentity(t *testing.T) {
	day := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)

	genA := NewGenerator(NewMemoryIdentityStore(), testSignals)
	genA.now = func() time.Time { return day }
	genB := NewGenerator(NewMemoryIdentityStore(), testSignals)
	genB.now = func() time.Time { return day.Add(6 * time.Hour) }

	assert.Equal(t, genA.DeviceIdentity(), genB.DeviceIdentity(),
		"identical signals on the same calendar day must hash identically")
}

func TestDeviceIdentity_FallbackOnSignalFailure(t *testing.T) {
	store := NewMemoryIdentityStore()
	gen := NewGenerator(store, func() (Signals, error) {
		return Signals{}, errors.New("environment unavailable")
	})

	id := gen.DeviceIdentity()
	require.NotEmpty(t, id)
	assert.True(t, strings.HasPrefix(id, "fallback_"))

	persisted, ok := store.Get(fallbackKey)
	require.True(t, ok, "fallback identity must be persisted under its own key")
	assert.Equal(t, id, persisted)

	// Subsequent calls reuse the persisted fallback
	assert.Equal(t, id, gen.DeviceIdentity())
}

type brokenStore struct{}

func (brokenStore) Get(string) (string, bool) { return "", false }
func (brokenStore) Set(string, string) error  { return errors.New("storage unavailable") }

func TestDeviceIdentity_NeverFails(t *testing.T) {
	gen := NewGenerator(brokenStore{}, testSignals)

	id := gen.DeviceIdentity()
	assert.NotEmpty(t, id, "identity generation must not fail even with no storage")
}

func TestBase36Hash(t *testing.T) {
	a := base36Hash("Mozilla|id-ID|1920x1080")
	b := base36Hash("Mozilla|id-ID|1920x1080")
	c := base36Hash("Mozilla|en-US|1366x768")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
