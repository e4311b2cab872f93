package kiosk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sekretariat-digital/bukutamu/internal/models"
)

func TestSubmissionCache_MissReturnsNil(t *testing.T) {
	cache := NewSubmissionCache(NewMemoryCacheStore())

	assert.Nil(t, cache.Check("tok-1", "dev-1"))
}

func TestSubmissionCache_MarkThenCheck(t *testing.T) {
	cache := NewSubmissionCache(NewMemoryCacheStore())

	payload := models.SubmissionSummary{FullName: "Budi Santoso", PhotoCount: 2}
	record := cache.Mark("tok-1", "dev-1", payload)

	require.NotNil(t, record)
	assert.True(t, record.Submitted)
	assert.Equal(t, "tok-1", record.QRToken)
	assert.Equal(t, "dev-1", record.DeviceID)

	got := cache.Check("tok-1", "dev-1")
	require.NotNil(t, got)
	assert.Equal(t, "Budi Santoso", got.Payload.FullName)
	assert.Equal(t, 2, got.Payload.PhotoCount)
}

func TestSubmissionCache_KeyIsPerEventAndDevice(t *testing.T) {
	cache := NewSubmissionCache(NewMemoryCacheStore())

	cache.Mark("tok-1", "dev-1", models.SubmissionSummary{FullName: "Budi"})

	assert.Nil(t, cache.Check("tok-1", "dev-2"), "other devices are not marked")
	assert.Nil(t, cache.Check("tok-2", "dev-1"), "other events are not marked")
}

func TestSubmissionCache_CorruptDataTreatedAsMiss(t *testing.T) {
	store := NewMemoryCacheStore()
	store.Set(cacheKey("tok-1", "dev-1"), "{not valid json")

	cache := NewSubmissionCache(store)

	assert.Nil(t, cache.Check("tok-1", "dev-1"), "corrupt entries read as absent, never crash")
}
