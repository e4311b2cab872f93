package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sekretariat-digital/bukutamu/internal/models"
)

func TestMemorySubmissionRepository_UniquePerEventAndDevice(t *testing.T) {
	repo := NewMemorySubmissionRepository()
	ctx := context.Background()

	eventRepo := NewMemoryEventRepository()
	event := &models.Event{Name: "Acara", Date: time.Now(), Status: models.EventActive, QRToken: "tok"}
	require.NoError(t, eventRepo.Create(ctx, event))

	first := &models.Submission{EventID: event.ID, DeviceID: "dev-1", FullName: "Budi"}
	require.NoError(t, repo.Create(ctx, first))

	dup := &models.Submission{EventID: event.ID, DeviceID: "dev-1", FullName: "Lain"}
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrAlreadySubmitted)

	// Another device on the same event is fine
	other := &models.Submission{EventID: event.ID, DeviceID: "dev-2", FullName: "Lain"}
	assert.NoError(t, repo.Create(ctx, other))
}

func TestMemorySubmissionRepository_ConcurrentCreatesSingleWinner(t *testing.T) {
	repo := NewMemorySubmissionRepository()
	ctx := context.Background()

	eventRepo := NewMemoryEventRepository()
	event := &models.Event{Name: "Acara", Date: time.Now(), Status: models.EventActive, QRToken: "tok"}
	require.NoError(t, eventRepo.Create(ctx, event))

	const racers = 16
	var wg sync.WaitGroup
	errs := make([]error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Create(ctx, &models.Submission{
				EventID: event.ID, DeviceID: "dev-race", FullName: "Racer",
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrAlreadySubmitted)
		}
	}
	assert.Equal(t, 1, winners, "exactly one concurrent submit may succeed")
}
