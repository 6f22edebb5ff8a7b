package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResolutionEvent(t *testing.T) {
	fixed := time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	defer SetClock(nil)

	res := Resolution{
		Point:          Point{Lat: 48.85, Lon: 2.35},
		Region:         Region{Name: "Europe/Paris", Tier: TierShape},
		Classification: OnLand,
	}

	event := NewResolutionEvent(res)

	_, err := uuid.Parse(event.ID)
	require.NoError(t, err)
	assert.Equal(t, 48.85, event.Lat)
	assert.Equal(t, 2.35, event.Lon)
	assert.Equal(t, "Europe/Paris", event.Region)
	assert.Equal(t, TierShape, event.Tier)
	assert.Equal(t, OnLand, event.Classification)
	assert.Equal(t, fixed, event.ResolvedAt)
	assert.Equal(t, fixed, clock.Now())
}

func TestSetClock_NilRestoresRealClock(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)))
	SetClock(nil)

	event := NewResolutionEvent(Resolution{Region: Region{Name: "Etc/GMT", Tier: TierBand}})
	assert.WithinDuration(t, time.Now().UTC(), event.ResolvedAt, time.Minute)
}

func TestNewResolutionEvent_UniqueIDs(t *testing.T) {
	res := Resolution{Region: Region{Name: "Etc/GMT", Tier: TierBand}}

	a := NewResolutionEvent(res)
	b := NewResolutionEvent(res)

	assert.NotEqual(t, a.ID, b.ID)
}
