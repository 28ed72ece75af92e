package quote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trimm-medical/magconfig/internal/shared"
)

func TestStoreCreateGetDelete(t *testing.T) {
	s := NewStore(time.Hour)
	q := s.Create("EVE")
	require.NotEqual(t, "", q.ID.String())
	require.Equal(t, "EVE", q.Mode)
	require.Equal(t, DefaultParams(), q.Params)

	got, err := s.Get(q.ID)
	require.NoError(t, err)
	require.Equal(t, q.ID, got.ID)

	s.Delete(q.ID)
	_, err = s.Get(q.ID)
	require.ErrorIs(t, err, shared.ErrQuoteExpired)
}

func TestStoreUpdateReturnsCopy(t *testing.T) {
	s := NewStore(time.Hour)
	q := s.Create("EVE")

	updated, err := s.Update(q.ID, func(q *Quote) error {
		q.Append(Line{PartNumber: "100"})
		return nil
	})
	require.NoError(t, err)
	require.Len(t, updated.Lines, 1)

	// Mutating the returned copy must not leak into the store.
	updated.Lines[0].PartNumber = "tampered"
	fresh, err := s.Get(q.ID)
	require.NoError(t, err)
	require.Equal(t, "100", fresh.Lines[0].PartNumber)
}

func TestStoreTTLEviction(t *testing.T) {
	s := NewStore(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }

	q := s.Create("EVE")

	now = now.Add(2 * time.Minute)
	_, err := s.Get(q.ID)
	require.ErrorIs(t, err, shared.ErrQuoteExpired)
	require.Zero(t, s.Len())
}

func TestStoreActivityKeepsSessionAlive(t *testing.T) {
	s := NewStore(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }

	q := s.Create("EVE")

	for i := 0; i < 3; i++ {
		now = now.Add(30 * time.Second)
		_, err := s.Update(q.ID, func(*Quote) error { return nil })
		require.NoError(t, err)
	}
}
