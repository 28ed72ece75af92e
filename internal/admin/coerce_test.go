package admin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCoerceValueEmptyIsNull(t *testing.T) {
	require.Nil(t, CoerceValue("integer", ""))
	require.Nil(t, CoerceValue("text", ""))
}

func TestCoerceValueBoolean(t *testing.T) {
	for _, raw := range []string{"true", "T", "1", "yes", "Y", "on", "да", "ДА"} {
		require.Equal(t, true, CoerceValue("boolean", raw), raw)
	}
	for _, raw := range []string{"false", "0", "нет", "anything"} {
		require.Equal(t, false, CoerceValue("boolean", raw), raw)
	}
}

func TestCoerceValueNumbers(t *testing.T) {
	require.Equal(t, int64(42), CoerceValue("integer", "42"))
	require.Equal(t, int64(-7), CoerceValue("bigint", " -7 "))
	require.Equal(t, 3.14, CoerceValue("numeric", "3.14"))
	require.Equal(t, 3.14, CoerceValue("double precision", "3,14"))

	// Unparseable input passes through for the database to judge.
	require.Equal(t, "abc", CoerceValue("integer", "abc"))
	require.Equal(t, "1.5", CoerceValue("integer", "1.5"))
}

func TestCoerceValueDates(t *testing.T) {
	d, ok := CoerceValue("date", "2026-08-25").(time.Time)
	require.True(t, ok)
	require.Equal(t, 2026, d.Year())

	ts, ok := CoerceValue("timestamp without time zone", "2026-08-25T10:30:00").(time.Time)
	require.True(t, ok)
	require.Equal(t, 10, ts.Hour())

	ts, ok = CoerceValue("timestamp with time zone", "2026-08-25 10:30:00").(time.Time)
	require.True(t, ok)
	require.Equal(t, 30, ts.Minute())

	require.Equal(t, "not-a-date", CoerceValue("date", "not-a-date"))
}

func TestCoerceValueTextPassthrough(t *testing.T) {
	require.Equal(t, "привет", CoerceValue("text", "привет"))
	require.Equal(t, "10:30", CoerceValue("time without time zone", "10:30"))
}
