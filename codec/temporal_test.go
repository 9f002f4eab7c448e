package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schemabind "github.com/reoring/schemabind"
)

func TestInstant_Codec_Basic(t *testing.T) {
	c := Instant()

	in := "2025-01-01T00:00:00Z"
	got, err := c.Decode(in)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)), "unexpected time: %v", got)

	out, err := c.Encode(got)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestInstant_NormalizesToUTC(t *testing.T) {
	c := Instant()
	got, err := c.Decode("2025-01-01T09:00:00.500+09:00")
	require.NoError(t, err)
	out, _ := c.Encode(got)
	assert.Equal(t, "2025-01-01T00:00:00.5Z", out)
}

func TestInstant_RejectsPartial(t *testing.T) {
	for _, in := range []string{"2025", "2025-01-01", "2025-01-01T00:00:00", "nope"} {
		_, err := Instant().Decode(in)
		assert.True(t, schemabind.HasCode(err, schemabind.CodeInvalidFormat), "%q: %v", in, err)
	}
}

func TestDate_Precisions(t *testing.T) {
	c := Date()
	for in, want := range map[string]time.Time{
		"1974":       time.Date(1974, 1, 1, 0, 0, 0, 0, time.UTC),
		"1974-12":    time.Date(1974, 12, 1, 0, 0, 0, 0, time.UTC),
		"1974-12-25": time.Date(1974, 12, 25, 0, 0, 0, 0, time.UTC),
	} {
		got, err := c.Decode(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s: %v", in, got)
	}
	_, err := c.Decode("1974-12-25T10:00:00Z")
	assert.Error(t, err)
	_, err = c.Decode("1974-13")
	assert.Error(t, err)

	out, _ := c.Encode(time.Date(2024, 3, 5, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-03-05", out)
}

func TestDateTime_KeepsOffset(t *testing.T) {
	c := DateTime()
	got, err := c.Decode("2024-03-05T09:30:00+01:00")
	require.NoError(t, err)
	out, _ := c.Encode(got)
	assert.Equal(t, "2024-03-05T09:30:00+01:00", out)

	_, err = c.Decode("2024-03")
	assert.NoError(t, err)
	_, err = c.Decode("2024-03-05T09:30")
	assert.Error(t, err)
}

func TestParsePartial(t *testing.T) {
	tm, p, err := ParsePartial("2024-02")
	require.NoError(t, err)
	assert.Equal(t, PrecisionMonth, p)
	assert.Equal(t, "2024-02", FormatPartial(tm, p))

	_, p, err = ParsePartial("2024-02-01T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, PrecisionTime, p)
}
