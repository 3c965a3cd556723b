package cache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable clock for expiry tests.
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newStore(t *testing.T, clock *fakeClock, maxSizeMB int) *FileStore {
	t.Helper()
	store, err := NewFileStore(Config{
		Enabled:   true,
		Dir:       t.TempDir(),
		TTL:       time.Minute,
		MaxSizeMB: maxSizeMB,
	}, WithClock(clock.Now))
	require.NoError(t, err)
	return store
}

func TestEntry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	entry := NewEntry("k", json.RawMessage(`{"n":1}`), now, time.Minute)

	assert.False(t, entry.ExpiredAt(now))
	assert.True(t, entry.ExpiredAt(now.Add(time.Minute)))
	assert.Equal(t, 30*time.Second, entry.Remaining(now.Add(30*time.Second)))
	assert.Equal(t, time.Duration(0), entry.Remaining(now.Add(time.Hour)))

	var v struct{ N int }
	require.NoError(t, entry.Decode(&v))
	assert.Equal(t, 1, v.N)
}

func TestGenerateKey(t *testing.T) {
	a, err := GenerateKey(KeyParams{Source: "Fixture", Sort: "name", Order: "ASC", Offset: 0, Limit: 50})
	require.NoError(t, err)
	b, err := GenerateKey(KeyParams{Source: " fixture ", Sort: "name", Order: "asc", Offset: 0, Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	c, err := GenerateKey(KeyParams{Source: "fixture", Sort: "name", Order: "asc", Offset: 50, Limit: 50})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	_, err = GenerateKey(KeyParams{})
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestFileStore_SetGetDelete(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := newStore(t, clock, 0)

	_, err := store.Get("missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set("page-0", json.RawMessage(`[1,2,3]`)))
	entry, err := store.Get("page-0")
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2,3]`, string(entry.Data))

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, store.Delete("page-0"))
	require.NoError(t, store.Delete("page-0"), "delete is idempotent")
	_, err = store.Get("page-0")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Set("", nil), ErrInvalidKey)
}

func TestFileStore_Expiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := newStore(t, clock, 0)

	require.NoError(t, store.Set("a", json.RawMessage(`1`)))
	require.NoError(t, store.Set("b", json.RawMessage(`2`)))

	clock.now = clock.now.Add(2 * time.Minute)
	_, err := store.Get("a")
	require.ErrorIs(t, err, ErrExpired)

	removed, err := store.CleanupExpired()
	require.NoError(t, err)
	assert.Equal(t, 1, removed, "a was already removed by Get")

	count, err := store.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestFileStore_ClearAndSize(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := newStore(t, clock, 0)

	require.NoError(t, store.Set("a", json.RawMessage(`"x"`)))
	size, err := store.Size()
	require.NoError(t, err)
	assert.Positive(t, size)

	require.NoError(t, store.Clear())
	count, err := store.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestFileStore_SizeLimit(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := newStore(t, clock, 1)

	big := make([]byte, bytesPerMB)
	for i := range big {
		big[i] = 'a'
	}
	payload, err := json.Marshal(string(big))
	require.NoError(t, err)

	assert.ErrorIs(t, store.Set("big", payload), ErrSizeExceeded)
}

func TestFileStore_Disabled(t *testing.T) {
	store, err := NewFileStore(Config{Enabled: false})
	require.NoError(t, err)
	assert.False(t, store.Enabled())

	_, err = store.Get("k")
	assert.ErrorIs(t, err, ErrDisabled)
	assert.ErrorIs(t, store.Set("k", nil), ErrDisabled)
	assert.ErrorIs(t, store.Clear(), ErrDisabled)
	_, err = store.Count()
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestConfig(t *testing.T) {
	t.Run("defaults validate", func(t *testing.T) {
		assert.NoError(t, DefaultConfig().Validate())
	})

	t.Run("bad ttl", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.TTL = time.Second
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidTTL)
	})

	t.Run("empty dir", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Dir = ""
		assert.ErrorIs(t, cfg.Validate(), ErrEmptyDir)
		_, err := NewFileStore(cfg)
		assert.ErrorIs(t, err, ErrEmptyDir)
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv(EnvEnabled, "false")
		t.Setenv(EnvDir, "/tmp/carelist-cache")
		t.Setenv(EnvTTL, "2m")
		t.Setenv(EnvMaxSizeMB, "7")

		cfg := DefaultConfig().ApplyEnv()
		assert.False(t, cfg.Enabled)
		assert.Equal(t, "/tmp/carelist-cache", cfg.Dir)
		assert.Equal(t, 2*time.Minute, cfg.TTL)
		assert.Equal(t, 7, cfg.MaxSizeMB)
	})

	t.Run("invalid env ignored", func(t *testing.T) {
		t.Setenv(EnvEnabled, "maybe")
		t.Setenv(EnvTTL, "1s")
		t.Setenv(EnvMaxSizeMB, "-4")

		base := DefaultConfig()
		assert.Equal(t, base, base.ApplyEnv())
	})
}

func TestParseTTL(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{input: "300", want: 5 * time.Minute},
		{input: "90s", want: 90 * time.Second},
		{input: "1h30m", want: 90 * time.Minute},
		{input: "5", wantErr: true},
		{input: "48h", wantErr: true},
		{input: "soon", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTTL(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45s", FormatDuration(45*time.Second))
	assert.Equal(t, "5m", FormatDuration(5*time.Minute))
	assert.Equal(t, "2h", FormatDuration(2*time.Hour))
	assert.Equal(t, "1h30m", FormatDuration(90*time.Minute))
	assert.Equal(t, "2d", FormatDuration(48*time.Hour))
	assert.Equal(t, "1d3h", FormatDuration(27*time.Hour))
}
