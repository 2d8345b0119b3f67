package favorites

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	testAssets   = []string{"BTC", "ETH", "SOL", "LTC", "ADA", "XRP"}
	testDefaults = []string{"BTC", "ETH", "LTC", "ADA"}
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "favorites.json")
	return NewStore(path, testAssets, testDefaults, zap.NewNop())
}

func TestStore_LoadMissingFileReturnsDefaults(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, testDefaults, s.Load())
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save([]string{"SOL", "XRP"}))
	assert.Equal(t, []string{"SOL", "XRP"}, s.Load())
}

func TestStore_LoadMalformedFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewStore(path, testAssets, testDefaults, zap.NewNop())
	assert.Equal(t, testDefaults, s.Load())
}

func TestStore_LoadFiltersUnknownSymbols(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"favorites": ["BTC", "SHIB", "ETH"]}`), 0o644))

	s := NewStore(path, testAssets, testDefaults, zap.NewNop())
	assert.Equal(t, []string{"BTC", "ETH"}, s.Load())
}

func TestStore_LoadAllUnknownFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"favorites": ["SHIB", "PEPE"]}`), 0o644))

	s := NewStore(path, testAssets, testDefaults, zap.NewNop())
	assert.Equal(t, testDefaults, s.Load())
}

func TestStore_LoadDeduplicatesAndCaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"favorites": ["BTC", "BTC", "ETH", "SOL", "LTC", "ADA", "XRP"]}`), 0o644))

	s := NewStore(path, testAssets, testDefaults, zap.NewNop())
	list := s.Load()
	assert.Equal(t, []string{"BTC", "ETH", "SOL", "LTC"}, list)
	assert.LessOrEqual(t, len(list), MaxFavorites)
}

func TestStore_LoadIsNeverEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"favorites": []}`), 0o644))

	s := NewStore(path, testAssets, testDefaults, zap.NewNop())
	assert.NotEmpty(t, s.Load())
}

func TestStore_DefaultsOutsideAssetSetFallBackToAllowed(t *testing.T) {
	// none of the configured defaults is a configured asset
	path := filepath.Join(t.TempDir(), "favorites.json")
	s := NewStore(path, []string{"SOL", "DOGE"}, testDefaults, zap.NewNop())

	list := s.Load()
	assert.Equal(t, []string{"SOL", "DOGE"}, list)
	assert.NotEmpty(t, list)
	assert.LessOrEqual(t, len(list), MaxFavorites)
}

func TestStore_SaveDropsUnknownSymbols(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save([]string{"BTC", "SHIB"}))
	assert.Equal(t, []string{"BTC"}, s.Load())
}

func TestStore_SaveCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "favorites.json")
	s := NewStore(path, testAssets, testDefaults, zap.NewNop())
	require.NoError(t, s.Save([]string{"ETH"}))
	assert.Equal(t, []string{"ETH"}, s.Load())
}
