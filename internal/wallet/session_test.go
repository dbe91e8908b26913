package wallet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(t *testing.T) *Session {
	t.Helper()
	return NewSession(filepath.Join(t.TempDir(), "w3fund", "session.json"))
}

func TestSessionEmpty(t *testing.T) {
	s := testSession(t)
	assert.False(t, s.Active())
	_, ok := s.Get("w3fund.main")
	assert.False(t, ok)
	assert.Empty(t, s.Refs())
}

func TestSessionPutGet(t *testing.T) {
	s := testSession(t)
	require.NoError(t, s.Put("w3fund.main", "deadbeef"))

	v, ok := s.Get("w3fund.main")
	assert.True(t, ok)
	assert.Equal(t, "deadbeef", v)
	assert.True(t, s.Active())

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSessionRemoveAndClear(t *testing.T) {
	s := testSession(t)
	require.NoError(t, s.Put("w3fund.a", "aa"))
	require.NoError(t, s.Put("w3fund.b", "bb"))
	assert.Equal(t, []string{"w3fund.a", "w3fund.b"}, s.Refs())

	require.NoError(t, s.Remove("w3fund.a"))
	require.NoError(t, s.Remove("w3fund.missing"))
	assert.Equal(t, []string{"w3fund.b"}, s.Refs())

	require.NoError(t, s.Clear())
	assert.False(t, s.Active())
	require.NoError(t, s.Clear(), "clearing twice is fine")
}

func TestSessionCorruptFile(t *testing.T) {
	s := testSession(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o700))
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o600))

	assert.False(t, s.Active())
	require.NoError(t, s.Put("w3fund.x", "11"))
	v, ok := s.Get("w3fund.x")
	assert.True(t, ok)
	assert.Equal(t, "11", v)
}

func TestDefaultSessionPath(t *testing.T) {
	p := DefaultSessionPath()
	assert.Equal(t, "session.json", filepath.Base(p))
	assert.Equal(t, "w3fund", filepath.Base(filepath.Dir(p)))
}
