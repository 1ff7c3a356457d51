package session

import (
	"testing"

	"github.com/ecoaction/ecoaction/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, dir
}

func TestCurrent_EmptyWhenLoggedOut(t *testing.T) {
	s, _ := openStore(t)

	user, token, err := s.Current()
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Empty(t, token)
	assert.Empty(t, s.CurrentUserID())
}

func TestSaveAndCurrent(t *testing.T) {
	s, _ := openStore(t)

	u := types.User{ID: "u1", Name: "Léa", Email: "lea@ecoaction.fr"}
	require.NoError(t, s.Save(u, "token_u1"))

	got, token, err := s.Current()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, "token_u1", token)
	assert.Equal(t, "u1", s.CurrentUserID())
}

func TestSession_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Save(types.User{ID: "u1"}, "tok"))
	require.NoError(t, s.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, "u1", reopened.CurrentUserID())
}

func TestClear_LogsOut(t *testing.T) {
	s, _ := openStore(t)

	require.NoError(t, s.Save(types.User{ID: "u1"}, "tok"))
	require.NoError(t, s.Clear())

	user, _, err := s.Current()
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Empty(t, s.CurrentUserID())
}
