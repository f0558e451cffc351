package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/aura/internal/domain"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	store, err := NewSessionStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSessionStore_GetSet(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, s *SessionStore)
		session string
		key     string
		want    string
		wantErr error
	}{
		{
			name:    "not found",
			setup:   func(t *testing.T, s *SessionStore) {},
			session: "s1",
			key:     "recommendedSongs",
			wantErr: domain.ErrNotFound,
		},
		{
			name: "returns stored value",
			setup: func(t *testing.T, s *SessionStore) {
				require.NoError(t, s.Set("s1", "recommendedEmotion", []byte(`{"emotion":"happy"}`)))
			},
			session: "s1",
			key:     "recommendedEmotion",
			want:    `{"emotion":"happy"}`,
		},
		{
			name: "overwrites previous value",
			setup: func(t *testing.T, s *SessionStore) {
				require.NoError(t, s.Set("s1", "k", []byte("old")))
				require.NoError(t, s.Set("s1", "k", []byte("new")))
			},
			session: "s1",
			key:     "k",
			want:    "new",
		},
		{
			name: "other session is isolated",
			setup: func(t *testing.T, s *SessionStore) {
				require.NoError(t, s.Set("s1", "k", []byte("v")))
			},
			session: "s2",
			key:     "k",
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			tt.setup(t, store)

			got, err := store.Get(tt.session, tt.key)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestSessionStore_DeleteAndClear(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("s1", "a", []byte("1")))
	require.NoError(t, store.Set("s1", "b", []byte("2")))
	require.NoError(t, store.Set("s2", "a", []byte("3")))

	require.NoError(t, store.Delete("s1", "a"))
	_, err := store.Get("s1", "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Clear("s1"))
	_, err = store.Get("s1", "b")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := store.Get("s2", "a")
	require.NoError(t, err)
	assert.Equal(t, "3", string(got))
}

func TestSessionStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aura.db")

	store, err := NewSessionStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("s1", "k", []byte("kept")))
	require.NoError(t, store.Close())

	reopened, err := NewSessionStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get("s1", "k")
	require.NoError(t, err)
	assert.Equal(t, "kept", string(got))
}

func TestSessionStore_RequiresSession(t *testing.T) {
	store := newTestStore(t)
	assert.ErrorIs(t, store.Set("", "k", []byte("v")), domain.ErrMissingSession)
}
