package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"taskfuss/internal/api"
	"taskfuss/internal/logging"
	"taskfuss/internal/storage"
	"taskfuss/internal/store"
	"taskfuss/internal/testutil"
)

// recordingNav records redirect targets.
type recordingNav struct {
	mu    sync.Mutex
	names []string
}

func (n *recordingNav) Redirect(ctx context.Context, name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.names = append(n.names, name)
	return nil
}

func (n *recordingNav) Names() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.names...)
}

type env struct {
	fake  *testutil.FakeAPI
	kv    *storage.MemoryStore
	auth  *store.AuthStore
	tasks *store.TaskStore
	nav   *recordingNav
}

// newEnv wires both stores against a fresh fake backend. A non-empty
// token is placed in storage before the auth store is created.
func newEnv(t *testing.T, token string) *env {
	t.Helper()
	fake := testutil.NewFakeAPI()
	t.Cleanup(fake.Close)

	client, err := api.New(fake.URL())
	require.NoError(t, err)

	kv := storage.NewMemoryStore()
	if token != "" {
		require.NoError(t, kv.Set(storage.TokenKey, token))
	}

	auth, err := store.NewAuthStore(client, kv, logging.Nop())
	require.NoError(t, err)

	nav := &recordingNav{}
	return &env{
		fake:  fake,
		kv:    kv,
		auth:  auth,
		tasks: store.NewTaskStore(client, auth, nav, logging.Nop()),
		nav:   nav,
	}
}

func storedToken(t *testing.T, kv storage.Store) (string, bool) {
	t.Helper()
	v, ok, err := kv.Get(storage.TokenKey)
	require.NoError(t, err)
	return v, ok
}
