package session

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	values map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.values[key] = value.(string)
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

type fakeKeyer struct{}

func (fakeKeyer) SessionKey(jti string) string { return "magus:session:" + jti }

func newTestManager() (*Manager, *fakeStore) {
	store := newFakeStore()
	return &Manager{store: store, keyer: fakeKeyer{}, ttl: time.Hour}, store
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager()

	require.NoError(t, mgr.Create(ctx, "jti-1", "user-1"))

	active, err := mgr.HasSession(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, mgr.Revoke(ctx, "jti-1"))

	active, err = mgr.HasSession(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestSessionRequiresJTI(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager()

	assert.Error(t, mgr.Create(ctx, " ", "user-1"))
	_, err := mgr.HasSession(ctx, "")
	assert.Error(t, err)
	assert.Error(t, mgr.Revoke(ctx, ""))
}

func TestHasSessionUnknownJTI(t *testing.T) {
	mgr, _ := newTestManager()
	active, err := mgr.HasSession(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, active)
}
