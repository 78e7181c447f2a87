package entrypoint

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library-catalog/internal/database"
)

func TestCSRFSecret_DecodesHex(t *testing.T) {
	secret, err := csrfSecret("00ff10")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xff, 0x10}, secret)
}

func TestCSRFSecret_FallsBackToRawBytes(t *testing.T) {
	secret, err := csrfSecret("not-hex-at-all")
	require.NoError(t, err)
	assert.Equal(t, []byte("not-hex-at-all"), secret)
}

func TestCSRFSecret_GeneratesWhenEmpty(t *testing.T) {
	first, err := csrfSecret("")
	require.NoError(t, err)
	assert.Len(t, first, 32)

	second, err := csrfSecret("")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestNewSessionStore_SQLiteUsesDatabase(t *testing.T) {
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := newSessionStore(db)
	require.NoError(t, err)

	expiry := time.Now().Add(time.Hour)
	require.NoError(t, store.Commit("token", []byte("data"), expiry))

	var count int64
	require.NoError(t, db.DB.Raw("SELECT COUNT(*) FROM sessions").Scan(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestNewSessionStore_OtherDriversUseMemory(t *testing.T) {
	db := &database.Database{Driver: "postgres"}

	store, err := newSessionStore(db)
	require.NoError(t, err)
	assert.IsType(t, &memstore.MemStore{}, store)

	require.NoError(t, store.Commit("token", []byte("data"), time.Now().Add(time.Hour)))
	b, found, err := store.Find("token")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("data"), b)
}

func TestShutdownFuncSignature(t *testing.T) {
	called := false
	var fn ShutdownFunc = func(ctx context.Context) { called = ctx != nil }
	fn(context.Background())
	assert.True(t, called)
}
