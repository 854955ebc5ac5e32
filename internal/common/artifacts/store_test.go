package artifacts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helpers
// ==========================

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

// ==========================
// Store Tests
// ==========================

func TestSaveAndLoadArtifact(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewRedisStore(client, "artifact", time.Hour).Session("s-1")
	ctx := context.Background()

	png := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff}
	require.NoError(t, store.SaveArtifact(ctx, UserPOSImage, png, "image/png"))

	got, err := store.LoadArtifact(ctx, UserPOSImage)
	require.NoError(t, err)
	assert.Equal(t, png, got.Data)
	assert.Equal(t, "image/png", got.MediaType)
	assert.Equal(t, UserPOSImage, got.Name)

	key := "artifact:s-1:user:user_pos_image.png"
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))
}

func TestSaveArtifact_LastWriteWins(t *testing.T) {
	_, client := setupRedis(t)
	store := NewRedisStore(client, "", 0).Session("s-1")
	ctx := context.Background()

	require.NoError(t, store.SaveArtifact(ctx, InStorePOSImage, []byte("first"), "image/png"))
	require.NoError(t, store.SaveArtifact(ctx, InStorePOSImage, []byte("second"), "image/jpeg"))

	got, err := store.LoadArtifact(ctx, InStorePOSImage)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got.Data)
	assert.Equal(t, "image/jpeg", got.MediaType)
}

func TestSessionsAreIsolated(t *testing.T) {
	_, client := setupRedis(t)
	base := NewRedisStore(client, "artifact", time.Hour)
	ctx := context.Background()

	require.NoError(t, base.Session("a").SaveArtifact(ctx, InboundFileName, []byte("pdf"), "application/pdf"))

	_, err := base.Session("b").LoadInboundFile(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	file, err := base.Session("a").LoadInboundFile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.MediaType)
	assert.Equal(t, []byte("pdf"), file.Data)
}

func TestLoadArtifact_NotFound(t *testing.T) {
	_, client := setupRedis(t)
	store := NewRedisStore(client, "artifact", time.Hour).Session("s-1")

	_, err := store.LoadArtifact(context.Background(), "user:missing.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadArtifact_RedisError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db, "artifact", time.Hour).Session("s-1")

	mock.ExpectHGetAll("artifact:s-1:user:inbound_file").SetErr(errors.New("connection refused"))

	_, err := store.LoadInboundFile(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveArtifact_RedisError(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewRedisStore(client, "artifact", time.Hour).Session("s-1")

	mr.SetError("READONLY replica")
	err := store.SaveArtifact(context.Background(), UserPOSImage, []byte("x"), "image/png")
	assert.Error(t, err)
}

func TestInlineFileDecode(t *testing.T) {
	f := &InlineFile{MimeType: "image/jpeg", Data: "/9j/4A=="}
	got, err := f.Decode()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff, 0xe0}, got.Data)

	_, err = (&InlineFile{MimeType: "image/jpeg", Data: "%%%"}).Decode()
	assert.ErrorIs(t, err, ErrInvalidInline)
}

func TestSearchResultImageName(t *testing.T) {
	assert.Equal(t, "user:search_result_image_0.png", SearchResultImageName(0, "png"))
}

func TestResolve(t *testing.T) {
	_, client := setupRedis(t)
	store := NewRedisStore(client, "artifact", time.Hour).Session("s-1")
	ctx := context.Background()

	missing, err := Resolve(ctx, store, nil, "")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.SaveArtifact(ctx, InboundFileName, []byte("upload"), "application/pdf"))
	require.NoError(t, store.SaveArtifact(ctx, "user:license.jpg", []byte("license"), "image/jpeg"))

	inbound, err := Resolve(ctx, store, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", inbound.MediaType)

	named, err := Resolve(ctx, store, nil, "user:license.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("license"), named.Data)

	inline, err := Resolve(ctx, store, &InlineFile{MimeType: "image/png", Data: "aGk="}, "user:license.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), inline.Data)
	assert.Equal(t, "image/png", inline.MediaType)

	gone, err := Resolve(ctx, store, nil, "user:nothing.png")
	require.NoError(t, err)
	assert.Nil(t, gone)
}
