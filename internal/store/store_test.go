package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/petermazzocco/prompt-image-app/internal/database"
	"github.com/petermazzocco/prompt-image-app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	return db
}

func TestUsers_Register(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUsers(db, bcrypt.MinCost)

	user, err := users.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "s3cret", user.PasswordHash)
	assert.NotContains(t, user.PasswordHash, "s3cret")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")))
}

func TestUsers_RegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUsers(db, bcrypt.MinCost)

	_, err := users.Register(ctx, "alice", "first")
	require.NoError(t, err)

	_, err = users.Register(ctx, "alice", "second")
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "alice").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUsers_SaltedHashes(t *testing.T) {
	ctx := context.Background()
	users := NewUsers(newTestDB(t), bcrypt.MinCost)

	a, err := users.Register(ctx, "alice", "same-password")
	require.NoError(t, err)
	b, err := users.Register(ctx, "bob", "same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a.PasswordHash, b.PasswordHash)
}

func TestUsers_Authenticate(t *testing.T) {
	ctx := context.Background()
	users := NewUsers(newTestDB(t), bcrypt.MinCost)

	registered, err := users.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)

	user, err := users.Authenticate(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	for _, password := range []string{"", "S3cret", "s3cret ", "wrong"} {
		_, err := users.Authenticate(ctx, "alice", password)
		assert.ErrorIs(t, err, ErrInvalidCredentials, "password %q", password)
	}

	_, err = users.Authenticate(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUsers_GetByID(t *testing.T) {
	ctx := context.Background()
	users := NewUsers(newTestDB(t), bcrypt.MinCost)

	registered, err := users.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)

	user, err := users.GetByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = users.GetByID(ctx, registered.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewUsers_CostFallback(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewUsers(nil, 0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewUsers(nil, 99).cost)
	assert.Equal(t, bcrypt.MinCost, NewUsers(nil, bcrypt.MinCost).cost)
}

func TestPrompts_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUsers(db, bcrypt.MinCost)
	prompts := NewPrompts(db)

	alice, err := users.Register(ctx, "alice", "pw")
	require.NoError(t, err)

	created, err := prompts.Create(ctx, alice, "a red fox", []byte{0xff, 0xd8, 0x01})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Len(t, created.UUID, 36)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := prompts.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.UserID)
	assert.Equal(t, "a red fox", got.PromptText)
	assert.Equal(t, []byte{0xff, 0xd8, 0x01}, got.ImageData)

	_, err = prompts.Get(ctx, created.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPrompts_ListForUser(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUsers(db, bcrypt.MinCost)
	prompts := NewPrompts(db)

	alice, err := users.Register(ctx, "alice", "pw")
	require.NoError(t, err)
	bob, err := users.Register(ctx, "bob", "pw")
	require.NoError(t, err)

	first, err := prompts.Create(ctx, alice, "first", []byte("1"))
	require.NoError(t, err)
	_, err = prompts.Create(ctx, bob, "bob's", []byte("b"))
	require.NoError(t, err)
	second, err := prompts.Create(ctx, alice, "second", []byte("2"))
	require.NoError(t, err)

	// An older row inserted later must still sort last.
	older := &models.Prompt{
		UUID:       "00000000-0000-0000-0000-000000000001",
		UserID:     alice.ID,
		PromptText: "older",
		ImageData:  []byte("0"),
		CreatedAt:  time.Now().Add(-time.Hour),
	}
	require.NoError(t, db.Create(older).Error)

	list, err := prompts.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, older.ID, list[2].ID)
	for _, p := range list {
		assert.Equal(t, alice.ID, p.UserID)
		assert.Nil(t, p.ImageData)
	}
}

func TestPrompts_CreateRequiresExistingUser(t *testing.T) {
	prompts := NewPrompts(newTestDB(t))

	_, err := prompts.Create(context.Background(), &models.User{ID: 42}, "orphan", []byte("x"))
	assert.Error(t, err)
}
