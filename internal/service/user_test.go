package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptions(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	users := service.NewUserService(db, service.NewLocalImageStore(t.TempDir(), "/media/"))
	ctx := context.Background()

	reader := testhelpers.CreateUser(t, db, "reader")
	alice := testhelpers.CreateUser(t, db, "alice")
	bob := testhelpers.CreateUser(t, db, "bob")

	author, err := users.Subscribe(ctx, reader.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, author.ID)
	_, err = users.Subscribe(ctx, reader.ID, alice.ID)
	require.NoError(t, err)

	_, err = users.Subscribe(ctx, reader.ID, bob.ID)
	assert.ErrorIs(t, err, service.ErrDuplicate)

	_, err = users.Subscribe(ctx, reader.ID, reader.ID)
	var domainErr *service.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, service.ErrValidation, domainErr.Kind)
	assert.Equal(t, "Нельзя подписаться на самого себя", domainErr.Message)

	_, err = users.Subscribe(ctx, reader.ID, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)

	subscribed, err := users.IsSubscribed(ctx, reader.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, subscribed)
	subscribed, err = users.IsSubscribed(ctx, uuid.Nil, bob.ID)
	require.NoError(t, err)
	assert.False(t, subscribed)

	authors, err := users.Subscriptions(ctx, reader.ID)
	require.NoError(t, err)
	require.Len(t, authors, 2)
	assert.Equal(t, "alice", authors[0].Username)
	assert.Equal(t, "bob", authors[1].Username)

	require.NoError(t, users.Unsubscribe(ctx, reader.ID, bob.ID))
	assert.ErrorIs(t, users.Unsubscribe(ctx, reader.ID, bob.ID), service.ErrValidation)
}

func TestAuthorRecipes(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	users := service.NewUserService(db, service.NewLocalImageStore(t.TempDir(), "/media/"))
	author := testhelpers.CreateUser(t, db, "author")
	for _, name := range []string{"Первый", "Второй", "Третий"} {
		testhelpers.CreateRecipe(t, db, author, name)
	}

	recipes, total, err := users.AuthorRecipes(context.Background(), author.ID, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, recipes, 2)
	assert.Equal(t, "Третий", recipes[0].Name)

	recipes, _, err = users.AuthorRecipes(context.Background(), author.ID, 0)
	require.NoError(t, err)
	assert.Len(t, recipes, 3)
}

func TestAvatar(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	mediaDir := t.TempDir()
	users := service.NewUserService(db, service.NewLocalImageStore(mediaDir, "/media/"))
	ctx := context.Background()
	user := testhelpers.CreateUser(t, db, "user")

	first, err := users.SetAvatar(ctx, user.ID, testImage)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(first, "/media/users/"))
	firstPath := filepath.Join(mediaDir, strings.TrimPrefix(first, "/media/"))
	_, err = os.Stat(firstPath)
	require.NoError(t, err)

	second, err := users.SetAvatar(ctx, user.ID, testImage)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	secondPath := filepath.Join(mediaDir, strings.TrimPrefix(second, "/media/"))
	_, err = os.Stat(secondPath)
	require.NoError(t, err, "new avatar is kept")
	_, err = os.Stat(firstPath)
	assert.True(t, os.IsNotExist(err), "previous avatar is removed")

	stored, err := users.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, second, stored.Avatar)

	require.NoError(t, users.DeleteAvatar(ctx, user.ID))
	stored, err = users.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Avatar)
	_, err = os.Stat(secondPath)
	assert.True(t, os.IsNotExist(err), "deleted avatar file is removed")
}
