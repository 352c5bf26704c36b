package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryProvider_Lifecycle(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryProvider()

	require.NoError(t, p.CreateUser(ctx, CreateUserInput{Username: "a@example.com", Email: "a@example.com", Name: "A", TemporaryPassword: "Xx1!xxxxxxxx"}))
	require.NoError(t, p.AddUserToGroup(ctx, "a@example.com", "editor"))

	acc, err := p.GetUser(ctx, "a@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, acc.Sub)
	require.Equal(t, acc.Sub, acc.ID())
	require.Equal(t, "A", acc.Name)
	require.Equal(t, []string{"editor"}, p.GroupsOf("a@example.com"))

	require.NoError(t, p.RemoveUserFromGroup(ctx, "a@example.com", "editor"))
	require.Empty(t, p.GroupsOf("a@example.com"))

	require.NoError(t, p.DeleteUser(ctx, "a@example.com"))
	_, err = p.GetUser(ctx, "a@example.com")
	require.True(t, errors.Is(err, ErrUserNotFound))

	require.Equal(t, []string{
		"CreateUser a@example.com",
		"AddUserToGroup a@example.com editor",
		"GetUser a@example.com",
		"RemoveUserFromGroup a@example.com editor",
		"DeleteUser a@example.com",
		"GetUser a@example.com",
	}, p.Calls())
}

func TestMemoryProvider_DuplicateUser(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryProvider()
	in := CreateUserInput{Username: "dup@example.com", Email: "dup@example.com"}
	require.NoError(t, p.CreateUser(ctx, in))
	err := p.CreateUser(ctx, in)
	require.ErrorIs(t, err, ErrUserExists)
	require.Equal(t, "An account with the given email already exists.", err.Error())
}

func TestMemoryProvider_KnownGroupsOnly(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryProvider("admin", "editor")
	require.NoError(t, p.CreateUser(ctx, CreateUserInput{Username: "g@example.com"}))
	require.ErrorIs(t, p.AddUserToGroup(ctx, "g@example.com", "viewer"), ErrGroupNotFound)
	require.NoError(t, p.AddUserToGroup(ctx, "g@example.com", "admin"))
}

func TestAccountID_FallsBackToUsername(t *testing.T) {
	a := &Account{Username: "u-1"}
	require.Equal(t, "u-1", a.ID())
}
