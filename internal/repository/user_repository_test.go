package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepo()

	u, err := users.Create(ctx, "Juan", "secret123", "Juan Dela Cruz", "Juan@Example.com", "0917", false, bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, "juan@example.com", u.Email)
	assert.NotEqual(t, "secret123", u.PasswordHash)
	assert.False(t, u.IsGuest())

	_, err = users.Create(ctx, "JUAN", "x", "Other", "", "", false, bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrUsernameTaken)

	got, err := users.Authenticate(ctx, "juan", "secret123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = users.Authenticate(ctx, "juan", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = users.Authenticate(ctx, "nobody", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGuestAndBookings(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepo()

	g, err := users.CreateGuest(ctx, "Walk In", "walkin@example.com", "")
	require.NoError(t, err)
	assert.True(t, g.IsGuest())
	assert.Equal(t, "CUSTOMER", g.Role())

	_, err = users.Authenticate(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, users.AddBooking(ctx, g.ID, "b1"))
	require.NoError(t, users.AddBooking(ctx, g.ID, "b2"))
	assert.ErrorIs(t, users.AddBooking(ctx, 999, "b3"), ErrUserNotFound)

	got, err := users.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "b2"}, got.BookingIDs)
}
