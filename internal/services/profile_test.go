package services

import (
	"context"
	"testing"
	"time"

	"github.com/mrolandas/burburiuok/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProfileService(t *testing.T) *ProfileService {
	t.Helper()

	s := newTestStore(t)
	invites := NewInviteService(s, time.Hour)
	return NewProfileService(s, invites)
}

func TestProfileService_RegisterAndAuthenticate(t *testing.T) {
	svc := newTestProfileService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, "alice@example.test", "s3cret-pass", "Alice", "")
	require.NoError(t, err)
	assert.NotEmpty(t, profile.ID)
	assert.Empty(t, profile.AppRole, "registration without an invite grants no role")

	got, err := svc.Authenticate(ctx, "alice@example.test", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, got.ID)

	_, err = svc.Authenticate(ctx, "alice@example.test", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.test", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestProfileService_RegisterDuplicateEmail(t *testing.T) {
	svc := newTestProfileService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.test", "s3cret-pass", "Alice", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice@example.test", "other-pass", "Alice Again", "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestProfileService_RegisterWithInviteGrantsRole(t *testing.T) {
	s := newTestStore(t)
	invites := NewInviteService(s, time.Hour)
	svc := NewProfileService(s, invites)
	ctx := context.Background()

	invite, err := invites.Create(ctx, "bob@example.test", "admin-1")
	require.NoError(t, err)

	profile, err := svc.Register(ctx, "bob@example.test", "s3cret-pass", "Bob", invite.Code)
	require.NoError(t, err)
	assert.Equal(t, models.AppRoleAdmin, profile.AppRole)

	// The invite is spent
	_, err = invites.Lookup(ctx, invite.Code)
	assert.ErrorIs(t, err, ErrInviteUsed)
}

func TestProfileService_RegisterWithBadInvite(t *testing.T) {
	svc := newTestProfileService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob@example.test", "s3cret-pass", "Bob", "nope")
	assert.ErrorIs(t, err, ErrInviteNotFound)
}

func TestProfileService_ProfileByUserID(t *testing.T) {
	svc := newTestProfileService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, "alice@example.test", "s3cret-pass", "Alice", "")
	require.NoError(t, err)

	got, err := svc.ProfileByUserID(ctx, profile.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice@example.test", got.Email)

	// Missing row is (nil, nil), not an error
	got, err = svc.ProfileByUserID(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInviteService_ExpiredInvite(t *testing.T) {
	s := newTestStore(t)
	invites := NewInviteService(s, -time.Minute) // already expired on creation
	ctx := context.Background()

	invite, err := invites.Create(ctx, "bob@example.test", "admin-1")
	require.NoError(t, err)

	_, err = invites.Lookup(ctx, invite.Code)
	assert.ErrorIs(t, err, ErrInviteExpired)
}

func TestInviteService_RedeemTwice(t *testing.T) {
	s := newTestStore(t)
	invites := NewInviteService(s, time.Hour)
	ctx := context.Background()

	invite, err := invites.Create(ctx, "bob@example.test", "admin-1")
	require.NoError(t, err)

	require.NoError(t, invites.MarkRedeemed(ctx, invite.ID))
	assert.ErrorIs(t, invites.MarkRedeemed(ctx, invite.ID), ErrInviteUsed)
}
