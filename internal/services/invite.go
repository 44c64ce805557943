package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mrolandas/burburiuok/internal/models"
	"github.com/mrolandas/burburiuok/internal/store"
	"github.com/mrolandas/burburiuok/internal/util"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInviteNotFound = errors.New("invite code not found")
	ErrInviteExpired  = errors.New("invite code has expired")
	ErrInviteUsed     = errors.New("invite code has already been used")
)

const inviteCodeLength = 32

// InviteService manages single-use admin invitations.
type InviteService struct {
	store *store.Store
	ttl   time.Duration
}

func NewInviteService(s *store.Store, ttl time.Duration) *InviteService {
	return &InviteService{store: s, ttl: ttl}
}

// Create issues a new invite for email, recorded against the inviting
// admin's profile ID.
func (s *InviteService) Create(ctx context.Context, email, invitedBy string) (*models.AdminInvite, error) {
	code, err := util.CryptoRandomString(inviteCodeLength)
	if err != nil {
		return nil, fmt.Errorf("generate invite code: %w", err)
	}

	invite := &models.AdminInvite{
		ID:        uuid.NewString(),
		Email:     email,
		Code:      code,
		Role:      models.AppRoleAdmin,
		InvitedBy: invitedBy,
		ExpiresAt: time.Now().Add(s.ttl),
	}

	if err := s.store.CreateAdminInvite(invite); err != nil {
		return nil, fmt.Errorf("create invite: %w", err)
	}
	return invite, nil
}

// Lookup returns the invite for a code if it is still redeemable.
func (s *InviteService) Lookup(ctx context.Context, code string) (*models.AdminInvite, error) {
	invite, err := s.store.AdminInviteByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("look up invite: %w", err)
	}

	if invite.IsAccepted() {
		return nil, ErrInviteUsed
	}
	if invite.IsExpired() {
		return nil, ErrInviteExpired
	}

	return invite, nil
}

// MarkRedeemed records an invite as accepted. Redeeming the same invite
// twice returns ErrInviteUsed.
func (s *InviteService) MarkRedeemed(ctx context.Context, id string) error {
	if err := s.store.MarkAdminInviteAccepted(id); err != nil {
		if errors.Is(err, store.ErrInviteAlreadyAccepted) {
			return ErrInviteUsed
		}
		return fmt.Errorf("mark invite accepted: %w", err)
	}
	return nil
}

// List returns a page of invites, newest first.
func (s *InviteService) List(ctx context.Context, params store.PaginationParams) ([]models.AdminInvite, store.PaginationResult, error) {
	return s.store.ListAdminInvites(params)
}
