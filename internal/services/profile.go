package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mrolandas/burburiuok/internal/models"
	"github.com/mrolandas/burburiuok/internal/store"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
)

// ProfileService handles authentication and profile lookups. Database errors
// are returned unclassified so callers can route missing-schema signals to
// the migration responder.
type ProfileService struct {
	store   *store.Store
	invites *InviteService
}

func NewProfileService(s *store.Store, invites *InviteService) *ProfileService {
	return &ProfileService{store: s, invites: invites}
}

// Authenticate verifies email and password against the stored hash.
// A wrong password and an unknown email both return ErrInvalidCredentials;
// any other failure is passed through as-is.
func (s *ProfileService) Authenticate(ctx context.Context, email, password string) (*models.Profile, error) {
	profile, err := s.store.ProfileByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Burn a comparison anyway so unknown emails take as long as
			// known ones.
			_ = bcrypt.CompareHashAndPassword(
				[]byte("$2a$10$000000000000000000000uGyUvPeTfdRubHezWnUsQyNrAB2kqCSG"),
				[]byte(password),
			)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up profile: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return profile, nil
}

// ProfileByUserID returns the profile row for a user, or (nil, nil) when the
// row does not exist. Other errors pass through unclassified.
func (s *ProfileService) ProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.store.ProfileByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("look up profile: %w", err)
	}
	return profile, nil
}

// Register creates a new profile. When inviteCode is non-empty the matching
// invite is redeemed and its role applied; registration without a code
// produces a profile with no role.
func (s *ProfileService) Register(ctx context.Context, email, password, displayName, inviteCode string) (*models.Profile, error) {
	role := ""
	var invite *models.AdminInvite

	if inviteCode != "" {
		var err error
		invite, err = s.invites.Lookup(ctx, inviteCode)
		if err != nil {
			return nil, err
		}
		role = invite.Role
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	profile := &models.Profile{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		AppRole:      role,
	}

	if err := s.store.CreateProfile(profile); err != nil {
		if errors.Is(err, store.ErrEmailConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}

	if invite != nil {
		if err := s.invites.MarkRedeemed(ctx, invite.ID); err != nil {
			// The profile exists; log and carry on rather than fail the
			// registration.
			log.Printf("mark invite %s accepted: %v", invite.ID, err)
		}
	}

	return profile, nil
}
