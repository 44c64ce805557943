package store

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mrolandas/burburiuok/internal/models"
	"github.com/mrolandas/burburiuok/internal/schemacheck"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

type Store struct {
	db *gorm.DB
}

// New opens the database without applying any migration. The schema is
// created only by an explicit Migrate call (the -migrate flag); an unmigrated
// store surfaces driver errors naming the qualified tables, which the access
// guard classifies as migration-required.
func New(driver, dsn string) (*Store, error) {
	dialector, err := GetDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			// Every table carries the schema qualifier so driver error text
			// always contains the token schemacheck matches on.
			TablePrefix: schemacheck.SchemaName + ".",
		},
	})
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Migrate applies the schema for all models and seeds the default admin.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(
		&models.Profile{},
		&models.AdminInvite{},
		&models.Concept{},
		&models.ConceptVersion{},
		&models.AccessEvent{},
	); err != nil {
		return err
	}

	if err := s.seedData(); err != nil {
		log.Printf("Warning: failed to seed data: %v", err)
	}

	return nil
}

// generateRandomPassword generates a random password of specified length
func generateRandomPassword(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes)[:length], nil
}

func (s *Store) seedData() error {
	var count int64
	s.db.Model(&models.Profile{}).Count(&count)
	if count > 0 {
		return nil
	}

	password, err := generateRandomPassword(16)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	profile := &models.Profile{
		ID:           uuid.New().String(),
		Email:        "admin@localhost",
		PasswordHash: string(hash),
		DisplayName:  "Administrator",
		AppRole:      models.AppRoleAdmin,
	}
	if err := s.db.Create(profile).Error; err != nil {
		return err
	}
	log.Printf("Created default admin profile: admin@localhost / %s", password)

	return nil
}

// Profile operations

func (s *Store) ProfileByID(id string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *Store) ProfileByEmail(email string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.Where("email = ?", email).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *Store) CreateProfile(profile *models.Profile) error {
	if err := s.db.Create(profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", ErrEmailConflict, profile.Email)
		}
		return err
	}
	return nil
}

func (s *Store) CountProfiles() (int64, error) {
	var count int64
	err := s.db.Model(&models.Profile{}).Count(&count).Error
	return count, err
}

// Admin invite operations

func (s *Store) CreateAdminInvite(invite *models.AdminInvite) error {
	return s.db.Create(invite).Error
}

func (s *Store) AdminInviteByCode(code string) (*models.AdminInvite, error) {
	var invite models.AdminInvite
	if err := s.db.Where("code = ?", code).First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

func (s *Store) ListAdminInvites(params PaginationParams) ([]models.AdminInvite, PaginationResult, error) {
	query := s.db.Model(&models.AdminInvite{})
	if params.Search != "" {
		query = query.Where("email LIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, PaginationResult{}, err
	}

	var invites []models.AdminInvite
	err := query.Order("created_at DESC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&invites).Error
	if err != nil {
		return nil, PaginationResult{}, err
	}

	return invites, CalculatePagination(total, params.Page, params.PageSize), nil
}

func (s *Store) MarkAdminInviteAccepted(id string) error {
	now := time.Now()
	result := s.db.Model(&models.AdminInvite{}).
		Where("id = ? AND accepted_at IS NULL", id).
		Update("accepted_at", now)
	if result.Error != nil {
		return result.Error
	}
	// 0 rows updated means a concurrent redemption won.
	if result.RowsAffected == 0 {
		return ErrInviteAlreadyAccepted
	}
	return nil
}

// Concept operations

func (s *Store) CreateConcept(concept *models.Concept) error {
	return s.db.Create(concept).Error
}

func (s *Store) ConceptByID(id string) (*models.Concept, error) {
	var concept models.Concept
	if err := s.db.Where("id = ?", id).First(&concept).Error; err != nil {
		return nil, err
	}
	return &concept, nil
}

func (s *Store) ConceptBySlug(slug string) (*models.Concept, error) {
	var concept models.Concept
	if err := s.db.Where("slug = ?", slug).First(&concept).Error; err != nil {
		return nil, err
	}
	return &concept, nil
}

// ListConcepts returns concepts ordered by position. When publishedOnly is
// set, unpublished drafts are excluded (the public browsing surface).
func (s *Store) ListConcepts(publishedOnly bool) ([]models.Concept, error) {
	query := s.db.Model(&models.Concept{})
	if publishedOnly {
		query = query.Where("published = ?", true)
	}

	var concepts []models.Concept
	if err := query.Order("position ASC, created_at ASC").Find(&concepts).Error; err != nil {
		return nil, err
	}
	return concepts, nil
}

func (s *Store) UpdateConcept(concept *models.Concept) error {
	return s.db.Save(concept).Error
}

func (s *Store) DeleteConcept(id string) error {
	return s.db.Where("id = ?", id).Delete(&models.Concept{}).Error
}

// ReorderConcepts rewrites positions to match the given ID order, all or
// nothing.
func (s *Store) ReorderConcepts(ids []string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for position, id := range ids {
			result := tx.Model(&models.Concept{}).
				Where("id = ?", id).
				Update("position", position)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: %s", ErrConceptNotFound, id)
			}
		}
		return nil
	})
}

// SearchConcepts matches title and summary of published concepts.
func (s *Store) SearchConcepts(query string, limit int) ([]models.Concept, error) {
	pattern := "%" + query + "%"

	var concepts []models.Concept
	err := s.db.Where("published = ?", true).
		Where("title LIKE ? OR summary LIKE ?", pattern, pattern).
		Order("position ASC").
		Limit(limit).
		Find(&concepts).Error
	if err != nil {
		return nil, err
	}
	return concepts, nil
}

// Concept version operations

func (s *Store) CreateConceptVersion(version *models.ConceptVersion) error {
	return s.db.Create(version).Error
}

func (s *Store) VersionsByConceptID(conceptID string) ([]models.ConceptVersion, error) {
	var versions []models.ConceptVersion
	err := s.db.Where("concept_id = ?", conceptID).
		Order("revision DESC").
		Find(&versions).Error
	if err != nil {
		return nil, err
	}
	return versions, nil
}

// NextRevision returns the revision number the next snapshot of a concept
// should carry.
func (s *Store) NextRevision(conceptID string) (int, error) {
	var latest models.ConceptVersion
	err := s.db.Where("concept_id = ?", conceptID).
		Order("revision DESC").
		First(&latest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 1, nil
		}
		return 0, err
	}
	return latest.Revision + 1, nil
}

// Access event operations

func (s *Store) InsertAccessEvents(events []*models.AccessEvent) error {
	if len(events) == 0 {
		return nil
	}
	return s.db.Create(events).Error
}

func (s *Store) ListAccessEvents(params PaginationParams) ([]models.AccessEvent, PaginationResult, error) {
	query := s.db.Model(&models.AccessEvent{})
	if params.Search != "" {
		query = query.Where("email LIKE ? OR reason LIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, PaginationResult{}, err
	}

	var events []models.AccessEvent
	err := query.Order("timestamp DESC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&events).Error
	if err != nil {
		return nil, PaginationResult{}, err
	}

	return events, CalculatePagination(total, params.Page, params.PageSize), nil
}

func (s *Store) DeleteAccessEventsBefore(cutoff time.Time) (int64, error) {
	result := s.db.Where("timestamp < ?", cutoff).Delete(&models.AccessEvent{})
	return result.RowsAffected, result.Error
}

// ProbeTable issues a minimal query against one guarded table so the caller
// can observe the raw driver error for an unmigrated schema.
func (s *Store) ProbeTable(table schemacheck.Table) error {
	var count int64
	switch table {
	case schemacheck.TableProfiles:
		return s.db.Model(&models.Profile{}).Count(&count).Error
	case schemacheck.TableAdminInvites:
		return s.db.Model(&models.AdminInvite{}).Count(&count).Error
	default:
		return fmt.Errorf("unknown guarded table: %s", table)
	}
}

// Health checks the database connection
func (s *Store) Health() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
