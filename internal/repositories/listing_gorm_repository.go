package repositories

import (
	"errors"
	"fmt"
	"time"

	"aportar/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormListingRepository is a GORM implementation of ListingRepository scoped
// to a single listing kind.
type GormListingRepository struct {
	db   *gorm.DB
	kind models.ListingKind
}

// NewGormListingRepository creates a listing repository for the given kind.
func NewGormListingRepository(db *gorm.DB, kind models.ListingKind) *GormListingRepository {
	return &GormListingRepository{
		db:   db,
		kind: kind,
	}
}

// Kind returns the listing kind this repository is scoped to.
func (r *GormListingRepository) Kind() models.ListingKind {
	return r.kind
}

// Create inserts a new listing, assigning its ID, kind, and creation
// timestamp at insertion time.
func (r *GormListingRepository) Create(listing *models.Listing) error {
	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}
	listing.Kind = r.kind
	listing.CreatedAt = time.Now()
	if err := r.db.Create(listing).Error; err != nil {
		return fmt.Errorf("failed to create %s listing: %w", r.kind, err)
	}
	return nil
}

// GetByID retrieves a single listing of this repository's kind by its ID.
func (r *GormListingRepository) GetByID(id string) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.First(&listing, "id = ? AND kind = ?", id, r.kind).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s listing with ID %s: %w", r.kind, id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s listing by ID %s: %w", r.kind, id, err)
	}
	return &listing, nil
}

// ListByOwner retrieves all listings of this kind owned by the given user.
func (r *GormListingRepository) ListByOwner(ownerID string) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.db.
		Where("kind = ? AND user_id = ?", r.kind, ownerID).
		Order("created_at").
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s listings for owner %s: %w", r.kind, ownerID, err)
	}
	return listings, nil
}

// ListAll retrieves every listing of this kind across all owners, in store
// order (creation time).
func (r *GormListingRepository) ListAll() ([]models.Listing, error) {
	var listings []models.Listing
	err := r.db.
		Where("kind = ?", r.kind).
		Order("created_at").
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list all %s listings: %w", r.kind, err)
	}
	return listings, nil
}

// Update replaces an existing listing record. Save updates all fields,
// including zero values, which gives the whole-record replace semantics.
func (r *GormListingRepository) Update(listing *models.Listing) error {
	res := r.db.Save(listing)
	if res.Error != nil {
		return fmt.Errorf("failed to update %s listing: %w", r.kind, res.Error)
	}
	if res.RowsAffected == 0 {
		// Save does not return ErrRecordNotFound for a missing row, so we
		// check RowsAffected.
		return fmt.Errorf("%s listing with ID %s: %w", r.kind, listing.ID, models.ErrNotFound)
	}
	return nil
}

// Delete removes a listing of this kind by its ID.
func (r *GormListingRepository) Delete(id string) error {
	res := r.db.Where("kind = ?", r.kind).Delete(&models.Listing{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete %s listing: %w", r.kind, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s listing with ID %s: %w", r.kind, id, models.ErrNotFound)
	}
	return nil
}
