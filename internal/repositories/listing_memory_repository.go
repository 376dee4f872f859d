package repositories

import (
	"fmt"
	"sync"
	"time"

	"aportar/internal/models"

	"github.com/google/uuid"
)

// MemoryListingRepository is an in-memory implementation of
// ListingRepository, used by unit tests. Insertion order is preserved so
// store order matches the GORM implementation's creation-time order.
type MemoryListingRepository struct {
	kind  models.ListingKind
	items map[string]models.Listing
	order []string
	mu    sync.RWMutex
}

// NewMemoryListingRepository creates an in-memory listing repository for the
// given kind.
func NewMemoryListingRepository(kind models.ListingKind) *MemoryListingRepository {
	return &MemoryListingRepository{
		kind:  kind,
		items: make(map[string]models.Listing),
	}
}

// Kind returns the listing kind this repository is scoped to.
func (r *MemoryListingRepository) Kind() models.ListingKind {
	return r.kind
}

// Create adds a new listing, assigning its ID, kind, and creation timestamp.
func (r *MemoryListingRepository) Create(listing *models.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}
	listing.Kind = r.kind
	listing.CreatedAt = time.Now()
	r.items[listing.ID] = *listing
	r.order = append(r.order, listing.ID)
	return nil
}

// GetByID returns a listing by its ID.
func (r *MemoryListingRepository) GetByID(id string) (*models.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listing, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("%s listing with ID %s: %w", r.kind, id, models.ErrNotFound)
	}
	return &listing, nil
}

// ListByOwner returns all listings owned by the given user, in insertion
// order.
func (r *MemoryListingRepository) ListByOwner(ownerID string) ([]models.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listings := make([]models.Listing, 0)
	for _, id := range r.order {
		if l, ok := r.items[id]; ok && l.UserID == ownerID {
			listings = append(listings, l)
		}
	}
	return listings, nil
}

// ListAll returns every listing across all owners, in insertion order.
func (r *MemoryListingRepository) ListAll() ([]models.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listings := make([]models.Listing, 0, len(r.order))
	for _, id := range r.order {
		if l, ok := r.items[id]; ok {
			listings = append(listings, l)
		}
	}
	return listings, nil
}

// Update replaces an existing listing record.
func (r *MemoryListingRepository) Update(listing *models.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[listing.ID]; !ok {
		return fmt.Errorf("%s listing with ID %s: %w", r.kind, listing.ID, models.ErrNotFound)
	}
	r.items[listing.ID] = *listing
	return nil
}

// Delete removes a listing by its ID.
func (r *MemoryListingRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("%s listing with ID %s: %w", r.kind, id, models.ErrNotFound)
	}
	delete(r.items, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
