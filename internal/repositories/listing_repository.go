package repositories

import "aportar/internal/models"

// ListingRepository defines the interface for listing data access. Each
// instance is scoped to a single listing kind; the three stores (donations,
// services, help requests) are three instances over the shared table.
type ListingRepository interface {
	Kind() models.ListingKind
	Create(listing *models.Listing) error
	GetByID(id string) (*models.Listing, error)
	ListByOwner(ownerID string) ([]models.Listing, error)
	ListAll() ([]models.Listing, error)
	Update(listing *models.Listing) error
	Delete(id string) error
}
