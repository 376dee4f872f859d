package services

import (
	"encoding/json"
	"fmt"
	"log"
	"mime/multipart"

	"aportar/internal/models"
	"aportar/internal/repositories"
	"aportar/internal/uploads"
	"aportar/pkg/rabbitmq"
)

// ListingService handles business logic for one kind of listing. Three
// instances run side by side, one per kind, each over its own store.
//
// Every mutation re-fetches the record and re-checks the requester against
// the stored owner; an earlier authorization decision is never reused.
type ListingService struct {
	repo     repositories.ListingRepository
	uploads  *uploads.Manager
	mqClient *rabbitmq.Client // optional; nil skips event publishing
}

// NewListingService creates a ListingService over the given store.
func NewListingService(repo repositories.ListingRepository, uploadMgr *uploads.Manager, mqClient *rabbitmq.Client) *ListingService {
	return &ListingService{
		repo:     repo,
		uploads:  uploadMgr,
		mqClient: mqClient,
	}
}

// Kind returns the listing kind this service manages.
func (s *ListingService) Kind() models.ListingKind {
	return s.repo.Kind()
}

// Create stores the optional image, then persists a new listing owned by
// ownerID. The creation timestamp and ID are assigned by the store. Note the
// image is written before the record commits; a failed commit can strand the
// file.
func (s *ListingService) Create(ownerID string, fields models.ListingFields, image *multipart.FileHeader) (*models.Listing, error) {
	if s.Kind() == models.KindDonation {
		fields.Contact = "" // donations carry no contact field
	}

	filename, err := s.uploads.Store(image)
	if err != nil {
		return nil, fmt.Errorf("failed to store listing image: %w", err)
	}

	listing := &models.Listing{
		Title:       fields.Title,
		Description: fields.Description,
		Location:    fields.Location,
		Contact:     fields.Contact,
		Image:       filename,
		UserID:      ownerID,
	}
	if err := s.repo.Create(listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	s.publishEvent("listing.created", listing)
	return listing, nil
}

// ListByOwner returns the owner's listings of this kind.
func (s *ListingService) ListByOwner(ownerID string) ([]models.Listing, error) {
	return s.repo.ListByOwner(ownerID)
}

// Get returns a single listing by ID.
func (s *ListingService) Get(id string) (*models.Listing, error) {
	return s.repo.GetByID(id)
}

// Update applies a whole-record replace of the editable fields. Only the
// current owner may update; anyone else gets ErrForbidden and the record is
// left untouched. A new image replaces the stored file, deleting the old one.
func (s *ListingService) Update(id, requesterID string, fields models.ListingFields, image *multipart.FileHeader) (*models.Listing, error) {
	listing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if listing.UserID != requesterID {
		return nil, fmt.Errorf("user %s does not own listing %s: %w", requesterID, id, models.ErrForbidden)
	}

	if s.Kind() == models.KindDonation {
		fields.Contact = ""
	}

	if image != nil && image.Filename != "" {
		if listing.Image != "" {
			if err := s.uploads.Delete(listing.Image); err != nil {
				log.Printf("Warning: failed to delete previous image %s for listing %s: %v", listing.Image, id, err)
			}
		}
		filename, err := s.uploads.Store(image)
		if err != nil {
			return nil, fmt.Errorf("failed to store replacement image: %w", err)
		}
		listing.Image = filename
	}

	listing.Title = fields.Title
	listing.Description = fields.Description
	listing.Location = fields.Location
	listing.Contact = fields.Contact

	if err := s.repo.Update(listing); err != nil {
		return nil, fmt.Errorf("failed to update listing %s: %w", id, err)
	}

	s.publishEvent("listing.updated", listing)
	return listing, nil
}

// Delete removes a listing and its stored image file, owner only. Deleting
// an already-missing image file is not an error. Not reversible.
func (s *ListingService) Delete(id, requesterID string) error {
	listing, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if listing.UserID != requesterID {
		return fmt.Errorf("user %s does not own listing %s: %w", requesterID, id, models.ErrForbidden)
	}

	if listing.Image != "" {
		if err := s.uploads.Delete(listing.Image); err != nil {
			log.Printf("Warning: failed to delete image %s for listing %s: %v", listing.Image, id, err)
		}
	}

	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete listing %s: %w", id, err)
	}

	s.publishEvent("listing.deleted", listing)
	return nil
}

// publishEvent sends a listing lifecycle event to RabbitMQ. Publishing is
// best-effort: failures are logged, never surfaced to the request.
func (s *ListingService) publishEvent(event string, listing *models.Listing) {
	if s.mqClient == nil {
		return
	}

	payload := map[string]interface{}{
		"event":      event,
		"listing_id": listing.ID,
		"kind":       listing.Kind,
		"title":      listing.Title,
		"user_id":    listing.UserID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event for listing %s: %v", event, listing.ID, err)
		return
	}
	if err := s.mqClient.Publish(event, body); err != nil {
		log.Printf("Warning: failed to publish %s event for listing %s: %v", event, listing.ID, err)
	}
}
