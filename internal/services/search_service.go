package services

import (
	"fmt"
	"log"

	"aportar/internal/models"
	"aportar/internal/repositories"
)

// FilterAll selects every listing kind in a search.
const FilterAll = "all"

// SearchService reads across the three listing stores and merges their
// contents into one tagged result sequence. Unlike the per-kind services this
// is not owner-scoped; it reads all users' listings.
type SearchService struct {
	stores   []repositories.ListingRepository
	userRepo repositories.UserRepository
}

// NewSearchService creates a SearchService over the given listing stores.
// The stores' order fixes the group order of merged results (donations, then
// services, then help requests).
func NewSearchService(userRepo repositories.UserRepository, stores ...repositories.ListingRepository) *SearchService {
	return &SearchService{
		stores:   stores,
		userRepo: userRepo,
	}
}

// Search returns tagged summaries of all listings matching the type filter
// ("donation", "service", "help", or "all"). Groups appear in store order
// with no cross-group interleaving. The owner's username is resolved per
// listing; a listing whose owner no longer resolves is skipped with a log
// line rather than failing the whole search.
func (s *SearchService) Search(typeFilter string) ([]models.SearchResult, error) {
	results := make([]models.SearchResult, 0)

	for _, store := range s.stores {
		if typeFilter != FilterAll && typeFilter != string(store.Kind()) {
			continue
		}

		listings, err := store.ListAll()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s listings: %w", store.Kind(), err)
		}

		for _, listing := range listings {
			owner, err := s.userRepo.GetByID(listing.UserID)
			if err != nil {
				log.Printf("Skipping %s listing %s: owner %s not resolvable: %v", listing.Kind, listing.ID, listing.UserID, err)
				continue
			}
			results = append(results, models.SearchResult{
				Kind:        listing.Kind,
				ID:          listing.ID,
				Title:       listing.Title,
				Description: listing.Description,
				Location:    listing.Location,
				Contact:     listing.Contact,
				Image:       listing.Image,
				Username:    owner.Username,
				CreatedAt:   listing.CreatedAt,
			})
		}
	}

	return results, nil
}
