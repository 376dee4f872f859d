package handlers

import (
	"log"

	"aportar/internal/models"
	"aportar/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SearchHandler handles the cross-kind listing search.
type SearchHandler struct {
	service *services.SearchService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(service *services.SearchService) *SearchHandler {
	return &SearchHandler{
		service: service,
	}
}

// RegisterRoutes registers the search route with the Fiber app.
func (h *SearchHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/search", h.HandleSearch)
}

// HandleSearch returns tagged listing summaries across all users, optionally
// filtered by type (?type=donation|service|help|all, default all).
func (h *SearchHandler) HandleSearch(c *fiber.Ctx) error {
	typeFilter := c.Query("type", services.FilterAll)
	if typeFilter != services.FilterAll {
		if _, err := models.ParseListingKind(typeFilter); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "type must be donation, service, help, or all",
			})
		}
	}

	results, err := h.service.Search(typeFilter)
	if err != nil {
		log.Printf("Error searching listings (type=%s): %v", typeFilter, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not search listings",
		})
	}

	return c.JSON(fiber.Map{
		"type":    typeFilter,
		"results": results,
		"flash":   flashPayload(c),
	})
}
