package handlers

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"

	"aportar/internal/models"
	"aportar/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// imageFormField is the multipart field name carrying the optional image.
const imageFormField = "image"

// ListingHandler handles HTTP requests for one kind of listing. Three
// instances are registered, one per kind, each under its own path prefix
// (/donations, /services, /help). All mutations follow redirect-after-POST
// with a flash message.
type ListingHandler struct {
	service  *services.ListingService
	prefix   string
	label    string // human name used in flash messages, e.g. "donation"
	validate *validator.Validate
}

// NewListingHandler creates a ListingHandler serving the given prefix.
func NewListingHandler(service *services.ListingService, prefix, label string) *ListingHandler {
	return &ListingHandler{
		service:  service,
		prefix:   prefix,
		label:    label,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the listing routes with the Fiber app. All routes
// assume the session middleware has resolved the requester identity.
func (h *ListingHandler) RegisterRoutes(router fiber.Router) {
	routes := router.Group(h.prefix)
	routes.Get("/", h.HandleListMine)
	routes.Get("/:id", h.HandleGet)
	routes.Post("/", h.HandleCreate)
	routes.Post("/:id", h.HandleUpdate)
	routes.Post("/:id/delete", h.HandleDelete)
}

// requester pulls the authenticated identity the session middleware stored.
func requester(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}

// listingForm parses and validates the editable fields from the multipart
// form, and returns the optional image file header (nil if none uploaded).
func (h *ListingHandler) listingForm(c *fiber.Ctx) (models.ListingFields, *multipart.FileHeader, error) {
	var fields models.ListingFields
	if err := c.BodyParser(&fields); err != nil {
		return fields, nil, fmt.Errorf("failed to parse listing form: %w", err)
	}
	if err := h.validate.Struct(fields); err != nil {
		return fields, nil, fmt.Errorf("listing form validation failed: %w", err)
	}

	image, err := c.FormFile(imageFormField)
	if err != nil {
		// No file uploaded; the image stays absent or unchanged.
		image = nil
	}
	return fields, image, nil
}

// HandleListMine returns the requester's own listings of this kind.
func (h *ListingHandler) HandleListMine(c *fiber.Ctx) error {
	listings, err := h.service.ListByOwner(requester(c))
	if err != nil {
		log.Printf("Error listing %ss: %v", h.label, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": fmt.Sprintf("Could not retrieve your %ss", h.label),
		})
	}
	return c.JSON(fiber.Map{
		"listings": listings,
		"flash":    flashPayload(c),
	})
}

// HandleGet returns a single listing by ID.
func (h *ListingHandler) HandleGet(c *fiber.Ctx) error {
	listing, err := h.service.Get(c.Params("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("%s not found", h.label),
			})
		}
		log.Printf("Error getting %s %s: %v", h.label, c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": fmt.Sprintf("Could not retrieve %s", h.label),
		})
	}
	return c.JSON(listing)
}

// HandleCreate publishes a new listing from the multipart form.
func (h *ListingHandler) HandleCreate(c *fiber.Ctx) error {
	fields, image, err := h.listingForm(c)
	if err != nil {
		log.Printf("Invalid %s form: %v", h.label, err)
		setFlash(c, "danger", "Please fill in all required fields")
		return c.Redirect(h.prefix, fiber.StatusSeeOther)
	}

	if _, err := h.service.Create(requester(c), fields, image); err != nil {
		log.Printf("Error creating %s: %v", h.label, err)
		setFlash(c, "danger", fmt.Sprintf("Could not publish %s", h.label))
		return c.Redirect(h.prefix, fiber.StatusSeeOther)
	}

	setFlash(c, "success", fmt.Sprintf("%s published", h.label))
	return c.Redirect(h.prefix, fiber.StatusSeeOther)
}

// HandleUpdate edits an existing listing, owner only.
func (h *ListingHandler) HandleUpdate(c *fiber.Ctx) error {
	fields, image, err := h.listingForm(c)
	if err != nil {
		log.Printf("Invalid %s form: %v", h.label, err)
		setFlash(c, "danger", "Please fill in all required fields")
		return c.Redirect(h.prefix, fiber.StatusSeeOther)
	}

	if _, err := h.service.Update(c.Params("id"), requester(c), fields, image); err != nil {
		return h.mutationError(c, "edit", err)
	}

	setFlash(c, "success", fmt.Sprintf("%s updated", h.label))
	return c.Redirect(h.prefix, fiber.StatusSeeOther)
}

// HandleDelete removes a listing and its image, owner only.
func (h *ListingHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Params("id"), requester(c)); err != nil {
		return h.mutationError(c, "delete", err)
	}

	setFlash(c, "success", fmt.Sprintf("%s deleted", h.label))
	return c.Redirect(h.prefix, fiber.StatusSeeOther)
}

// mutationError maps service errors from update/delete to the user-facing
// flash + redirect (or 404) responses.
func (h *ListingHandler) mutationError(c *fiber.Ctx, action string, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("%s not found", h.label),
		})
	case errors.Is(err, models.ErrForbidden):
		setFlash(c, "danger", fmt.Sprintf("You do not have permission to %s this %s", action, h.label))
		return c.Redirect(h.prefix, fiber.StatusSeeOther)
	default:
		log.Printf("Error on %s %s %s: %v", h.label, action, c.Params("id"), err)
		setFlash(c, "danger", fmt.Sprintf("Could not %s %s", action, h.label))
		return c.Redirect(h.prefix, fiber.StatusSeeOther)
	}
}
