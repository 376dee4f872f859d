package handlers

import (
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const flashCookieName = "flash"

// setFlash queues a one-shot status message for the next rendered page,
// carried in a short-lived cookie as "category|message".
func setFlash(c *fiber.Ctx, category, message string) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(category + "|" + message),
		Path:     "/",
		HTTPOnly: true,
		Expires:  time.Now().Add(5 * time.Minute),
	})
}

// takeFlash reads and clears the pending flash message, if any.
func takeFlash(c *fiber.Ctx) (category, message string, ok bool) {
	raw := c.Cookies(flashCookieName)
	if raw == "" {
		return "", "", false
	}
	// Clear the cookie so the message shows only once.
	c.Cookie(&fiber.Cookie{
		Name:    flashCookieName,
		Value:   "",
		Path:    "/",
		Expires: time.Now().Add(-time.Hour),
	})

	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return "", "", false
	}
	category, message, found := strings.Cut(decoded, "|")
	if !found {
		return "", "", false
	}
	return category, message, true
}

// flashPayload attaches any pending flash message to a JSON response body.
func flashPayload(c *fiber.Ctx) fiber.Map {
	if category, message, ok := takeFlash(c); ok {
		return fiber.Map{"category": category, "message": message}
	}
	return nil
}
