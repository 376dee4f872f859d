package middleware

import (
	"log"
	"net/url"
	"time"

	"aportar/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SessionRequired is a Fiber middleware that resolves the session cookie into
// the authenticated identity. Requests without a valid session are flashed
// and redirected to the login page. On success the resolved user_id and
// username are stored in Locals for handlers to pass explicitly into the
// service layer.
func SessionRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(services.SessionCookieName)
		if token == "" {
			return redirectToLogin(c, "Please log in first")
		}

		userID, username, err := authService.ValidateToken(token)
		if err != nil {
			log.Printf("Session validation failed: %v", err)
			// Drop the stale cookie so the client stops sending it.
			c.Cookie(&fiber.Cookie{
				Name:    services.SessionCookieName,
				Value:   "",
				Path:    "/",
				Expires: time.Now().Add(-time.Hour),
			})
			return redirectToLogin(c, "Your session has expired, please log in again")
		}

		c.Locals("user_id", userID)
		c.Locals("username", username)

		return c.Next()
	}
}

func redirectToLogin(c *fiber.Ctx, message string) error {
	c.Cookie(&fiber.Cookie{
		Name:     "flash",
		Value:    url.QueryEscape("danger|" + message),
		Path:     "/",
		HTTPOnly: true,
		Expires:  time.Now().Add(5 * time.Minute),
	})
	return c.Redirect("/login", fiber.StatusSeeOther)
}
