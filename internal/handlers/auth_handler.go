package handlers

import (
	"errors"
	"log"
	"strings"
	"time"

	"aportar/internal/models"
	"aportar/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles registration, login, logout, and the profile page.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the public authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/register", h.HandleRegister)
	router.Post("/login", h.HandleLogin)
	router.Get("/logout", h.HandleLogout)
}

// RegisterProtectedRoutes registers routes that need a session.
func (h *AuthHandler) RegisterProtectedRoutes(router fiber.Router) {
	router.Get("/dashboard", h.HandleDashboard)
	router.Get("/profile", h.HandleProfile)
}

// RegisterRequest represents the registration form.
type RegisterRequest struct {
	Username        string `json:"username" form:"username" validate:"required,min=3,max=100"`
	Password        string `json:"password" form:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" validate:"required"`
	FirstName       string `json:"first_name" form:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" form:"last_name" validate:"required,max=100"`
	NationalID      string `json:"national_id" form:"national_id" validate:"required,max=20"`
	District        string `json:"district" form:"district" validate:"required,max=100"`
	Email           string `json:"email" form:"email" validate:"required,email"`
	Interests       string `json:"interests" form:"interests"`
}

// HandleRegister handles new user registration: validate the form, reject
// duplicate usernames/emails, then redirect to the login page.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing register form: %v", err)
		setFlash(c, "danger", "Invalid registration form")
		return c.Redirect("/register", fiber.StatusSeeOther)
	}

	if err := h.validate.Struct(req); err != nil {
		log.Printf("Register validation failed: %v", err)
		setFlash(c, "danger", "Please fill in all required fields correctly")
		return c.Redirect("/register", fiber.StatusSeeOther)
	}

	if req.Password != req.ConfirmPassword {
		setFlash(c, "danger", "Passwords do not match")
		return c.Redirect("/register", fiber.StatusSeeOther)
	}

	user := &models.User{
		Username:   req.Username,
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		NationalID: req.NationalID,
		District:   req.District,
		Interests:  strings.TrimSpace(req.Interests),
	}

	if err := h.authService.Register(user, req.Password); err != nil {
		log.Printf("Error registering user %s: %v", req.Username, err)
		switch {
		case errors.Is(err, models.ErrDuplicateUsername):
			setFlash(c, "danger", "That username is already taken")
		case errors.Is(err, models.ErrDuplicateEmail):
			setFlash(c, "danger", "That email is already registered")
		default:
			setFlash(c, "danger", "Could not register user")
		}
		return c.Redirect("/register", fiber.StatusSeeOther)
	}

	setFlash(c, "success", "Account created, please log in")
	return c.Redirect("/login", fiber.StatusSeeOther)
}

// LoginRequest represents the login form.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// HandleLogin verifies credentials and sets the session cookie.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login form: %v", err)
		setFlash(c, "danger", "Invalid login form")
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	if err := h.validate.Struct(req); err != nil {
		setFlash(c, "danger", "Username and password are required")
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	token, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		log.Printf("Login failed for user %s: %v", req.Username, err)
		setFlash(c, "danger", "Invalid credentials")
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	c.Cookie(&fiber.Cookie{
		Name:     services.SessionCookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Expires:  time.Now().Add(24 * time.Hour),
	})

	return c.Redirect("/dashboard", fiber.StatusSeeOther)
}

// HandleLogout clears the session cookie.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:    services.SessionCookieName,
		Value:   "",
		Path:    "/",
		Expires: time.Now().Add(-time.Hour),
	})
	setFlash(c, "info", "You have been logged out")
	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleDashboard is the landing page after login.
func (h *AuthHandler) HandleDashboard(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"username": c.Locals("username"),
		"flash":    flashPayload(c),
	})
}

// HandleProfile returns the logged-in user's profile.
func (h *AuthHandler) HandleProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	user, err := h.authService.GetUser(userID)
	if err != nil {
		log.Printf("Error loading profile for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not load profile",
		})
	}
	return c.JSON(fiber.Map{
		"user":  user,
		"flash": flashPayload(c),
	})
}
