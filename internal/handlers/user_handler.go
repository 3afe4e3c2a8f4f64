package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Aryan192003/Chatify-backend/internal/apperr"
	"github.com/Aryan192003/Chatify-backend/internal/auth"
	"github.com/Aryan192003/Chatify-backend/internal/service"
)

type UserHandler struct {
	users        *service.UserService
	cookieTTL    time.Duration
	cookieSecure bool
}

func NewUserHandler(users *service.UserService, cookieTTL time.Duration, cookieSecure bool) *UserHandler {
	return &UserHandler{users: users, cookieTTL: cookieTTL, cookieSecure: cookieSecure}
}

func (h *UserHandler) Signup(c *fiber.Ctx) error {
	in := service.SignupInput{
		Name:     c.FormValue("name"),
		Username: c.FormValue("username"),
		Password: c.FormValue("password"),
		Bio:      c.FormValue("bio"),
	}
	if fh, err := c.FormFile("avatar"); err == nil {
		file, err := readFile(fh)
		if err != nil {
			return respondError(c, err)
		}
		in.Avatar = file
	}

	user, token, err := h.users.Signup(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	h.setToken(c, token)
	return respond(c, fiber.StatusCreated, fiber.Map{"user": user, "message": "User created"})
}

func (h *UserHandler) Login(c *fiber.Ctx) error {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}
	user, token, err := h.users.Login(c.Context(), body.Username, body.Password)
	if err != nil {
		return respondError(c, err)
	}
	h.setToken(c, token)
	return respond(c, fiber.StatusOK, fiber.Map{"user": user, "message": "Welcome back " + user.Name})
}

func (h *UserHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
	return respond(c, fiber.StatusOK, fiber.Map{"message": "Logged out successfully"})
}

func (h *UserHandler) Profile(c *fiber.Ctx) error {
	user, err := h.users.Profile(c.Context(), currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"user": user})
}

func (h *UserHandler) Search(c *fiber.Ctx) error {
	users, err := h.users.SearchUsers(c.Context(), currentUser(c), c.Query("name"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"users": users})
}

func (h *UserHandler) SendRequest(c *fiber.Ctx) error {
	var body struct {
		UserID string `json:"userId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}
	if err := h.users.SendFriendRequest(c.Context(), currentUser(c), body.UserID); err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"message": "Friend request sent"})
}

func (h *UserHandler) AcceptRequest(c *fiber.Ctx) error {
	var body struct {
		RequestID string `json:"requestId"`
		Accept    bool   `json:"accept"`
	}
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}
	senderID, err := h.users.AcceptFriendRequest(c.Context(), body.RequestID, currentUser(c), body.Accept)
	if err != nil {
		return respondError(c, err)
	}
	if !body.Accept {
		return respond(c, fiber.StatusOK, fiber.Map{"message": "Friend request rejected"})
	}
	return respond(c, fiber.StatusOK, fiber.Map{"message": "Friend request accepted", "senderId": senderID})
}

func (h *UserHandler) Notifications(c *fiber.Ctx) error {
	requests, err := h.users.Notifications(c.Context(), currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"requests": requests})
}

func (h *UserHandler) Friends(c *fiber.Ctx) error {
	friends, err := h.users.Friends(c.Context(), currentUser(c), c.Query("chatId"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"friends": friends})
}

func (h *UserHandler) setToken(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Expires:  time.Now().Add(h.cookieTTL),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}
