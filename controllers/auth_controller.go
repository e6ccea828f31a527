// controllers/auth_controller.go
package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/daansetu/daansetu_backend/middleware"
	"github.com/daansetu/daansetu_backend/models"
	"github.com/daansetu/daansetu_backend/repositories"
	"github.com/daansetu/daansetu_backend/utils"
)

// AuthController handles signup and login
type AuthController struct {
	users repositories.UserStore
}

func NewAuthController(users repositories.UserStore) *AuthController {
	return &AuthController{users: users}
}

// Signup registers a new user. Coordinator roles start pending and need
// approval by a strictly higher-ranked user; donors and volunteers are
// active immediately.
func (ac *AuthController) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request format",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Unknown role",
		})
	}
	if role == models.RoleAdmin {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Admin accounts cannot be self-registered",
		})
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process password",
		})
	}

	status := models.StatusPending
	if role == models.RoleDonor || role == models.RoleVolunteer {
		status = models.StatusActive
	}

	user := &models.User{
		Email:    req.Email,
		Password: hash,
		FullName: req.FullName,
		Phone:    req.Phone,
		Role:     role,
		Status:   status,
		State:    req.State,
		District: req.District,
		Block:    req.Block,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := ac.users.Insert(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "An account with this email already exists",
			})
		}
		log.Printf("ERROR: failed to create user: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create account",
		})
	}

	user.Password = ""
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Account created",
		Data:    user,
	})
}

// Login checks credentials and issues a JWT
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request format",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	user, err := ac.users.FindByEmail(ctx, req.Email)
	if err != nil || !utils.CheckPassword(user.Password, req.Password) {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid email or password",
		})
	}

	if user.Status != models.StatusActive {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Account is not active",
		})
	}

	token, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, string(user.Role))
	if err != nil {
		log.Printf("ERROR: failed to generate token: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data: map[string]interface{}{
			"token": token,
			"user":  user,
		},
	})
}
