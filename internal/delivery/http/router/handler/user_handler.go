package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"authsvc/internal/delivery/http/response"
	domainerrors "authsvc/internal/domain/errors"
	"authsvc/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// UserHandlerParams holds dependencies for UserHandler, injected by Fx.
type UserHandlerParams struct {
	fx.In

	UserUC usecase.UserUsecase
	Logger *slog.Logger
}

// UserHandler holds dependencies for user management handlers.
type UserHandler struct {
	userUC usecase.UserUsecase
	logger *slog.Logger
}

// NewUserHandler is the constructor for UserHandler
func NewUserHandler(params UserHandlerParams) *UserHandler {
	return &UserHandler{
		userUC: params.UserUC,
		logger: params.Logger,
	}
}

// ListUsers handles retrieving every user
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.userUC.ListUsers(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	body := make([]*UserResponse, 0, len(users))
	for _, user := range users {
		body = append(body, toUserResponse(user))
	}

	return response.Success(c, http.StatusOK, body, "Users retrieved successfully")
}

// GetUser handles retrieving a single user
func (h *UserHandler) GetUser(c echo.Context) error {
	id, ok := parseUserID(c.Param("id"))
	if !ok {
		return invalidUserID(c)
	}

	user, err := h.userUC.GetUser(c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, toUserResponse(user), "User retrieved successfully")
}

// UpdateUser handles a partial update of a user
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, ok := parseUserID(c.Param("id"))
	if !ok {
		return invalidUserID(c)
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid user input")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, err.Error())
	}

	user, err := h.userUC.UpdateUser(c.Request().Context(), id, &usecase.UpdateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, toUserResponse(user), "User updated successfully")
}

// DeleteUser handles removing a user
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, ok := parseUserID(c.Param("id"))
	if !ok {
		return invalidUserID(c)
	}

	deleted, err := h.userUC.DeleteUser(c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}
	if !deleted {
		return response.HandleAppError(c, domainerrors.ErrUserNotFound)
	}

	return c.NoContent(http.StatusNoContent)
}

func parseUserID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}

	return uint(id), true
}

func invalidUserID(c echo.Context) error {
	return response.BadRequest(c, "INVALID_INPUT", "User id must be a positive integer")
}
