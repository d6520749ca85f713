package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"testlab/internal/service"
)

// ListUsers returns a handler for listing users with limit/offset pagination.
//
// @Summary List users
// @Tags users
// @Produce json
// @Param limit query int false "page size" default(10)
// @Param offset query int false "page offset" default(0)
// @Success 200 {object} service.UserListResult
// @Failure 400 {object} errorPayload
// @Router /users [get]
func ListUsers(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// RegisterUser returns a handler that creates a user from a JSON body.
//
// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Param user body service.RegisterInput true "user to register"
// @Success 201 {object} model.User
// @Failure 400 {object} errorPayload
// @Router /users [post]
func RegisterUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.RegisterInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		u, err := svc.Register(c.UserContext(), in)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrNameRequired):
				return writeError(c, fiber.StatusBadRequest, "NAME_REQUIRED", "name is required")
			case errors.Is(err, service.ErrInvalidAge):
				return writeError(c, fiber.StatusBadRequest, "INVALID_AGE", "age must be between 1 and 149")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

// GetUser returns a handler that fetches a single user by ID.
//
// @Summary Get a user
// @Tags users
// @Produce json
// @Param id path string true "user id (UUID)"
// @Success 200 {object} model.User
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /users/{id} [get]
func GetUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		u, err := svc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "user not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(u)
	}
}

// DeleteUser returns a handler that removes a user by ID.
//
// @Summary Delete a user
// @Tags users
// @Param id path string true "user id (UUID)"
// @Success 204
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /users/{id} [delete]
func DeleteUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "user not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// UploadAvatar returns a handler accepting multipart/form-data with field
// name "avatar".
//
// @Summary Upload a user avatar
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "user id (UUID)"
// @Param avatar formData file true "avatar image"
// @Success 200 {object} model.User
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /users/{id}/avatar [post]
func UploadAvatar(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		fh, err := c.FormFile("avatar")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "avatar file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		u, err := svc.UploadAvatar(c.UserContext(), id, f, ct, fh.Size)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "user not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(u)
	}
}

// GetAvatar returns a handler that redirects to the user's avatar image.
//
// @Summary Download a user avatar
// @Tags users
// @Param id path string true "user id (UUID)"
// @Success 302
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /users/{id}/avatar [get]
func GetAvatar(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		url, err := svc.AvatarURL(c.UserContext(), id)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "user not found")
			case errors.Is(err, service.ErrNoAvatar):
				return writeError(c, fiber.StatusNotFound, "NO_AVATAR", "user has no avatar")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.Redirect(url, fiber.StatusFound)
	}
}
