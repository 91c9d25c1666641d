package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/otenet/task-manager/internal/core/domain"
	"github.com/otenet/task-manager/internal/core/ports"
)

// MaxAvatarSize is the largest accepted avatar upload.
const MaxAvatarSize = 10 << 20

type UserHandler struct {
	auth     ports.AuthService
	accounts ports.AccountService
}

func NewUserHandler(auth ports.AuthService, accounts ports.AccountService) *UserHandler {
	return &UserHandler{auth: auth, accounts: accounts}
}

// Signup creates a new account and opens its first session.
//
// @Summary      Create an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /users [post]
func (h *UserHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, token, err := h.auth.Signup(c.Request().Context(), ports.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, authResponse{User: user, Token: token})
}

// Login authenticates by email and password and opens a new session.
//
// @Summary      Log in
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Router       /users/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	user, token, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{User: user, Token: token})
}

// Logout revokes the session used for this request.
//
// @Summary      Log out the current session
// @Tags         users
// @Security     BearerAuth
// @Success      200
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /users/logout [post]
func (h *UserHandler) Logout(c echo.Context) error {
	user, token, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.auth.Logout(c.Request().Context(), user, token); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

// LogoutAll revokes every session of the current user.
//
// @Summary      Log out every session
// @Tags         users
// @Security     BearerAuth
// @Success      200
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /users/logoutAll [post]
func (h *UserHandler) LogoutAll(c echo.Context) error {
	user, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.auth.LogoutAll(c.Request().Context(), user); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

// Me returns the authenticated user.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe applies a partial profile update. Only name, email, age and
// password may be sent.
//
// @Summary      Update current user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /users/me [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	user, _, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := bindPatch(c, profileUpdateKeys, &req); err != nil {
		return err
	}

	updated, err := h.accounts.UpdateProfile(c.Request().Context(), user, ports.ProfileUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Age:      req.Age,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteMe deletes the account together with every task it owns.
//
// @Summary      Delete current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  deleteAccountResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /users/me [delete]
func (h *UserHandler) DeleteMe(c echo.Context) error {
	user, _, err := ctxUser(c)
	if err != nil {
		return err
	}

	deleted, err := h.accounts.DeleteAccount(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deleteAccountResponse{
		Message:      "User and associated tasks deleted successfully",
		User:         user,
		TasksDeleted: deleted,
	})
}

// UploadAvatar stores a JPEG avatar sent as the multipart field "avatar".
//
// @Summary      Upload avatar
// @Tags         users
// @Accept       multipart/form-data
// @Security     BearerAuth
// @Param        avatar  formData  file  true  "JPEG image, at most 10MB"
// @Success      200
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /users/me/avatar [post]
func (h *UserHandler) UploadAvatar(c echo.Context) error {
	user, _, err := ctxUser(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("avatar")
	if err != nil {
		return domain.NewValidationError("avatar", "please upload an image")
	}
	if fh.Size > MaxAvatarSize {
		return domain.NewValidationError("avatar", "file too large")
	}
	if ct := strings.ToLower(fh.Header.Get(echo.HeaderContentType)); ct != "image/jpeg" && ct != "image/jpg" {
		return domain.NewValidationError("avatar", "please upload a jpeg image")
	}

	f, err := fh.Open()
	if err != nil {
		return domain.NewValidationError("avatar", "please upload an image")
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, MaxAvatarSize+1))
	if err != nil {
		return domain.NewValidationError("avatar", "please upload an image")
	}
	if len(raw) > MaxAvatarSize {
		return domain.NewValidationError("avatar", "file too large")
	}

	if err := h.accounts.SetAvatar(c.Request().Context(), user, raw); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

// DeleteAvatar removes the current user's avatar.
//
// @Summary      Delete avatar
// @Tags         users
// @Security     BearerAuth
// @Success      200
// @Failure      401  {object}  errorResponse
// @Router       /users/me/avatar [delete]
func (h *UserHandler) DeleteAvatar(c echo.Context) error {
	user, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.accounts.RemoveAvatar(c.Request().Context(), user); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

// GetAvatar serves a user's avatar. Public.
//
// @Summary      Get a user's avatar
// @Tags         users
// @Produce      image/jpeg
// @Param        id   path  string  true  "User ID"
// @Success      200
// @Failure      404  {object}  errorResponse
// @Router       /users/{id}/avatar [get]
func (h *UserHandler) GetAvatar(c echo.Context) error {
	avatar, err := h.accounts.Avatar(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/jpeg", avatar)
}
