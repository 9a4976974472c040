package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-seat-booking/internal/domain/user"
)

type UserHandler struct {
	service UserServiceInterface
}

func NewUserHandler(s UserServiceInterface) *UserHandler {
	return &UserHandler{service: s}
}

type UserResponse struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	Login      string  `json:"login"`
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Role       string  `json:"role"`
	Verified   bool    `json:"verified"`
	TelegramID *string `json:"telegram_id"`
}

type UpdateProfileRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID: u.ID, Email: u.Email, Login: u.Login,
		FirstName: u.FirstName, LastName: u.LastName,
		Role: string(u.Role), Verified: u.Verified, TelegramID: u.TelegramID,
	}
}

// Me は認証済みユーザー自身の情報を返す
func (h *UserHandler) Me(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	u, err := h.service.GetUser(c.Request().Context(), a.UserID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}

// UpdateMe godoc
// @Summary プロフィール更新
// @Description メールアドレスと氏名を更新します。権限と本人確認は変更できません
// @Tags users
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "更新内容"
// @Success 200 {object} UserResponse
// @Failure 409 {object} map[string]string "メールアドレスが使用済み"
// @Router /users/me [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	u, err := h.service.UpdateProfile(c.Request().Context(), a.UserID, user.Patch{
		Email: req.Email, FirstName: req.FirstName, LastName: req.LastName,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}

// DeleteMe は自身のアカウントを削除する
// 予約と問い合わせも削除される
func (h *UserHandler) DeleteMe(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteUser(c.Request().Context(), a.UserID); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetByID はユーザーの公開情報を返す
func (h *UserHandler) GetByID(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	u, err := h.service.GetUser(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}
