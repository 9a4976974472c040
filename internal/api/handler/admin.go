package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-seat-booking/internal/domain/ticket"
	"github.com/sanosuguru/go-seat-booking/internal/domain/user"
)

// AdminHandler は管理者向けの操作を扱う
// ルーティング側で管理者権限を要求すること
type AdminHandler struct {
	reservations ReservationServiceInterface
	users        UserServiceInterface
	tickets      TicketServiceInterface
}

func NewAdminHandler(rs ReservationServiceInterface, us UserServiceInterface, ts TicketServiceInterface) *AdminHandler {
	return &AdminHandler{reservations: rs, users: us, tickets: ts}
}

type UpdateUserRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Role      *string `json:"role" validate:"omitempty,oneof=user admin"`
	Verified  *bool   `json:"verified"`
}

type ReconcileResponse struct {
	Updated int `json:"updated"`
}

// CheckIn godoc
// @Summary 来場確認
// @Description future の予約を active にします。本人確認済みのユーザーのみ
// @Tags admin
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 409 {object} map[string]string
// @Failure 424 {object} map[string]string "本人確認が未完了"
// @Router /admin/check-in/{id} [post]
func (h *AdminHandler) CheckIn(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	r, err := h.reservations.CheckIn(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

func (h *AdminHandler) ListReservations(c echo.Context) error {
	views, err := h.reservations.ListAllReservations(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toViewResponses(views))
}

func (h *AdminHandler) DeleteReservation(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.reservations.DeleteReservation(c.Request().Context(), id); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Reconcile は状態同期を即時に実行する
func (h *AdminHandler) Reconcile(c echo.Context) error {
	n, err := h.reservations.ReconcileStatuses(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, ReconcileResponse{Updated: n})
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.users.ListUsers(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = toUserResponse(u)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) VerifyUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	u, err := h.users.VerifyUser(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}

func (h *AdminHandler) UpdateUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	patch := user.Patch{
		Email: req.Email, FirstName: req.FirstName, LastName: req.LastName, Verified: req.Verified,
	}
	if req.Role != nil {
		role := user.Role(*req.Role)
		patch.Role = &role
	}
	u, err := h.users.UpdateUser(c.Request().Context(), id, patch)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}

func (h *AdminHandler) ListTickets(c echo.Context) error {
	tickets, err := h.tickets.ListAllTickets(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toTicketResponses(tickets))
}

func (h *AdminHandler) UpdateTicketStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateTicketStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	t, err := h.tickets.UpdateTicketStatus(c.Request().Context(), id, ticket.Status(req.Status))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}
