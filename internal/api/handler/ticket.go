package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-seat-booking/internal/application"
	"github.com/sanosuguru/go-seat-booking/internal/domain/ticket"
)

type TicketHandler struct {
	service TicketServiceInterface
}

func NewTicketHandler(s TicketServiceInterface) *TicketHandler {
	return &TicketHandler{service: s}
}

type CreateTicketRequest struct {
	Theme   string `json:"theme" validate:"omitempty,oneof=failure wish other" example:"failure"`
	Message string `json:"message" validate:"required,max=2000" example:"モニターが映りません"`
}

type UpdateTicketStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active closed"`
}

type TicketResponse struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	ReservationID *string   `json:"reservation_id"`
	SeatID        *string   `json:"seat_id"`
	SeatName      *string   `json:"seat_name"`
	Theme         string    `json:"theme"`
	Message       string    `json:"message"`
	Status        string    `json:"status"`
	MadeOn        time.Time `json:"made_on"`
}

func toTicketResponse(t *ticket.Ticket) TicketResponse {
	return TicketResponse{
		ID: t.ID, UserID: t.UserID, ReservationID: t.ReservationID,
		SeatID: t.SeatID, SeatName: t.SeatName,
		Theme: string(t.Theme), Message: t.Message, Status: string(t.Status), MadeOn: t.MadeOn,
	}
}

func toTicketResponses(tickets []*ticket.Ticket) []TicketResponse {
	resp := make([]TicketResponse, len(tickets))
	for i, t := range tickets {
		resp[i] = toTicketResponse(t)
	}
	return resp
}

// Create godoc
// @Summary 問い合わせを作成
// @Description 有効な予約があれば座席を記録し、管理者へ通知します
// @Tags tickets
// @Accept json
// @Produce json
// @Param request body CreateTicketRequest true "問い合わせ内容"
// @Success 201 {object} TicketResponse
// @Router /tickets [post]
func (h *TicketHandler) Create(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req CreateTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	t, err := h.service.CreateTicket(c.Request().Context(), application.CreateTicketInput{
		UserID: a.UserID, Theme: ticket.Theme(req.Theme), Message: req.Message,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toTicketResponse(t))
}

func (h *TicketHandler) ListMine(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListUserTickets(c.Request().Context(), a.UserID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toTicketResponses(tickets))
}
