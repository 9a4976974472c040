package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-seat-booking/internal/application"
	"github.com/sanosuguru/go-seat-booking/internal/domain/reservation"
	"github.com/sanosuguru/go-seat-booking/internal/pkg/wallclock"
)

type ReservationHandler struct {
	service ReservationServiceInterface
	zone    *wallclock.Zone
}

func NewReservationHandler(s ReservationServiceInterface, zone *wallclock.Zone) *ReservationHandler {
	return &ReservationHandler{service: s, zone: zone}
}

// CreateReservationRequest は予約作成リクエスト
// start と end はオフセット付き（RFC3339）でもオフセットなしでもよい
type CreateReservationRequest struct {
	UserID string `json:"user_id" validate:"omitempty,uuid" example:"6f1c2a4e-8a44-4a43-9a1e-3f2b7c1d9e10"`
	SeatID string `json:"seat_id" validate:"required,uuid" example:"c1a7e3a2-0f5e-4b8e-9c55-2d8a1b7f4e21"`
	Start  string `json:"start" validate:"required" example:"2025-01-01T09:00:00+03:00"`
	End    string `json:"end" validate:"required" example:"2025-01-01T18:00:00+03:00"`
}

type UpdateReservationRequest struct {
	Start  *string `json:"start"`
	End    *string `json:"end"`
	Status *string `json:"status" validate:"omitempty,oneof=future active did_not_come closed"`
}

type ReservationResponse struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	SeatID    string         `json:"seat_id"`
	SeatName  string         `json:"seat_name,omitempty"`
	Start     wallclock.Time `json:"start"`
	End       wallclock.Time `json:"end"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

// MaximumAvailableTimeResponse は延長可能な終了時刻
// 後続の予約がなければ maximum_available_time は null で unbounded が true
type MaximumAvailableTimeResponse struct {
	MaximumAvailableTime *wallclock.Time `json:"maximum_available_time"`
	Unbounded            bool            `json:"unbounded"`
}

func toReservationResponse(r *reservation.Reservation) ReservationResponse {
	return ReservationResponse{
		ID: r.ID, UserID: r.UserID, SeatID: r.SeatID,
		Start: r.Start, End: r.End, Status: string(r.Status), CreatedAt: r.CreatedAt,
	}
}

func toViewResponse(v *reservation.View) ReservationResponse {
	resp := toReservationResponse(v.Reservation)
	resp.SeatName = v.SeatName
	return resp
}

func toViewResponses(views []*reservation.View) []ReservationResponse {
	resp := make([]ReservationResponse, len(views))
	for i, v := range views {
		resp[i] = toViewResponse(v)
	}
	return resp
}

func toExtensionResponse(ext reservation.Extension) MaximumAvailableTimeResponse {
	if ext.Unbounded {
		return MaximumAvailableTimeResponse{Unbounded: true}
	}
	until := ext.Until
	return MaximumAvailableTimeResponse{MaximumAvailableTime: &until}
}

// Create godoc
// @Summary 予約を作成
// @Description 座席を指定の時間帯で予約します。user_id を省略すると自分の予約になります
// @Tags reservations
// @Accept json
// @Produce json
// @Param request body CreateReservationRequest true "予約情報"
// @Success 201 {object} ReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string "他のユーザーの予約"
// @Failure 409 {object} map[string]string "座席が予約済み、またはユーザーが有効な予約を保有"
// @Router /reservations [post]
func (h *ReservationHandler) Create(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req CreateReservationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	userID := req.UserID
	if userID == "" {
		userID = a.UserID
	}
	if !a.CanAccess(userID) {
		return toHTTPError(reservation.ErrNotOwner)
	}
	start, err := h.zone.Parse(req.Start)
	if err != nil {
		return toHTTPError(err)
	}
	end, err := h.zone.Parse(req.End)
	if err != nil {
		return toHTTPError(err)
	}

	r, err := h.service.CreateReservation(c.Request().Context(), application.CreateReservationInput{
		UserID: userID, SeatID: req.SeatID, Start: start, End: end,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toReservationResponse(r))
}

// List godoc
// @Summary 自分の予約一覧を取得
// @Tags reservations
// @Produce json
// @Success 200 {array} ReservationResponse
// @Router /reservations [get]
func (h *ReservationHandler) List(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	views, err := h.service.ListUserReservations(c.Request().Context(), a.UserID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toViewResponses(views))
}

// GetActive godoc
// @Summary 有効な予約を取得
// @Description 終了していない未キャンセルの予約を座席名つきで返します
// @Tags reservations
// @Produce json
// @Success 200 {object} ReservationResponse
// @Failure 404 {object} map[string]string
// @Router /reservations/active [get]
func (h *ReservationHandler) GetActive(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	v, err := h.service.GetActiveReservation(c.Request().Context(), a.UserID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toViewResponse(v))
}

// GetMaximumAvailableTime godoc
// @Summary 延長可能な終了時刻を取得
// @Tags reservations
// @Produce json
// @Param start_time query string true "基準時刻"
// @Success 200 {object} MaximumAvailableTimeResponse
// @Failure 400 {object} map[string]string
// @Router /reservations/maximum-available-time [get]
func (h *ReservationHandler) GetMaximumAvailableTime(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	start, err := h.zone.Parse(c.QueryParam("start_time"))
	if err != nil {
		return toHTTPError(err)
	}
	ext, err := h.service.GetMaximumExtensionTime(c.Request().Context(), a.UserID, start)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toExtensionResponse(ext))
}

// GetByID godoc
// @Summary 予約を取得
// @Tags reservations
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /reservations/{id} [get]
func (h *ReservationHandler) GetByID(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	r, err := h.service.GetReservation(c.Request().Context(), a, id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// Update godoc
// @Summary 予約を部分更新
// @Description 一般ユーザーが変更できる状態は closed のみです
// @Tags reservations
// @Accept json
// @Produce json
// @Param id path string true "予約ID"
// @Param request body UpdateReservationRequest true "更新内容"
// @Success 200 {object} ReservationResponse
// @Router /reservations/{id} [patch]
func (h *ReservationHandler) Update(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateReservationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	patch, err := h.toPatch(req)
	if err != nil {
		return toHTTPError(err)
	}
	r, err := h.service.UpdateReservation(c.Request().Context(), a, id, patch)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

func (h *ReservationHandler) toPatch(req UpdateReservationRequest) (reservation.Patch, error) {
	var p reservation.Patch
	if req.Start != nil {
		s, err := h.zone.Parse(*req.Start)
		if err != nil {
			return p, err
		}
		p.Start = &s
	}
	if req.End != nil {
		e, err := h.zone.Parse(*req.End)
		if err != nil {
			return p, err
		}
		p.End = &e
	}
	if req.Status != nil {
		st := reservation.Status(*req.Status)
		p.Status = &st
	}
	return p, nil
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Tags reservations
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	r, err := h.service.Cancel(c.Request().Context(), a, id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}
