package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-seat-booking/internal/application"
	"github.com/sanosuguru/go-seat-booking/internal/domain/reservation"
	"github.com/sanosuguru/go-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-seat-booking/internal/pkg/wallclock"
)

type SeatHandler struct {
	service SeatServiceInterface
	zone    *wallclock.Zone
}

func NewSeatHandler(s SeatServiceInterface, zone *wallclock.Zone) *SeatHandler {
	return &SeatHandler{service: s, zone: zone}
}

type CreateSeatRequest struct {
	Name         string  `json:"name" validate:"required,max=100" example:"A-12"`
	Type         string  `json:"type" validate:"required,max=50" example:"desk"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	HasComputer  bool    `json:"has_computer"`
	HasWater     bool    `json:"has_water"`
	HasKitchen   bool    `json:"has_kitchen"`
	HasSmartDesk bool    `json:"has_smart_desk"`
	IsQuiet      bool    `json:"is_quiet"`
	IsTalkRoom   bool    `json:"is_talk_room"`
}

func (r CreateSeatRequest) toInput() application.CreateSeatInput {
	return application.CreateSeatInput{
		Name: r.Name, Type: r.Type, X: r.X, Y: r.Y,
		HasComputer: r.HasComputer, HasWater: r.HasWater, HasKitchen: r.HasKitchen,
		HasSmartDesk: r.HasSmartDesk, IsQuiet: r.IsQuiet, IsTalkRoom: r.IsTalkRoom,
	}
}

type CreateBulkSeatsRequest struct {
	Seats []CreateSeatRequest `json:"seats" validate:"required,min=1,max=500,dive"`
}

type UpdateSeatRequest struct {
	Name         *string  `json:"name" validate:"omitempty,max=100"`
	Type         *string  `json:"type" validate:"omitempty,max=50"`
	X            *float64 `json:"x"`
	Y            *float64 `json:"y"`
	HasComputer  *bool    `json:"has_computer"`
	HasWater     *bool    `json:"has_water"`
	HasKitchen   *bool    `json:"has_kitchen"`
	HasSmartDesk *bool    `json:"has_smart_desk"`
	IsQuiet      *bool    `json:"is_quiet"`
	IsTalkRoom   *bool    `json:"is_talk_room"`
}

type SeatResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	HasComputer  bool    `json:"has_computer"`
	HasWater     bool    `json:"has_water"`
	HasKitchen   bool    `json:"has_kitchen"`
	HasSmartDesk bool    `json:"has_smart_desk"`
	IsQuiet      bool    `json:"is_quiet"`
	IsTalkRoom   bool    `json:"is_talk_room"`
	IsAvailable  *bool   `json:"is_available,omitempty"`
}

func toSeatResponse(s *seat.Seat) SeatResponse {
	return SeatResponse{
		ID: s.ID, Name: s.Name, Type: s.Type, X: s.X, Y: s.Y,
		HasComputer: s.HasComputer, HasWater: s.HasWater, HasKitchen: s.HasKitchen,
		HasSmartDesk: s.HasSmartDesk, IsQuiet: s.IsQuiet, IsTalkRoom: s.IsTalkRoom,
	}
}

func toSeatResponses(seats []*seat.Seat) []SeatResponse {
	resp := make([]SeatResponse, len(seats))
	for i, s := range seats {
		resp[i] = toSeatResponse(s)
	}
	return resp
}

// List godoc
// @Summary 座席一覧を取得
// @Description start と end を指定すると、その時間帯の空き状況を付与します
// @Tags seats
// @Produce json
// @Param start query string false "開始時刻"
// @Param end query string false "終了時刻"
// @Success 200 {array} SeatResponse
// @Failure 400 {object} map[string]string
// @Router /seats [get]
func (h *SeatHandler) List(c echo.Context) error {
	window, err := h.window(c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return err
	}
	seats, err := h.service.ListSeatsWithAvailability(c.Request().Context(), window)
	if err != nil {
		return toHTTPError(err)
	}
	resp := make([]SeatResponse, len(seats))
	for i, s := range seats {
		resp[i] = toSeatResponse(s.Seat)
		available := s.IsAvailable
		resp[i].IsAvailable = &available
	}
	return c.JSON(http.StatusOK, resp)
}

// window は start と end のクエリから時間帯を作る
// 両方とも省略された場合は nil を返す
func (h *SeatHandler) window(start, end string) (*reservation.Interval, error) {
	if start == "" && end == "" {
		return nil, nil
	}
	if start == "" || end == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "start と end は両方指定してください")
	}
	s, err := h.zone.Parse(start)
	if err != nil {
		return nil, toHTTPError(err)
	}
	e, err := h.zone.Parse(end)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &reservation.Interval{Start: s, End: e}, nil
}

func (h *SeatHandler) GetByID(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	s, err := h.service.GetSeat(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toSeatResponse(s))
}

func (h *SeatHandler) Create(c echo.Context) error {
	var req CreateSeatRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	s, err := h.service.CreateSeat(c.Request().Context(), req.toInput())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toSeatResponse(s))
}

func (h *SeatHandler) CreateBulk(c echo.Context) error {
	var req CreateBulkSeatsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	inputs := make([]application.CreateSeatInput, len(req.Seats))
	for i, s := range req.Seats {
		inputs[i] = s.toInput()
	}
	seats, err := h.service.CreateSeats(c.Request().Context(), inputs)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toSeatResponses(seats))
}

func (h *SeatHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateSeatRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	s, err := h.service.UpdateSeat(c.Request().Context(), id, seat.Patch{
		Name: req.Name, Type: req.Type, X: req.X, Y: req.Y,
		HasComputer: req.HasComputer, HasWater: req.HasWater, HasKitchen: req.HasKitchen,
		HasSmartDesk: req.HasSmartDesk, IsQuiet: req.IsQuiet, IsTalkRoom: req.IsTalkRoom,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toSeatResponse(s))
}

func (h *SeatHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteSeat(c.Request().Context(), id); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
