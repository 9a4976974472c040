package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-seat-booking/internal/api/middleware"
	"github.com/sanosuguru/go-seat-booking/internal/application"
	"github.com/sanosuguru/go-seat-booking/internal/domain/reservation"
	"github.com/sanosuguru/go-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-seat-booking/internal/domain/ticket"
	"github.com/sanosuguru/go-seat-booking/internal/domain/user"
	"github.com/sanosuguru/go-seat-booking/internal/pkg/wallclock"
)

var errInvalidID = errors.New("IDの形式が正しくありません")

var (
	conflictErrors = []error{
		reservation.ErrSeatUnavailable,
		reservation.ErrUserHasActiveReservation,
		reservation.ErrReservationAlreadyClosed,
		reservation.ErrReservationAlreadyActive,
		reservation.ErrInvalidStatusTransition,
		application.ErrLockBusy,
		seat.ErrSeatInUse,
		user.ErrEmailAlreadyExists,
		user.ErrLoginAlreadyExists,
	}
	notFoundErrors = []error{
		reservation.ErrReservationNotFound,
		seat.ErrSeatNotFound,
		user.ErrUserNotFound,
		ticket.ErrTicketNotFound,
	}
	forbiddenErrors = []error{
		reservation.ErrNotOwner,
		reservation.ErrStatusChangeNotAllowed,
	}
	badRequestErrors = []error{
		errInvalidID,
		wallclock.ErrInvalidTimestamp,
		reservation.ErrInvalidStatus,
		reservation.ErrUserIDRequired,
		reservation.ErrSeatIDRequired,
		reservation.ErrIntervalRequired,
		reservation.ErrInvalidInterval,
		seat.ErrSeatNameRequired,
		seat.ErrSeatTypeRequired,
		user.ErrInvalidEmail,
		user.ErrLoginRequired,
		user.ErrInvalidRole,
		ticket.ErrUserIDRequired,
		ticket.ErrMessageRequired,
		ticket.ErrInvalidTheme,
		ticket.ErrInvalidStatus,
	}
)

// toHTTPError はサービス層のエラーをHTTPエラーに変換する
// 該当しないエラーは 500 とし、詳細はエラーハンドラーがログに残す
func toHTTPError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	switch {
	case matchAny(err, conflictErrors):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case matchAny(err, notFoundErrors):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case matchAny(err, forbiddenErrors):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, user.ErrUserNotVerified):
		return echo.NewHTTPError(http.StatusFailedDependency, err.Error())
	case matchAny(err, badRequestErrors):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "内部サーバーエラー").SetInternal(err)
}

func matchAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// pathID はパスパラメータの UUID を検証して返す
func pathID(c echo.Context, name string) (string, error) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", toHTTPError(errInvalidID)
	}
	return id, nil
}

// actor は認証ミドルウェアが格納した操作者を返す
func actor(c echo.Context) (application.Actor, error) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		return application.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "認証が必要です")
	}
	return a, nil
}

// bind はリクエストボディを読み込み、検証する
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	return c.Validate(req)
}
