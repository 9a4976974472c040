package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-seat-booking/internal/application"
	"github.com/sanosuguru/go-seat-booking/internal/domain/reservation"
	"github.com/sanosuguru/go-seat-booking/internal/domain/ticket"
	"github.com/sanosuguru/go-seat-booking/internal/domain/user"
)

const ticketID = "5e6f7a8b-9c0d-4e1f-a2b3-c4d5e6f7a8b9"

func sampleUser() *user.User {
	return &user.User{ID: userID, Email: "taro@example.com", Login: "taro", Role: user.RoleUser}
}

func sampleTicket() *ticket.Ticket {
	return &ticket.Ticket{
		ID: ticketID, UserID: userID, Theme: ticket.ThemeFailure,
		Message: "モニターが映りません", Status: ticket.StatusActive,
		MadeOn: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

type adminMocks struct {
	reservations *MockReservationService
	users        *MockUserService
	tickets      *MockTicketService
	handler      *AdminHandler
}

func newAdminMocks() adminMocks {
	m := adminMocks{
		reservations: new(MockReservationService),
		users:        new(MockUserService),
		tickets:      new(MockTicketService),
	}
	m.handler = NewAdminHandler(m.reservations, m.users, m.tickets)
	return m
}

func TestAdminHandler_CheckIn(t *testing.T) {
	tests := []struct {
		name     string
		result   *reservation.Reservation
		err      error
		wantCode int
	}{
		{"future の予約を active にする", &reservation.Reservation{ID: resID, Status: reservation.StatusActive}, nil, http.StatusOK},
		{"本人確認が未完了なら424", nil, user.ErrUserNotVerified, http.StatusFailedDependency},
		{"チェックイン済みなら409", nil, reservation.ErrReservationAlreadyActive, http.StatusConflict},
		{"存在しない予約は404", nil, reservation.ErrReservationNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newAdminMocks()
			if tt.result != nil {
				m.reservations.On("CheckIn", mock.Anything, resID).Return(tt.result, nil)
			} else {
				m.reservations.On("CheckIn", mock.Anything, resID).Return(nil, tt.err)
			}

			rec := serve(http.MethodPost, "/check-in/:id", "/check-in/"+resID, "", &asAdmin, m.handler.CheckIn)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestAdminHandler_Reservations(t *testing.T) {
	t.Run("全予約を座席名つきで返す", func(t *testing.T) {
		m := newAdminMocks()
		m.reservations.On("ListAllReservations", mock.Anything).Return([]*reservation.View{
			{Reservation: sampleReservation(), SeatName: "A-12"},
		}, nil)

		rec := serve(http.MethodGet, "/reservations", "/reservations", "", &asAdmin, m.handler.ListReservations)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"seat_name":"A-12"`)
	})

	t.Run("予約を削除する", func(t *testing.T) {
		m := newAdminMocks()
		m.reservations.On("DeleteReservation", mock.Anything, resID).Return(nil)

		rec := serve(http.MethodDelete, "/reservations/:id", "/reservations/"+resID, "", &asAdmin, m.handler.DeleteReservation)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("存在しない予約の削除は404", func(t *testing.T) {
		m := newAdminMocks()
		m.reservations.On("DeleteReservation", mock.Anything, resID).Return(reservation.ErrReservationNotFound)

		rec := serve(http.MethodDelete, "/reservations/:id", "/reservations/"+resID, "", &asAdmin, m.handler.DeleteReservation)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("状態同期を即時実行する", func(t *testing.T) {
		m := newAdminMocks()
		m.reservations.On("ReconcileStatuses", mock.Anything).Return(3, nil)

		rec := serve(http.MethodPost, "/reconcile", "/reconcile", "", &asAdmin, m.handler.Reconcile)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"updated":3}`, rec.Body.String())
	})
}

func TestAdminHandler_Users(t *testing.T) {
	t.Run("ユーザー一覧を返す", func(t *testing.T) {
		m := newAdminMocks()
		m.users.On("ListUsers", mock.Anything).Return([]*user.User{sampleUser()}, nil)

		rec := serve(http.MethodGet, "/users", "/users", "", &asAdmin, m.handler.ListUsers)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"login":"taro"`)
	})

	t.Run("本人確認済みにする", func(t *testing.T) {
		m := newAdminMocks()
		verified := sampleUser()
		verified.Verified = true
		m.users.On("VerifyUser", mock.Anything, userID).Return(verified, nil)

		rec := serve(http.MethodPost, "/users/:id/verify", "/users/"+userID+"/verify", "", &asAdmin, m.handler.VerifyUser)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"verified":true`)
	})

	t.Run("メールアドレスの重複は409", func(t *testing.T) {
		m := newAdminMocks()
		m.users.On("UpdateUser", mock.Anything, userID, mock.MatchedBy(func(p user.Patch) bool {
			return p.Email != nil && *p.Email == "hanako@example.com"
		})).Return(nil, user.ErrEmailAlreadyExists)

		rec := serve(http.MethodPatch, "/users/:id", "/users/"+userID, `{"email":"hanako@example.com"}`, &asAdmin, m.handler.UpdateUser)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("権限を変更する", func(t *testing.T) {
		m := newAdminMocks()
		admin := user.RoleAdmin
		m.users.On("UpdateUser", mock.Anything, userID, user.Patch{Role: &admin}).Return(sampleUser(), nil)

		rec := serve(http.MethodPatch, "/users/:id", "/users/"+userID, `{"role":"admin"}`, &asAdmin, m.handler.UpdateUser)

		assert.Equal(t, http.StatusOK, rec.Code)
		m.users.AssertExpectations(t)
	})

	t.Run("不正なメールアドレスは400", func(t *testing.T) {
		m := newAdminMocks()

		rec := serve(http.MethodPatch, "/users/:id", "/users/"+userID, `{"email":"not-an-email"}`, &asAdmin, m.handler.UpdateUser)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAdminHandler_Tickets(t *testing.T) {
	t.Run("全問い合わせを返す", func(t *testing.T) {
		m := newAdminMocks()
		m.tickets.On("ListAllTickets", mock.Anything).Return([]*ticket.Ticket{sampleTicket()}, nil)

		rec := serve(http.MethodGet, "/tickets", "/tickets", "", &asAdmin, m.handler.ListTickets)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("状態を変更する", func(t *testing.T) {
		m := newAdminMocks()
		closed := sampleTicket()
		closed.Status = ticket.StatusClosed
		m.tickets.On("UpdateTicketStatus", mock.Anything, ticketID, ticket.StatusClosed).Return(closed, nil)

		rec := serve(http.MethodPatch, "/tickets/:id/status", "/tickets/"+ticketID+"/status", `{"status":"closed"}`, &asAdmin, m.handler.UpdateTicketStatus)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"closed"`)
	})

	t.Run("未知の状態は400", func(t *testing.T) {
		m := newAdminMocks()

		rec := serve(http.MethodPatch, "/tickets/:id/status", "/tickets/"+ticketID+"/status", `{"status":"pending"}`, &asAdmin, m.handler.UpdateTicketStatus)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		m.tickets.AssertNotCalled(t, "UpdateTicketStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTicketHandler(t *testing.T) {
	t.Run("操作者のIDで問い合わせを作成する", func(t *testing.T) {
		svc := new(MockTicketService)
		svc.On("CreateTicket", mock.Anything, application.CreateTicketInput{
			UserID: userID, Theme: ticket.ThemeFailure, Message: "モニターが映りません",
		}).Return(sampleTicket(), nil)
		h := NewTicketHandler(svc)

		rec := serve(http.MethodPost, "/tickets", "/tickets", `{"theme":"failure","message":"モニターが映りません"}`, &asUser, h.Create)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"seat_name":null`)
		svc.AssertExpectations(t)
	})

	t.Run("本文がない場合は400", func(t *testing.T) {
		h := NewTicketHandler(new(MockTicketService))

		rec := serve(http.MethodPost, "/tickets", "/tickets", `{"theme":"wish"}`, &asUser, h.Create)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("自分の問い合わせ一覧", func(t *testing.T) {
		svc := new(MockTicketService)
		svc.On("ListUserTickets", mock.Anything, userID).Return([]*ticket.Ticket{sampleTicket()}, nil)
		h := NewTicketHandler(svc)

		rec := serve(http.MethodGet, "/tickets/my", "/tickets/my", "", &asUser, h.ListMine)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestUserHandler_Me(t *testing.T) {
	svc := new(MockUserService)
	svc.On("GetUser", mock.Anything, userID).Return(sampleUser(), nil)
	h := NewUserHandler(svc)

	rec := serve(http.MethodGet, "/users/me", "/users/me", "", &asUser, h.Me)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"taro@example.com"`)
}
