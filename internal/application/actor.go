package application

import "github.com/sanosuguru/go-seat-booking/internal/domain/user"

// Actor は操作を行う認証済みユーザー
type Actor struct {
	UserID string
	Role   user.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == user.RoleAdmin
}

// CanAccess は ownerID のリソースを操作できるかを返す
func (a Actor) CanAccess(ownerID string) bool {
	return a.IsAdmin() || a.UserID == ownerID
}
