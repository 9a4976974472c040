package user

import (
	"strings"
	"time"
)

// Role はユーザーの権限を表す
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid は定義済みの権限かを返す
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User はユーザーエンティティを表す
// 認証情報は外部の認証基盤が管理する
type User struct {
	ID         string
	Email      string
	Login      string
	FirstName  *string
	LastName   *string
	Role       Role
	Verified   bool
	TelegramID *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewUser は未確認のユーザーを生成する
func NewUser(id, email, login string, role Role) *User {
	now := time.Now()
	if role == "" {
		role = RoleUser
	}
	return &User{
		ID:        id,
		Email:     strings.TrimSpace(email),
		Login:     strings.TrimSpace(login),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Patch はユーザーの部分更新を表す
type Patch struct {
	Email     *string
	FirstName *string
	LastName  *string
	Role      *Role
	Verified  *bool
}

// IsAdmin は管理者かを返す
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Verify は本人確認済みにする
// 既に確認済みの場合は何もしない
func (u *User) Verify() bool {
	if u.Verified {
		return false
	}
	u.Verified = true
	u.UpdatedAt = time.Now()
	return true
}

// Apply は部分更新を適用する
func (u *User) Apply(p Patch) error {
	next := *u
	if p.Email != nil {
		next.Email = strings.TrimSpace(*p.Email)
	}
	if p.FirstName != nil {
		next.FirstName = p.FirstName
	}
	if p.LastName != nil {
		next.LastName = p.LastName
	}
	if p.Role != nil {
		next.Role = *p.Role
	}
	if p.Verified != nil {
		next.Verified = *p.Verified
	}
	if err := next.Validate(); err != nil {
		return err
	}
	next.UpdatedAt = time.Now()
	*u = next
	return nil
}

// Validate はユーザーの検証を行う
func (u *User) Validate() error {
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}
	if u.Login == "" {
		return ErrLoginRequired
	}
	if !u.Role.Valid() {
		return ErrInvalidRole
	}
	return nil
}
