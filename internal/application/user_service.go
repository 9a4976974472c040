package application

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-seat-booking/internal/domain/user"
	"github.com/sanosuguru/go-seat-booking/internal/pkg/logger"
)

// placeholderEmailDomain はメールアドレスを持たないトークン向けの予約済みドメイン
const placeholderEmailDomain = "users.invalid"

// ProvisionInput は認証済みトークンから得たユーザー情報
type ProvisionInput struct {
	ID        string
	Email     string
	Login     string
	FirstName *string
	Role      user.Role
}

// UserService はユーザーの登録と管理を行う
type UserService struct {
	userRepo user.Repository
}

func NewUserService(ur user.Repository) *UserService {
	return &UserService{userRepo: ur}
}

func (s *UserService) GetUser(ctx context.Context, id string) (*user.User, error) {
	return s.userRepo.GetByID(ctx, nil, id)
}

func (s *UserService) ListUsers(ctx context.Context) ([]*user.User, error) {
	return s.userRepo.List(ctx)
}

// VerifyUser は本人確認済みにする
// 確認済みのユーザーに対しては書き込みを行わない
func (s *UserService) VerifyUser(ctx context.Context, id string) (*user.User, error) {
	u, err := s.userRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if !u.Verify() {
		return u, nil
	}
	if err := s.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}
	logger.Info("ユーザーを本人確認済みにしました", zap.String("user_id", u.ID))
	return u, nil
}

// UpdateUser はユーザーを部分更新する
// メールアドレスは他のユーザーと重複できない
func (s *UserService) UpdateUser(ctx context.Context, id string, patch user.Patch) (*user.User, error) {
	u, err := s.userRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if patch.Email != nil && *patch.Email != u.Email {
		other, err := s.userRepo.GetByEmail(ctx, *patch.Email)
		switch {
		case err == nil && other.ID != u.ID:
			return nil, user.ErrEmailAlreadyExists
		case err != nil && !errors.Is(err, user.ErrUserNotFound):
			return nil, err
		}
	}
	if err := u.Apply(patch); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// EnsureUser は認証済みユーザーを取得し、未登録であれば作成する
// 作成されたユーザーは未確認の状態になる
func (s *UserService) EnsureUser(ctx context.Context, in ProvisionInput) (*user.User, error) {
	u, err := s.userRepo.GetByID(ctx, nil, in.ID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return nil, err
	}

	email := in.Email
	if email == "" {
		email = in.ID + "@" + placeholderEmailDomain
	}
	login := in.Login
	if login == "" {
		login = in.ID
	}
	u = user.NewUser(in.ID, email, login, in.Role)
	u.FirstName = in.FirstName
	if err := u.Validate(); err != nil {
		return nil, err
	}

	created, err := s.userRepo.CreateIfAbsent(ctx, u)
	if errors.Is(err, user.ErrLoginAlreadyExists) && u.Login != in.ID {
		// ログイン名が他のユーザーと重複する場合はIDで登録する
		u.Login = in.ID
		created, err = s.userRepo.CreateIfAbsent(ctx, u)
	}
	if err != nil {
		return nil, err
	}
	if created {
		logger.FromContext(ctx).Info("ユーザーを登録しました",
			zap.String("user_id", u.ID),
			zap.String("login", u.Login),
			zap.String("role", string(u.Role)),
		)
		return u, nil
	}
	// 同時リクエストが先に登録した
	return s.userRepo.GetByID(ctx, nil, in.ID)
}

// UpdateProfile は本人によるプロフィール更新を行う
// 権限と本人確認の状態は変更できない
func (s *UserService) UpdateProfile(ctx context.Context, id string, patch user.Patch) (*user.User, error) {
	patch.Role = nil
	patch.Verified = nil
	return s.UpdateUser(ctx, id, patch)
}

// DeleteUser はユーザーを削除する
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("ユーザーを削除しました", zap.String("user_id", id))
	return nil
}
