package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-seat-booking/internal/application"
	"github.com/sanosuguru/go-seat-booking/internal/config"
	"github.com/sanosuguru/go-seat-booking/internal/domain/user"
)

const (
	actorKey  = "actor"
	claimsKey = "claims"
)

// Claims はアクセストークンのクレーム
// sub にユーザーID、role に権限が入る
// email と preferred_username は初回アクセス時のユーザー登録に使う
type Claims struct {
	Role              string `json:"role"`
	Email             string `json:"email,omitempty"`
	Name              string `json:"name,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuth は Bearer トークンを検証し、操作者をコンテキストに格納する
// トークンの発行は外部の認証基盤が行う
func JWTAuth(cfg config.JWTConfig) echo.MiddlewareFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)
	secret := []byte(cfg.Secret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証トークンが必要です")
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			var claims Claims
			tok, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
				return secret, nil
			})
			if err != nil || !tok.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証トークンが無効です")
			}
			if _, err := uuid.Parse(claims.Subject); err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証トークンが無効です")
			}

			role := user.Role(claims.Role)
			if role == "" {
				role = user.RoleUser
			}
			if !role.Valid() {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証トークンが無効です")
			}

			c.Set(actorKey, application.Actor{UserID: claims.Subject, Role: role})
			c.Set(claimsKey, &claims)
			return next(c)
		}
	}
}

// UserProvisioner は認証済みユーザーを登録する
type UserProvisioner interface {
	EnsureUser(ctx context.Context, in application.ProvisionInput) (*user.User, error)
}

// ProvisionUser は JWTAuth の後段で、未登録のユーザーを作成する
func ProvisionUser(p UserProvisioner) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := ActorFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証トークンが必要です")
			}
			in := application.ProvisionInput{ID: actor.UserID, Role: actor.Role}
			if claims, ok := c.Get(claimsKey).(*Claims); ok {
				in.Email = claims.Email
				in.Login = claims.PreferredUsername
				if claims.Name != "" {
					name := claims.Name
					in.FirstName = &name
				}
			}

			_, err := p.EnsureUser(c.Request().Context(), in)
			switch {
			case err == nil:
				return next(c)
			case errors.Is(err, user.ErrEmailAlreadyExists), errors.Is(err, user.ErrLoginAlreadyExists):
				return echo.NewHTTPError(http.StatusConflict, err.Error())
			case errors.Is(err, user.ErrInvalidEmail), errors.Is(err, user.ErrLoginRequired):
				return echo.NewHTTPError(http.StatusUnauthorized, "認証トークンが無効です")
			default:
				return echo.NewHTTPError(http.StatusInternalServerError, "ユーザー登録に失敗しました").SetInternal(err)
			}
		}
	}
}

// RequireRole は操作者が roles のいずれかを持つ場合のみ通す
func RequireRole(roles ...user.Role) echo.MiddlewareFunc {
	allowed := make(map[user.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := ActorFrom(c)
			if !ok || !allowed[actor.Role] {
				return echo.NewHTTPError(http.StatusForbidden, "権限がありません")
			}
			return next(c)
		}
	}
}

// ActorFrom は JWTAuth が格納した操作者を返す
func ActorFrom(c echo.Context) (application.Actor, bool) {
	actor, ok := c.Get(actorKey).(application.Actor)
	return actor, ok
}

// SetActor はコンテキストに操作者を格納する（テスト用）
func SetActor(c echo.Context, actor application.Actor) {
	c.Set(actorKey, actor)
}
