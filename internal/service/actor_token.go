package service

import (
	"errors"
	"strings"
	"time"

	"github.com/orderflow-next/internal/config"
	"github.com/orderflow-next/internal/constants"

	"github.com/golang-jwt/jwt/v5"
)

var ErrActorTokenInvalid = errors.New("invalid actor token")

// ActorClaims 操作者令牌声明
type ActorClaims struct {
	Role    string `json:"role"`
	ActorID uint   `json:"actor_id"`
	StoreID uint   `json:"store_id,omitempty"`
	jwt.RegisteredClaims
}

// ActorTokenService 操作者令牌签发与校验
// 只负责身份透传，不处理登录与密码。
type ActorTokenService struct {
	secret      []byte
	issuer      string
	expireHours int
}

// NewActorTokenService 创建令牌服务
func NewActorTokenService(cfg config.JWTConfig) *ActorTokenService {
	expireHours := cfg.ExpireHours
	if expireHours <= 0 {
		expireHours = 12
	}
	return &ActorTokenService{
		secret:      []byte(cfg.SecretKey),
		issuer:      strings.TrimSpace(cfg.Issuer),
		expireHours: expireHours,
	}
}

// Issue 签发令牌；员工令牌必须绑定门店
func (s *ActorTokenService) Issue(role string, actorID, storeID uint) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, errors.New("actor jwt secret missing")
	}
	if actorID == 0 || !validActorRole(role) {
		return "", time.Time{}, ErrActorTokenInvalid
	}
	if role == constants.ActorRoleStaff && storeID == 0 {
		return "", time.Time{}, ErrActorTokenInvalid
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(s.expireHours) * time.Hour)
	claims := ActorClaims{
		Role:    role,
		ActorID: actorID,
		StoreID: storeID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Parse 校验并解析令牌
func (s *ActorTokenService) Parse(tokenString string) (*ActorClaims, error) {
	if len(s.secret) == 0 {
		return nil, ErrActorTokenInvalid
	}
	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		options = append(options, jwt.WithIssuer(s.issuer))
	}
	claims := &ActorClaims{}
	token, err := jwt.NewParser(options...).ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrActorTokenInvalid
	}
	if claims.ActorID == 0 || !validActorRole(claims.Role) {
		return nil, ErrActorTokenInvalid
	}
	if claims.Role == constants.ActorRoleStaff && claims.StoreID == 0 {
		return nil, ErrActorTokenInvalid
	}
	return claims, nil
}

func validActorRole(role string) bool {
	return role == constants.ActorRoleStaff || role == constants.ActorRoleCustomer
}
