package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pribylovaa/profiles-service/internal/config"
)

// ClaimUserID — claim с идентификатором пользователя.
const ClaimUserID = "user_id"

// JWTManager выпускает и проверяет access-токены (HMAC).
type JWTManager struct {
	secret []byte
	method jwt.SigningMethod
	leeway time.Duration
	now    func() time.Time
}

// NewJWTManager ожидает провалидированную конфигурацию (HS256/HS384/HS512).
func NewJWTManager(cfg config.AuthConfig) *JWTManager {
	method := jwt.GetSigningMethod(cfg.Algorithm)
	if method == nil {
		method = jwt.SigningMethodHS256
	}

	return &JWTManager{
		secret: []byte(cfg.JWTSecret),
		method: method,
		leeway: cfg.Leeway,
		now:    time.Now,
	}
}

// CreateAccessToken выпускает токен с claim user_id на срок ttl.
func (m *JWTManager) CreateAccessToken(userID int64, ttl time.Duration) (string, error) {
	const op = "auth/jwt/CreateAccessToken"

	now := m.now().UTC()
	claims := jwt.MapClaims{
		ClaimUserID: userID,
		"sub":       strconv.FormatInt(userID, 10),
		"iat":       jwt.NewNumericDate(now),
		"exp":       jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// DecodeAccessToken проверяет подпись, алгоритм и срок действия и возвращает claims.
// Ошибки: ErrTokenExpired, ErrInvalidToken.
func (m *JWTManager) DecodeAccessToken(tokenStr string) (jwt.MapClaims, error) {
	const op = "auth/jwt/DecodeAccessToken"

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithLeeway(m.leeway),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
		jwt.WithJSONNumber(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return nil, fmt.Errorf("%s: %w: %v", op, ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return claims, nil
}

// UserIDFromClaims извлекает положительный целый user_id
// (число или строка с числом).
func UserIDFromClaims(claims jwt.MapClaims) (int64, error) {
	const op = "auth/jwt/UserIDFromClaims"

	raw, ok := claims[ClaimUserID]
	if !ok || raw == nil {
		return 0, fmt.Errorf("%s: %w", op, ErrMissingClaim)
	}

	var (
		id  int64
		err error
	)

	switch v := raw.(type) {
	case json.Number:
		id, err = v.Int64()
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt64 {
			err = fmt.Errorf("non-integer value %v", v)
		}
		id = int64(v)
	case int64:
		id = v
	case int:
		id = int64(v)
	case string:
		id, err = strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	default:
		err = fmt.Errorf("unexpected type %T", raw)
	}

	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s: %w", op, ErrMissingClaim)
	}

	return id, nil
}
