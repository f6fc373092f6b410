package middleware

import (
	"InvestxApi/pkg/logger"
	"InvestxApi/pkg/redis"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	SessionCookieName = "investx_session"
	SessionDuration   = 10 * time.Hour

	sessionKeyPrefix = "session:"
)

var jwtKey string

func init() {
	var ok bool
	jwtKey, ok = os.LookupEnv("JWT_KEY")
	if !ok {
		logger.Warn("JWT_KEY not set, using the built-in development key")
		jwtKey = "investx-dev-key"
	}
}

type sessionClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenNew mints a session token for the user. The returned session id is
// also the token's jti claim, so the Redis record and the cookie can be
// matched up again on every request.
func TokenNew(userID int64) (token string, sessionID string, err error) {
	sessionID = uuid.NewString()

	claims := sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(SessionDuration)),
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtKey))
	if err != nil {
		return "", "", logger.WrapError(err, "")
	}

	return token, sessionID, nil
}

// TokenCheck validates a session token and returns the user id and session
// id baked into it.
func TokenCheck(token string) (int64, string, error) {
	var claims sessionClaims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected token signing method")
		}
		return []byte(jwtKey), nil
	})
	if err != nil {
		return 0, "", err
	}
	if !parsed.Valid {
		return 0, "", errors.New("token not valid")
	}

	return claims.UserID, claims.ID, nil
}

// NewSession mints a token, stores the session record in Redis and sets the
// session cookie on the response.
func NewSession(c *gin.Context, rds *redis.RedisService, userID int64) error {
	token, sessionID, err := TokenNew(userID)
	if err != nil {
		return logger.WrapError(err, "")
	}

	err = rds.SetKey(c.Request.Context(), sessionKeyPrefix+sessionID,
		strconv.FormatInt(userID, 10), SessionDuration)
	if err != nil {
		return logger.WrapError(err, "")
	}

	c.SetCookie(SessionCookieName, token, int(SessionDuration.Seconds()), "/", "", false, true)
	return nil
}

// DestroySession deletes the Redis session record and clears the cookie.
// A missing or mangled cookie is not an error, the cookie is cleared anyway.
func DestroySession(c *gin.Context, rds *redis.RedisService) error {
	defer c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)

	token, err := c.Cookie(SessionCookieName)
	if err != nil {
		return nil
	}

	_, sessionID, err := TokenCheck(token)
	if err != nil {
		return nil
	}

	if err := rds.DeleteKey(c.Request.Context(), sessionKeyPrefix+sessionID); err != nil {
		return logger.WrapError(err, "")
	}

	return nil
}

// SessionExists reports whether the session record for the given session id
// is still present in Redis.
func SessionExists(c *gin.Context, rds *redis.RedisService, sessionID string) (bool, error) {
	exists, err := rds.KeyExists(c.Request.Context(), sessionKeyPrefix+sessionID)
	if err != nil {
		return false, logger.WrapError(err, "")
	}

	return exists, nil
}
