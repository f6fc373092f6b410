package middleware

import (
	"InvestxApi/internal/models"
	"InvestxApi/pkg/logger"
	"InvestxApi/pkg/redis"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const ContextUserIDKey = "user_id"

func AuthMiddleware(rds *redis.RedisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil {
			c.JSON(401, gin.H{"error": "User not authorized"})
			c.Abort()
			return
		}

		userID, sessionID, err := TokenCheck(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.AbortWithStatus(401)
				return
			}
			logger.Error("%v", err)
			c.AbortWithStatus(400)
			return
		}

		// a token outliving its Redis record means the user logged out
		active, err := SessionExists(c, rds, sessionID)
		if err != nil {
			logger.Error("%v", err)
			c.AbortWithStatus(500)
			return
		}
		if !active {
			c.JSON(401, gin.H{"error": "User not authorized"})
			c.Abort()
			return
		}

		// check if user in database
		exists, err := models.CheckIfUserExistsByID(userID)
		if err != nil {
			logger.Error("%v", err)
			c.AbortWithStatus(500)
			return
		}

		// call c.Next if user in database
		// else response with 401
		if exists {
			c.Set(ContextUserIDKey, userID)
			c.Next()
			return
		} else {
			c.JSON(401, gin.H{"error": "User not authorized"})
			c.Abort()
			return
		}
	}
}

// AdminMiddleware gates admin routes, it expects AuthMiddleware to have run.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := GetUserIDFromGinContext(c)
		if err != nil {
			logger.Error("%v", err)
			c.AbortWithStatus(500)
			return
		}

		isAdmin, err := models.IsUserAdmin(userID)
		if err != nil {
			logger.Error("%v", err)
			c.AbortWithStatus(500)
			return
		}

		if !isAdmin {
			c.JSON(403, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}

func GetUserIDFromGinContext(c *gin.Context) (int64, error) {
	// Get user_id from middleware
	userIDAny, ok := c.Get(ContextUserIDKey)
	if !ok {
		return 0, logger.WrapError(errors.New("user_id not in GIN context"), "")
	}

	userIDInt, ok := userIDAny.(int64)
	if !ok {
		return 0, logger.WrapError(errors.New("unable to cast user_id value to int"), "")
	}

	return userIDInt, nil
}
