package service

import (
	"InvestxApi/cmd/db"
	"InvestxApi/internal/middleware"
	"InvestxApi/internal/models"
	"InvestxApi/pkg/logger"
	"InvestxApi/pkg/redis"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var validate *validator.Validate

type registerInput struct {
	Nickname     string `json:"nickname" validate:"required,min=3,max=32"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
	ReferralCode string `json:"referral_code"`
}

func (i *registerInput) Validate() error {
	validate = validator.New()
	return validate.Struct(i)
}

type loginInput struct {
	Nickname string `json:"nickname" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (i *loginInput) Validate() error {
	validate = validator.New()
	return validate.Struct(i)
}

func Register(c *gin.Context, rds *redis.RedisService) {
	var input registerInput

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Unable to unmarshal body"})
		return
	}

	if err := input.Validate(); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	exists, err := models.CheckIfUserExistsByNickname(input.Nickname)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}
	if exists {
		c.JSON(409, gin.H{"error": "User with this nickname already exists"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	user := models.User{
		Nickname: input.Nickname,
		Password: string(hash),
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		// a referral code is the referrer's user id; a code that does
		// not resolve to an existing user is ignored
		if input.ReferralCode != "" {
			if referrerID, err := strconv.ParseInt(input.ReferralCode, 10, 64); err == nil {
				var referrerExists bool
				err = tx.Model(&models.User{}).
					Select("count(*) > 0").
					Where("id = ?", referrerID).
					Scan(&referrerExists).Error
				if err != nil {
					return logger.WrapError(err, "")
				}

				if referrerExists {
					user.ReferredByID = &referrerID
				}
			}
		}

		if err := tx.Create(&user).Error; err != nil {
			return logger.WrapError(err, "")
		}

		if user.ReferredByID != nil {
			if err := tx.Create(&models.UserReferral{
				ReferrerID:       *user.ReferredByID,
				ReferredID:       user.ID,
				ReferredNickname: user.Nickname,
				IsActive:         true,
			}).Error; err != nil {
				return logger.WrapError(err, "")
			}
		}

		return nil
	})
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	if err := middleware.NewSession(c, rds, user.ID); err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, gin.H{"id": user.ID, "nickname": user.Nickname})
}

func Login(c *gin.Context, rds *redis.RedisService) {
	var input loginInput

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Unable to unmarshal body"})
		return
	}

	if err := input.Validate(); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	user, err := models.GetUserWithPassword(input.Nickname)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid nickname or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		c.JSON(400, gin.H{"error": "Invalid nickname or password"})
		return
	}

	if err := middleware.NewSession(c, rds, user.ID); err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, gin.H{"id": user.ID, "nickname": user.Nickname})
}

func Logout(c *gin.Context, rds *redis.RedisService) {
	if err := middleware.DestroySession(c, rds); err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.Status(200)
}
