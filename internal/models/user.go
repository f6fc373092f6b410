package models

import (
	"InvestxApi/cmd/db"
	"InvestxApi/pkg/logger"
	"time"
)

type User struct {
	ID           int64  `gorm:"primaryKey,autoIncrement"`
	Nickname     string `gorm:"unique"`
	Password     string
	Balance      float64
	ReferredByID *int64 `gorm:"index"`
	IsAdmin      bool
	CreatedAt    time.Time
}

func CheckIfUserExistsByID(userID int64) (bool, error) {
	var exists bool
	err := db.DB.Model(&User{}).
		Select("count(*) > 0").
		Where("id = ?", userID).
		Scan(&exists).Error
	if err != nil {
		return true, logger.WrapError(err, "")
	}

	return exists, nil
}

func CheckIfUserExistsByNickname(nn string) (bool, error) {
	var exists bool

	err := db.DB.Model(&User{}).
		Select("count(*) > 0").
		Where("nickname = ?", nn).
		Scan(&exists).Error
	if err != nil {
		return true, logger.WrapError(err, "")
	}

	return exists, nil
}

func GetUserWithPassword(nickname string) (*User, error) {
	var user User

	err := db.DB.
		Where("nickname = ?", nickname).
		First(&user).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return &user, nil
}

func IsUserAdmin(userID int64) (bool, error) {
	var isAdmin bool
	err := db.DB.Model(&User{}).
		Select("is_admin").
		Where("id = ?", userID).
		Scan(&isAdmin).Error
	if err != nil {
		return false, logger.WrapError(err, "")
	}

	return isAdmin, nil
}
