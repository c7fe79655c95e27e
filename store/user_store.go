package store

import (
	"github.com/danuarts/takeout-app/models"
)

func (s *GormStore) CreateUser(user *models.User) error {
	return s.DB.Create(user).Error
}

func (s *GormStore) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
