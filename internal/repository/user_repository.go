package repository

import (
	"book_platform_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

// FindByIDWithRoles preloads roles and their permissions so permission
// checks can run as pure predicates over the returned snapshot.
func (r *UserRepository) FindByIDWithRoles(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.Preload("Roles.Permissions").First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("username = ?", username).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

func (r *UserRepository) UpdatePassword(userID uint, passwordHash string) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("password_hash", passwordHash).
		Error
}

// FindAllWithProgress returns every user with their progress row preloaded,
// for the admin reporting view.
func (r *UserRepository) FindAllWithProgress() ([]model.User, error) {
	var users []model.User
	err := r.DB.Preload("Progress").Find(&users).Error
	return users, err
}
