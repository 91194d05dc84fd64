package main

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts user and fills in its id and creation time.
func (repo *UserRepo) Create(ctx context.Context, user *User) error {
	if err := repo.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (repo *UserRepo) Update(ctx context.Context, id int64, username, email string) error {
	res := repo.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"username": username, "email": email})
	if res.Error != nil {
		return fmt.Errorf("update user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}

func (repo *UserRepo) Get(ctx context.Context, id int64) (UserDetails, error) {
	var details UserDetails
	err := repo.db.WithContext(ctx).
		Model(&User{}).
		Select(`"user".id, "user".username, "user".email, "user".created_at, COUNT(post.id) AS num_posts`).
		Joins(`LEFT JOIN post ON post.user_id = "user".id`).
		Where(`"user".id = ?`, id).
		Group(`"user".id`).
		Take(&details).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return UserDetails{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return UserDetails{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return details, nil
}

// Delete removes the user; the store cascades to its posts and likes.
func (repo *UserRepo) Delete(ctx context.Context, id int64) error {
	res := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&User{})
	if res.Error != nil {
		return fmt.Errorf("delete user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}

// Credentials loads the stored password hash for a login attempt.
func (repo *UserRepo) Credentials(ctx context.Context, id int64) (User, error) {
	var user User
	err := repo.db.WithContext(ctx).
		Select("id", "password").
		Where("id = ?", id).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return User{}, fmt.Errorf("load credentials for user %d: %w", id, err)
	}
	return user, nil
}
