package main

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type LikeRepo struct {
	db *gorm.DB
}

func NewLikeRepo(db *gorm.DB) *LikeRepo {
	return &LikeRepo{db: db}
}

// Create always inserts a new row; liking twice yields two likes.
func (repo *LikeRepo) Create(ctx context.Context, like *Like) error {
	err := repo.db.WithContext(ctx).Create(like).Error
	if isForeignKeyViolation(err) {
		return fmt.Errorf("like post %d as user %d: %w", like.PostID, like.UserID, ErrDanglingReference)
	}
	if err != nil {
		return fmt.Errorf("create like: %w", err)
	}
	return nil
}

// Delete removes every like userID left on postID and reports how many.
func (repo *LikeRepo) Delete(ctx context.Context, postID, userID int64) (int64, error) {
	res := repo.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&Like{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete likes on post %d: %w", postID, res.Error)
	}
	return res.RowsAffected, nil
}
