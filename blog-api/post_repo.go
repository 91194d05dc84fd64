package main

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

const postDetailsColumns = `post.id, post.title, post.content, post.user_id, COUNT("like".id) AS num_likes`

type PostRepo struct {
	db *gorm.DB
}

func NewPostRepo(db *gorm.DB) *PostRepo {
	return &PostRepo{db: db}
}

func (repo *PostRepo) Create(ctx context.Context, post *Post) error {
	err := repo.db.WithContext(ctx).Create(post).Error
	if isForeignKeyViolation(err) {
		return fmt.Errorf("create post for user %d: %w", post.UserID, ErrDanglingReference)
	}
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// Update rewrites title and content only when caller owns the post. The
// ownership test is part of the UPDATE itself.
func (repo *PostRepo) Update(ctx context.Context, id, caller int64, title, content string) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Post{}).
			Where("id = ? AND user_id = ?", id, caller).
			Updates(map[string]interface{}{"title": title, "content": content})
		if res.Error != nil {
			return fmt.Errorf("update post %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ownershipMiss(tx, id)
		}
		return nil
	})
}

// Delete removes the post when caller owns it; likes go with it.
func (repo *PostRepo) Delete(ctx context.Context, id, caller int64) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, caller).Delete(&Post{})
		if res.Error != nil {
			return fmt.Errorf("delete post %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ownershipMiss(tx, id)
		}
		return nil
	})
}

// ownershipMiss explains why a conditional write touched no rows.
func ownershipMiss(tx *gorm.DB, id int64) error {
	var count int64
	if err := tx.Model(&Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("look up post %d: %w", id, err)
	}
	if count == 0 {
		return fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	return fmt.Errorf("post %d: %w", id, ErrForbidden)
}

// Get returns the post if it is public or caller owns it.
func (repo *PostRepo) Get(ctx context.Context, id, caller int64) (PostDetails, error) {
	var details PostDetails
	err := repo.db.WithContext(ctx).
		Model(&Post{}).
		Select(postDetailsColumns).
		Joins(`LEFT JOIN "like" ON "like".post_id = post.id`).
		Where("(post.private = ? OR post.user_id = ?) AND post.id = ?", VisibilityPublic, caller, id).
		Group("post.id").
		Take(&details).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return PostDetails{}, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return PostDetails{}, fmt.Errorf("get post %d: %w", id, err)
	}
	return details, nil
}

func (repo *PostRepo) ListPublic(ctx context.Context) ([]PostDetails, error) {
	posts := []PostDetails{}
	err := repo.db.WithContext(ctx).
		Model(&Post{}).
		Select(postDetailsColumns).
		Joins(`LEFT JOIN "like" ON "like".post_id = post.id`).
		Where("post.private = ?", VisibilityPublic).
		Group("post.id").
		Order("post.id").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list public posts: %w", err)
	}
	return posts, nil
}
