package main

import (
	"encoding/json"
	"fmt"
	"time"
)

// Visibility controls who can read a post. It is persisted in the post.private
// column, where the stored value 1 means visible to everyone. The column name
// reads inverted; the stored values are kept so existing databases behave the same.
type Visibility int

const (
	VisibilityOwnerOnly Visibility = 0
	VisibilityPublic    Visibility = 1
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityOwnerOnly:
		return "owner_only"
	}
	return fmt.Sprintf("visibility(%d)", int(v))
}

func ParseVisibility(s string) (Visibility, error) {
	switch s {
	case "public":
		return VisibilityPublic, nil
	case "owner_only":
		return VisibilityOwnerOnly, nil
	}
	return 0, fmt.Errorf("unknown visibility %q", s)
}

// legacyPrivateFlag decodes the "private" request field, which clients send
// either as a number or as a boolean.
type legacyPrivateFlag Visibility

func (f *legacyPrivateFlag) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case bool:
		if v {
			*f = legacyPrivateFlag(VisibilityPublic)
		} else {
			*f = legacyPrivateFlag(VisibilityOwnerOnly)
		}
		return nil
	case float64:
		switch v {
		case 1:
			*f = legacyPrivateFlag(VisibilityPublic)
			return nil
		case 0:
			*f = legacyPrivateFlag(VisibilityOwnerOnly)
			return nil
		}
	}
	return fmt.Errorf("private must be 0, 1 or a boolean, got %s", string(data))
}

type User struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	Username  string    `gorm:"column:username;not null"`
	Email     string    `gorm:"column:email;not null"`
	Password  string    `gorm:"column:password;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (User) TableName() string { return "user" }

type Post struct {
	ID         int64      `gorm:"column:id;primaryKey"`
	Title      string     `gorm:"column:title;not null"`
	Content    string     `gorm:"column:content;not null"`
	UserID     int64      `gorm:"column:user_id"`
	Visibility Visibility `gorm:"column:private;not null"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
}

func (Post) TableName() string { return "post" }

type Like struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	PostID    int64     `gorm:"column:post_id"`
	UserID    int64     `gorm:"column:user_id"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (Like) TableName() string { return "like" }

// UserDetails is a user row annotated with the number of posts it owns.
type UserDetails struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	NumPosts  int64     `json:"num_posts"`
}

// PostDetails is a post row annotated with its like count.
type PostDetails struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	UserID   int64  `json:"user_id"`
	NumLikes int64  `json:"num_likes"`
}

type CreateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (req CreateUserRequest) validate() error {
	return requireFields(
		field{"username", req.Username != nil},
		field{"email", req.Email != nil},
		field{"password", req.Password != nil},
	)
}

type UpdateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

func (req UpdateUserRequest) validate() error {
	return requireFields(
		field{"username", req.Username != nil},
		field{"email", req.Email != nil},
	)
}

type CreatePostRequest struct {
	Title      *string            `json:"title"`
	Content    *string            `json:"content"`
	UserID     *int64             `json:"user_id"`
	Private    *legacyPrivateFlag `json:"private"`
	Visibility *string            `json:"visibility"`
}

func (req CreatePostRequest) validate() error {
	return requireFields(
		field{"title", req.Title != nil},
		field{"content", req.Content != nil},
		field{"user_id", req.UserID != nil},
		field{"private", req.Private != nil || req.Visibility != nil},
	)
}

// visibility prefers the explicit enumeration over the legacy flag.
func (req CreatePostRequest) visibility() (Visibility, error) {
	if req.Visibility != nil {
		v, err := ParseVisibility(*req.Visibility)
		if err != nil {
			return 0, badRequestError{msg: err.Error()}
		}
		return v, nil
	}
	return Visibility(*req.Private), nil
}

type UpdatePostRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (req UpdatePostRequest) validate() error {
	return requireFields(
		field{"title", req.Title != nil},
		field{"content", req.Content != nil},
	)
}

type CreateLikeRequest struct {
	PostID *int64 `json:"post_id"`
	UserID *int64 `json:"user_id"`
}

func (req CreateLikeRequest) validate() error {
	return requireFields(
		field{"post_id", req.PostID != nil},
		field{"user_id", req.UserID != nil},
	)
}

type LoginRequest struct {
	UserID   *int64  `json:"user_id"`
	Password *string `json:"password"`
}

func (req LoginRequest) validate() error {
	return requireFields(
		field{"user_id", req.UserID != nil},
		field{"password", req.Password != nil},
	)
}

type LoginResponse struct {
	UserID int64  `json:"user_id"`
	Token  string `json:"token,omitempty"`
}
