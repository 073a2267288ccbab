package models

import "time"

type User struct {
	ID        string     `gorm:"primaryKey;size:5" bson:"_id" json:"id"`
	Email     string     `gorm:"uniqueIndex;size:255;not null" bson:"email" json:"email"`
	Name      string     `gorm:"size:255;not null" bson:"name" json:"name"`
	Password  string     `gorm:"size:255;not null" bson:"password" json:"-"`
	IsAdmin   bool       `gorm:"not null;default:false" bson:"is_admin" json:"isAdmin"`
	IsUser    bool       `gorm:"not null;default:true" bson:"is_user" json:"isUser"`
	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updatedAt"`
	DeletedAt *time.Time `gorm:"index" bson:"deleted_at" json:"deletedAt"`
}

// UserSummary is the public slice of a user embedded in project and task
// responses. It maps onto the users table so GORM can preload it; column tags
// must stay in step with User or migrations will alter the shared columns.
type UserSummary struct {
	ID    string `gorm:"primaryKey;size:5" bson:"_id" json:"id"`
	Name  string `gorm:"size:255;not null" bson:"name" json:"name"`
	Email string `gorm:"uniqueIndex;size:255;not null" bson:"email" json:"email"`
}

func (UserSummary) TableName() string { return "users" }

func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Deleted reports whether the account has been soft-deleted.
func (u *User) Deleted() bool {
	return u.DeletedAt != nil
}
