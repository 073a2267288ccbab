package models

import "time"

type Comment struct {
	ID        string    `gorm:"primaryKey;size:5" bson:"_id" json:"id"`
	Content   string    `gorm:"type:text;not null" bson:"content" json:"content"`
	TaskID    string    `gorm:"size:5;not null;index" bson:"task_id" json:"taskId"`
	UserID    string    `gorm:"size:5;not null;index" bson:"user_id" json:"userId"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
