package models

import "time"

type Task struct {
	ID          string       `gorm:"primaryKey;size:5" bson:"_id" json:"id"`
	Title       string       `gorm:"size:255;not null" bson:"title" json:"title"`
	Description *string      `bson:"description" json:"description"`
	Status      TaskStatus   `gorm:"size:16;not null;index" bson:"status" json:"status"`
	Priority    TaskPriority `gorm:"size:16;not null" bson:"priority" json:"priority"`
	DueDate     *time.Time   `bson:"due_date" json:"dueDate"`
	UserID      string       `gorm:"size:5;not null;index" bson:"user_id" json:"userId"`
	User        *UserSummary `gorm:"foreignKey:UserID" bson:"-" json:"user,omitempty"`
	CreatedAt   time.Time    `gorm:"index" bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time    `bson:"updated_at" json:"updatedAt"`
	DeletedAt   *time.Time   `gorm:"index" bson:"deleted_at" json:"deletedAt"`
}

type TaskPatch struct {
	Title       *string        `json:"title"`
	Description OptionalString `json:"description"`
	Status      *TaskStatus    `json:"status"`
	Priority    *TaskPriority  `json:"priority"`
	DueDate     OptionalTime   `json:"dueDate"`
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && !p.Description.Set && p.Status == nil && p.Priority == nil && !p.DueDate.Set
}

type TaskStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
	Todo       int `json:"todo"`
	OnHold     int `json:"onHold"`
}
