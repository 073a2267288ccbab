package models

import "time"

type Project struct {
	ID          string          `gorm:"primaryKey;size:5" bson:"_id" json:"id"`
	Name        string          `gorm:"size:255;not null" bson:"name" json:"name"`
	Description *string         `bson:"description" json:"description"`
	Status      ProjectStatus   `gorm:"size:16;not null;index" bson:"status" json:"status"`
	Priority    ProjectPriority `gorm:"size:16;not null" bson:"priority" json:"priority"`
	OwnerID     string          `gorm:"size:5;not null;index" bson:"owner_id" json:"ownerId"`
	Owner       *UserSummary    `gorm:"foreignKey:OwnerID" bson:"-" json:"owner,omitempty"`
	CreatedAt   time.Time       `gorm:"index" bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `bson:"updated_at" json:"updatedAt"`
	DeletedAt   *time.Time      `gorm:"index" bson:"deleted_at" json:"deletedAt"`
}

// ProjectPatch carries a partial update. Nil pointers and unset optionals
// leave the stored value untouched.
type ProjectPatch struct {
	Name        *string          `json:"name"`
	Description OptionalString   `json:"description"`
	Status      *ProjectStatus   `json:"status"`
	Priority    *ProjectPriority `json:"priority"`
}

// Empty reports whether the patch changes nothing.
func (p ProjectPatch) Empty() bool {
	return p.Name == nil && !p.Description.Set && p.Status == nil && p.Priority == nil
}

// ProjectStats counts live projects per status.
type ProjectStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
	OnHold     int `json:"onHold"`
}
