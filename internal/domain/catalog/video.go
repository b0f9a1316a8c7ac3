package catalog

import "time"

type Video struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalID      string    `gorm:"column:external_id;uniqueIndex" json:"external_id"`
	Title           string    `gorm:"column:title;not null" json:"title"`
	Category        string    `gorm:"column:category;index" json:"category"`
	DurationSeconds *int      `gorm:"column:duration_seconds" json:"duration_seconds,omitempty"`
	ViewCount       int64     `gorm:"column:view_count;not null;default:0;index" json:"view_count"`
	LikeCount       int64     `gorm:"column:like_count;not null;default:0" json:"like_count"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

func (Video) TableName() string { return "videos" }
