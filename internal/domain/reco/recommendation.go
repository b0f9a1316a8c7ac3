package reco

import (
	"time"

	"github.com/google/uuid"
)

type Recommendation struct {
	ID      int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID  int64     `gorm:"column:user_id;not null;index:idx_reco_user_video,priority:1" json:"user_id"`
	VideoID int64     `gorm:"column:video_id;not null;index:idx_reco_user_video,priority:2" json:"video_id"`
	BatchID uuid.UUID `gorm:"column:batch_id;type:varchar(36);index" json:"batch_id"`

	Score     float64   `gorm:"column:confidence_score;not null" json:"score"`
	Algorithm Algorithm `gorm:"column:algorithm_used;type:varchar(32);not null" json:"algorithm"`
	Rank      int       `gorm:"column:recommendation_rank;not null" json:"rank"`
	Reasoning string    `gorm:"column:reasoning" json:"reasoning,omitempty"`

	WasClicked bool       `gorm:"column:was_clicked;not null;default:false" json:"was_clicked"`
	ClickedAt  *time.Time `gorm:"column:clicked_at" json:"clicked_at,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;index" json:"created_at"`
}

func (Recommendation) TableName() string { return "recommendations" }
