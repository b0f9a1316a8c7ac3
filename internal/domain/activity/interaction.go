package activity

import (
	"time"

	"gorm.io/datatypes"
)

const (
	InteractionView         = "VIEW"
	InteractionDetailedView = "DETAILED_VIEW"
	InteractionLike         = "LIKE"
	InteractionShare        = "SHARE"
	InteractionSkip         = "SKIP"
)

type Interaction struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64          `gorm:"column:user_id;not null;index:idx_interaction_user_time,priority:1" json:"user_id"`
	VideoID   int64          `gorm:"column:video_id;not null;index" json:"video_id"`
	Type      string         `gorm:"column:interaction_type;not null" json:"interaction_type"`
	Metadata  datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"not null;index:idx_interaction_user_time,priority:2" json:"created_at"`
}

func (Interaction) TableName() string { return "user_interactions" }
