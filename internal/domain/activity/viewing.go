package activity

import "time"

type ViewingRecord struct {
	ID                   int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID               int64     `gorm:"column:user_id;not null;index:idx_viewing_user_time,priority:1" json:"user_id"`
	VideoID              int64     `gorm:"column:video_id;not null;index" json:"video_id"`
	WatchDurationSeconds int       `gorm:"column:watch_duration_seconds;not null;default:0" json:"watch_duration_seconds"`
	CompletionRate       float64   `gorm:"column:completion_percentage;not null;default:0" json:"completion_percentage"`
	SkipCount            int       `gorm:"column:skip_count;not null;default:0" json:"skip_count"`
	ReplayCount          int       `gorm:"column:replay_count;not null;default:0" json:"replay_count"`
	CreatedAt            time.Time `gorm:"not null;index:idx_viewing_user_time,priority:2" json:"created_at"`
}

func (ViewingRecord) TableName() string { return "viewing_history" }
