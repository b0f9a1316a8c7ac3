package user

import (
	"strings"
	"time"
)

type User struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email       string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Username    string    `gorm:"column:username" json:"username"`
	Preferences string    `gorm:"column:sports_preferences;index" json:"sports_preferences"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// PreferenceTokens splits the comma separated preference list, dropping blanks.
func (u *User) PreferenceTokens() []string {
	if u == nil {
		return nil
	}
	var out []string
	for _, tok := range strings.Split(u.Preferences, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// PrimaryPreference is the first preference token, or "".
func (u *User) PrimaryPreference() string {
	toks := u.PreferenceTokens()
	if len(toks) == 0 {
		return ""
	}
	return toks[0]
}
