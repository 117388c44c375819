package sqlite

import (
	"time"

	"telegram-support-relay/internal/domain/model"
)

type userRow struct {
	ID          int64     `gorm:"primaryKey;autoIncrement:false"`
	DisplayName string    `gorm:"not null;default:''"`
	Handle      string    `gorm:"not null;default:''"`
	Blocked     bool      `gorm:"not null;default:false;index"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (userRow) TableName() string { return "users" }

func (r userRow) toModel() *model.User {
	return &model.User{
		ID:          r.ID,
		DisplayName: r.DisplayName,
		Handle:      r.Handle,
		Blocked:     r.Blocked,
		CreatedAt:   r.CreatedAt,
	}
}

type correlationRow struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement"`
	UserID             int64     `gorm:"not null;index"`
	User               userRow   `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	ForwardedMessageID int       `gorm:"not null;index:idx_correlation_forwarded_category,priority:1"`
	OriginalMessageID  int       `gorm:"not null"`
	Category           string    `gorm:"not null;size:32;index:idx_correlation_forwarded_category,priority:2;check:chk_correlation_category,category IN ('panel','representative')"`
	CreatedAt          time.Time `gorm:"not null"`
}

func (correlationRow) TableName() string { return "correlation_log" }
