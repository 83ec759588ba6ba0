package models

import (
	"time"
)

type KnowledgeRule struct {
	ID                 string    `json:"id" gorm:"primaryKey;type:uuid"`
	Title              string    `json:"title" gorm:"type:text;not null"`
	Category           string    `json:"category" gorm:"type:text"`
	Content            string    `json:"content" gorm:"type:text;not null"`
	PromptInstructions string    `json:"promptInstructions" gorm:"type:text"`
	IsActive           bool      `json:"isActive" gorm:"not null;default:true"`
	CDate              time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Clip struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid"`
	RecordingID string    `json:"recordingId" gorm:"type:uuid;index;not null"`
	Recording   Recording `json:"-" gorm:"foreignKey:RecordingID;constraint:OnDelete:CASCADE;"`
	AnalysisID  *string   `json:"analysisId" gorm:"type:uuid"`
	IssueIndex  int       `json:"issueIndex"`
	StartMs     int64     `json:"startMs" gorm:"not null"`
	EndMs       int64     `json:"endMs" gorm:"not null"`
	StoragePath string    `json:"storagePath" gorm:"type:text;not null"`
	CDate       time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Feedback struct {
	ID           string     `json:"id" gorm:"primaryKey;type:uuid"`
	RecordingID  string     `json:"recordingId" gorm:"type:uuid;index;not null"`
	Recording    Recording  `json:"-" gorm:"foreignKey:RecordingID;constraint:OnDelete:CASCADE;"`
	CreatedBy    string     `json:"createdBy" gorm:"type:uuid;not null"`
	TargetUserID string     `json:"targetUserId" gorm:"type:uuid;index;not null"`
	Content      string     `json:"content" gorm:"type:text;not null"`
	ClipStartMs  *int64     `json:"clipStartMs"`
	ClipEndMs    *int64     `json:"clipEndMs"`
	IsShared     bool       `json:"isShared" gorm:"not null;default:false"`
	SharedAt     *time.Time `json:"sharedAt" gorm:"type:timestamp with time zone"`
	CDate        time.Time  `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Notification struct {
	ID      string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID  string    `json:"userId" gorm:"type:uuid;index;not null"`
	User    User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Type    string    `json:"type" gorm:"type:text;not null"`
	Title   string    `json:"title" gorm:"type:text;not null"`
	Message string    `json:"message" gorm:"type:text"`
	IsRead  bool      `json:"isRead" gorm:"not null;default:false"`
	CDate   time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
