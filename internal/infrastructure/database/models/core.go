package models

import (
	"time"
)

type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	Email     string    `json:"email" gorm:"type:text;uniqueIndex;not null"`
	FullName  string    `json:"fullName" gorm:"type:text"`
	Role      string    `json:"role" gorm:"type:text;not null;default:'sales'"`
	TokenHash string    `json:"-" gorm:"type:text;index"`
	CDate     time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Account struct {
	ID           string     `json:"id" gorm:"primaryKey;type:uuid"`
	OwnerID      string     `json:"ownerId" gorm:"type:uuid;index"`
	Owner        User       `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE;"`
	DisplayName  string     `json:"displayName" gorm:"type:text;not null"`
	ExternalID   string     `json:"externalId" gorm:"type:text"`
	ClientID     string     `json:"-" gorm:"type:text"`
	ClientSecret string     `json:"-" gorm:"type:text"`
	IsActive     bool       `json:"isActive" gorm:"not null;default:true"`
	LastSyncedAt *time.Time `json:"lastSyncedAt" gorm:"type:timestamp with time zone"`
	CDate        time.Time  `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Recording struct {
	ID          string     `json:"id" gorm:"primaryKey;type:uuid"`
	AccountID   string     `json:"accountId" gorm:"type:uuid;index;not null"`
	Account     Account    `json:"-" gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE;"`
	ExternalID  string     `json:"externalId" gorm:"type:text;uniqueIndex;not null"`
	Topic       string     `json:"topic" gorm:"type:text"`
	StartTime   time.Time  `json:"startTime" gorm:"type:timestamp with time zone"`
	Duration    int        `json:"duration"`
	VideoURL    string     `json:"videoUrl" gorm:"type:text"`
	StoragePath string     `json:"storagePath" gorm:"type:text"`
	Status      string     `json:"status" gorm:"type:text;index;not null;default:'pending'"`
	DeletedAt   *time.Time `json:"deletedAt" gorm:"type:timestamp with time zone;index"`
	CDate       time.Time  `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Analysis struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid"`
	RecordingID string    `json:"recordingId" gorm:"type:uuid;uniqueIndex;not null"`
	Recording   Recording `json:"-" gorm:"foreignKey:RecordingID;constraint:OnDelete:CASCADE;"`
	Transcript  string    `json:"transcript" gorm:"type:jsonb"`
	Issues      string    `json:"issues" gorm:"type:jsonb"`
	Summary     string    `json:"summary" gorm:"type:text"`
	CDate       time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
