package domain

import "time"

// KnowledgeRule is an administrator-authored compliance rule fed into analysis prompts.
type KnowledgeRule struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Category           string    `json:"category,omitempty"`
	Content            string    `json:"content"`
	PromptInstructions string    `json:"promptInstructions,omitempty"`
	IsActive           bool      `json:"isActive"`
	CDate              time.Time `json:"cdate"`
}

// Clip is a rendered sub-segment of a recording's video.
type Clip struct {
	ID          string    `json:"id"`
	RecordingID string    `json:"recordingId"`
	AnalysisID  string    `json:"analysisId,omitempty"`
	IssueIndex  int       `json:"issueIndex"`
	StartMs     int64     `json:"startMs"`
	EndMs       int64     `json:"endMs"`
	StoragePath string    `json:"storagePath"`
	CDate       time.Time `json:"cdate"`
}

// Feedback is a reviewer note addressed to a recording's owner.
type Feedback struct {
	ID          string     `json:"id"`
	RecordingID string     `json:"recordingId"`
	CreatedBy   string     `json:"createdBy"`
	TargetUser  string     `json:"targetUserId"`
	Content     string     `json:"content"`
	ClipStartMs *int64     `json:"clipStartMs,omitempty"`
	ClipEndMs   *int64     `json:"clipEndMs,omitempty"`
	IsShared    bool       `json:"isShared"`
	SharedAt    *time.Time `json:"sharedAt,omitempty"`
	CDate       time.Time  `json:"cdate"`
}

// Notification is one per-user inbox entry.
type Notification struct {
	ID      string    `json:"id"`
	UserID  string    `json:"userId"`
	Type    string    `json:"type"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	IsRead  bool      `json:"isRead"`
	CDate   time.Time `json:"cdate"`
}

// DeliveryResult records the outcome of one recipient of a notification fan-out.
type DeliveryResult struct {
	UserID  string `json:"userId"`
	Stored  bool   `json:"stored"`
	Emailed bool   `json:"emailed"`
	Error   string `json:"error,omitempty"`
}

// User is a reviewer or call owner. Role is always read back from storage,
// never from anything the client sent.
type User struct {
	ID       string    `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"fullName,omitempty"`
	Role     string    `json:"role"`
	CDate    time.Time `json:"cdate"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
