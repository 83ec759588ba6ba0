package domain

import "time"

// RecordingStatus is the lifecycle state of an ingested recording.
type RecordingStatus string

const (
	StatusPending      RecordingStatus = "pending"
	StatusDownloading  RecordingStatus = "downloading"
	StatusReady        RecordingStatus = "ready"
	StatusTranscribing RecordingStatus = "transcribing"
	StatusTranscribed  RecordingStatus = "transcribed"
	StatusAnalyzing    RecordingStatus = "analyzing"
	StatusCompleted    RecordingStatus = "completed"
	StatusFailed       RecordingStatus = "failed"
)

// statusTransitions is the allowed-next-states table. Pipeline stages must go
// through CanTransitionTo so a stage can never jump a completed recording back
// into the middle of the pipeline. failed permits re-running any stage.
var statusTransitions = map[RecordingStatus][]RecordingStatus{
	StatusPending:      {StatusDownloading, StatusReady},
	StatusDownloading:  {StatusReady, StatusFailed},
	StatusReady:        {StatusDownloading, StatusTranscribing},
	StatusTranscribing: {StatusTranscribed, StatusFailed},
	StatusTranscribed:  {StatusAnalyzing, StatusTranscribing},
	StatusAnalyzing:    {StatusCompleted, StatusFailed},
	StatusCompleted:    {},
	StatusFailed:       {StatusDownloading, StatusTranscribing, StatusAnalyzing},
}

func (s RecordingStatus) CanTransitionTo(next RecordingStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Recording represents one captured meeting.
type Recording struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"accountId"`
	ExternalID  string          `json:"externalId"`
	Topic       string          `json:"topic,omitempty"`
	StartTime   time.Time       `json:"startTime"`
	Duration    int             `json:"duration,omitempty"`
	VideoURL    string          `json:"videoUrl,omitempty"`
	StoragePath string          `json:"storagePath,omitempty"`
	Status      RecordingStatus `json:"status"`
	DeletedAt   *time.Time      `json:"deletedAt,omitempty"`
	CDate       time.Time       `json:"cdate"`
}

// MeetingFile is one downloadable variant of a platform recording.
type MeetingFile struct {
	ID          string `json:"id"`
	FileType    string `json:"file_type"`
	DownloadURL string `json:"download_url"`
	FileSize    int64  `json:"file_size"`
}

// Meeting is one recording as listed by the meeting platform.
type Meeting struct {
	UUID      string        `json:"uuid"`
	Topic     string        `json:"topic"`
	StartTime time.Time     `json:"start_time"`
	Duration  int           `json:"duration"`
	Files     []MeetingFile `json:"recording_files"`
}

// VideoFile returns the primary MP4 variant, or nil if the meeting has none.
func (m Meeting) VideoFile() *MeetingFile {
	for i := range m.Files {
		if m.Files[i].FileType == "MP4" {
			return &m.Files[i]
		}
	}
	return nil
}

// RecordingFilter narrows recording listings. A zero value lists the newest
// recordings.
type RecordingFilter struct {
	Status  string
	OwnerID string // restrict to recordings of accounts owned by this user
	Page    int
	Limit   int
}

// StatusEvent is published on redis when a recording changes status.
type StatusEvent struct {
	RecordingID string          `json:"recordingId"`
	From        RecordingStatus `json:"from"`
	To          RecordingStatus `json:"to"`
	Timestamp   time.Time       `json:"timestamp"`
}
