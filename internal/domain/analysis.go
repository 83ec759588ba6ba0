package domain

import "time"

// TranscriptSegment is one time-stamped piece of transcribed speech.
// Times are whole milliseconds from the start of the recording.
type TranscriptSegment struct {
	StartMs int64  `json:"start_ms"`
	EndMs   int64  `json:"end_ms"`
	Text    string `json:"text"`
	Speaker string `json:"speaker,omitempty"`
}

// Issue is one AI-flagged problem within a transcript.
type Issue struct {
	StartMs    int64  `json:"start_ms"`
	EndMs      int64  `json:"end_ms"`
	RuleID     string `json:"rule_id"`
	RuleName   string `json:"rule_name"`
	Severity   string `json:"severity"`
	Reason     string `json:"reason"`
	Suggestion string `json:"suggestion"`
	Approved   *bool  `json:"approved,omitempty"`
}

// AnalysisResult is what the generative-text service returns for one transcript.
type AnalysisResult struct {
	Issues  []Issue `json:"issues"`
	Summary string  `json:"summary"`
}

// Analysis is the transcript/issues/summary record attached to one recording.
type Analysis struct {
	ID          string              `json:"id"`
	RecordingID string              `json:"recordingId"`
	Transcript  []TranscriptSegment `json:"transcript,omitempty"`
	Issues      []Issue             `json:"issues,omitempty"`
	Summary     string              `json:"summary,omitempty"`
	CDate       time.Time           `json:"cdate"`
}
