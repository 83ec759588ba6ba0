package domain

const (
	RequesterIDCtxKey   = "cs-requesterId"
	RequesterRoleCtxKey = "cs-requesterRole"
)

const (
	RoleAdmin = "admin"
	RoleSales = "sales"
)

const (
	NotificationAnalysisComplete = "analysis_complete"
	NotificationFeedbackShared   = "feedback_shared"
)

// RecordingStatusChannel is the redis pub/sub channel for recording status transitions.
const RecordingStatusChannel = "callscope:recording-status"
