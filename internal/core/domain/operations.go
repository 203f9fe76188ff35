package domain

// Canonical operation keys for retry/throttle accounting. Every call site
// issuing the same logical remote operation must use the same key so that
// throttling applies across the whole class of calls, not per call site.
const (
	OpFetchActivities = "fetch-activities"
	OpFetchActivity   = "fetch-activity"
	OpCreateActivity  = "create-activity"
	OpJoinActivity    = "join-activity"
	OpLeaveActivity   = "leave-activity"
	OpFetchProfile    = "fetch-profile"
	OpUpdateProfile   = "update-profile"
)
