package scheduler

const (
	LogMsgJobScheduled = "Job scheduled"
	LogMsgJobSkipped   = "Scheduled job skipped, worker queue full"
)
