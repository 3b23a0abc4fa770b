package constants

// JobStatus is the outcome recorded for each card in a batch run.
type JobStatus string

const (
	JobStatusOK        JobStatus = "OK"
	JobStatusFailed    JobStatus = "FAILED" // see the row's error column
	JobStatusDuplicate JobStatus = "DUPLICATE"
)
