package events

const (
	EventTypeJobCompleted EventType = "stressmap.job.completed.v1"
)

// JobCompletedEvent reports the outcome of one stress-map job. Publishing is
// best-effort and never affects the HTTP response.
type JobCompletedEvent struct {
	BaseEvent
	JobID       string `json:"job_id"`
	RGBImageKey string `json:"rgb_image_key"`
	NIRImageKey string `json:"nir_image_key"`

	Success       bool   `json:"success"`
	OutputKey     string `json:"output_key,omitempty"`
	OutputURL     string `json:"output_url,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
}

func NewJobCompletedEvent(jobID, rgbImageKey, nirImageKey string) *JobCompletedEvent {
	return &JobCompletedEvent{
		BaseEvent:   NewBaseEvent(EventTypeJobCompleted),
		JobID:       jobID,
		RGBImageKey: rgbImageKey,
		NIRImageKey: nirImageKey,
	}
}

func (e *JobCompletedEvent) WithSuccess(outputKey, outputURL string) *JobCompletedEvent {
	e.Success = true
	e.OutputKey = outputKey
	e.OutputURL = outputURL
	return e
}

func (e *JobCompletedEvent) WithFailure(reason string) *JobCompletedEvent {
	e.Success = false
	e.FailureReason = reason
	return e
}
