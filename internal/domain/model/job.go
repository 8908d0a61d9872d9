package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Job is the unit of work behind one stress-map request. It lives for the
// duration of a single HTTP request and is never persisted.
type Job struct {
	ID          string
	RGBImageKey string
	NIRImageKey string
}

// NewJobID generates a fresh job identifier.
func NewJobID() string {
	return uuid.New().String()
}

func NewJob(rgbImageKey, nirImageKey string) (*Job, error) {
	if rgbImageKey == "" {
		return nil, fmt.Errorf("rgb image key is required")
	}
	if nirImageKey == "" {
		return nil, fmt.Errorf("nir image key is required")
	}
	return &Job{
		ID:          NewJobID(),
		RGBImageKey: rgbImageKey,
		NIRImageKey: nirImageKey,
	}, nil
}

// OutputFileName is the local name of the generated stress map.
func (j *Job) OutputFileName() string {
	return fmt.Sprintf("stress_map_%s.png", j.ID)
}

// OutputObjectKey is the object key the stress map is published under.
func (j *Job) OutputObjectKey() string {
	return "outputs/" + j.OutputFileName()
}
