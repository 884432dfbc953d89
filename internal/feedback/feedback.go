// Package feedback is the append-only sink for post-call quality ratings.
// The core writes records here and never reads them back; they exist for
// later analytics.
package feedback

import (
	"context"
	"time"
)

type Quality string

const (
	QualityGood Quality = "good"
	QualityBad  Quality = "bad"
)

func (q Quality) Valid() bool {
	return q == QualityGood || q == QualityBad
}

// Record field names match the shape the frontend logged.
type Record struct {
	ProjectID      string    `json:"projectId"`
	User           string    `json:"user"`
	Call           string    `json:"call"`
	ElapsedSeconds int       `json:"elapsedSeconds"`
	Quality        Quality   `json:"quality"`
	Timestamp      time.Time `json:"timestamp"`
}

type Sink interface {
	Append(ctx context.Context, rec Record) error
}
