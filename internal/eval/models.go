// Package eval holds evaluation bookkeeping for recorded conversations:
// user feedback, LLM-as-judge scores and their aggregate summary.
package eval

import (
	"context"
	"errors"
	"time"
)

// ErrJobNotFound indicates an unknown evaluation job ID.
var ErrJobNotFound = errors.New("evaluation job not found")

// Feedback is a user's thumbs up/down on one conversation.
type Feedback struct {
	ThumbsUp    bool      `json:"thumbs_up"`
	Comment     string    `json:"comment"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// CategoryScore is one judged criterion.
type CategoryScore struct {
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// Categories are the five fixed judge criteria, in reporting order.
var Categories = []string{"helpfulness", "accuracy", "tone", "completeness", "safety"}

// Judgment is the full LLM-as-judge result for one conversation.
type Judgment struct {
	Helpfulness  CategoryScore `json:"helpfulness"`
	Accuracy     CategoryScore `json:"accuracy"`
	Tone         CategoryScore `json:"tone"`
	Completeness CategoryScore `json:"completeness"`
	Safety       CategoryScore `json:"safety"`
	OverallScore float64       `json:"overall_score"`
	Summary      string        `json:"summary"`
	EvaluatedAt  time.Time     `json:"evaluated_at"`
}

// Category returns the score for a named category.
func (j *Judgment) Category(name string) CategoryScore {
	switch name {
	case "helpfulness":
		return j.Helpfulness
	case "accuracy":
		return j.Accuracy
	case "tone":
		return j.Tone
	case "completeness":
		return j.Completeness
	case "safety":
		return j.Safety
	}
	return CategoryScore{}
}

// Record is the merged evaluation view for one conversation. Feedback and
// Judgment are nil until submitted; that is not an error state.
type Record struct {
	ConversationID string    `json:"conversation_id"`
	UserQuery      string    `json:"user_query"`
	AgentResponse  string    `json:"agent_response"`
	Timestamp      time.Time `json:"timestamp"`
	Feedback       *Feedback `json:"user_feedback"`
	Judgment       *Judgment `json:"llm_evaluation"`
}

// JobStatus tracks an async evaluation job.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Job is one queued judge run.
type Job struct {
	ID             string    `gorm:"primaryKey;size:26" json:"id"` // ULID length
	ConversationID string    `gorm:"size:36;index;not null" json:"conversation_id"`
	Status         JobStatus `gorm:"type:varchar(16);index;not null" json:"status"`
	Error          *string   `gorm:"type:text" json:"error"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Job) TableName() string { return "evaluation_jobs" }

// Store persists evaluations and jobs. Every conversation-keyed operation
// fails with chat.ErrNotFound when the underlying turn does not exist, so
// no evaluation ever references a turn the conversation store never
// recorded. Feedback and judgment submissions are last-write-wins.
// Implementations must be safe for concurrent use.
type Store interface {
	SubmitFeedback(ctx context.Context, conversationID string, thumbsUp bool, comment string) error
	SubmitJudgment(ctx context.Context, conversationID string, j Judgment) error
	GetEvaluation(ctx context.Context, conversationID string) (*Record, error)
	ListEvaluations(ctx context.Context) ([]Record, error)

	CreateJob(ctx context.Context, job *Job) error
	GetJob(ctx context.Context, id string) (*Job, error)
	MarkJobRunning(ctx context.Context, id string) error
	MarkJobSucceeded(ctx context.Context, id string) error
	MarkJobFailed(ctx context.Context, id string, msg string) error
}
