// Package memstore is the in-process store: mutex-guarded maps, no
// eviction. Conversations and evaluations grow without bound, which is a
// known limitation of this driver; long-running deployments should use
// the gorm store.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/techstore/support-api/internal/chat"
	"github.com/techstore/support-api/internal/eval"
)

// Store implements chat.ConversationStore and eval.Store in memory.
type Store struct {
	mu    sync.RWMutex
	turns map[string]chat.Turn
	evals map[string]eval.Record
	jobs  map[string]eval.Job
}

var (
	_ chat.ConversationStore = (*Store)(nil)
	_ eval.Store             = (*Store)(nil)
)

func New() *Store {
	return &Store{
		turns: make(map[string]chat.Turn),
		evals: make(map[string]eval.Record),
		jobs:  make(map[string]eval.Job),
	}
}

func (s *Store) Record(ctx context.Context, query, response string, state chat.CustomerState) (string, error) {
	_ = ctx
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns[id] = chat.Turn{
		ConversationID: id,
		UserQuery:      query,
		AgentResponse:  response,
		Timestamp:      time.Now().UTC(),
		CustomerState:  state,
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, conversationID string) (*chat.Turn, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.turns[conversationID]
	if !ok {
		return nil, chat.ErrNotFound
	}
	return &t, nil
}

// evalRecordLocked returns the existing evaluation record for a turn or a
// fresh one seeded from it. Caller holds s.mu.
func (s *Store) evalRecordLocked(conversationID string) (eval.Record, bool) {
	t, ok := s.turns[conversationID]
	if !ok {
		return eval.Record{}, false
	}
	if rec, ok := s.evals[conversationID]; ok {
		return rec, true
	}
	return eval.Record{
		ConversationID: conversationID,
		UserQuery:      t.UserQuery,
		AgentResponse:  t.AgentResponse,
		Timestamp:      t.Timestamp,
	}, true
}

func (s *Store) SubmitFeedback(ctx context.Context, conversationID string, thumbsUp bool, comment string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.evalRecordLocked(conversationID)
	if !ok {
		return chat.ErrNotFound
	}
	rec.Feedback = &eval.Feedback{
		ThumbsUp:    thumbsUp,
		Comment:     comment,
		SubmittedAt: time.Now().UTC(),
	}
	s.evals[conversationID] = rec
	return nil
}

func (s *Store) SubmitJudgment(ctx context.Context, conversationID string, j eval.Judgment) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.evalRecordLocked(conversationID)
	if !ok {
		return chat.ErrNotFound
	}
	j.EvaluatedAt = time.Now().UTC()
	rec.Judgment = &j
	s.evals[conversationID] = rec
	return nil
}

// GetEvaluation returns the merged view. A turn with no feedback or
// judgment yet is still a valid result with nil sub-fields.
func (s *Store) GetEvaluation(ctx context.Context, conversationID string) (*eval.Record, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.evalRecordLocked(conversationID)
	if !ok {
		return nil, chat.ErrNotFound
	}
	return &rec, nil
}

func (s *Store) ListEvaluations(ctx context.Context) ([]eval.Record, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]eval.Record, 0, len(s.evals))
	for _, rec := range s.evals {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (s *Store) CreateJob(ctx context.Context, job *eval.Job) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	s.jobs[job.ID] = *job
	return nil
}

func (s *Store) GetJob(ctx context.Context, id string) (*eval.Job, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, eval.ErrJobNotFound
	}
	return &j, nil
}

func (s *Store) setJobStatus(id string, status eval.JobStatus, errMsg *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return eval.ErrJobNotFound
	}
	j.Status = status
	j.Error = errMsg
	j.UpdatedAt = time.Now().UTC()
	s.jobs[id] = j
	return nil
}

func (s *Store) MarkJobRunning(ctx context.Context, id string) error {
	_ = ctx
	return s.setJobStatus(id, eval.JobRunning, nil)
}

func (s *Store) MarkJobSucceeded(ctx context.Context, id string) error {
	_ = ctx
	return s.setJobStatus(id, eval.JobSucceeded, nil)
}

func (s *Store) MarkJobFailed(ctx context.Context, id string, msg string) error {
	_ = ctx
	return s.setJobStatus(id, eval.JobFailed, &msg)
}
