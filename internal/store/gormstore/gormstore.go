// Package gormstore persists conversations, evaluations and evaluation
// jobs through gorm (MySQL in production, SQLite for development and
// tests). Feedback and judgment payloads are stored as serialized JSON
// columns; turns are append-only rows.
package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/techstore/support-api/internal/chat"
	"github.com/techstore/support-api/internal/eval"
)

type turnRow struct {
	ConversationID string    `gorm:"primaryKey;size:36"`
	UserQuery      string    `gorm:"type:text;not null"`
	AgentResponse  string    `gorm:"type:text;not null"`
	CustomerState  string    `gorm:"type:text;not null"` // JSON
	CreatedAt      time.Time `gorm:"index"`
}

func (turnRow) TableName() string { return "conversation_turns" }

type evalRow struct {
	ConversationID string  `gorm:"primaryKey;size:36"`
	Feedback       *string `gorm:"type:text"` // JSON
	Judgment       *string `gorm:"type:text"` // JSON
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (evalRow) TableName() string { return "evaluations" }

// Store implements chat.ConversationStore and eval.Store over gorm.
type Store struct {
	db *gorm.DB
}

var (
	_ chat.ConversationStore = (*Store)(nil)
	_ eval.Store             = (*Store)(nil)
)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the store's tables.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&turnRow{}, &evalRow{}, &eval.Job{})
}

func (s *Store) Record(ctx context.Context, query, response string, state chat.CustomerState) (string, error) {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}

	row := turnRow{
		ConversationID: uuid.NewString(),
		UserQuery:      query,
		AgentResponse:  response,
		CustomerState:  string(stateJSON),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", err
	}
	return row.ConversationID, nil
}

func (s *Store) Get(ctx context.Context, conversationID string) (*chat.Turn, error) {
	var row turnRow
	if err := s.db.WithContext(ctx).
		First(&row, "conversation_id = ?", conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, chat.ErrNotFound
		}
		return nil, err
	}
	return rowToTurn(row)
}

func rowToTurn(row turnRow) (*chat.Turn, error) {
	var state chat.CustomerState
	if err := json.Unmarshal([]byte(row.CustomerState), &state); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	return &chat.Turn{
		ConversationID: row.ConversationID,
		UserQuery:      row.UserQuery,
		AgentResponse:  row.AgentResponse,
		Timestamp:      row.CreatedAt,
		CustomerState:  state,
	}, nil
}

// turnExists maps a missing turn to chat.ErrNotFound so evaluation writes
// can never create records for unknown conversations.
func (s *Store) turnExists(ctx context.Context, conversationID string) error {
	var row turnRow
	err := s.db.WithContext(ctx).
		Select("conversation_id").
		First(&row, "conversation_id = ?", conversationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return chat.ErrNotFound
	}
	return err
}

func (s *Store) upsertEval(ctx context.Context, conversationID, column, payload string) error {
	now := time.Now().UTC()
	row := evalRow{
		ConversationID: conversationID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	switch column {
	case "feedback":
		row.Feedback = &payload
	case "judgment":
		row.Judgment = &payload
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "conversation_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			column:       payload,
			"updated_at": now,
		}),
	}).Create(&row).Error
}

func (s *Store) SubmitFeedback(ctx context.Context, conversationID string, thumbsUp bool, comment string) error {
	if err := s.turnExists(ctx, conversationID); err != nil {
		return err
	}

	fb := eval.Feedback{
		ThumbsUp:    thumbsUp,
		Comment:     comment,
		SubmittedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(fb)
	if err != nil {
		return fmt.Errorf("marshal feedback: %w", err)
	}
	return s.upsertEval(ctx, conversationID, "feedback", string(payload))
}

func (s *Store) SubmitJudgment(ctx context.Context, conversationID string, j eval.Judgment) error {
	if err := s.turnExists(ctx, conversationID); err != nil {
		return err
	}

	j.EvaluatedAt = time.Now().UTC()
	payload, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("marshal judgment: %w", err)
	}
	return s.upsertEval(ctx, conversationID, "judgment", string(payload))
}

func (s *Store) GetEvaluation(ctx context.Context, conversationID string) (*eval.Record, error) {
	turn, err := s.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	rec := eval.Record{
		ConversationID: turn.ConversationID,
		UserQuery:      turn.UserQuery,
		AgentResponse:  turn.AgentResponse,
		Timestamp:      turn.Timestamp,
	}

	var row evalRow
	err = s.db.WithContext(ctx).First(&row, "conversation_id = ?", conversationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &rec, nil
	}
	if err != nil {
		return nil, err
	}
	if err := mergeRow(&rec, row); err != nil {
		return nil, err
	}
	return &rec, nil
}

func mergeRow(rec *eval.Record, row evalRow) error {
	if row.Feedback != nil {
		var fb eval.Feedback
		if err := json.Unmarshal([]byte(*row.Feedback), &fb); err != nil {
			return fmt.Errorf("unmarshal feedback: %w", err)
		}
		rec.Feedback = &fb
	}
	if row.Judgment != nil {
		var j eval.Judgment
		if err := json.Unmarshal([]byte(*row.Judgment), &j); err != nil {
			return fmt.Errorf("unmarshal judgment: %w", err)
		}
		rec.Judgment = &j
	}
	return nil
}

func (s *Store) ListEvaluations(ctx context.Context) ([]eval.Record, error) {
	var rows []evalRow
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []eval.Record{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ConversationID)
	}
	var turns []turnRow
	if err := s.db.WithContext(ctx).Find(&turns, "conversation_id IN ?", ids).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]turnRow, len(turns))
	for _, t := range turns {
		byID[t.ConversationID] = t
	}

	out := make([]eval.Record, 0, len(rows))
	for _, row := range rows {
		t, ok := byID[row.ConversationID]
		if !ok {
			// Evaluations are only written for existing turns; a miss here
			// means manual data surgery. Skip rather than fail the listing.
			continue
		}
		rec := eval.Record{
			ConversationID: t.ConversationID,
			UserQuery:      t.UserQuery,
			AgentResponse:  t.AgentResponse,
			Timestamp:      t.CreatedAt,
		}
		if err := mergeRow(&rec, row); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store) CreateJob(ctx context.Context, job *eval.Job) error {
	return s.db.WithContext(ctx).Create(job).Error
}

func (s *Store) GetJob(ctx context.Context, id string) (*eval.Job, error) {
	var j eval.Job
	if err := s.db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, eval.ErrJobNotFound
		}
		return nil, err
	}
	return &j, nil
}

func (s *Store) MarkJobRunning(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Model(&eval.Job{}).
		Where("id = ? AND status = ?", id, eval.JobQueued).
		Update("status", eval.JobRunning).Error
}

func (s *Store) MarkJobSucceeded(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Model(&eval.Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status": eval.JobSucceeded,
			"error":  nil,
		}).Error
}

func (s *Store) MarkJobFailed(ctx context.Context, id string, msg string) error {
	return s.db.WithContext(ctx).Model(&eval.Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status": eval.JobFailed,
			"error":  msg,
		}).Error
}
