package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/techstore/support-api/internal/chat"
	"github.com/techstore/support-api/internal/eval"
)

func TestRecordAndGet(t *testing.T) {
	s := New()
	ctx := context.Background()

	state := chat.CustomerState{Verified: true, CustomerID: "abc", Name: "Jane"}
	id, err := s.Record(ctx, "where is my order?", "it shipped yesterday", state)
	if err != nil {
		t.Fatalf("Record = %v", err)
	}
	if id == "" {
		t.Fatal("empty conversation id")
	}

	turn, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get = %v", err)
	}
	if turn.UserQuery != "where is my order?" || turn.AgentResponse != "it shipped yesterday" {
		t.Errorf("unexpected turn: %+v", turn)
	}
	if turn.CustomerState != state {
		t.Errorf("state = %+v, want %+v", turn.CustomerState, state)
	}

	if _, err := s.Get(ctx, "no-such-id"); !errors.Is(err, chat.ErrNotFound) {
		t.Errorf("Get unknown = %v, want ErrNotFound", err)
	}
}

func TestFeedbackUnknownConversation(t *testing.T) {
	s := New()
	err := s.SubmitFeedback(context.Background(), "missing", true, "great")
	if !errors.Is(err, chat.ErrNotFound) {
		t.Fatalf("SubmitFeedback = %v, want ErrNotFound", err)
	}

	recs, err := s.ListEvaluations(context.Background())
	if err != nil {
		t.Fatalf("ListEvaluations = %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("rejected feedback created %d records", len(recs))
	}
}

func TestFeedbackAndJudgmentMerge(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, _ := s.Record(ctx, "q", "a", chat.CustomerState{})

	if err := s.SubmitFeedback(ctx, id, false, "not helpful"); err != nil {
		t.Fatalf("SubmitFeedback = %v", err)
	}
	j := eval.Judgment{
		Helpfulness:  eval.CategoryScore{Score: 4, Reason: "fine"},
		Accuracy:     eval.CategoryScore{Score: 5, Reason: "correct"},
		Tone:         eval.CategoryScore{Score: 4, Reason: "polite"},
		Completeness: eval.CategoryScore{Score: 3, Reason: "partial"},
		Safety:       eval.CategoryScore{Score: 5, Reason: "clean"},
		OverallScore: 4.2,
		Summary:      "solid answer",
	}
	if err := s.SubmitJudgment(ctx, id, j); err != nil {
		t.Fatalf("SubmitJudgment = %v", err)
	}

	rec, err := s.GetEvaluation(ctx, id)
	if err != nil {
		t.Fatalf("GetEvaluation = %v", err)
	}
	if rec.Feedback == nil || rec.Feedback.ThumbsUp || rec.Feedback.Comment != "not helpful" {
		t.Errorf("feedback = %+v", rec.Feedback)
	}
	if rec.Judgment == nil || rec.Judgment.OverallScore != 4.2 {
		t.Errorf("judgment = %+v", rec.Judgment)
	}
	if rec.Judgment.EvaluatedAt.IsZero() {
		t.Error("EvaluatedAt not stamped")
	}
	if rec.UserQuery != "q" {
		t.Errorf("record not seeded from turn: %+v", rec)
	}
}

func TestFeedbackLastWriteWins(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, _ := s.Record(ctx, "q", "a", chat.CustomerState{})
	_ = s.SubmitFeedback(ctx, id, false, "bad")
	_ = s.SubmitFeedback(ctx, id, true, "actually good")

	rec, _ := s.GetEvaluation(ctx, id)
	if !rec.Feedback.ThumbsUp || rec.Feedback.Comment != "actually good" {
		t.Errorf("feedback = %+v, want the second submission", rec.Feedback)
	}
}

func TestGetEvaluationWithoutFeedback(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, _ := s.Record(ctx, "q", "a", chat.CustomerState{})
	rec, err := s.GetEvaluation(ctx, id)
	if err != nil {
		t.Fatalf("GetEvaluation = %v", err)
	}
	if rec.Feedback != nil || rec.Judgment != nil {
		t.Errorf("expected bare record, got %+v", rec)
	}
}

func TestJobLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	job := &eval.Job{ID: "01JOB", ConversationID: "conv", Status: eval.JobQueued}
	if err := s.CreateJob(ctx, job); err != nil {
		t.Fatalf("CreateJob = %v", err)
	}

	if err := s.MarkJobRunning(ctx, "01JOB"); err != nil {
		t.Fatalf("MarkJobRunning = %v", err)
	}
	got, _ := s.GetJob(ctx, "01JOB")
	if got.Status != eval.JobRunning {
		t.Errorf("status = %s, want running", got.Status)
	}

	if err := s.MarkJobFailed(ctx, "01JOB", "judge unreachable"); err != nil {
		t.Fatalf("MarkJobFailed = %v", err)
	}
	got, _ = s.GetJob(ctx, "01JOB")
	if got.Status != eval.JobFailed || got.Error == nil || *got.Error != "judge unreachable" {
		t.Errorf("job = %+v", got)
	}

	if err := s.MarkJobSucceeded(ctx, "01JOB"); err != nil {
		t.Fatalf("MarkJobSucceeded = %v", err)
	}
	got, _ = s.GetJob(ctx, "01JOB")
	if got.Status != eval.JobSucceeded || got.Error != nil {
		t.Errorf("job = %+v", got)
	}

	if _, err := s.GetJob(ctx, "nope"); !errors.Is(err, eval.ErrJobNotFound) {
		t.Errorf("GetJob unknown = %v, want ErrJobNotFound", err)
	}
}
