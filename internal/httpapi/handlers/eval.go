package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/techstore/support-api/internal/chat"
	"github.com/techstore/support-api/internal/common"
	"github.com/techstore/support-api/internal/eval"
)

// thumbs_up is a pointer so an explicit false survives binding:"required".
type feedbackReq struct {
	ConversationID string `json:"conversation_id" binding:"required"`
	ThumbsUp       *bool  `json:"thumbs_up" binding:"required"`
	Comment        string `json:"comment"`
}

func (h *Handler) Feedback(c *gin.Context) {
	var req feedbackReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	err := h.Evals.SubmitFeedback(c.Request.Context(), req.ConversationID, *req.ThumbsUp, req.Comment)
	if err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "conversation not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to store feedback")
		return
	}

	common.Ok(c, gin.H{"status": "ok"})
}

type evaluateReq struct {
	ConversationID string `json:"conversation_id" binding:"required"`
}

// Evaluate runs the LLM judge synchronously and stores the judgment.
func (h *Handler) Evaluate(c *gin.Context) {
	var req evaluateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	rec, err := h.Evals.GetEvaluation(c.Request.Context(), req.ConversationID)
	if err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "conversation not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to load conversation")
		return
	}

	judgment, err := h.Judge.Evaluate(c.Request.Context(), rec.UserQuery, rec.AgentResponse)
	if err != nil {
		log.Printf("[EVAL] judge failed conversation_id=%s: %v", req.ConversationID, err)
		common.Fail(c, http.StatusBadGateway, 50202, "evaluation failed")
		return
	}

	if err := h.Evals.SubmitJudgment(c.Request.Context(), req.ConversationID, *judgment); err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to store evaluation")
		return
	}

	common.Ok(c, gin.H{"status": "ok", "evaluation": judgment})
}

// EvaluateAsync enqueues a judge run for the background worker.
func (h *Handler) EvaluateAsync(c *gin.Context) {
	if h.Publisher == nil {
		common.Fail(c, http.StatusServiceUnavailable, 50301, "async evaluation not configured")
		return
	}

	var req evaluateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	if _, err := h.Conversations.Get(c.Request.Context(), req.ConversationID); err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "conversation not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to load conversation")
		return
	}

	jobID, err := common.NewULID()
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to create job")
		return
	}
	job := &eval.Job{
		ID:             jobID,
		ConversationID: req.ConversationID,
		Status:         eval.JobQueued,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	if err := h.Evals.CreateJob(c.Request.Context(), job); err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to create job")
		return
	}

	if err := h.Publisher.PublishJob(c.Request.Context(), jobID, req.ConversationID); err != nil {
		log.Printf("[EVAL] publish failed job_id=%s: %v", jobID, err)
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to enqueue job")
		return
	}

	common.Ok(c, gin.H{"job_id": jobID})
}

func (h *Handler) GetEvalJob(c *gin.Context) {
	job, err := h.Evals.GetJob(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		if errors.Is(err, eval.ErrJobNotFound) {
			common.Fail(c, http.StatusNotFound, 40402, "job not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to load job")
		return
	}
	common.Ok(c, job)
}

// ListEvaluations returns every evaluation record plus aggregate stats.
func (h *Handler) ListEvaluations(c *gin.Context) {
	records, err := h.Evals.ListEvaluations(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to list evaluations")
		return
	}
	common.Ok(c, gin.H{
		"evaluations": records,
		"summary":     eval.Summarize(records),
	})
}

func (h *Handler) GetEvaluation(c *gin.Context) {
	rec, err := h.Evals.GetEvaluation(c.Request.Context(), c.Param("conversation_id"))
	if err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "conversation not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to load evaluation")
		return
	}
	common.Ok(c, rec)
}
