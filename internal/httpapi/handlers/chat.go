package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techstore/support-api/internal/chat"
	"github.com/techstore/support-api/internal/common"
)

// Chat runs one guarded turn of the support conversation.
func (h *Handler) Chat(c *gin.Context) {
	var req chat.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	resp, err := h.ChatSvc.Respond(c.Request.Context(), &req)
	if err != nil {
		var secErr *chat.SecurityError
		if errors.As(err, &secErr) {
			if secErr.InHistory {
				common.Fail(c, http.StatusBadRequest, 40002, chat.RefusalHistory)
				return
			}
			common.Fail(c, http.StatusBadRequest, 40001, chat.RefusalMessage)
			return
		}
		if errors.Is(err, chat.ErrValidation) {
			common.Fail(c, http.StatusUnprocessableEntity, 42201, err.Error())
			return
		}
		log.Printf("[CHAT] agent error: %v", err)
		common.Fail(c, http.StatusBadGateway, 50201, "agent failed to respond")
		return
	}

	common.Ok(c, resp)
}
