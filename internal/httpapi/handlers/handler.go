// Package handlers contains the gin handlers for the support API.
package handlers

import (
	"github.com/techstore/support-api/internal/chat"
	"github.com/techstore/support-api/internal/config"
	"github.com/techstore/support-api/internal/eval"
	"github.com/techstore/support-api/internal/store/rabbitmq"
)

type Handler struct {
	Cfg           config.Config
	ChatSvc       *chat.Service
	Conversations chat.ConversationStore
	Evals         eval.Store
	Judge         *eval.Judge
	Publisher     *rabbitmq.Publisher
}

func NewHandler(cfg config.Config, chatSvc *chat.Service, conversations chat.ConversationStore, evals eval.Store, judge *eval.Judge, publisher *rabbitmq.Publisher) *Handler {
	return &Handler{
		Cfg:           cfg,
		ChatSvc:       chatSvc,
		Conversations: conversations,
		Evals:         evals,
		Judge:         judge,
		Publisher:     publisher,
	}
}
