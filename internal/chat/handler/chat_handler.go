// Package handler wires the HTTP surface to the chat service
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"whispr/internal/chat/service"
	"whispr/internal/common"
	"whispr/internal/presence"
)

type ChatHandler struct {
	chatService service.ChatService
	presence    presence.Store
}

func NewChatHandler(chatService service.ChatService, store presence.Store) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		presence:    store,
	}
}

// RegisterRoutes mounts the chat endpoints on an authenticated subrouter
func (h *ChatHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/chats", h.ListChats).Methods("GET")
	r.HandleFunc("/chats", h.CreateChat).Methods("POST")
	r.HandleFunc("/chats/search", h.Search).Methods("GET")
	r.HandleFunc("/chats/{chatId}", h.LeaveChat).Methods("DELETE")
	r.HandleFunc("/chats/{chatId}/messages", h.History).Methods("GET")
	r.HandleFunc("/chats/{chatId}/messages", h.SendMessage).Methods("POST")
	r.HandleFunc("/chats/{chatId}/messages/{messageId}", h.DeleteMessage).Methods("DELETE")
	r.HandleFunc("/chats/{chatId}/presence", h.CounterpartPresence).Methods("GET")
	r.HandleFunc("/presence", h.SetPresence).Methods("POST")
}

func (h *ChatHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	summaries, err := h.chatService.ListChats(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, summaries)
}

func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		OtherUserID string `json:"otherUserId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	info, err := h.chatService.CreateOrGetChat(r.Context(), userID, req.OtherUserID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, info)
}

func (h *ChatHandler) LeaveChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	chatID := mux.Vars(r)["chatId"]
	if err := h.chatService.LeaveChat(r.Context(), userID, chatID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	chatID := mux.Vars(r)["chatId"]
	messages, err := h.chatService.History(r.Context(), userID, chatID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, messages)
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	chatID := mux.Vars(r)["chatId"]
	var req struct {
		Content  string `json:"content"`
		Type     string `json:"type"`
		SenderID string `json:"senderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	msg, err := h.chatService.SendMessage(r.Context(), userID, chatID, req.Content, req.Type, req.SenderID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, msg)
}

func (h *ChatHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vars := mux.Vars(r)
	if err := h.chatService.DeleteMessage(r.Context(), userID, vars["chatId"], vars["messageId"]); err != nil {
		h.writeServiceError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// CounterpartPresence returns the other member's last-seen timestamp. A null
// value means "never observed online", which the client must not render as
// offline-now.
func (h *ChatHandler) CounterpartPresence(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	chatID := mux.Vars(r)["chatId"]
	lastSeen, err := h.chatService.CounterpartLastSeen(r.Context(), userID, chatID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	var lastSeenAt *string
	if lastSeen != nil {
		s := lastSeen.UTC().Format(time.RFC3339Nano)
		lastSeenAt = &s
	}
	common.WriteJSON(w, http.StatusOK, map[string]*string{"lastSeenAt": lastSeenAt})
}

// SetPresence is the heartbeat write path: online upserts the caller's
// last-seen to now, offline clears it to null.
func (h *ChatHandler) SetPresence(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	online := true
	var req struct {
		Online *bool `json:"online"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.Online != nil {
		online = *req.Online
	}

	var err error
	if online {
		err = h.presence.SetOnline(r.Context(), userID)
	} else {
		err = h.presence.SetOffline(r.Context(), userID)
	}
	if err != nil {
		log.Printf("presence write for %s failed: %v", userID, err)
		common.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *ChatHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	results, err := h.chatService.Search(r.Context(), userID, r.URL.Query().Get("q"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (h *ChatHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrChatNotFound):
		common.WriteError(w, http.StatusNotFound, "Chat not found")
	case errors.Is(err, service.ErrMessageNotFound):
		common.WriteError(w, http.StatusNotFound, "Message not found")
	case errors.Is(err, service.ErrUserNotFound):
		common.WriteError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrEmptyContent):
		common.WriteError(w, http.StatusBadRequest, "content required")
	case errors.Is(err, service.ErrBadCounterpart):
		common.WriteError(w, http.StatusBadRequest, service.ErrBadCounterpart.Error())
	default:
		log.Printf("chat handler: %v", err)
		common.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}
