package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"secondbrain/internal/chat"
	"secondbrain/internal/db"
	"secondbrain/internal/llm"
	"secondbrain/internal/models"
	"secondbrain/internal/share"
	"secondbrain/internal/tags"
)

type Handler struct {
	store    *db.Database
	resolver *tags.Resolver
	registry *share.Registry
	chat     *chat.Service
	auth     Authenticator
	logger   *zap.Logger
}

func NewHandler(
	store *db.Database,
	resolver *tags.Resolver,
	registry *share.Registry,
	chatService *chat.Service,
	auth Authenticator,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		store:    store,
		resolver: resolver,
		registry: registry,
		chat:     chatService,
		auth:     auth,
		logger:   logger,
	}
}

// Routes wires the API surface. Everything except the shared-brain read
// path requires a bearer token.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/content", h.withAuth(h.handleContent))
	mux.HandleFunc("/api/v1/brain/share", h.withAuth(h.handleShare))
	mux.HandleFunc("/api/v1/brain/", h.handleSharedBrain)
	mux.HandleFunc("/api/v1/chat/sessions", h.withAuth(h.handleChatSessions))
	mux.HandleFunc("/api/v1/chat/message", h.withAuth(h.handleChatMessage))
	mux.HandleFunc("/api/v1/chat/messages", h.withAuth(h.handleChatMessages))
	return h.withRequestID(mux)
}

// writeError maps the service error taxonomy onto HTTP statuses. Internal
// details stay out of responses.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, db.ErrConflict):
		http.Error(w, "Already exists", http.StatusConflict)
	case errors.Is(err, chat.ErrEmptyMessage):
		http.Error(w, "Message text is required", http.StatusBadRequest)
	case errors.Is(err, llm.ErrDeadlineExceeded):
		http.Error(w, "Generation timed out", http.StatusGatewayTimeout)
	default:
		h.log(r).Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log(r).Error("failed to encode response", zap.Error(err))
	}
}

type createContentRequest struct {
	Link  string   `json:"link"`
	Type  string   `json:"type"`
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

func (h *Handler) handleContent(w http.ResponseWriter, r *http.Request, ownerID string) {
	switch r.Method {
	case http.MethodPost:
		var req createContentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Link == "" || req.Title == "" {
			http.Error(w, "link and title are required", http.StatusBadRequest)
			return
		}
		contentType := models.ContentType(req.Type)
		if !contentType.Valid() {
			http.Error(w, "unknown content type", http.StatusBadRequest)
			return
		}

		// tags first: content is never visible without its resolved tags
		tagIDs, err := h.resolver.Resolve(r.Context(), req.Tags)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		content := &models.Content{
			Link:    req.Link,
			Type:    contentType,
			Title:   req.Title,
			OwnerID: ownerID,
		}
		if err := h.store.CreateContent(r.Context(), content, tagIDs); err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeJSON(w, r, http.StatusCreated, content)

	case http.MethodGet:
		contents, err := h.store.ListContentByOwner(r.Context(), ownerID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeJSON(w, r, http.StatusOK, contents)

	case http.MethodDelete:
		id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid content ID", http.StatusBadRequest)
			return
		}
		if err := h.store.DeleteContent(r.Context(), id, ownerID); err != nil {
			h.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type shareResponse struct {
	Token string `json:"token"`
}

func (h *Handler) handleShare(w http.ResponseWriter, r *http.Request, ownerID string) {
	switch r.Method {
	case http.MethodPost:
		token, err := h.registry.Issue(r.Context(), ownerID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.log(r).Info("share link issued", zap.String("owner_id", ownerID))
		h.writeJSON(w, r, http.StatusCreated, shareResponse{Token: token})

	case http.MethodDelete:
		if err := h.registry.Revoke(r.Context(), ownerID); err != nil {
			h.writeError(w, r, err)
			return
		}
		h.log(r).Info("share link revoked", zap.String("owner_id", ownerID))
		w.WriteHeader(http.StatusOK)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type sharedBrainResponse struct {
	Contents []models.Content `json:"contents"`
}

// handleSharedBrain is the anonymous read path: a valid token grants a live
// view of the owner's current content set.
func (h *Handler) handleSharedBrain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token := strings.TrimPrefix(r.URL.Path, "/api/v1/brain/")
	if token == "" || strings.Contains(token, "/") {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	ownerID, err := h.registry.Resolve(r.Context(), token)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	contents, err := h.store.ListContentByOwner(r.Context(), ownerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, sharedBrainResponse{Contents: contents})
}

func (h *Handler) handleChatSessions(w http.ResponseWriter, r *http.Request, ownerID string) {
	switch r.Method {
	case http.MethodPost:
		session, err := h.chat.CreateSession(r.Context(), ownerID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeJSON(w, r, http.StatusCreated, session)

	case http.MethodGet:
		sessions, err := h.chat.ListSessions(r.Context(), ownerID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeJSON(w, r, http.StatusOK, sessions)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type chatMessageRequest struct {
	SessionID int64  `json:"session_id"`
	Content   string `json:"content"`
}

func (h *Handler) handleChatMessage(w http.ResponseWriter, r *http.Request, ownerID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	turn, err := h.chat.StartTurn(r.Context(), ownerID, req.SessionID, req.Content)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, turn)
}

func (h *Handler) handleChatMessages(w http.ResponseWriter, r *http.Request, ownerID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, err := strconv.ParseInt(r.URL.Query().Get("session_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid session ID", http.StatusBadRequest)
		return
	}

	messages, err := h.chat.GetMessages(r.Context(), sessionID, ownerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, messages)
}
