package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/careerpilot/career-assistant/internal/auth"
	"github.com/careerpilot/career-assistant/internal/core"
	"github.com/careerpilot/career-assistant/internal/store"
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	externalUserIDKey
)

type APIHandler struct {
	chatService *core.ChatService
	tokens      *auth.TokenIssuer
	logger      *zap.Logger
}

func NewAPIHandler(cs *core.ChatService, tokens *auth.TokenIssuer, logger *zap.Logger) *APIHandler {
	return &APIHandler{chatService: cs, tokens: tokens, logger: logger.Named("api")}
}

func userIDFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey).(int64)
	return id
}

func externalUserIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(externalUserIDKey).(string)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		externalUserID, err := h.tokens.ValidateJWT(tokenString)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		user, err := h.chatService.GetUserByExternalID(externalUserID)
		if err != nil {
			h.logger.Error("Error resolving user identity", zap.String("external_user_id", externalUserID), zap.Error(err))
			http.Error(w, "Failed to process user identity", http.StatusInternalServerError)
			return
		}
		if user == nil {
			http.Error(w, "User not found", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, user.ID)
		ctx = context.WithValue(ctx, externalUserIDKey, user.ExternalUserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "mode": h.chatService.Mode()})
}

type SignupRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.Password == "" {
		http.Error(w, "User ID and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.chatService.CreateUser(req.UserID, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			http.Error(w, "User already exists", http.StatusConflict)
			return
		}
		h.logger.Error("Error creating user", zap.String("external_user_id", req.UserID), zap.Error(err))
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type LoginRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.Password == "" {
		http.Error(w, "User ID and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.chatService.Authenticate(req.UserID, req.Password)
	if err != nil {
		if !errors.Is(err, core.ErrInvalidCredentials) {
			h.logger.Error("Error authenticating user", zap.String("external_user_id", req.UserID), zap.Error(err))
		}
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.tokens.GenerateJWT(user.ExternalUserID)
	if err != nil {
		h.logger.Error("Error generating JWT", zap.String("external_user_id", req.UserID), zap.Error(err))
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

type PostMessageRequest struct {
	Content   string `json:"content"`
	SessionID string `json:"sessionId"`
}

type ChatReply struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"sessionId"`
}

type PostMessageResponse struct {
	Message  string         `json:"message"`
	Response ChatReply      `json:"response"`
	Metadata store.Metadata `json:"metadata"`
}

func (h *APIHandler) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.chatService.PostMessage(r.Context(), userID, req.SessionID, req.Content)
	if err != nil {
		if errors.Is(err, core.ErrInvalidMessage) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("Error posting message", zap.Int64("user_id", userID), zap.String("external_user_id", externalUserIDFrom(r.Context())),
			zap.String("session_id", req.SessionID), zap.Error(err))
		http.Error(w, "Failed to post message", http.StatusInternalServerError)
		return
	}

	reply := res.AssistantMessage
	writeJSON(w, http.StatusOK, PostMessageResponse{
		Message: "Message processed successfully",
		Response: ChatReply{
			ID:        reply.ID,
			Content:   reply.Content,
			Role:      reply.Role,
			Timestamp: reply.CreatedAt,
			SessionID: res.SessionID,
		},
		Metadata: res.Metadata,
	})
}

func (h *APIHandler) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	history, err := h.chatService.GetHistory(userID, sessionID, page, limit)
	if err != nil {
		h.logger.Error("Error getting chat history", zap.Int64("user_id", userID), zap.String("external_user_id", externalUserIDFrom(r.Context())),
			zap.String("session_id", sessionID), zap.Error(err))
		http.Error(w, "Failed to get chat history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *APIHandler) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())

	sessions, err := h.chatService.ListSessions(userID)
	if err != nil {
		h.logger.Error("Error listing sessions", zap.Int64("user_id", userID), zap.String("external_user_id", externalUserIDFrom(r.Context())), zap.Error(err))
		http.Error(w, "Failed to list sessions", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (h *APIHandler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())

	profile, err := h.chatService.GetProfile(userID)
	if err != nil {
		h.profileError(w, userID, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type UpdateProfileRequest struct {
	Name        *string `json:"name"`
	Background  *string `json:"background"`
	Experience  *string `json:"experience"`
	Preferences *struct {
		JobLocation *string `json:"jobLocation"`
		JobType     *string `json:"jobType"`
	} `json:"preferences"`
}

func (h *APIHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	upd := store.ProfileUpdate{Name: req.Name, Background: req.Background, Experience: req.Experience}
	if req.Preferences != nil {
		upd.JobLocation = req.Preferences.JobLocation
		upd.JobType = req.Preferences.JobType
	}

	profile, err := h.chatService.UpdateProfile(userID, upd)
	if err != nil {
		h.profileError(w, userID, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *APIHandler) profileError(w http.ResponseWriter, userID int64, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	h.logger.Error("Error handling profile", zap.Int64("user_id", userID), zap.Error(err))
	http.Error(w, "Failed to process profile", http.StatusInternalServerError)
}
