package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/careerpilot/career-assistant/internal/auth"
	"github.com/careerpilot/career-assistant/internal/store"
	"github.com/careerpilot/career-assistant/internal/utils"
)

const (
	historyFetchLimit    = 10
	streakMinChars       = 10
	defaultPageLimit     = 50
	maxPageLimit         = 100
	sessionListLimit     = 20
	sessionPreviewChars  = 100
	extractedSkillLevel  = "beginner"
	defaultSkillCategory = "general"
	extractedGoalNote    = "Goal identified from chat conversation"
	extractedGoalPrio    = "medium"
)

var (
	ErrInvalidMessage     = errors.New("message must be between 1 and 2000 characters")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type ChatService struct {
	dbStore *store.SQLiteStore
	advisor *Advisor
	logger  *zap.Logger
	now     func() time.Time
}

func NewChatService(db *store.SQLiteStore, advisor *Advisor, logger *zap.Logger) *ChatService {
	return &ChatService{
		dbStore: db,
		advisor: advisor,
		logger:  logger.Named("chat"),
		now:     time.Now,
	}
}

// Mode reports the advisor's reply source.
func (s *ChatService) Mode() string {
	return s.advisor.Mode()
}

// User methods

func (s *ChatService) GetUserByExternalID(externalUserID string) (*store.User, error) {
	return s.dbStore.GetUserByExternalID(externalUserID)
}

func (s *ChatService) CreateUser(externalUserID, password, name string) (*store.User, error) {
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return s.dbStore.CreateUser(externalUserID, hashedPassword, strings.TrimSpace(name))
}

// Authenticate returns the user when the password matches, ErrInvalidCredentials otherwise.
func (s *ChatService) Authenticate(externalUserID, password string) (*store.User, error) {
	user, err := s.dbStore.GetUserByExternalID(externalUserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *ChatService) GetProfile(userID int64) (*store.Profile, error) {
	return s.dbStore.GetProfile(userID)
}

func (s *ChatService) UpdateProfile(userID int64, upd store.ProfileUpdate) (*store.Profile, error) {
	if _, err := s.dbStore.UpdateProfile(userID, upd); err != nil {
		return nil, err
	}
	return s.dbStore.GetProfile(userID)
}

// Chat methods

// ChatResult is the outcome of one chat turn.
type ChatResult struct {
	SessionID        string
	UserMessage      store.ChatMessage
	AssistantMessage store.ChatMessage
	Metadata         store.Metadata
	Source           string
}

// PostMessage stores the user's message, produces and stores the assistant reply, and
// opportunistically updates the user's streak, skills and goals. An empty sessionID
// starts a new session.
func (s *ChatService) PostMessage(ctx context.Context, userID int64, sessionID, content string) (*ChatResult, error) {
	content = strings.TrimSpace(content)
	if n := utils.CharCount(content); n == 0 || n > store.MaxMessageLength {
		return nil, ErrInvalidMessage
	}
	if sessionID == "" {
		sessionID = fmt.Sprintf("session_%d", s.now().UnixMilli())
	}
	log := s.logger.With(zap.Int64("user_id", userID), zap.String("session_id", sessionID))

	// Store user message
	userMsg := store.ChatMessage{
		UserID:    userID,
		SessionID: sessionID,
		Role:      store.RoleUser,
		Content:   content,
	}
	if err := s.dbStore.CreateMessage(&userMsg); err != nil {
		return nil, fmt.Errorf("failed to store user message: %w", err)
	}

	history, err := s.recentHistory(userID, sessionID, userMsg.ID)
	if err != nil {
		log.Warn("Error getting chat history, proceeding without history", zap.Error(err))
		history = nil
	}

	profile, err := s.dbStore.GetProfile(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user profile: %w", err)
	}
	userProfile := ProfileFromStore(profile)

	reply := s.advisor.GenerateResponse(ctx, content, RequestContext{
		ChatHistory: history,
		UserProfile: userProfile,
	})

	// Store assistant message
	metadata := reply.Metadata
	tokens := reply.Tokens
	assistantMsg := store.ChatMessage{
		UserID:    userID,
		SessionID: sessionID,
		Role:      store.RoleAssistant,
		Content:   reply.Content,
		Metadata:  &metadata,
		Tokens:    &tokens,
	}
	if err := s.dbStore.CreateMessage(&assistantMsg); err != nil {
		return nil, fmt.Errorf("failed to store assistant message: %w", err)
	}

	if utils.CharCount(content) > streakMinChars {
		if _, err := s.dbStore.UpdateStreak(userID); err != nil {
			log.Error("Error updating user streak", zap.Error(err))
		}
	}
	s.updateUserSkills(log, userID, reply.Metadata.ExtractedSkills)
	s.updateUserGoals(log, userID, reply.Metadata.ExtractedGoals)

	log.Info("Chat message processed", zap.String("source", reply.Source), zap.String("intent", reply.Metadata.Intent))

	return &ChatResult{
		SessionID:        sessionID,
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		Metadata:         reply.Metadata,
		Source:           reply.Source,
	}, nil
}

// recentHistory returns the latest messages of the session, oldest first, without
// the message identified by excludeID.
func (s *ChatService) recentHistory(userID int64, sessionID, excludeID string) ([]HistoryEntry, error) {
	total, err := s.dbStore.CountSessionMessages(userID, sessionID)
	if err != nil {
		return nil, err
	}
	offset := total - historyFetchLimit
	if offset < 0 {
		offset = 0
	}
	msgs, err := s.dbStore.GetSessionMessages(userID, sessionID, historyFetchLimit, offset)
	if err != nil {
		return nil, err
	}

	history := make([]HistoryEntry, 0, len(msgs))
	for _, m := range msgs {
		if m.ID == excludeID {
			continue
		}
		history = append(history, HistoryEntry{Role: m.Role, Content: m.Content})
	}
	return history, nil
}

func (s *ChatService) updateUserSkills(log *zap.Logger, userID int64, extracted []store.ExtractedSkill) {
	if len(extracted) == 0 {
		return
	}
	skills := make([]store.Skill, 0, len(extracted))
	for _, sk := range extracted {
		category := sk.Category
		if category == "" {
			category = defaultSkillCategory
		}
		skills = append(skills, store.Skill{Name: sk.Name, Level: extractedSkillLevel, Category: category})
	}
	added, err := s.dbStore.AddSkills(userID, skills)
	if err != nil {
		log.Error("Error updating user skills", zap.Error(err))
		return
	}
	if added > 0 {
		log.Debug("Added skills from conversation", zap.Int("count", added))
	}
}

func (s *ChatService) updateUserGoals(log *zap.Logger, userID int64, extracted []string) {
	if len(extracted) == 0 {
		return
	}
	goals := make([]store.CareerGoal, 0, len(extracted))
	for _, title := range extracted {
		goals = append(goals, store.CareerGoal{Title: title, Description: extractedGoalNote, Priority: extractedGoalPrio})
	}
	added, err := s.dbStore.AddGoals(userID, goals)
	if err != nil {
		log.Error("Error updating user goals", zap.Error(err))
		return
	}
	if added > 0 {
		log.Debug("Added goals from conversation", zap.Int("count", added))
	}
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// HistoryMessage is the client view of a stored message.
type HistoryMessage struct {
	ID        string          `json:"id"`
	Content   string          `json:"content"`
	Role      string          `json:"role"`
	Timestamp time.Time       `json:"timestamp"`
	Metadata  *store.Metadata `json:"metadata,omitempty"`
}

type HistoryPage struct {
	Messages   []HistoryMessage `json:"messages"`
	Pagination Pagination       `json:"pagination"`
}

// GetHistory returns one page of a session's messages in chronological order.
// Non-positive page and limit fall back to 1 and 50; limit is capped at 100.
func (s *ChatService) GetHistory(userID int64, sessionID string, page, limit int) (*HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	msgs, err := s.dbStore.GetSessionMessages(userID, sessionID, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages for session: %w", err)
	}
	total, err := s.dbStore.CountSessionMessages(userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages for session: %w", err)
	}
	messages := make([]HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		messages = append(messages, HistoryMessage{
			ID:        m.ID,
			Content:   m.Content,
			Role:      m.Role,
			Timestamp: m.CreatedAt,
			Metadata:  m.Metadata,
		})
	}

	return &HistoryPage{
		Messages: messages,
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: (total + limit - 1) / limit,
		},
	}, nil
}

// ListSessions returns the user's most recently active sessions with a preview of
// their last message.
func (s *ChatService) ListSessions(userID int64) ([]store.SessionSummary, error) {
	sessions, err := s.dbStore.ListSessions(userID, sessionListLimit)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		sessions[i].LastMessage = utils.Truncate(sessions[i].LastMessage, sessionPreviewChars)
	}
	if sessions == nil {
		sessions = []store.SessionSummary{}
	}
	return sessions, nil
}
