package store

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// MaxMessageLength bounds ChatMessage.Content in characters.
	MaxMessageLength = 2000
)

type User struct {
	ID             int64       `json:"id"`
	ExternalUserID string      `json:"external_user_id"`
	PasswordHash   string      `json:"-"` // Do not expose this in JSON responses
	Name           string      `json:"name"`
	Background     string      `json:"background"`
	Experience     string      `json:"experience"`
	Preferences    Preferences `json:"preferences"`
	Streak         Streak      `json:"streak"`
	CreatedAt      time.Time   `json:"created_at"`
}

type Preferences struct {
	JobLocation string `json:"jobLocation,omitempty"`
	JobType     string `json:"jobType,omitempty"`
}

type Streak struct {
	Current      int        `json:"current"`
	Longest      int        `json:"longest"`
	LastActivity *time.Time `json:"lastActivity,omitempty"`
}

// Next returns the streak after activity at now. Activity on the same calendar day
// leaves it unchanged, the following day extends it, and any longer gap restarts it.
func (s Streak) Next(now time.Time) Streak {
	next := s
	today := truncateDay(now)
	switch {
	case s.LastActivity == nil || s.Current == 0:
		next.Current = 1
	default:
		last := truncateDay(s.LastActivity.In(now.Location()))
		switch {
		case !today.After(last):
			// same day
		case last.AddDate(0, 0, 1).Equal(today):
			next.Current = s.Current + 1
		default:
			next.Current = 1
		}
	}
	if next.Current > next.Longest {
		next.Longest = next.Current
	}
	ts := now
	next.LastActivity = &ts
	return next
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

type Skill struct {
	ID       int64     `json:"id"`
	UserID   int64     `json:"-"`
	Name     string    `json:"name"`
	Level    string    `json:"level"`
	Category string    `json:"category"`
	AddedAt  time.Time `json:"addedAt"`
}

type CareerGoal struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Profile is a user together with their skills and career goals.
type Profile struct {
	*User
	Skills      []Skill      `json:"skills"`
	CareerGoals []CareerGoal `json:"careerGoals"`
}

// ProfileUpdate carries the user-editable profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name        *string `json:"name,omitempty"`
	Background  *string `json:"background,omitempty"`
	Experience  *string `json:"experience,omitempty"`
	JobLocation *string `json:"jobLocation,omitempty"`
	JobType     *string `json:"jobType,omitempty"`
}

type ChatMessage struct {
	ID        string      `json:"id"` // Using UUID for external ID
	UserID    int64       `json:"user_id"`
	SessionID string      `json:"session_id"`
	Content   string      `json:"content"`
	Role      string      `json:"role"` // "user" or "assistant"
	Metadata  *Metadata   `json:"metadata,omitempty"`
	Tokens    *TokenUsage `json:"tokens,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

type TokenUsage struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}

// ExtractedSkill is a skill keyword found in a conversation turn.
type ExtractedSkill struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Metadata annotates assistant messages. It is derived once and never edited.
type Metadata struct {
	ExtractedSkills         []ExtractedSkill `json:"extractedSkills"`
	ExtractedGoals          []string         `json:"extractedGoals"`
	ExtractedTools          []string         `json:"extractedTools"`
	ExtractedCertifications []string         `json:"extractedCertifications"`
	Sentiment               string           `json:"sentiment"`
	Confidence              float64          `json:"confidence"`
	Intent                  string           `json:"intent"`
	Topics                  []string         `json:"topics"`
	ActionItems             []string         `json:"actionItems"`
	Urgency                 string           `json:"urgency"`
	ExperienceLevel         string           `json:"experienceLevel"`
}

type SessionSummary struct {
	SessionID    string    `json:"sessionId"`
	LastMessage  string    `json:"lastMessage"`
	LastActivity time.Time `json:"lastActivity"`
	MessageCount int       `json:"messageCount"`
}
