package core

import (
	"fmt"
	"strings"

	"github.com/careerpilot/career-assistant/internal/store"
	"github.com/careerpilot/career-assistant/internal/utils"
)

const (
	historyWindow       = 5
	historyMessageChars = 200

	notSpecified  = "Not specified"
	noneSpecified = "None specified"
)

// HistoryEntry is one earlier turn of the conversation.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserProfile is the read-only view of the user the advisor personalizes with.
// Zero values mean "not provided".
type UserProfile struct {
	Name        string
	Background  string
	Experience  string
	Skills      []store.Skill
	CareerGoals []store.CareerGoal
	Preferences store.Preferences
	Streak      int
}

// ProfileFromStore converts a stored profile. A nil profile yields nil.
func ProfileFromStore(p *store.Profile) *UserProfile {
	if p == nil || p.User == nil {
		return nil
	}
	return &UserProfile{
		Name:        p.Name,
		Background:  p.Background,
		Experience:  p.Experience,
		Skills:      p.Skills,
		CareerGoals: p.CareerGoals,
		Preferences: p.Preferences,
		Streak:      p.Streak.Current,
	}
}

// SessionContext describes where the conversation stands. Empty fields fall back to
// "None", "General inquiry" and "Initial" in the prompt.
type SessionContext struct {
	Topics []string
	Intent string
	Stage  string
}

// RequestContext is everything besides the user message that shapes a reply.
// Every field is optional.
type RequestContext struct {
	ChatHistory    []HistoryEntry
	UserProfile    *UserProfile
	SessionContext *SessionContext
}

// PromptBuilder renders the single text prompt sent upstream.
type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

func (b *PromptBuilder) Build(userMessage string, rc RequestContext) string {
	profile := rc.UserProfile
	if profile == nil {
		profile = &UserProfile{}
	}
	session := rc.SessionContext
	if session == nil {
		session = &SessionContext{}
	}

	var sb strings.Builder
	sb.WriteString("You are an Advanced AI Career Advisor specializing in personalized career guidance. You are friendly, encouraging, and provide actionable advice.\n\n")
	sb.WriteString("CONTEXT ANALYSIS:\nUser Profile:\n")
	fmt.Fprintf(&sb, "- Background: %s\n", orDefault(profile.Background, notSpecified))
	fmt.Fprintf(&sb, "- Experience Level: %s\n", orDefault(profile.Experience, notSpecified))
	fmt.Fprintf(&sb, "- Current Skills: %s\n", formatSkills(profile.Skills))
	fmt.Fprintf(&sb, "- Career Goals: %s\n", formatGoals(profile.CareerGoals))
	fmt.Fprintf(&sb, "- Location Preference: %s\n", orDefault(profile.Preferences.JobLocation, notSpecified))
	fmt.Fprintf(&sb, "- Current Streak: %d days\n", profile.Streak)
	fmt.Fprintf(&sb, "- Total Skills: %d\n", len(profile.Skills))
	fmt.Fprintf(&sb, "- Job Type Preference: %s\n\n", orDefault(profile.Preferences.JobType, notSpecified))

	sb.WriteString("Session Context:\n")
	fmt.Fprintf(&sb, "- Previous Topics: %s\n", orDefault(strings.Join(session.Topics, ", "), "None"))
	fmt.Fprintf(&sb, "- User Intent: %s\n", orDefault(session.Intent, "General inquiry"))
	fmt.Fprintf(&sb, "- Conversation Stage: %s\n\n", orDefault(session.Stage, "Initial"))

	if len(rc.ChatHistory) > 0 {
		sb.WriteString("Recent Conversation History:\n")
		history := rc.ChatHistory
		if len(history) > historyWindow {
			history = history[len(history)-historyWindow:]
		}
		for _, msg := range history {
			role := "Assistant"
			if msg.Role == store.RoleUser {
				role = "User"
			}
			fmt.Fprintf(&sb, "%s: %s\n", role, utils.Truncate(msg.Content, historyMessageChars))
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "Current User Message: \"%s\"\n\n", userMessage)
	sb.WriteString(responseGuidelines)
	return sb.String()
}

const responseGuidelines = `CRITICAL RESPONSE GUIDELINES:
1. PERSONALIZATION: Tailor advice based on user's background, skills, and goals
2. ACTIONABILITY: Provide specific, actionable steps and recommendations
3. STRUCTURE: Use clear formatting with headers, bullet points, and sections
4. RESOURCES: Include relevant learning resources, tools, and platforms
5. MOTIVATION: Be encouraging and supportive while being realistic
6. FOLLOW-UP: Ask relevant questions to better understand user needs

TONE AND STYLE:
- Be conversational and friendly, not robotic
- Use the user's name when appropriate
- Reference their specific skills and goals
- Provide encouraging and motivational responses
- Use emojis sparingly but effectively

RESPONSE CATEGORIES:
- Skill Development: Learning paths, courses, certifications
- Career Planning: Role transitions, industry insights, salary expectations
- Job Search: Application strategies, interview prep, networking
- Portfolio Building: Project ideas, showcase strategies
- Industry Trends: Market analysis, emerging technologies

SPECIAL HANDLING:
- If asked about "today's goals" or daily goals, reference their current roadmap items and suggest specific daily actions
- If asked about progress, reference their streak, completed skills, and roadmap progress
- Always make responses feel personal and relevant to their journey

FORMAT YOUR RESPONSE:
- Use markdown formatting for better readability
- Include specific examples and case studies when relevant
- Provide timeline estimates for recommendations
- Suggest measurable milestones and progress tracking

Remember: Focus on practical, implementable advice that moves the user closer to their career goals.`

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func formatSkills(skills []store.Skill) string {
	if len(skills) == 0 {
		return noneSpecified
	}
	parts := make([]string, 0, len(skills))
	for _, s := range skills {
		parts = append(parts, fmt.Sprintf("%s (%s)", s.Name, s.Level))
	}
	return strings.Join(parts, ", ")
}

func formatGoals(goals []store.CareerGoal) string {
	if len(goals) == 0 {
		return noneSpecified
	}
	titles := make([]string, 0, len(goals))
	for _, g := range goals {
		titles = append(titles, g.Title)
	}
	return strings.Join(titles, ", ")
}
