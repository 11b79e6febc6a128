package core

import (
	"reflect"
	"strings"
	"testing"

	"github.com/careerpilot/career-assistant/internal/store"
)

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"What are my goals for today?", IntentDailyGoals},
		{"Plan my daily tasks", IntentDailyGoals},
		{"what should I do today", IntentDailyGoals},
		{"Help me build a learning roadmap", IntentRoadmapRequest},
		{"Need a job roadmap", IntentRoadmapRequest},
		{"Any job openings near me?", IntentJobSearch},
		{"I want to learn Python", IntentSkillDevelopment},
		{"Interview tips please", IntentInterviewPrep},
		{"What salary should I expect?", IntentSalaryInquiry},
		{"Thinking about a switch to design", IntentCareerTransition},
		{"Hello there", IntentGeneralGuidance},
		{"", IntentGeneralGuidance},
	}
	for _, tt := range tests {
		if got := DetectIntent(tt.message); got != tt.want {
			t.Errorf("DetectIntent(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}
}

func TestExtractSentiment(t *testing.T) {
	e := NewExtractor()
	tests := []struct {
		user, ai string
		want     string
	}{
		{"I'm so excited about this", "Great.", SentimentPositive},
		{"I feel stuck", "", SentimentNegative},
		{"I love it but feel stuck", "", SentimentNeutral},
		{"Can you help me?", "", SentimentNeutral},
		{"hello", "world", SentimentNeutral},
	}
	for _, tt := range tests {
		if got := e.Extract(tt.user, tt.ai, nil).Sentiment; got != tt.want {
			t.Errorf("sentiment(%q, %q) = %q, want %q", tt.user, tt.ai, got, tt.want)
		}
	}
}

func TestExtractSkills(t *testing.T) {
	e := NewExtractor()

	got := e.Extract("I know Python and Docker", "", nil).ExtractedSkills
	want := []store.ExtractedSkill{{Name: "python", Category: "programming"}, {Name: "docker", Category: "cloud"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("skills = %+v, want %+v", got, want)
	}

	// Overlapping keywords are each reported.
	got = e.Extract("javascript", "", nil).ExtractedSkills
	want = []store.ExtractedSkill{{Name: "javascript", Category: "programming"}, {Name: "java", Category: "programming"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("skills = %+v, want %+v", got, want)
	}

	if got := e.Extract("hello", "there", nil).ExtractedSkills; got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil skills, got %#v", got)
	}
}

func TestExtractGoals(t *testing.T) {
	e := NewExtractor()
	tests := []struct {
		message string
		want    []string
	}{
		{"I want to become a data scientist", []string{"data", "become"}},
		{"I want to be a PM", []string{}},
		{"I'd like a career in cybersecurity.", []string{"cybersecurity"}},
		{"How do I transition into marketing?", []string{"marketing"}},
		{"become a " + strings.Repeat("x", 49), []string{strings.Repeat("x", 49)}},
		{"become a " + strings.Repeat("x", 50), []string{}},
	}
	for _, tt := range tests {
		got := e.Extract(tt.message, "", nil).ExtractedGoals
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("goals(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}
}

func TestExtractGoalsIgnoresAIText(t *testing.T) {
	got := NewExtractor().Extract("hi", "You could become a developer", nil).ExtractedGoals
	if len(got) != 0 {
		t.Errorf("expected goals only from the user message, got %q", got)
	}
}

func TestExtractActionItemsCapsAtFive(t *testing.T) {
	var sb strings.Builder
	for i := 1; i <= 7; i++ {
		sb.WriteString("- bullet item number ")
		sb.WriteString(strings.Repeat("z", i))
		sb.WriteString("\n\n")
	}

	items := NewExtractor().Extract("hi", sb.String(), nil).ActionItems
	if len(items) != 5 {
		t.Fatalf("expected 5 action items, got %d: %q", len(items), items)
	}
	if items[0] != "bullet item number z" || items[4] != "bullet item number zzzzz" {
		t.Errorf("expected the first five bullets in order, got %q", items)
	}
}

func TestExtractActionItemsPatterns(t *testing.T) {
	e := NewExtractor()

	got := e.Extract("hi", "You should start practicing Go daily. Then build a small portfolio site, then rest.", nil).ActionItems
	want := []string{"practicing Go daily", "a small portfolio site"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("imperative items = %q, want %q", got, want)
	}

	got = e.Extract("hi", "1. Update your resume this week\n\n- short\n", nil).ActionItems
	want = []string{"Update your resume this week"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("numbered items = %q, want %q", got, want)
	}
}

func TestExtractUrgency(t *testing.T) {
	e := NewExtractor()
	tests := map[string]string{
		"I need a job ASAP":         UrgencyHigh,
		"When can I switch roles?":  UrgencyMedium,
		"How long does it take?":    UrgencyMedium,
		"Tell me about data roles.": UrgencyLow,
	}
	for msg, want := range tests {
		if got := e.Extract(msg, "soon", nil).Urgency; got != want {
			t.Errorf("urgency(%q) = %q, want %q", msg, got, want)
		}
	}
}

func TestExtractExperienceLevel(t *testing.T) {
	e := NewExtractor()

	if got := e.Extract("I'm a beginner", "", &UserProfile{Experience: "2 years"}).ExperienceLevel; got != "2 years" {
		t.Errorf("expected profile experience to win, got %q", got)
	}
	tests := map[string]string{
		"I'm a beginner":        LevelBeginner,
		"I just started coding": LevelBeginner,
		"I'm a senior engineer": LevelAdvanced,
		"Tell me something":     LevelIntermediate,
	}
	for msg, want := range tests {
		if got := e.Extract(msg, "", &UserProfile{}).ExperienceLevel; got != want {
			t.Errorf("experience(%q) = %q, want %q", msg, got, want)
		}
	}
}

func TestExtractTopicsAndCertifications(t *testing.T) {
	md := NewExtractor().Extract("I want a career in cloud", "Get AWS Certified", nil)

	wantTopics := []string{"Cloud Computing", "Career Planning"}
	if !reflect.DeepEqual(md.Topics, wantTopics) {
		t.Errorf("topics = %q, want %q", md.Topics, wantTopics)
	}
	wantCerts := []string{"certified", "aws certified"}
	if !reflect.DeepEqual(md.ExtractedCertifications, wantCerts) {
		t.Errorf("certifications = %q, want %q", md.ExtractedCertifications, wantCerts)
	}
	if md.Confidence != extractionConfidence {
		t.Errorf("expected confidence %v, got %v", extractionConfidence, md.Confidence)
	}
	if md.ExtractedTools == nil {
		t.Error("expected non-nil tools list")
	}
}
