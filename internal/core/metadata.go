package core

import (
	"regexp"
	"strings"

	"github.com/careerpilot/career-assistant/internal/store"
	"github.com/careerpilot/career-assistant/internal/utils"
)

const (
	extractionConfidence = 0.8
	maxActionItems       = 5
)

var goalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)become\s+(?:a\s+)?(.+?)(?:\s|$|,|\.|!|\?)`),
	regexp.MustCompile(`(?i)want\s+to\s+(?:be\s+)?(.+?)(?:\s|$|,|\.|!|\?)`),
	regexp.MustCompile(`(?i)transition\s+(?:to\s+|into\s+)(.+?)(?:\s|$|,|\.|!|\?)`),
	regexp.MustCompile(`(?i)career\s+in\s+(.+?)(?:\s|$|,|\.|!|\?)`),
}

var actionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:^|\n)[-*]\s*(.+?)(?:\n|$)`),
	regexp.MustCompile(`(?:^|\n)\d+\.\s*(.+?)(?:\n|$)`),
	regexp.MustCompile(`(?i)(?:start|begin|learn|practice|build|create|apply|study)\s+(.+?)(?:\.|,|\n|$)`),
}

// Extractor derives conversation metadata from a user message and the reply to it
// using keyword and pattern matching. It holds no state and is safe for concurrent use.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract annotates a turn. profile may be nil.
func (e *Extractor) Extract(userMessage, aiText string, profile *UserProfile) store.Metadata {
	combined := strings.ToLower(userMessage + " " + aiText)

	return store.Metadata{
		ExtractedSkills:         e.extractSkills(combined),
		ExtractedGoals:          e.extractGoals(userMessage),
		ExtractedTools:          []string{},
		ExtractedCertifications: matchingKeywords(combined, certificationKeywords),
		Sentiment:               e.detectSentiment(combined),
		Confidence:              extractionConfidence,
		Intent:                  DetectIntent(userMessage),
		Topics:                  e.extractTopics(combined),
		ActionItems:             e.extractActionItems(aiText),
		Urgency:                 e.detectUrgency(userMessage),
		ExperienceLevel:         e.detectExperienceLevel(userMessage, profile),
	}
}

// DetectIntent classifies a message. The first matching rule wins.
func DetectIntent(message string) string {
	lower := strings.ToLower(message)
	for _, rule := range intentRules {
		if matchesAllClauses(lower, rule.Clauses) {
			return rule.Intent
		}
	}
	return IntentGeneralGuidance
}

func matchesAllClauses(lower string, clauses [][]string) bool {
	for _, clause := range clauses {
		if !containsAny(lower, clause) {
			return false
		}
	}
	return true
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func matchingKeywords(lower string, keywords []string) []string {
	found := []string{}
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}
	return found
}

// extractSkills reports one entry per keyword hit. A keyword listed under two
// categories is reported twice.
func (e *Extractor) extractSkills(combined string) []store.ExtractedSkill {
	skills := []store.ExtractedSkill{}
	for _, group := range skillCategories {
		for _, skill := range group.Keywords {
			if strings.Contains(combined, skill) {
				skills = append(skills, store.ExtractedSkill{Name: skill, Category: group.Name})
			}
		}
	}
	return skills
}

func (e *Extractor) extractGoals(userMessage string) []string {
	goals := []string{}
	for _, pattern := range goalPatterns {
		for _, m := range pattern.FindAllStringSubmatch(userMessage, -1) {
			goal := strings.TrimSpace(m[1])
			if n := utils.CharCount(goal); n > 3 && n < 50 {
				goals = append(goals, goal)
			}
		}
	}
	return goals
}

func (e *Extractor) detectSentiment(combined string) string {
	positive := len(matchingKeywords(combined, positiveWords))
	negative := len(matchingKeywords(combined, negativeWords))
	neutral := len(matchingKeywords(combined, neutralWords))

	switch {
	case positive > negative && positive > 0:
		return SentimentPositive
	case negative > positive && negative > 0:
		return SentimentNegative
	case neutral > 0:
		return SentimentNeutral
	default:
		// ties and texts with no sentiment keywords at all
		return SentimentNeutral
	}
}

func (e *Extractor) extractTopics(combined string) []string {
	topics := []string{}
	for _, group := range topicKeywords {
		if containsAny(combined, group.Keywords) {
			topics = append(topics, group.Name)
		}
	}
	return topics
}

// extractActionItems applies the bullet, numbered and imperative patterns in that
// order and keeps the first five spans of 11 to 99 characters.
func (e *Extractor) extractActionItems(aiText string) []string {
	items := []string{}
	for _, pattern := range actionPatterns {
		for _, m := range pattern.FindAllStringSubmatch(aiText, -1) {
			action := strings.TrimSpace(m[1])
			if n := utils.CharCount(action); n > 10 && n < 100 {
				items = append(items, action)
			}
		}
	}
	if len(items) > maxActionItems {
		items = items[:maxActionItems]
	}
	return items
}

func (e *Extractor) detectUrgency(userMessage string) string {
	lower := strings.ToLower(userMessage)
	switch {
	case containsAny(lower, urgentWords):
		return UrgencyHigh
	case containsAny(lower, mediumUrgencyWords):
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

func (e *Extractor) detectExperienceLevel(userMessage string, profile *UserProfile) string {
	if profile != nil && profile.Experience != "" {
		return profile.Experience
	}
	lower := strings.ToLower(userMessage)
	switch {
	case containsAny(lower, beginnerWords):
		return LevelBeginner
	case containsAny(lower, advancedWords):
		return LevelAdvanced
	default:
		return LevelIntermediate
	}
}
