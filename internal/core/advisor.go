package core

import (
	"context"
	"math"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/careerpilot/career-assistant/internal/store"
	"github.com/careerpilot/career-assistant/internal/utils"
)

const (
	SourceGeminiAPI    = "gemini-api"
	SourceEnhancedMock = "enhanced-mock"

	mockConfidence = 0.85
)

// AIResponse is the reply produced for one chat turn.
type AIResponse struct {
	Content    string           `json:"content"`
	Metadata   store.Metadata   `json:"metadata"`
	Tokens     store.TokenUsage `json:"tokens"`
	Confidence float64          `json:"confidence"`
	Source     string           `json:"source"`
	// Attempts is the number of upstream calls made for this reply.
	Attempts int `json:"-"`
}

type AdvisorConfig struct {
	MaxRetries     int
	RetryDelay     time.Duration
	AttemptTimeout time.Duration
}

func DefaultAdvisorConfig() AdvisorConfig {
	return AdvisorConfig{
		MaxRetries:     3,
		RetryDelay:     time.Second,
		AttemptTimeout: 30 * time.Second,
	}
}

type advisorState int

const (
	stateNoKey advisorState = iota
	stateAttempting
	stateSuccess
	stateFallback
)

func (s advisorState) String() string {
	switch s {
	case stateNoKey:
		return "NO_KEY"
	case stateAttempting:
		return "ATTEMPTING"
	case stateSuccess:
		return "SUCCESS"
	case stateFallback:
		return "FALLBACK"
	default:
		return "UNKNOWN"
	}
}

// Advisor turns a user message into an AIResponse. With a Generator it asks the
// upstream API, retrying with linear backoff; without one, or once every attempt has
// failed, it answers from MockResponder. GenerateResponse never fails.
type Advisor struct {
	generator Generator
	prompts   *PromptBuilder
	extractor *Extractor
	mocks     *MockResponder
	cfg       AdvisorConfig
	logger    *zap.Logger

	// sleep waits between attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration)
}

// NewAdvisor builds an Advisor. A nil generator selects mock-only mode.
func NewAdvisor(generator Generator, cfg AdvisorConfig, logger *zap.Logger) *Advisor {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 30 * time.Second
	}
	return &Advisor{
		generator: generator,
		prompts:   NewPromptBuilder(),
		extractor: NewExtractor(),
		mocks:     NewMockResponder(),
		cfg:       cfg,
		logger:    logger.Named("advisor"),
		sleep:     sleepContext,
	}
}

// Mode reports which source replies come from when the upstream is healthy.
func (a *Advisor) Mode() string {
	if a.generator == nil {
		return SourceEnhancedMock
	}
	return SourceGeminiAPI
}

func (a *Advisor) GenerateResponse(ctx context.Context, userMessage string, rc RequestContext) AIResponse {
	state := stateAttempting
	if a.generator == nil {
		state = stateNoKey
	}

	var (
		prompt    string
		candidate *Candidate
		attempt   int
	)
	if state == stateAttempting {
		prompt = a.prompts.Build(userMessage, rc)
	}

	for {
		switch state {
		case stateNoKey:
			a.logger.Warn("No Gemini API key configured, using enhanced mock response")
			return a.mockResponse(userMessage, rc, 0)

		case stateAttempting:
			attempt++
			c, err := a.attempt(ctx, prompt)
			if err == nil {
				candidate = c
				state = stateSuccess
				continue
			}
			a.logger.Error("Gemini API attempt failed", zap.Int("attempt", attempt), zap.Int("max_retries", a.cfg.MaxRetries), zap.Error(err))
			if attempt >= a.cfg.MaxRetries || ctx.Err() != nil {
				state = stateFallback
				continue
			}
			a.sleep(ctx, a.cfg.RetryDelay*time.Duration(attempt))

		case stateSuccess:
			return a.apiResponse(userMessage, prompt, candidate, rc, attempt)

		case stateFallback:
			a.logger.Warn("All Gemini API attempts failed, falling back to enhanced mock response", zap.Int("attempts", attempt))
			return a.mockResponse(userMessage, rc, attempt)
		}
	}
}

func (a *Advisor) attempt(ctx context.Context, prompt string) (*Candidate, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, a.cfg.AttemptTimeout)
	defer cancel()

	c, err := a.generator.Generate(attemptCtx, prompt)
	if err != nil {
		return nil, err
	}
	if c == nil || c.Text == "" {
		return nil, ErrEmptyCandidate
	}
	return c, nil
}

func (a *Advisor) apiResponse(userMessage, prompt string, c *Candidate, rc RequestContext, attempts int) AIResponse {
	return AIResponse{
		Content:  FormatResponse(c.Text),
		Metadata: a.extractor.Extract(userMessage, c.Text, rc.UserProfile),
		Tokens: store.TokenUsage{
			Input:  EstimateTokens(prompt),
			Output: EstimateTokens(c.Text),
		},
		Confidence: CalculateConfidence(c),
		Source:     SourceGeminiAPI,
		Attempts:   attempts,
	}
}

func (a *Advisor) mockResponse(userMessage string, rc RequestContext, attempts int) AIResponse {
	content := a.mocks.Generate(DetectIntent(userMessage), rc.UserProfile)
	return AIResponse{
		Content:  content,
		Metadata: a.extractor.Extract(userMessage, content, rc.UserProfile),
		Tokens: store.TokenUsage{
			Input:  EstimateTokens(userMessage),
			Output: EstimateTokens(content),
		},
		Confidence: mockConfidence,
		Source:     SourceEnhancedMock,
		Attempts:   attempts,
	}
}

var excessNewlines = regexp.MustCompile(`\n{3,}`)

// FormatResponse collapses runs of blank lines and trims surrounding whitespace.
func FormatResponse(text string) string {
	return strings.TrimSpace(excessNewlines.ReplaceAllString(text, "\n\n"))
}

// CalculateConfidence scores an upstream candidate: 0.8 base, +0.1 for a clean stop,
// +0.05 for more than 100 characters, +0.05 when every safety rating is negligible.
func CalculateConfidence(c *Candidate) float64 {
	confidence := 0.8
	if c.FinishReason == FinishReasonStop {
		confidence += 0.1
	}
	if utils.CharCount(c.Text) > 100 {
		confidence += 0.05
	}
	if allNegligible(c.SafetyRatings) {
		confidence += 0.05
	}
	return math.Min(confidence, 1.0)
}

// allNegligible is false for an empty rating list.
func allNegligible(ratings []SafetyRating) bool {
	if len(ratings) == 0 {
		return false
	}
	for _, r := range ratings {
		if r.Probability != ProbabilityNegligible {
			return false
		}
	}
	return true
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
