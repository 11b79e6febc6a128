package core

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeGenerator struct {
	calls   int
	prompts []string
	results []fakeResult
}

type fakeResult struct {
	candidate *Candidate
	err       error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (*Candidate, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if len(f.results) == 0 {
		return nil, errors.New("upstream unavailable")
	}
	r := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return r.candidate, r.err
}

func newTestAdvisor(gen Generator) (*Advisor, *[]time.Duration) {
	cfg := AdvisorConfig{MaxRetries: 3, RetryDelay: time.Second, AttemptTimeout: time.Second}
	a := NewAdvisor(gen, cfg, zap.NewNop())
	var sleeps []time.Duration
	a.sleep = func(_ context.Context, d time.Duration) {
		sleeps = append(sleeps, d)
	}
	return a, &sleeps
}

func TestAdvisorWithoutGeneratorUsesMock(t *testing.T) {
	a, sleeps := newTestAdvisor(nil)

	resp := a.GenerateResponse(context.Background(), "Interview tips please", RequestContext{UserProfile: &UserProfile{Name: "Ada"}})

	if resp.Source != SourceEnhancedMock {
		t.Errorf("expected source %q, got %q", SourceEnhancedMock, resp.Source)
	}
	if resp.Confidence != mockConfidence {
		t.Errorf("expected confidence %v, got %v", mockConfidence, resp.Confidence)
	}
	if !strings.Contains(resp.Content, "Interview Preparation Guide for Ada") {
		t.Errorf("expected interview template, got %q", resp.Content)
	}
	if resp.Metadata.Intent != IntentInterviewPrep {
		t.Errorf("expected intent %q, got %q", IntentInterviewPrep, resp.Metadata.Intent)
	}
	if resp.Tokens.Input != EstimateTokens("Interview tips please") || resp.Tokens.Output != EstimateTokens(resp.Content) {
		t.Errorf("unexpected token estimate %+v", resp.Tokens)
	}
	if resp.Attempts != 0 || len(*sleeps) != 0 {
		t.Errorf("expected no attempts and no waits, got %d attempts, %v waits", resp.Attempts, *sleeps)
	}
	if a.Mode() != SourceEnhancedMock {
		t.Errorf("expected mock mode, got %q", a.Mode())
	}
}

func TestAdvisorRetriesThenFallsBack(t *testing.T) {
	gen := &fakeGenerator{}
	a, sleeps := newTestAdvisor(gen)

	resp := a.GenerateResponse(context.Background(), "Any job openings?", RequestContext{})

	if gen.calls != 3 {
		t.Fatalf("expected 3 upstream calls, got %d", gen.calls)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(*sleeps) != len(want) || (*sleeps)[0] != want[0] || (*sleeps)[1] != want[1] {
		t.Errorf("expected waits %v, got %v", want, *sleeps)
	}
	if resp.Source != SourceEnhancedMock || resp.Attempts != 3 {
		t.Errorf("expected fallback after 3 attempts, got source %q attempts %d", resp.Source, resp.Attempts)
	}
	if !strings.Contains(resp.Content, "Job Search Strategy for there") {
		t.Errorf("expected job search template, got %q", resp.Content)
	}
}

func TestAdvisorSucceedsAfterFailure(t *testing.T) {
	text := "Here is your plan.\n\n\n\n- Learn Go basics this week\n" + strings.Repeat("a", 100) + "  \n"
	gen := &fakeGenerator{results: []fakeResult{
		{err: errors.New("timeout")},
		{candidate: &Candidate{Text: text, FinishReason: FinishReasonStop, SafetyRatings: []SafetyRating{{Category: "HARASSMENT", Probability: ProbabilityNegligible}}}},
	}}
	a, sleeps := newTestAdvisor(gen)

	resp := a.GenerateResponse(context.Background(), "I want to learn Go", RequestContext{})

	if gen.calls != 2 || len(*sleeps) != 1 || (*sleeps)[0] != time.Second {
		t.Fatalf("expected 2 calls and one 1s wait, got %d calls and %v", gen.calls, *sleeps)
	}
	if resp.Source != SourceGeminiAPI || resp.Attempts != 2 {
		t.Errorf("expected gemini source after 2 attempts, got %q/%d", resp.Source, resp.Attempts)
	}
	if math.Abs(resp.Confidence-1.0) > 1e-9 {
		t.Errorf("expected confidence 1.0, got %v", resp.Confidence)
	}
	if strings.Contains(resp.Content, "\n\n\n") || strings.HasSuffix(resp.Content, " ") {
		t.Errorf("expected formatted content, got %q", resp.Content)
	}
	if resp.Tokens.Input != EstimateTokens(gen.prompts[1]) || resp.Tokens.Output != EstimateTokens(text) {
		t.Errorf("unexpected token estimate %+v", resp.Tokens)
	}
	if !strings.Contains(gen.prompts[0], "Current User Message: \"I want to learn Go\"") {
		t.Error("expected prompt to carry the user message")
	}
	if resp.Metadata.Intent != IntentSkillDevelopment {
		t.Errorf("expected skill_development intent, got %q", resp.Metadata.Intent)
	}
}

func TestAdvisorRetriesEmptyCandidate(t *testing.T) {
	gen := &fakeGenerator{results: []fakeResult{
		{candidate: &Candidate{Text: ""}},
		{candidate: &Candidate{Text: "ok", FinishReason: "MAX_TOKENS"}},
	}}
	a, _ := newTestAdvisor(gen)

	resp := a.GenerateResponse(context.Background(), "hello", RequestContext{})

	if gen.calls != 2 || resp.Source != SourceGeminiAPI || resp.Content != "ok" {
		t.Errorf("expected retry after empty candidate, got %d calls, %+v", gen.calls, resp)
	}
	if math.Abs(resp.Confidence-0.8) > 1e-9 {
		t.Errorf("expected base confidence, got %v", resp.Confidence)
	}
}

func TestAdvisorStopsOnCancelledContext(t *testing.T) {
	gen := &fakeGenerator{}
	a, sleeps := newTestAdvisor(gen)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := a.GenerateResponse(ctx, "hello", RequestContext{})

	if gen.calls != 1 || len(*sleeps) != 0 {
		t.Errorf("expected a single attempt without waiting, got %d calls, %v", gen.calls, *sleeps)
	}
	if resp.Source != SourceEnhancedMock || resp.Content == "" {
		t.Errorf("expected mock reply, got %+v", resp)
	}
}

func TestCalculateConfidence(t *testing.T) {
	long := strings.Repeat("x", 101)
	tests := []struct {
		name string
		c    Candidate
		want float64
	}{
		{"base", Candidate{Text: "short"}, 0.8},
		{"stop", Candidate{Text: "short", FinishReason: FinishReasonStop}, 0.9},
		{"long", Candidate{Text: long}, 0.85},
		{"exactly 100 chars", Candidate{Text: strings.Repeat("x", 100)}, 0.8},
		{"negligible", Candidate{Text: "short", SafetyRatings: []SafetyRating{{Probability: ProbabilityNegligible}}}, 0.85},
		{"mixed ratings", Candidate{Text: "short", SafetyRatings: []SafetyRating{{Probability: ProbabilityNegligible}, {Probability: "LOW"}}}, 0.8},
		{"all bonuses", Candidate{Text: long, FinishReason: FinishReasonStop, SafetyRatings: []SafetyRating{{Probability: ProbabilityNegligible}}}, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateConfidence(&tt.c); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CalculateConfidence = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatResponse(t *testing.T) {
	tests := map[string]string{
		"  hi  ":                        "hi",
		"a\n\n\n\nb":                    "a\n\nb",
		"a\n\nb":                        "a\n\nb",
		"\n\nx\n\n\n":                   "x",
		"one\n\n\ntwo\n\n\n\n\nthree": "one\n\ntwo\n\nthree",
	}
	for in, want := range tests {
		if got := FormatResponse(in); got != want {
			t.Errorf("FormatResponse(%q) = %q, want %q", in, got, want)
		}
	}
}

type hangingGenerator struct {
	mu        sync.Mutex
	deadlines []time.Duration
}

func (g *hangingGenerator) Generate(ctx context.Context, _ string) (*Candidate, error) {
	if deadline, ok := ctx.Deadline(); ok {
		g.mu.Lock()
		g.deadlines = append(g.deadlines, time.Until(deadline))
		g.mu.Unlock()
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestAdvisorAttemptTimeout(t *testing.T) {
	const timeout = 50 * time.Millisecond
	gen := &hangingGenerator{}
	a := NewAdvisor(gen, AdvisorConfig{MaxRetries: 3, RetryDelay: time.Second, AttemptTimeout: timeout}, zap.NewNop())
	var sleeps []time.Duration
	a.sleep = func(_ context.Context, d time.Duration) { sleeps = append(sleeps, d) }

	start := time.Now()
	resp := a.GenerateResponse(context.Background(), "hello", RequestContext{})
	elapsed := time.Since(start)

	if resp.Source != SourceEnhancedMock || resp.Attempts != 3 {
		t.Errorf("expected fallback after 3 timed-out attempts, got source %q attempts %d", resp.Source, resp.Attempts)
	}
	if len(gen.deadlines) != 3 {
		t.Fatalf("expected every attempt to carry a deadline, got %v", gen.deadlines)
	}
	for i, d := range gen.deadlines {
		if d <= 0 || d > timeout {
			t.Errorf("attempt %d deadline = %v, want within (0, %v]", i+1, d, timeout)
		}
	}
	if len(sleeps) != 2 {
		t.Errorf("expected waits between attempts, got %v", sleeps)
	}
	if elapsed < 3*timeout {
		t.Errorf("elapsed %v, expected each attempt to wait for its own deadline", elapsed)
	}
	if elapsed > 10*time.Second {
		t.Errorf("elapsed %v, attempts did not time out", elapsed)
	}
}
