package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	defaultChatModelName = "gemini-2.0-flash-001"

	FinishReasonStop      = "STOP"
	ProbabilityNegligible = "NEGLIGIBLE"
)

// ErrEmptyCandidate is returned when the upstream answer carries no generated text.
var ErrEmptyCandidate = errors.New("invalid response structure from gemini: no candidate text")

// Candidate is the part of an upstream answer the advisor inspects.
type Candidate struct {
	Text          string
	FinishReason  string
	SafetyRatings []SafetyRating
}

type SafetyRating struct {
	Category    string
	Probability string
}

// Generator performs one generation attempt. Implementations must return an error
// rather than a Candidate with empty Text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Candidate, error)
}

type GeminiOptions struct {
	APIKey          string
	Model           string
	MaxOutputTokens int32
	// ClientOptions are appended after the API key, e.g. option.WithEndpoint in tests.
	ClientOptions []option.ClientOption
}

// GeminiGenerator calls the Gemini generate-content API through the genai client.
type GeminiGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *zap.Logger
}

func NewGeminiGenerator(ctx context.Context, opts GeminiOptions, logger *zap.Logger) (*GeminiGenerator, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	clientOpts := append([]option.ClientOption{option.WithAPIKey(opts.APIKey)}, opts.ClientOptions...)
	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	modelName := opts.Model
	if modelName == "" {
		modelName = defaultChatModelName
	}
	maxTokens := opts.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.7)
	model.SetTopK(40)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(maxTokens)
	model.SetCandidateCount(1)
	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockMediumAndAbove},
	}

	return &GeminiGenerator{
		client: client,
		model:  model,
		logger: logger.Named("gemini"),
	}, nil
}

func (g *GeminiGenerator) Close() {
	if g.client != nil {
		if err := g.client.Close(); err != nil {
			g.logger.Warn("Error closing GenAI client", zap.Error(err))
		} else {
			g.logger.Info("GenAI client closed")
		}
	}
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (*Candidate, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generate content request failed: %w", err)
	}
	return candidateFromResponse(resp)
}

// candidateFromResponse requires candidates[0].content.parts[0] to be non-empty text.
func candidateFromResponse(resp *genai.GenerateContentResponse) (*Candidate, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil, ErrEmptyCandidate
	}
	c := resp.Candidates[0]
	if c.Content == nil || len(c.Content.Parts) == 0 {
		return nil, ErrEmptyCandidate
	}
	text, ok := c.Content.Parts[0].(genai.Text)
	if !ok || text == "" {
		return nil, ErrEmptyCandidate
	}

	out := &Candidate{
		Text:         string(text),
		FinishReason: finishReasonName(c.FinishReason),
	}
	for _, r := range c.SafetyRatings {
		if r == nil {
			continue
		}
		out.SafetyRatings = append(out.SafetyRatings, SafetyRating{
			Category:    fmt.Sprint(r.Category),
			Probability: probabilityName(r.Probability),
		})
	}
	return out, nil
}

func finishReasonName(fr genai.FinishReason) string {
	switch fr {
	case genai.FinishReasonStop:
		return FinishReasonStop
	case genai.FinishReasonMaxTokens:
		return "MAX_TOKENS"
	case genai.FinishReasonSafety:
		return "SAFETY"
	case genai.FinishReasonRecitation:
		return "RECITATION"
	case genai.FinishReasonUnspecified:
		return "FINISH_REASON_UNSPECIFIED"
	default:
		return "OTHER"
	}
}

func probabilityName(p genai.HarmProbability) string {
	switch p {
	case genai.HarmProbabilityNegligible:
		return ProbabilityNegligible
	case genai.HarmProbabilityLow:
		return "LOW"
	case genai.HarmProbabilityMedium:
		return "MEDIUM"
	case genai.HarmProbabilityHigh:
		return "HIGH"
	default:
		return "HARM_PROBABILITY_UNSPECIFIED"
	}
}
