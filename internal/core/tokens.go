package core

import "github.com/careerpilot/career-assistant/internal/utils"

// EstimateTokens approximates a token count as one token per four characters, rounded up.
func EstimateTokens(text string) int {
	return (utils.CharCount(text) + 3) / 4
}
