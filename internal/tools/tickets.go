package tools

import (
	"context"
	"strings"

	"github.com/bbeeken/PDIMCPServer/internal/envelope"
	"github.com/bbeeken/PDIMCPServer/internal/registry"
)

// Support-ticket helpers for store staff. These run entirely in
// process; the warehouse is not involved.

var highPriorityWords = []string{"urgent", "immediately", "asap", "critical"}
var mediumPriorityWords = []string{"soon", "whenever", "request"}

func ticketPriorityTool() registry.Tool {
	return registry.Tool{
		Name:        "ticket_priority",
		Description: "Classify ticket text into a priority level (high, medium, low).",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"text": map[string]interface{}{"type": "string", "description": "Ticket text to classify"},
			},
			"required":             []interface{}{"text"},
			"additionalProperties": false,
		},
	}
}

func (t *Tools) ticketPriority(ctx context.Context, args map[string]interface{}) *envelope.Response {
	_ = ctx
	text, err := requiredStringArg(args, "text")
	if err != nil {
		return envelope.New().Error(err).Build()
	}

	lower := strings.ToLower(text)
	priority := "low"
	switch {
	case containsAny(lower, highPriorityWords):
		priority = "high"
	case containsAny(lower, mediumPriorityWords):
		priority = "medium"
	}

	return envelope.New().
		Data(map[string]interface{}{"priority": priority}).
		Build()
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// Minimal sentiment lexicon tuned for support-ticket language.
var positiveWords = map[string]bool{
	"good": true, "great": true, "excellent": true, "happy": true,
	"thanks": true, "thank": true, "love": true, "perfect": true,
	"awesome": true, "helpful": true, "working": true, "fixed": true,
	"resolved": true, "appreciate": true,
}

var negativeWords = map[string]bool{
	"bad": true, "terrible": true, "awful": true, "angry": true,
	"broken": true, "slow": true, "problem": true, "issue": true,
	"failure": true, "failed": true, "wrong": true, "hate": true,
	"unhappy": true, "worst": true, "useless": true, "down": true,
}

func ticketSentimentTool() registry.Tool {
	return registry.Tool{
		Name:        "ticket_sentiment",
		Description: "Score sentiment polarity of a text string in the range [-1, 1].",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"text": map[string]interface{}{"type": "string", "description": "Ticket text to analyze"},
			},
			"required":             []interface{}{"text"},
			"additionalProperties": false,
		},
	}
}

func (t *Tools) ticketSentiment(ctx context.Context, args map[string]interface{}) *envelope.Response {
	_ = ctx
	text, err := requiredStringArg(args, "text")
	if err != nil {
		return envelope.New().Error(err).Build()
	}

	return envelope.New().
		Data(map[string]interface{}{"score": sentimentScore(text)}).
		Build()
}

// sentimentScore computes (positive - negative) / matched over the
// lexicon hits, so the score lands in [-1, 1] and text with no
// sentiment-bearing words scores 0.
func sentimentScore(text string) float64 {
	var pos, neg int
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,!?;:'\"()")
		if positiveWords[token] {
			pos++
		} else if negativeWords[token] {
			neg++
		}
	}

	matched := pos + neg
	if matched == 0 {
		return 0
	}
	return round(float64(pos-neg)/float64(matched), 3)
}
