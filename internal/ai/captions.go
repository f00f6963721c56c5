package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"quote-video-poster/internal/logging"
)

// CaptionWriter optionally polishes the publish caption with Gemini. Without
// an API key, or on any failure, it falls back to the deterministic caption.
type CaptionWriter struct {
	apiKey string
	log    *logging.Logger
}

func NewCaptionWriter(apiKey string, log *logging.Logger) *CaptionWriter {
	return &CaptionWriter{apiKey: apiKey, log: log}
}

// Caption returns the final publish caption for a derived title.
func (cw *CaptionWriter) Caption(ctx context.Context, title, hashtags string) string {
	fallback := strings.TrimSpace(title + " " + hashtags)
	if cw.apiKey == "" {
		return fallback
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cw.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		cw.log.Warnf("ai: genai client: %v, using fallback caption", err)
		return fallback
	}

	prompt := fmt.Sprintf(
		"You write captions for short inspirational videos. "+
			"Write one engaging caption (max 80 characters, no emojis, no hashtags) "+
			"for a video titled '%s'. Reply with the caption only.",
		title,
	)

	resp, err := client.Models.GenerateContent(ctx, "gemini-2.0-flash-exp", []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, nil)
	if err != nil {
		cw.log.Warnf("ai: generate caption: %v, using fallback", err)
		return fallback
	}

	caption := strings.TrimSpace(resp.Text())
	if caption == "" {
		return fallback
	}
	return strings.TrimSpace(caption + " " + hashtags)
}
