// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/locale"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/reconcile"
)

// DefaultSystemPrompt instructs the model to return only the translation.
// {{sourceLang}} and {{targetLang}} are replaced with English locale names.
const DefaultSystemPrompt = `You are a professional translator localizing a tourism website from {{sourceLang}} to {{targetLang}}.

IMPORTANT TRANSLATION PRINCIPLES:
- Translate for naturalness and fluency, not word-for-word
- Keep the tone warm, clear and inviting
- Keep place names, brand names and proper nouns unchanged

TECHNICAL REQUIREMENTS:
- Return ONLY the translated text, no explanations, quotes or markdown code blocks.
- Preserve placeholders ({name}, {{name}}, %s, %d) exactly as-is.
- Preserve HTML tags, markdown and line breaks.
- Preserve leading and trailing whitespace.`

// OpenAIConfig configures an OpenAI-compatible chat completion endpoint.
type OpenAIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Prompt      string // empty uses DefaultSystemPrompt
}

// OpenAI translates through a chat completion API.
type OpenAI struct {
	client      openai.Client
	model       string
	temperature float64
	prompt      string
}

// NewOpenAI creates an OpenAI translator. SDK-level retries are disabled so
// the caller's retry policy is the only one in effect.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = DefaultSystemPrompt
	}
	return &OpenAI{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		prompt:      prompt,
	}
}

func (o *OpenAI) systemPrompt(req Request) string {
	return strings.NewReplacer(
		"{{sourceLang}}", locale.DisplayNameOf(req.SourceLocale),
		"{{targetLang}}", locale.DisplayNameOf(req.TargetLocale),
	).Replace(o.prompt)
}

func userMessage(req Request) string {
	if req.Context == "" {
		return req.Text
	}
	return fmt.Sprintf("Field: %s\n\n%s", req.Context, req.Text)
}

// Translate sends one chat completion request.
func (o *OpenAI) Translate(ctx context.Context, req Request) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(o.systemPrompt(req)),
			openai.UserMessage(userMessage(req)),
		},
		Model:       openai.ChatModel(o.model),
		Temperature: openai.Float(o.temperature),
	})
	if err != nil {
		return "", &reconcile.TranslationCapabilityError{Retryable: isRetryable(err), Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &reconcile.TranslationCapabilityError{Retryable: true, Err: errors.New("empty response from translation API")}
	}

	out := cleanResponse(resp.Choices[0].Message.Content)
	if strings.TrimSpace(out) == "" {
		return "", &reconcile.TranslationCapabilityError{Retryable: true, Err: errors.New("translation API returned empty text")}
	}
	return out, nil
}

// cleanResponse strips a markdown code fence some models wrap replies in.
func cleanResponse(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") || !strings.HasSuffix(t, "```") || len(t) < 6 {
		return s
	}
	t = strings.TrimSuffix(strings.TrimPrefix(t, "```"), "```")
	if i := strings.IndexByte(t, '\n'); i >= 0 && !strings.ContainsAny(t[:i], " \t") {
		t = t[i+1:] // language tag
	}
	return strings.TrimSpace(t)
}

// isRetryable classifies transport and API failures.
func isRetryable(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusRequestTimeout,
			apiErr.StatusCode == http.StatusConflict,
			apiErr.StatusCode == http.StatusTooManyRequests,
			apiErr.StatusCode >= 500:
			return true
		}
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return false
}
