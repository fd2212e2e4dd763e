// Package gemini implements the AI collaborator on Google's Gemini API.
// It provides image description and text generation for the pipeline.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/edgard/breadbot/internal/config"
)

// Sentinel errors for the two collaborator failure classes. Callers branch
// with errors.Is: analysis failures abort an ingest, generation failures
// either abort (captions) or degrade to a fallback reply (comments).
var (
	ErrAnalysis   = errors.New("image analysis failed")
	ErrGeneration = errors.New("text generation failed")
)

// Client defines the interface for AI operations used throughout the
// application. DescribeImage turns a photo into a textual description;
// Generate produces caption or reply text from a prompt pair. The filename
// is passed alongside the bytes for logging and for the mock implementation.
type Client interface {
	DescribeImage(ctx context.Context, filename, mimeType string, data []byte) (string, error)
	Generate(ctx context.Context, systemInstruction, prompt string) (string, error)
}

type sdkClient struct {
	genaiClient *genai.Client
	log         *slog.Logger
	modelName   string
	temperature float32
	maxRetries  int
	retryDelay  time.Duration
}

// NewClient creates a new Gemini AI client with the provided configuration.
// It initializes the connection to the Gemini API and sets up necessary
// parameters.
func NewClient(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized successfully", "model", cfg.Model)
	return &sdkClient{
		genaiClient: gi,
		log:         logger,
		modelName:   cfg.Model,
		temperature: cfg.Temperature,
		maxRetries:  cfg.MaxRetries,
		retryDelay:  time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}, nil
}

func (c *sdkClient) contentConfig(systemInstruction string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: &c.temperature,
	}
	if systemInstruction != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}}
	}
	return cfg
}

func (c *sdkClient) generateContentWithRetries(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var resp *genai.GenerateContentResponse
	var err error

	for i := 0; i <= c.maxRetries; i++ {
		resp, err = c.genaiClient.Models.GenerateContent(ctx, c.modelName, contents, cfg)
		if err == nil {
			return resp, nil
		}

		c.log.WarnContext(ctx, "Gemini API call failed, checking for retry", "attempt", i+1, "max_retries", c.maxRetries, "error", err)

		var apiErr *genai.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == 500 || apiErr.Code == 503) {
			if i < c.maxRetries {
				c.log.InfoContext(ctx, "Retrying Gemini API call after retriable APIError", "delay", c.retryDelay, "code", apiErr.Code)
				time.Sleep(c.retryDelay)
				continue
			}
			c.log.ErrorContext(ctx, "Gemini API call failed after max retries", "error", err, "code", apiErr.Code)
			return nil, fmt.Errorf("gemini API call failed after %d retries (APIError code %d): %w", c.maxRetries, apiErr.Code, err)
		}

		c.log.ErrorContext(ctx, "Gemini API call failed with non-retriable error", "error", err)
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}
	return nil, err
}

// DescribeImage sends the photo to Gemini with the bakery description prompt
// and returns the natural-language description.
func (c *sdkClient) DescribeImage(ctx context.Context, filename, mimeType string, data []byte) (string, error) {
	c.log.DebugContext(ctx, "Describing image", "filename", filename, "image_size", len(data), "mime_type", mimeType)
	if len(data) == 0 || mimeType == "" {
		return "", fmt.Errorf("%w: image data and MIME type are required", ErrAnalysis)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(DescribeImagePrompt),
			genai.NewPartFromBytes(data, mimeType),
		}, genai.RoleUser),
	}

	resp, err := c.generateContentWithRetries(ctx, contents, c.contentConfig(""))
	if err != nil {
		c.log.ErrorContext(ctx, "Gemini image description failed", "filename", filename, "error", err)
		return "", fmt.Errorf("%w: %w", ErrAnalysis, err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to extract description from Gemini response", "filename", filename, "error", err)
		return "", fmt.Errorf("%w: %w", ErrAnalysis, err)
	}
	return text, nil
}

// Generate produces caption or reply text from a system instruction and a
// user prompt.
func (c *sdkClient) Generate(ctx context.Context, systemInstruction, prompt string) (string, error) {
	c.log.DebugContext(ctx, "Generating text", "prompt_len", len(prompt))

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := c.generateContentWithRetries(ctx, contents, c.contentConfig(systemInstruction))
	if err != nil {
		c.log.ErrorContext(ctx, "Gemini text generation failed", "error", err)
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to extract text from Gemini response", "error", err)
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	return text, nil
}

func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reasonMsg := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reasonMsg = resp.PromptFeedback.BlockReasonMessage
		}
		return "", fmt.Errorf("request blocked by safety filter: %s", reasonMsg)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		return "", fmt.Errorf("response has no content, finish reason: %s", finishReason)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("response text is empty")
	}
	return text, nil
}
