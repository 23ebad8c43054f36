package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient implements Chatter using Google's Gemini API.
type GeminiClient struct {
	client       *genai.Client
	modelID      string
	instructions InstructionsFunc
	temperature  float32
}

// NewGeminiClient creates a Gemini-backed reasoning client. instructions is
// evaluated on every turn and becomes the system instruction of the chat
// session.
func NewGeminiClient(ctx context.Context, apiKey, modelID string, instructions InstructionsFunc, temperature float32) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("chat: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("chat: failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client:       client,
		modelID:      modelID,
		instructions: instructions,
		temperature:  temperature,
	}, nil
}

// Send starts a chat session seeded with the given history and sends the
// utterance.
func (c *GeminiClient) Send(ctx context.Context, history []Message, utterance string) (string, error) {
	model := c.client.GenerativeModel(c.modelID)
	if c.temperature >= 0 {
		model.SetTemperature(c.temperature)
	}
	if c.instructions != nil {
		if text := strings.TrimSpace(c.instructions()); text != "" {
			model.SystemInstruction = genai.NewUserContent(genai.Text(text))
		}
	}

	cs := model.StartChat()
	for _, msg := range history {
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			continue
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  msg.Role,
			Parts: []genai.Part{genai.Text(text)},
		})
	}

	resp, err := cs.SendMessage(ctx, genai.Text(utterance))
	if err != nil {
		return "", fmt.Errorf("chat: gemini completion failed: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", ErrNoResponse
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", ErrNoResponse
	}

	var out strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", ErrNoResponse
	}
	return out.String(), nil
}

// Close releases resources held by the underlying client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
