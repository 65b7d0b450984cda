package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// LLMClient is the external text-generation function the ingestion pipeline
// calls. No retry or consistency guarantees are assumed.
type LLMClient interface {
	GenerateRecipeBatch(ctx context.Context, prompt string) (string, error)
}

// LLMService talks to a chat-completions style API (DeepSeek/OpenAI
// compatible) and asks it for recipe batches.
type LLMService struct {
	apiKey string
	apiURL string
	client *http.Client
}

func NewLLMService(apiKey, apiURL string) (*LLMService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("LLM API key must be set")
	}
	if apiURL == "" {
		apiURL = "https://api.deepseek.com/v1/chat/completions"
	}
	return &LLMService{
		apiKey: apiKey,
		apiURL: apiURL,
		client: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request represents a chat-completions request
type Request struct {
	Model            string    `json:"model"`
	Messages         []Message `json:"messages"`
	Temperature      float64   `json:"temperature"`
	TopP             float64   `json:"top_p"`
	FrequencyPenalty float64   `json:"frequency_penalty"`
	PresencePenalty  float64   `json:"presence_penalty"`
	MaxTokens        int       `json:"max_tokens,omitempty"`
}

const batchSystemPrompt = `You are a culinary expert and recipe creator. Create detailed, accurate and delicious recipes. Always respond with a valid JSON array and nothing else. Each element must have this structure:
{
    "title": "Recipe Name",
    "description": "Brief description, 2-3 sentences",
    "cuisine": "Cuisine type",
    "prepTime": 15,
    "cookTime": 30,
    "servings": 4,
    "difficulty": "Easy/Medium/Expert",
    "ingredients": ["2 cups flour", "1 cup water"],
    "instructions": ["Step 1", "Step 2"],
    "tags": ["italian", "vegetarian", "dinner"]
}
Generate 3-5 recipes based on the request. Make them diverse and interesting.`

// GenerateRecipeBatch asks the model for a JSON array of recipe candidates
// matching the free-form request and returns the raw content for the
// ingestion pipeline to parse.
func (s *LLMService) GenerateRecipeBatch(ctx context.Context, prompt string) (string, error) {
	reqBody := Request{
		Model: "deepseek-chat",
		Messages: []Message{
			{Role: "system", Content: batchSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Create detailed recipes based on this request: %q", prompt)},
		},
		Temperature:      0.7,
		TopP:             0.9,
		FrequencyPenalty: 0.5,
		PresencePenalty:  0.5,
		MaxTokens:        2000,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no response from API")
	}

	return result.Choices[0].Message.Content, nil
}
