package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Gopinath21052006/NeuroTrain/internal/session"
)

// Message represents a chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client talks to an OpenAI-compatible chat completion API.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
	memory      *session.Manager
}

// NewClient creates a chat client. The session manager is optional; without
// it CompleteWithMemory behaves like Complete.
func NewClient(baseURL, apiKey, model string, maxTokens int, temperature float64, memory *session.Manager) *Client {
	return &Client{
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		memory: memory,
	}
}

// Complete sends a single-turn prompt and returns the model reply.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, []Message{{Role: "user", Content: prompt}})
}

// CompleteWithMemory runs a chat turn with conversation history and user
// preferences folded into the prompt, then records both sides of the turn.
func (c *Client) CompleteWithMemory(ctx context.Context, userID, text string) (string, error) {
	if c.memory == nil {
		return c.Complete(ctx, text)
	}

	sessionID := c.memory.SessionFor(userID)
	c.memory.CaptureFacts(userID, text)

	messages := []Message{{Role: "system", Content: c.systemPrompt(userID)}}
	for _, msg := range c.memory.History(sessionID, 5) {
		messages = append(messages, Message{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, Message{Role: "user", Content: text})

	if err := c.memory.AddUserMessage(sessionID, text, "chat"); err != nil {
		log.Printf("Warning: failed to save user message: %v", err)
	}

	reply, err := c.complete(ctx, messages)
	if err != nil {
		return "", err
	}

	if err := c.memory.AddAssistantMessage(sessionID, reply); err != nil {
		log.Printf("Warning: failed to save assistant message: %v", err)
	}
	return reply, nil
}

func (c *Client) systemPrompt(userID string) string {
	prompt := "You are a helpful voice assistant. Keep replies short and conversational."
	prefs := c.memory.Preferences(userID)
	if name, ok := prefs["name"]; ok {
		prompt += fmt.Sprintf(" The user's name is %s.", name)
	}
	return prompt
}

func (c *Client) complete(ctx context.Context, messages []Message) (string, error) {
	reqBody := map[string]interface{}{
		"model":       c.model,
		"messages":    messages,
		"max_tokens":  c.maxTokens,
		"temperature": c.temperature,
		"stream":      false,
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("Chat API error response: %s", string(respBody))
		return "", fmt.Errorf("chat API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return result.Choices[0].Message.Content, nil
}
