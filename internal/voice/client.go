package voice

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Client talks to the voice API for speech synthesis and recognition.
type Client struct {
	apiKey          string
	baseURL         string
	voiceType       string
	encoding        string
	speedRatio      float64
	staticAudioPath string
	httpClient      *http.Client
}

// NewClient creates a voice API client. Synthesized audio files are written
// under staticAudioPath and served back as /static/audio URLs.
func NewClient(baseURL, apiKey, voiceType, encoding string, speedRatio float64, staticAudioPath string) *Client {
	return &Client{
		apiKey:          apiKey,
		baseURL:         strings.TrimRight(baseURL, "/"),
		voiceType:       voiceType,
		encoding:        encoding,
		speedRatio:      speedRatio,
		staticAudioPath: staticAudioPath,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// TTS synthesizes speech for text, saves the audio locally and returns the
// URL it is served under.
func (c *Client) TTS(ctx context.Context, text string) (string, error) {
	log.Printf("Starting TTS for text: %s", text)

	reqBody := map[string]interface{}{
		"audio": map[string]interface{}{
			"voice_type":  c.voiceType,
			"encoding":    c.encoding,
			"speed_ratio": c.speedRatio,
		},
		"request": map[string]string{
			"text": text,
		},
	}

	respBody, err := c.post(ctx, "/voice/tts", reqBody)
	if err != nil {
		return "", err
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	// The API returns either a direct URL or base64 audio data, in a few
	// different shapes.
	var audioURL string
	var audioData string

	if url, ok := result["url"].(string); ok {
		audioURL = url
	} else if data, ok := result["data"].(string); ok {
		audioData = data
	} else if audioField, ok := result["audio"].(string); ok {
		audioData = audioField
	} else if audioMap, ok := result["audio"].(map[string]interface{}); ok {
		if data, ok := audioMap["data"].(string); ok {
			audioData = data
		}
	}

	if audioData != "" {
		decoded, err := base64.StdEncoding.DecodeString(audioData)
		if err != nil {
			return "", fmt.Errorf("failed to decode audio data: %w", err)
		}

		filename := fmt.Sprintf("tts_%d.%s", time.Now().UnixNano(), c.encoding)
		savePath := filepath.Join(c.staticAudioPath, filename)
		if err := os.WriteFile(savePath, decoded, 0644); err != nil {
			return "", fmt.Errorf("failed to save audio file: %w", err)
		}

		audioURL = fmt.Sprintf("/static/audio/%s", filename)
		log.Printf("TTS audio saved to: %s", audioURL)
	}

	if audioURL == "" {
		return "", fmt.Errorf("no audio URL or data in response")
	}

	return audioURL, nil
}

// ASR transcribes a recorded audio file by posting it inline as base64.
func (c *Client) ASR(ctx context.Context, audioPath string) (string, error) {
	log.Printf("Starting ASR for audio file: %s", audioPath)

	audioBytes, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to read audio file: %w", err)
	}

	dataURL := "data:audio/wav;base64," + base64.StdEncoding.EncodeToString(audioBytes)
	reqBody := map[string]interface{}{
		"model": "asr",
		"audio": map[string]interface{}{
			"format": "wav",
			"url":    dataURL,
		},
	}

	respBody, err := c.post(ctx, "/voice/asr", reqBody)
	if err != nil {
		return "", err
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	log.Printf("Recognized text: %s", result.Text)
	return result.Text, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}) ([]byte, error) {
	reqBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("Voice API error response: %s", string(respBody))
		return nil, fmt.Errorf("voice API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
