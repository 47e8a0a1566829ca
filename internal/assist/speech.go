package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ---------------------------------------------------------------------------
// WhisperClient — calls the speech-recognition service (transcribe)
// ---------------------------------------------------------------------------

// WhisperClient calls the Whisper transcription service over HTTP.
type WhisperClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewWhisperClient(baseURL string) *WhisperClient {
	return &WhisperClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: &http.Client{}}
}

// Transcribe calls POST /api/transcribe with base64 audio and a format tag.
func (c *WhisperClient) Transcribe(ctx context.Context, audioB64, format string) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"audio": audioB64, "format": format,
	})
	resp, err := c.post(ctx, "/api/transcribe", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkResp(resp, "stt-service", "/api/transcribe"); err != nil {
		return "", err
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("stt-service /api/transcribe: decode: %w", err)
	}
	return result.Text, nil
}

func (c *WhisperClient) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("stt-service %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stt-service %s: %w", path, err)
	}
	return resp, nil
}

// ---------------------------------------------------------------------------
// SpeechClient — calls the text-to-speech service (synthesize)
// ---------------------------------------------------------------------------

// SpeechClient calls the speech-synthesis service over HTTP.
type SpeechClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewSpeechClient(baseURL string) *SpeechClient {
	return &SpeechClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: &http.Client{}}
}

// Synthesize calls POST /api/synthesize and returns raw WAV bytes.
func (c *SpeechClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"text": text, "voice": "af_heart", "speed": 1,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/synthesize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tts-service /api/synthesize: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts-service /api/synthesize: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResp(resp, "tts-service", "/api/synthesize"); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}
