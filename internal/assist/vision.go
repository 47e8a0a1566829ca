package assist

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// systemInstruction steers both vision backends toward short, spoken-style
// answers, since the reply is fed straight into speech synthesis.
const systemInstruction = "you are an AI assistant whose main task is to help people with notifying what is in the image based on the user query. give the output in single paragraph."

// checkResp reads the response body and returns an error if the status is not 2xx.
// On error it includes the upstream body for debugging.
func checkResp(resp *http.Response, service, path string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("%s %s returned %d: %s", service, path, resp.StatusCode, string(body))
}

// ---------------------------------------------------------------------------
// GeminiClient — answers image questions via the Gemini generateContent API
// ---------------------------------------------------------------------------

// GeminiClient calls the hosted Gemini API over HTTP.
type GeminiClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		baseURL:    "https://generativelanguage.googleapis.com/v1beta",
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{},
	}
}

// Describe sends the image and query to Gemini and returns the text answer.
func (c *GeminiClient) Describe(ctx context.Context, image []byte, mimeType, query string) (string, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"system_instruction": map[string]interface{}{
			"parts": []map[string]string{{"text": systemInstruction}},
		},
		"contents": []map[string]interface{}{{
			"parts": []map[string]interface{}{
				{"text": query},
				{"inline_data": map[string]string{
					"mime_type": mimeType,
					"data":      base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
	})

	path := fmt.Sprintf("/models/%s:generateContent", c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", path, err)
	}
	defer resp.Body.Close()

	if err := checkResp(resp, "gemini", path); err != nil {
		return "", err
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("gemini %s: decode: %w", path, err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini %s: empty response", path)
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}

// ---------------------------------------------------------------------------
// MoondreamClient — the alternate vision backend, selected by config
// ---------------------------------------------------------------------------

// MoondreamClient calls the Moondream visual question answering API.
type MoondreamClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewMoondreamClient(apiKey string) *MoondreamClient {
	return &MoondreamClient{
		baseURL:    "https://api.moondream.ai/v1",
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

// Describe sends the image as a data URL plus the query and returns the answer.
func (c *MoondreamClient) Describe(ctx context.Context, image []byte, mimeType, query string) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
	body, _ := json.Marshal(map[string]interface{}{
		"image_url": dataURL,
		"question":  strings.TrimSpace(query),
		"stream":    false,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("moondream /query: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Moondream-Auth", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("moondream /query: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResp(resp, "moondream", "/query"); err != nil {
		return "", err
	}

	var result struct {
		Answer string `json:"answer"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("moondream /query: decode: %w", err)
	}
	return result.Answer, nil
}
