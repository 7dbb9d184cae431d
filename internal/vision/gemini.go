package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxResponseBytes = 4 * 1024 * 1024

// geminiAnalyzer calls a Gemini-style generateContent endpoint with
// the image inlined and the response constrained to JSON.
type geminiAnalyzer struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

// NewGemini creates the live analyzer. The timeout bounds each
// inference call; a stalled model endpoint cannot hold a request
// longer than that.
func NewGemini(baseURL, model, apiKey string, timeout time.Duration) Analyzer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &geminiAnalyzer{
		baseURL: baseURL,
		model:   model,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string `json:"response_mime_type"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (g *geminiAnalyzer) Analyze(ctx context.Context, imageBytes []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}

	req := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: detectionPrompt},
				{InlineData: &geminiInlineData{
					MimeType: contentType,
					Data:     base64.StdEncoding.EncodeToString(imageBytes),
				}},
			},
		}},
		GenerationConfig: geminiGenerationConfig{
			ResponseMimeType: "application/json",
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal inference request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create inference request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call inference service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read inference response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errBody geminiErrorResponse
		if err := json.Unmarshal(respBody, &errBody); err == nil && errBody.Error.Message != "" {
			return "", fmt.Errorf("inference service error: %s (status=%s)", errBody.Error.Message, errBody.Error.Status)
		}
		return "", fmt.Errorf("inference service returned status %d", resp.StatusCode)
	}

	var gemResp geminiResponse
	if err := json.Unmarshal(respBody, &gemResp); err != nil {
		return "", fmt.Errorf("decode inference response: %w", err)
	}
	if len(gemResp.Candidates) == 0 || len(gemResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("inference response had no candidates")
	}

	return gemResp.Candidates[0].Content.Parts[0].Text, nil
}
