package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/example/phrasebot/pkg/models"
)

// Analyzer represents a client for the OpenAI chat completions API used to
// grade translation answers
type Analyzer struct {
	apiKey      string
	apiURL      string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
}

// New creates a new Analyzer client
func New() (*Analyzer, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4"
	}

	return &Analyzer{
		apiKey:      apiKey,
		apiURL:      "https://api.openai.com/v1/chat/completions",
		model:       model,
		maxTokens:   500,
		temperature: 0.3,
		client:      &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Message represents a message in the chat conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents a request to the chat completions API
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

// ChatResponse represents a response from the chat completions API
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type verdict struct {
	Score        float64  `json:"score"`
	Feedback     string   `json:"feedback"`
	Suggestions  []string `json:"suggestions"`
	Alternatives []string `json:"alternatives"`
	Note         string   `json:"note"`
}

// Analyze grades a user's translation of a phrase and returns the raw
// verdict. Any transport or parse failure is returned as an error so the
// caller can fall back to lexical matching.
func (a *Analyzer) Analyze(ctx context.Context, source, target, answer string, direction models.Direction) (*models.OracleResult, error) {
	var expected, prompt string
	if direction == models.DirectionTargetToSource {
		expected = source
		prompt = fmt.Sprintf(
			"Phrase: %q\nReference translation: %q\nStudent's translation: %q",
			target, source, answer,
		)
	} else {
		expected = target
		prompt = fmt.Sprintf(
			"Phrase: %q\nReference translation: %q\nStudent's translation: %q",
			source, target, answer,
		)
	}

	system := "You are a translation examiner. Grade the student's translation of the phrase against the reference. " +
		"Score from 0.0 to 1.0 in steps of 0.1, weighting meaning 40%, lexical choice 30%, grammar 15%, style 10%, punctuation 5%. " +
		"A different wording that fully preserves the meaning deserves 1.0. " +
		"Respond with JSON only, no prose around it: " +
		`{"score": <number>, "feedback": "<one sentence>", "suggestions": ["..."], "alternatives": ["..."], "note": "<usage note or empty>"}`

	request := ChatRequest{
		Model: a.model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
	}

	requestData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.apiURL, bytes.NewBuffer(requestData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	var response ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v", err)
	}

	if response.Error != nil {
		return nil, fmt.Errorf("API error: %s", response.Error.Message)
	}

	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}

	content := strings.TrimSpace(response.Choices[0].Message.Content)
	v, err := parseVerdict(content)
	if err != nil {
		return nil, err
	}

	result := &models.OracleResult{
		Score:        v.Score,
		Feedback:     v.Feedback,
		Suggestions:  v.Suggestions,
		Alternatives: v.Alternatives,
		Note:         v.Note,
	}
	if result.Feedback == "" {
		result.Feedback = fmt.Sprintf("Reference: %s", expected)
	}
	return result, nil
}

// parseVerdict extracts the JSON object from the model's reply, tolerating
// markdown fences or text around it
func parseVerdict(content string) (*verdict, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object in response: %q", content)
	}

	var v verdict
	if err := json.Unmarshal([]byte(content[start:end+1]), &v); err != nil {
		return nil, fmt.Errorf("failed to parse verdict: %v", err)
	}
	if v.Score < 0 || v.Score > 1 {
		return nil, fmt.Errorf("verdict score %v out of range", v.Score)
	}
	return &v, nil
}
