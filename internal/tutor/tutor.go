// Package tutor asks the LLM for step-by-step explanations of problem
// images and classifies problems by topic.
package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/amcprep/internal/imaging"
	"github.com/abhisek/amcprep/internal/llm"
	"github.com/abhisek/amcprep/internal/problems"
)

// ErrDisabled is returned when no LLM provider is configured.
var ErrDisabled = errors.New("AI features are disabled")

// ImageError reports a problem image that could not be loaded.
type ImageError struct {
	Path string
	Err  error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("could not load image file %q: %v", filepath.Base(e.Path), e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }

// RequestError wraps a failed LLM call.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("failed to get explanation from AI: %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Config tunes explanation requests.
type Config struct {
	MaxTokens   int
	Temperature float64
	MaxImageDim int           // longest image side sent to the model
	CacheTTL    time.Duration // how long explanations are reused
}

// DefaultConfig returns the defaults used by the TUI and CLI.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   4096,
		Temperature: 0.2,
		MaxImageDim: imaging.DefaultMaxDim,
		CacheTTL:    24 * time.Hour,
	}
}

// Tutor produces explanations. A Tutor with a nil provider is disabled.
type Tutor struct {
	provider llm.Provider
	cfg      Config
	cache    *cache.Cache
	log      logrus.FieldLogger
}

// New creates a Tutor. provider may be nil.
func New(provider llm.Provider, cfg Config, log logrus.FieldLogger) *Tutor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Tutor{
		provider: provider,
		cfg:      cfg,
		cache:    cache.New(cfg.CacheTTL, time.Hour),
		log:      log,
	}
}

// Enabled reports whether a provider is configured.
func (t *Tutor) Enabled() bool {
	return t != nil && t.provider != nil
}

// PromptParts returns the explanation prompt, in order: the tutor role,
// the known answer and the formatting instructions. The image follows them.
func PromptParts(correctAnswer string) []string {
	return []string{
		"You are a helpful math tutor. A student is practicing for a math competition and needs help understanding a problem.",
		fmt.Sprintf("The correct answer for this multiple-choice question is '%s'.", correctAnswer),
		strings.Join([]string{
			"Explain step by step how to solve the problem shown in the image and arrive at the correct answer.",
			"Keep the explanation clear and suitable for a middle or high school student.",
			"Use LaTeX for mathematical expressions: $...$ for inline math and $$...$$ for display math.",
			"Put the final answer in \\boxed{}.",
		}, " "),
	}
}

// Explain returns a step-by-step explanation of the problem image. The
// image is checked before any request is made.
func (t *Tutor) Explain(ctx context.Context, imagePath, correctAnswer string) (string, error) {
	if !t.Enabled() {
		return "", ErrDisabled
	}

	key := imagePath + "|" + correctAnswer
	if v, ok := t.cache.Get(key); ok {
		return v.(string), nil
	}

	img, err := imaging.Prepare(imagePath, t.cfg.MaxImageDim)
	if err != nil {
		return "", &ImageError{Path: imagePath, Err: err}
	}

	parts := PromptParts(correctAnswer)
	req := llm.Request{
		System: parts[0],
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: parts[1] + "\n\n" + parts[2],
			Images:  []llm.Image{{MIMEType: img.MIMEType, Data: img.Data}},
		}},
		MaxTokens:   t.cfg.MaxTokens,
		Temperature: t.cfg.Temperature,
	}

	resp, err := t.provider.Generate(llm.WithPurpose(ctx, llm.PurposeExplanation), req)
	if err != nil {
		var blocked *llm.ErrBlocked
		if errors.As(err, &blocked) {
			return "", blocked
		}
		return "", &RequestError{Err: err}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &RequestError{Err: errors.New("empty response")}
	}

	t.cache.SetDefault(key, text)
	t.log.WithFields(logrus.Fields{
		"image":  filepath.Base(imagePath),
		"tokens": resp.Usage.OutputTokens,
	}).Info("explanation generated")
	return text, nil
}

// Solution is Explain with failures turned into the learner-facing message.
func (t *Tutor) Solution(ctx context.Context, imagePath, correctAnswer string) string {
	text, err := t.Explain(ctx, imagePath, correctAnswer)
	if err != nil {
		return UserMessage(err)
	}
	return text
}

// UserMessage converts an Explain error into the text shown to learners.
func UserMessage(err error) string {
	var (
		imgErr  *ImageError
		blocked *llm.ErrBlocked
		reqErr  *RequestError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDisabled):
		return "AI features are currently disabled or the model is not initialized."
	case errors.As(err, &imgErr):
		return fmt.Sprintf("Error: Could not load image file '%s'.", filepath.Base(imgErr.Path))
	case errors.As(err, &blocked):
		msg := blocked.Message
		if msg == "" {
			msg = blocked.Reason
		}
		return "Error: AI response blocked. " + msg
	case errors.As(err, &reqErr):
		return "Error: Failed to get explanation from AI. " + reqErr.Err.Error()
	default:
		return "Error: Failed to get explanation from AI. " + err.Error()
	}
}

func classifySchema() *llm.Schema {
	enum := make([]any, len(problems.Categories))
	for i, c := range problems.Categories {
		enum[i] = c
	}
	return &llm.Schema{
		Name:        "problem-category",
		Description: "The main topic of a competition math problem",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"category": map[string]any{
					"type": "string",
					"enum": enum,
				},
			},
			"required":             []any{"category"},
			"additionalProperties": false,
		},
	}
}

// Classify asks the model for the topic of the problem image. The result
// is one of problems.Categories.
func (t *Tutor) Classify(ctx context.Context, imagePath string) (string, error) {
	if !t.Enabled() {
		return "", ErrDisabled
	}

	img, err := imaging.Prepare(imagePath, t.cfg.MaxImageDim)
	if err != nil {
		return "", &ImageError{Path: imagePath, Err: err}
	}

	req := llm.Request{
		System: "You classify competition math problems by topic.",
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: "Classify the problem in the image into exactly one category.",
			Images:  []llm.Image{{MIMEType: img.MIMEType, Data: img.Data}},
		}},
		Schema:    classifySchema(),
		MaxTokens: 256,
	}

	resp, err := t.provider.Generate(llm.WithPurpose(ctx, llm.PurposeClassify), req)
	if err != nil {
		return "", &RequestError{Err: err}
	}

	var out struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", &RequestError{Err: fmt.Errorf("parse category: %w", err)}
	}
	return out.Category, nil
}
