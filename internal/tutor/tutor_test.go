package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/amcprep/internal/llm"
)

func writeImage(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, color.White)
		}
	}
	path := filepath.Join(t.TempDir(), "test_q.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func newTutor(p llm.Provider) *Tutor {
	logger, _ := test.NewNullLogger()
	return New(p, DefaultConfig(), logger)
}

func TestExplainSuccess(t *testing.T) {
	path := writeImage(t)
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage("Explanation with $x=1$ and \\boxed{C}."),
	})

	got, err := newTutor(mock).Explain(context.Background(), path, "C")
	require.NoError(t, err)
	assert.Equal(t, "Explanation with $x=1$ and \\boxed{C}.", got)

	require.Equal(t, 1, mock.CallCount())
	req := mock.Calls[0]
	assert.Contains(t, req.System, "You are a helpful math tutor.")
	require.Len(t, req.Messages, 1)

	msg := req.Messages[0]
	assert.Equal(t, llm.RoleUser, msg.Role)
	answerAt := strings.Index(msg.Content, "The correct answer for this multiple-choice question is 'C'.")
	latexAt := strings.Index(msg.Content, "Use LaTeX for mathematical expressions")
	require.GreaterOrEqual(t, answerAt, 0)
	require.GreaterOrEqual(t, latexAt, 0)
	assert.Less(t, answerAt, latexAt)

	require.Len(t, msg.Images, 1)
	assert.Equal(t, "image/png", msg.Images[0].MIMEType)
	assert.NotEmpty(t, msg.Images[0].Data)
}

func TestPromptPartsOrder(t *testing.T) {
	parts := PromptParts("B")
	require.Len(t, parts, 3)
	assert.Contains(t, parts[0], "You are a helpful math tutor.")
	assert.Contains(t, parts[1], "The correct answer for this multiple-choice question is 'B'.")
	assert.Contains(t, parts[2], "Use LaTeX for mathematical expressions")
}

func TestExplainCached(t *testing.T) {
	path := writeImage(t)
	mock := llm.NewMockProvider(llm.MockText("once"))
	tut := newTutor(mock)

	for i := 0; i < 3; i++ {
		got, err := tut.Explain(context.Background(), path, "A")
		require.NoError(t, err)
		assert.Equal(t, "once", got)
	}
	assert.Equal(t, 1, mock.CallCount())

	// A different answer is a different request.
	_, err := tut.Explain(context.Background(), path, "B")
	require.Error(t, err)
	assert.Equal(t, 2, mock.CallCount())
}

func TestExplainDisabled(t *testing.T) {
	tut := newTutor(nil)
	assert.False(t, tut.Enabled())

	_, err := tut.Explain(context.Background(), "/nonexistent/q.png", "A")
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Equal(t, "AI features are currently disabled or the model is not initialized.", UserMessage(err))
}

func TestExplainImageNotFound(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage("unused")})
	path := filepath.Join(t.TempDir(), "non_existent_image.png")

	_, err := newTutor(mock).Explain(context.Background(), path, "D")
	var imgErr *ImageError
	require.True(t, errors.As(err, &imgErr))
	assert.Equal(t, "Error: Could not load image file 'non_existent_image.png'.", UserMessage(err))
	assert.Equal(t, 0, mock.CallCount())
}

func TestExplainAPIError(t *testing.T) {
	path := writeImage(t)
	mock := llm.NewMockProvider(llm.MockResponse{Err: errors.New("Network connection failed")})

	_, err := newTutor(mock).Explain(context.Background(), path, "E")
	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))

	msg := UserMessage(err)
	assert.Contains(t, msg, "Error: Failed to get explanation from AI.")
	assert.Contains(t, msg, "Network connection failed")
}

func TestExplainBlocked(t *testing.T) {
	path := writeImage(t)
	mock := llm.NewMockProvider(llm.MockResponse{
		Err: &llm.ErrBlocked{Reason: "SAFETY", Message: "Blocked due to safety concerns."},
	})

	_, err := newTutor(mock).Explain(context.Background(), path, "A")
	var blocked *llm.ErrBlocked
	require.True(t, errors.As(err, &blocked))

	msg := UserMessage(err)
	assert.Contains(t, msg, "Error: AI response blocked.")
	assert.Contains(t, msg, "Blocked due to safety concerns.")

	assert.Equal(t, "Error: AI response blocked. OTHER", UserMessage(&llm.ErrBlocked{Reason: "OTHER"}))
}

func TestSolution(t *testing.T) {
	path := writeImage(t)
	mock := llm.NewMockProvider(llm.MockText("  steps  "))
	tut := newTutor(mock)

	assert.Equal(t, "steps", tut.Solution(context.Background(), path, "A"))
	assert.Equal(t,
		"AI features are currently disabled or the model is not initialized.",
		newTutor(nil).Solution(context.Background(), path, "A"))
}

func TestClassify(t *testing.T) {
	path := writeImage(t)
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"category":"Geometry"}`)})

	got, err := newTutor(mock).Classify(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Geometry", got)

	req := mock.Calls[0]
	require.NotNil(t, req.Schema)
	props := req.Schema.Definition["properties"].(map[string]any)
	enum := props["category"].(map[string]any)["enum"].([]any)
	assert.Contains(t, enum, "Geometry")
}

func TestClassifyBadJSON(t *testing.T) {
	path := writeImage(t)
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`not json`)})

	_, err := newTutor(mock).Classify(context.Background(), path)
	assert.Error(t, err)
}
