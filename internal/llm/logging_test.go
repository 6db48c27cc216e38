package llm

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/amcprep/internal/store"
)

func TestLoggingProvider_RecordsEvents(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "llm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`step 1`), Usage: Usage{InputTokens: 12, OutputTokens: 3}},
		MockResponse{Err: errors.New("boom")},
	)
	p := WithLogging(mock, s.EventRepo(), logger)

	ctx := WithPurpose(context.Background(), "explanation")
	req := Request{Messages: []Message{{
		Role:    RoleUser,
		Content: "Explain.",
		Images:  []Image{{MIMEType: "image/png", Data: []byte("png")}},
	}}}

	_, err = p.Generate(ctx, req)
	require.NoError(t, err)
	_, err = p.Generate(ctx, req)
	require.Error(t, err)

	events, err := s.EventRepo().QueryLLMEvents(ctx, store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 2)

	failed, ok := events[0], events[1]
	assert.False(t, failed.Success)
	assert.Equal(t, "boom", failed.ErrorMessage)
	assert.True(t, ok.Success)
	assert.Equal(t, "mock", ok.Provider)
	assert.Equal(t, "mock", failed.Provider)
	assert.Equal(t, "explanation", ok.Purpose)
	assert.Equal(t, 12, ok.InputTokens)
	assert.Contains(t, ok.RequestBody, "[image image/png, 3 bytes]")

	require.Len(t, hook.Entries, 2)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestLoggingProvider_NilRepo(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`ok`)})
	p := WithLogging(mock, nil, nil)

	resp, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "ok", string(resp.Content))
	assert.Equal(t, "mock", p.ModelID())
}
