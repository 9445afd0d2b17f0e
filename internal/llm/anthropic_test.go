package llm

import (
	"context"
	"errors"
	"testing"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockMessager struct {
	resp   *anthropic.Message
	err    error
	params []anthropic.MessageNewParams
}

func (m *mockMessager) New(_ context.Context, params anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	m.params = append(m.params, params)
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

func newMockMessage(texts ...string) *anthropic.Message {
	blocks := make([]anthropic.ContentBlockUnion, 0, len(texts))
	for _, t := range texts {
		blocks = append(blocks, anthropic.ContentBlockUnion{Type: "text", Text: t})
	}
	return &anthropic.Message{Content: blocks}
}

func withMockClient(t *testing.T, mock *mockMessager) {
	t.Helper()
	orig := newAnthropicClient
	newAnthropicClient = func(string) AnthropicMessager { return mock }
	t.Cleanup(func() { newAnthropicClient = orig })
}

func TestNewAnthropicClient_RequiresKey(t *testing.T) {
	_, err := NewAnthropicClient("  ", "claude-sonnet-4-20250514")
	assert.Error(t, err)
}

func TestAnthropicClient_Generate(t *testing.T) {
	mock := &mockMessager{resp: newMockMessage(`{"a":`, `1}`)}
	withMockClient(t, mock)

	c, err := NewAnthropicClient("sk-test", "claude-sonnet-4-20250514")
	require.NoError(t, err)

	out, err := c.Generate(context.Background(), Request{System: "sys", User: "hello", JSON: true})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)

	require.Len(t, mock.params, 1)
	p := mock.params[0]
	assert.Equal(t, anthropic.Model("claude-sonnet-4-20250514"), p.Model)
	assert.EqualValues(t, maxOutputTokens, p.MaxTokens)
	require.Len(t, p.System, 1)
	assert.Equal(t, "sys", p.System[0].Text)
	require.Len(t, p.Messages, 1)
	assert.Len(t, p.Messages[0].Content, 1)
}

func TestAnthropicClient_GenerateWithImage(t *testing.T) {
	mock := &mockMessager{resp: newMockMessage("pH: 6.2")}
	withMockClient(t, mock)

	c, err := NewAnthropicClient("sk-test", "claude-sonnet-4-20250514")
	require.NoError(t, err)

	out, err := c.Generate(context.Background(), Request{User: "transcribe", Image: []byte("img"), ImageMIME: "image/jpeg"})
	require.NoError(t, err)
	assert.Equal(t, "pH: 6.2", out)

	p := mock.params[0]
	assert.Empty(t, p.System)
	content := p.Messages[0].Content
	require.Len(t, content, 2)
	assert.NotNil(t, content[0].OfImage)
	assert.NotNil(t, content[1].OfText)
}

func TestAnthropicClient_GenerateError(t *testing.T) {
	mock := &mockMessager{err: errors.New("529 overloaded")}
	withMockClient(t, mock)

	c, err := NewAnthropicClient("sk-test", "claude-sonnet-4-20250514")
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), Request{User: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "529 overloaded")
}
