package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingLister struct{ StubToolExecutor }

func (f *failingLister) ListTools(_ context.Context) ([]ToolDefinition, error) {
	return nil, errors.New("server down")
}

type closeCounter struct {
	StubToolExecutor
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

func TestStubToolExecutor(t *testing.T) {
	tools := []ToolDefinition{{Name: "research.search_topic"}}
	stub := NewStubToolExecutor(tools)

	listed, err := stub.ListTools(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tools, listed)

	result, err := stub.Execute(context.Background(), ToolCall{ID: "c1", Name: "research.search_topic", Arguments: `{"topic":"go"}`})
	require.NoError(t, err)
	assert.Equal(t, "c1", result.CallID)
	assert.Contains(t, result.Content, `{"topic":"go"}`)
	assert.False(t, result.IsError)
}

func TestCompositeToolExecutor_RoutesByName(t *testing.T) {
	search := NewStubToolExecutor([]ToolDefinition{{Name: "ddg.search"}})
	web := NewStubToolExecutor([]ToolDefinition{{Name: "web.fetch_page"}, {Name: "ddg.search"}})
	comp := NewCompositeToolExecutor(search, nil, web)

	tools, err := comp.ListTools(context.Background())
	require.NoError(t, err)
	require.Len(t, tools, 2, "duplicate names are listed once")
	assert.Equal(t, "ddg.search", tools[0].Name)
	assert.Equal(t, "web.fetch_page", tools[1].Name)

	result, err := comp.Execute(context.Background(), ToolCall{ID: "1", Name: "web.fetch_page"})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, result.Content, "web.fetch_page")
}

func TestCompositeToolExecutor_UnknownToolIsObservation(t *testing.T) {
	comp := NewCompositeToolExecutor(NewStubToolExecutor([]ToolDefinition{{Name: "ddg.search"}}))
	_, err := comp.ListTools(context.Background())
	require.NoError(t, err)

	result, err := comp.Execute(context.Background(), ToolCall{ID: "1", Name: "nope.tool"})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, "ddg.search")
}

func TestCompositeToolExecutor_PartialListFailure(t *testing.T) {
	comp := NewCompositeToolExecutor(&failingLister{}, NewStubToolExecutor([]ToolDefinition{{Name: "web.fetch_page"}}))
	tools, err := comp.ListTools(context.Background())
	require.NoError(t, err)
	assert.Len(t, tools, 1)

	comp = NewCompositeToolExecutor(&failingLister{})
	_, err = comp.ListTools(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server down")
}

func TestCompositeToolExecutor_CloseAll(t *testing.T) {
	a, b := &closeCounter{}, &closeCounter{}
	require.NoError(t, NewCompositeToolExecutor(a, b).Close())
	assert.Equal(t, 1, a.closed)
	assert.Equal(t, 1, b.closed)
}
