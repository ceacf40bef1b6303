package discovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mcpbridge/internal/domain"
	"mcpbridge/internal/infra/pool"
	"mcpbridge/internal/infra/transport"
)

type catalogAdapter struct {
	connected  bool
	connectErr error
	tools      []domain.Tool
	resources  []domain.Resource
	prompts    []domain.Prompt
	listErr    error
}

func (c *catalogAdapter) Connect(ctx context.Context) error {
	if c.connectErr != nil {
		return c.connectErr
	}
	c.connected = true
	return nil
}

func (c *catalogAdapter) Disconnect(ctx context.Context) error {
	c.connected = false
	return nil
}

func (c *catalogAdapter) IsConnected() bool { return c.connected }

func (c *catalogAdapter) ServerInfo(ctx context.Context) (domain.ServerInfo, error) {
	return domain.ServerInfo{}, nil
}

func (c *catalogAdapter) ListTools(ctx context.Context) ([]domain.Tool, error) {
	return c.tools, nil
}

func (c *catalogAdapter) Tool(ctx context.Context, name string) (domain.Tool, bool, error) {
	for _, tool := range c.tools {
		if tool.Name == name {
			return tool, true, nil
		}
	}
	return domain.Tool{}, false, nil
}

func (c *catalogAdapter) CallTool(ctx context.Context, name string, args map[string]any) (domain.ToolResult, error) {
	return domain.ToolResult{}, nil
}

func (c *catalogAdapter) ListResources(ctx context.Context) ([]domain.Resource, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	return c.resources, nil
}

func (c *catalogAdapter) ReadResource(ctx context.Context, uri string) ([]domain.ResourceContents, error) {
	return nil, nil
}

func (c *catalogAdapter) ListPrompts(ctx context.Context) ([]domain.Prompt, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	return c.prompts, nil
}

func (c *catalogAdapter) GetPrompt(ctx context.Context, name string, args map[string]string) (domain.PromptResult, error) {
	return domain.PromptResult{}, nil
}

func (c *catalogAdapter) SetTimeout(d time.Duration) {}
func (c *catalogAdapter) Timeout() time.Duration     { return 0 }

func newTestEngine(adapters map[string]*catalogAdapter) *Engine {
	configs := make(map[string]domain.ServerConfig, len(adapters))
	for name := range adapters {
		configs[name] = domain.ServerConfig{
			Transport: domain.TransportStdio,
			Command:   "npx",
			Enabled:   true,
		}
	}
	p := pool.New(configs, pool.Options{
		Factory: func(server string, cfg domain.ServerConfig) (transport.Adapter, error) {
			return adapters[server], nil
		},
	})
	return NewEngine(p, nil)
}

func TestScoreTool_RanksNameAndDescriptionHits(t *testing.T) {
	fileSearch := domain.Tool{Name: "file_search", Description: "Search for files"}
	calculate := domain.Tool{Name: "calculate", Description: "math"}

	task := "search for files"
	searchScore := scoreTool(fileSearch, task)
	calcScore := scoreTool(calculate, task)

	require.Greater(t, searchScore, calcScore)
	require.GreaterOrEqual(t, searchScore, 0.0)
	require.LessOrEqual(t, searchScore, 1.0)
	require.InDelta(t, 0.6, searchScore, 1e-9)
	require.Zero(t, calcScore)
}

func TestScoreTool_ConfidenceClampedToOne(t *testing.T) {
	tool := domain.Tool{
		Name:        "search_files_read_write_list",
		Description: "search files read write list directories recursively",
	}
	task := "search files read write list directories recursively"
	require.Equal(t, 1.0, scoreTool(tool, task))
}

func TestSearchAllServers_MatchesAcrossServers(t *testing.T) {
	engine := newTestEngine(map[string]*catalogAdapter{
		"fs": {tools: []domain.Tool{
			{Name: "file_search", Description: "Search for files"},
			{Name: "file_delete", Description: "Delete a file"},
		}},
		"math": {tools: []domain.Tool{
			{Name: "calculate", Description: "math"},
		}},
	})

	matches, err := engine.SearchAllServers(context.Background(), "search", 0)
	require.NoError(t, err)
	require.Equal(t, map[string][]string{"fs": {"file_search"}}, matches)
}

func TestSearchAllServers_LimitConsumedInServerOrder(t *testing.T) {
	engine := newTestEngine(map[string]*catalogAdapter{
		"alpha": {tools: []domain.Tool{
			{Name: "file_read"}, {Name: "file_write"},
		}},
		"beta": {tools: []domain.Tool{
			{Name: "file_stat"},
		}},
	})

	matches, err := engine.SearchAllServers(context.Background(), "file", 2)
	require.NoError(t, err)
	require.Equal(t, map[string][]string{"alpha": {"file_read", "file_write"}}, matches)
}

func TestSearchAllServers_FailingServerSkipped(t *testing.T) {
	engine := newTestEngine(map[string]*catalogAdapter{
		"good": {tools: []domain.Tool{{Name: "file_search"}}},
		"bad":  {connectErr: errors.New("spawn failed")},
	})

	matches, err := engine.SearchAllServers(context.Background(), "file", 0)
	require.NoError(t, err, "one failing server must not fail the aggregate")
	require.Equal(t, map[string][]string{"good": {"file_search"}}, matches)
}

func TestRecommendTools_SortedAndCapped(t *testing.T) {
	tools := make([]domain.Tool, 0, 12)
	for _, name := range []string{
		"file_read", "file_write", "file_stat", "file_list", "file_copy", "file_move",
		"file_touch", "file_chmod", "file_chown", "file_link", "file_sync", "file_trim",
	} {
		tools = append(tools, domain.Tool{Name: name, Description: "works on a file"})
	}
	engine := newTestEngine(map[string]*catalogAdapter{"fs": {tools: tools}})

	matches, err := engine.RecommendTools(context.Background(), "file read write")
	require.NoError(t, err)
	require.LessOrEqual(t, len(matches), 10)
	for i := 1; i < len(matches); i++ {
		require.GreaterOrEqual(t, matches[i-1].Confidence, matches[i].Confidence)
	}
	require.Equal(t, "file_read", matches[0].Tool)
}

func TestDiscoverCapabilities_CountsWithoutQuery(t *testing.T) {
	engine := newTestEngine(map[string]*catalogAdapter{
		"fs": {
			tools:     []domain.Tool{{Name: "file_read"}},
			resources: []domain.Resource{{URI: "file:///tmp"}},
			prompts:   []domain.Prompt{{Name: "summarize"}, {Name: "review"}},
		},
		"flaky": {
			tools:   []domain.Tool{{Name: "ping"}},
			listErr: errors.New("unsupported"),
		},
	})

	report, err := engine.DiscoverCapabilities(context.Background(), "")
	require.NoError(t, err)

	fs := report.Capabilities["fs"]
	require.Equal(t, 1, fs.Tools)
	require.NotNil(t, fs.Resources)
	require.Equal(t, 1, *fs.Resources)
	require.NotNil(t, fs.Prompts)
	require.Equal(t, 2, *fs.Prompts)

	flaky := report.Capabilities["flaky"]
	require.Equal(t, 1, flaky.Tools)
	require.Nil(t, flaky.Resources, "a failing optional listing omits the count")
	require.Nil(t, flaky.Prompts)
}

func TestDiscoverCapabilities_SuggestsBatchForDominantServer(t *testing.T) {
	engine := newTestEngine(map[string]*catalogAdapter{
		"fs": {tools: []domain.Tool{
			{Name: "file_read", Description: "read files from disk"},
			{Name: "file_write", Description: "write files to disk"},
		}},
		"math": {tools: []domain.Tool{
			{Name: "calculate", Description: "math"},
		}},
	})

	report, err := engine.DiscoverCapabilities(context.Background(), "read and write files")
	require.NoError(t, err)
	require.NotEmpty(t, report.Matches)

	require.NotNil(t, report.SuggestedBatch)
	require.Equal(t, "fs", report.SuggestedBatch.Server)
	require.Len(t, report.SuggestedBatch.Operations, 2)
}

func TestDiscoverCapabilities_NoSuggestionBelowThreshold(t *testing.T) {
	engine := newTestEngine(map[string]*catalogAdapter{
		"fs": {tools: []domain.Tool{
			{Name: "file_read", Description: "read files from disk"},
		}},
	})

	report, err := engine.DiscoverCapabilities(context.Background(), "read and write files")
	require.NoError(t, err)
	require.Nil(t, report.SuggestedBatch, "a single qualifying match is not enough")
}
