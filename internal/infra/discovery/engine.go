// Package discovery searches and scores tools across every enabled server.
package discovery

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"mcpbridge/internal/domain"
	"mcpbridge/internal/infra/pool"
	"mcpbridge/internal/infra/telemetry"
)

const (
	fanoutWorkers = 4
	maxMatches    = 10

	suggestionPool          = 5
	suggestionMinConfidence = 0.5
	suggestionMinMatches    = 2
)

// Engine fans out capability queries across the pool. A single server's
// failure is logged and skipped, never failing the aggregate call.
type Engine struct {
	pool   *pool.Pool
	logger *zap.Logger
}

func NewEngine(p *pool.Pool, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		pool:   p,
		logger: logger.Named("discovery"),
	}
}

// serverTools is one server's tool listing collected during a fan-out.
type serverTools struct {
	server string
	tools  []domain.Tool
}

// collectTools lists tools from every enabled server concurrently and
// returns the listings in server name order.
func (e *Engine) collectTools(ctx context.Context) []serverTools {
	names := e.enabledServers()
	results := make([]*serverTools, len(names))

	var wg sync.WaitGroup
	sem := make(chan struct{}, fanoutWorkers)
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			tools, err := e.listTools(ctx, name)
			if err != nil {
				e.skip(name, err)
				return
			}
			results[i] = &serverTools{server: name, tools: tools}
		}(i, name)
	}
	wg.Wait()

	var out []serverTools
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

func (e *Engine) listTools(ctx context.Context, name string) ([]domain.Tool, error) {
	client, err := e.pool.Client(ctx, name)
	if err != nil {
		return nil, err
	}
	return client.ListTools(ctx)
}

func (e *Engine) enabledServers() []string {
	var names []string
	for _, name := range e.pool.ConfiguredServers() {
		if cfg, ok := e.pool.Config(name); ok && cfg.Enabled {
			names = append(names, name)
		}
	}
	return names
}

func (e *Engine) skip(server string, err error) {
	e.logger.Warn("server skipped during fan-out",
		telemetry.EventField(telemetry.EventFanoutSkip),
		telemetry.ServerField(server),
		zap.Error(err),
	)
}

// SearchAllServers returns, per server, the tool names whose name or
// description contains the query. A positive limit caps the total number of
// matches, consumed server by server in name order.
func (e *Engine) SearchAllServers(ctx context.Context, query string, limit int) (map[string][]string, error) {
	listings := e.collectTools(ctx)

	out := make(map[string][]string)
	remaining := limit
	for _, listing := range listings {
		if limit > 0 && remaining == 0 {
			break
		}
		var names []string
		for _, tool := range listing.tools {
			if !matchesQuery(tool, query) {
				continue
			}
			names = append(names, tool.Name)
			if limit > 0 {
				remaining--
				if remaining == 0 {
					break
				}
			}
		}
		if len(names) > 0 {
			out[listing.server] = names
		}
	}
	return out, nil
}

// RecommendTools scores every enabled server's tools against the task
// description and returns at most ten matches, best first.
func (e *Engine) RecommendTools(ctx context.Context, task string) ([]domain.Match, error) {
	matches := e.scoreAll(ctx, task)
	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}
	return matches, nil
}

func (e *Engine) scoreAll(ctx context.Context, task string) []domain.Match {
	var matches []domain.Match
	for _, listing := range e.collectTools(ctx) {
		for _, tool := range listing.tools {
			confidence := scoreTool(tool, task)
			if confidence <= 0 {
				continue
			}
			matches = append(matches, domain.Match{
				Server:      listing.server,
				Tool:        tool.Name,
				Description: tool.Description,
				Confidence:  confidence,
			})
		}
	}
	// stable keeps encounter order among equal scores
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}

// DiscoverCapabilities summarizes what every enabled server offers. Without
// a query the report carries per-server capability counts; with a query it
// carries scored matches plus, when one server dominates, a suggested batch.
func (e *Engine) DiscoverCapabilities(ctx context.Context, query string) (domain.DiscoveryReport, error) {
	if query == "" {
		return domain.DiscoveryReport{Capabilities: e.countCapabilities(ctx)}, nil
	}

	matches := e.scoreAll(ctx, query)
	report := domain.DiscoveryReport{Matches: matches}
	if len(report.Matches) > maxMatches {
		report.Matches = report.Matches[:maxMatches]
	}
	report.SuggestedBatch = suggestBatch(matches)
	return report, nil
}

func (e *Engine) countCapabilities(ctx context.Context) map[string]domain.CapabilitySummary {
	names := e.enabledServers()
	summaries := make([]*domain.CapabilitySummary, len(names))

	var wg sync.WaitGroup
	sem := make(chan struct{}, fanoutWorkers)
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			client, err := e.pool.Client(ctx, name)
			if err != nil {
				e.skip(name, err)
				return
			}
			tools, err := client.ListTools(ctx)
			if err != nil {
				e.skip(name, err)
				return
			}

			summary := &domain.CapabilitySummary{Tools: len(tools)}
			// resource and prompt counts are optional; a server that
			// errors on either simply omits that count
			if resources, err := client.ListResources(ctx); err == nil {
				n := len(resources)
				summary.Resources = &n
			}
			if prompts, err := client.ListPrompts(ctx); err == nil {
				n := len(prompts)
				summary.Prompts = &n
			}
			summaries[i] = summary
		}(i, name)
	}
	wg.Wait()

	out := make(map[string]domain.CapabilitySummary)
	for i, summary := range summaries {
		if summary != nil {
			out[names[i]] = *summary
		}
	}
	return out
}

// suggestBatch groups the top confident matches by server and proposes a
// batch against the server holding at least two of them. Ties go to the
// server encountered first.
func suggestBatch(matches []domain.Match) *domain.BatchSuggestion {
	top := matches
	if len(top) > suggestionPool {
		top = top[:suggestionPool]
	}

	counts := make(map[string]int)
	var order []string
	for _, match := range top {
		if match.Confidence < suggestionMinConfidence {
			continue
		}
		if counts[match.Server] == 0 {
			order = append(order, match.Server)
		}
		counts[match.Server]++
	}

	best := ""
	for _, server := range order {
		if counts[server] >= suggestionMinMatches && (best == "" || counts[server] > counts[best]) {
			best = server
		}
	}
	if best == "" {
		return nil
	}

	suggestion := &domain.BatchSuggestion{Server: best}
	for _, match := range top {
		if match.Server == best && match.Confidence >= suggestionMinConfidence {
			suggestion.Operations = append(suggestion.Operations, domain.SuggestedOperation{
				Tool:      match.Tool,
				Arguments: map[string]any{},
			})
		}
	}
	return suggestion
}
