package transport

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mcpbridge/internal/domain"
)

func mapTool(tool *mcp.Tool) domain.Tool {
	if tool == nil {
		return domain.Tool{}
	}
	return domain.Tool{
		Name:        tool.Name,
		Description: tool.Description,
		InputSchema: tool.InputSchema,
	}
}

func mapTools(tools []*mcp.Tool) []domain.Tool {
	out := make([]domain.Tool, 0, len(tools))
	for _, tool := range tools {
		if tool == nil {
			continue
		}
		out = append(out, mapTool(tool))
	}
	return out
}

func mapResources(resources []*mcp.Resource) []domain.Resource {
	out := make([]domain.Resource, 0, len(resources))
	for _, res := range resources {
		if res == nil {
			continue
		}
		out = append(out, domain.Resource{
			URI:         res.URI,
			Name:        res.Name,
			Description: res.Description,
			MIMEType:    res.MIMEType,
		})
	}
	return out
}

func mapResourceContents(contents []*mcp.ResourceContents) []domain.ResourceContents {
	out := make([]domain.ResourceContents, 0, len(contents))
	for _, c := range contents {
		if c == nil {
			continue
		}
		out = append(out, domain.ResourceContents{
			URI:      c.URI,
			MIMEType: c.MIMEType,
			Text:     c.Text,
			Blob:     c.Blob,
		})
	}
	return out
}

func mapPrompts(prompts []*mcp.Prompt) []domain.Prompt {
	out := make([]domain.Prompt, 0, len(prompts))
	for _, prompt := range prompts {
		if prompt == nil {
			continue
		}
		args := make([]domain.PromptArgument, 0, len(prompt.Arguments))
		for _, arg := range prompt.Arguments {
			if arg == nil {
				continue
			}
			args = append(args, domain.PromptArgument{
				Name:        arg.Name,
				Description: arg.Description,
				Required:    arg.Required,
			})
		}
		out = append(out, domain.Prompt{
			Name:        prompt.Name,
			Description: prompt.Description,
			Arguments:   args,
		})
	}
	return out
}

func mapContent(content mcp.Content) domain.Content {
	switch typed := content.(type) {
	case *mcp.TextContent:
		return domain.Content{Kind: domain.ContentText, Text: typed.Text}
	case *mcp.ImageContent:
		return domain.Content{Kind: domain.ContentImage, Data: typed.Data, MIMEType: typed.MIMEType}
	case *mcp.AudioContent:
		return domain.Content{Kind: domain.ContentAudio, Data: typed.Data, MIMEType: typed.MIMEType}
	case *mcp.EmbeddedResource:
		out := domain.Content{Kind: domain.ContentResource}
		if typed.Resource != nil {
			out.Resource = &domain.ResourceContents{
				URI:      typed.Resource.URI,
				MIMEType: typed.Resource.MIMEType,
				Text:     typed.Resource.Text,
				Blob:     typed.Resource.Blob,
			}
		}
		return out
	case *mcp.ResourceLink:
		return domain.Content{
			Kind:     domain.ContentResource,
			MIMEType: typed.MIMEType,
			Resource: &domain.ResourceContents{URI: typed.URI},
		}
	default:
		return domain.Content{Kind: domain.ContentText}
	}
}

func mapToolResult(result *mcp.CallToolResult) domain.ToolResult {
	if result == nil {
		return domain.ToolResult{}
	}
	out := domain.ToolResult{
		Content: make([]domain.Content, 0, len(result.Content)),
		IsError: result.IsError,
	}
	for _, c := range result.Content {
		out.Content = append(out.Content, mapContent(c))
	}
	return out
}

func mapPromptResult(result *mcp.GetPromptResult) domain.PromptResult {
	if result == nil {
		return domain.PromptResult{}
	}
	out := domain.PromptResult{
		Description: result.Description,
		Messages:    make([]domain.PromptMessage, 0, len(result.Messages)),
	}
	for _, msg := range result.Messages {
		if msg == nil {
			continue
		}
		out.Messages = append(out.Messages, domain.PromptMessage{
			Role:    string(msg.Role),
			Content: mapContent(msg.Content),
		})
	}
	return out
}

func mapServerInfo(init *mcp.InitializeResult) domain.ServerInfo {
	if init == nil {
		return domain.ServerInfo{}
	}
	out := domain.ServerInfo{
		ProtocolVersion: init.ProtocolVersion,
		Instructions:    init.Instructions,
	}
	if init.ServerInfo != nil {
		out.Name = init.ServerInfo.Name
		out.Version = init.ServerInfo.Version
	}
	return out
}
