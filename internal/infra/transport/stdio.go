package transport

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"mcpbridge/internal/domain"
)

// newStdioAdapter spawns the configured command as a child process and
// speaks the protocol over its stdin/stdout. The child inherits the parent
// environment with the configured overrides appended.
func newStdioAdapter(server string, cfg domain.ServerConfig, logger *zap.Logger) Adapter {
	dial := func(ctx context.Context) (*mcp.ClientSession, error) {
		cmd := exec.Command(cfg.Command, cfg.Args...)
		cmd.Env = os.Environ()
		for key, value := range cfg.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
		}
		if cfg.Cwd != "" {
			cmd.Dir = cfg.Cwd
		}
		cmd.Stderr = os.Stderr
		return newMCPClient().Connect(ctx, &mcp.CommandTransport{Command: cmd}, nil)
	}
	return newSessionAdapter(server, domain.TransportStdio, cfg.Timeout(), logger, dial)
}
