// Package collect dispara los colectores externos que regeneran los
// artefactos de feed. Los colectores son procesos aparte a propósito:
// scrapean fuentes distintas con cadencias distintas y este proceso solo
// los invoca cuando el modo fix encuentra un feed stale.
package collect

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// defaultRefreshRate limita los refrescos a uno cada 5s sin burst.
// Los upstreams de datos NBA banean IPs que scrapean en ráfaga.
const defaultRefreshRate = 5 * time.Second

// ExecCollector implementa ports.Collector ejecutando un comando externo
// con el nombre del feed como argumento.
type ExecCollector struct {
	command []string
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger
}

// NewExecCollector crea un colector sobre el comando dado
// (p. ej. "python3 collectors/run.py"). every <= 0 usa el default.
func NewExecCollector(command string, every time.Duration, logger *slog.Logger) (*ExecCollector, error) {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return nil, fmt.Errorf("collect.NewExecCollector: comando vacío")
	}
	if every <= 0 {
		every = defaultRefreshRate
	}
	return &ExecCollector{
		command: parts,
		limiter: rate.NewLimiter(rate.Every(every), 1),
		timeout: 2 * time.Minute,
		logger:  logger,
	}, nil
}

// Refresh regenera el artefacto del feed dado, respetando el rate limit.
func (c *ExecCollector) Refresh(ctx context.Context, feed string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("collect.Refresh: rate limiter: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := append(append([]string{}, c.command[1:]...), feed)
	cmd := exec.CommandContext(runCtx, c.command[0], args...)

	c.logger.Info("refreshing feed", "feed", feed, "command", strings.Join(c.command, " "))
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("collect.Refresh: %s: %w: %s", feed, err, strings.TrimSpace(string(out)))
	}
	return nil
}
