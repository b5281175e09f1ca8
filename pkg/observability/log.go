package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every event to a logger at debug level, and failures at
// warn level.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks writing to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger}
}

func (h *LogHooks) done(msg string, err error, keyvals ...any) {
	if err != nil {
		h.logger.Warn(msg+" failed", append(keyvals, "err", err)...)
		return
	}
	h.logger.Debug(msg, keyvals...)
}

func (h *LogHooks) OnParse(_ context.Context, format string, nodes, branches int, d time.Duration, err error) {
	h.done("parsed netlist", err, "format", format, "nodes", nodes, "branches", branches, "took", d)
}

func (h *LogHooks) OnAnalyze(_ context.Context, nodes, branches, cycles int, d time.Duration, err error) {
	h.done("built cycle basis", err, "nodes", nodes, "branches", branches, "cycles", cycles, "took", d)
}

func (h *LogHooks) OnSolve(_ context.Context, size int, reduced bool, d time.Duration, err error) {
	h.done("solved system", err, "size", size, "reduced", reduced, "took", d)
}

func (h *LogHooks) OnRender(_ context.Context, kind, format string, n int, d time.Duration, err error) {
	h.done("rendered", err, "kind", kind, "format", format, "bytes", n, "took", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Info("response", "method", method, "route", route, "status", status, "took", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
