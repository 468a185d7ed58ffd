package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config describes the desired logging configuration.
type Config struct {
	Level          string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format         string `yaml:"format" validate:"omitempty,oneof=json text"`
	FilePath       string `yaml:"file_path"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb" validate:"gte=0"`
	FileMaxFiles   int    `yaml:"file_max_files" validate:"gte=0"`
	FileMaxAgeDays int    `yaml:"file_max_age_days" validate:"gte=0"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Level:          "info",
		Format:         "json",
		FileMaxSizeMB:  100,
		FileMaxFiles:   3,
		FileMaxAgeDays: 30,
	}
}

// String returns a human-readable summary of the config.
func (c Config) String() string {
	s := fmt.Sprintf("level=%s format=%s", c.Level, c.Format)
	if c.FilePath != "" {
		s += fmt.Sprintf(" file=%s max_size=%dMB max_files=%d max_age=%dd",
			c.FilePath, c.FileMaxSizeMB, c.FileMaxFiles, c.FileMaxAgeDays)
	}
	return s
}

// outputChanged reports whether switching from c to next needs a new handler.
// Level changes alone are applied through the shared LevelVar.
func (c Config) outputChanged(next Config) bool {
	return c.Format != next.Format ||
		c.FilePath != next.FilePath ||
		c.FileMaxSizeMB != next.FileMaxSizeMB ||
		c.FileMaxFiles != next.FileMaxFiles ||
		c.FileMaxAgeDays != next.FileMaxAgeDays
}

// swapHandler is a slog.Handler whose inner handler can be replaced while
// loggers derived from it keep working. Derived handlers remember the attrs
// and groups applied to them and replay them onto each new inner handler.
// The replayed handler is cached until the next swap.
type swapHandler struct {
	root  *atomic.Pointer[slog.Handler]
	apply func(slog.Handler) slog.Handler
	cache atomic.Pointer[derivedHandler]
}

type derivedHandler struct {
	base *slog.Handler
	h    slog.Handler
}

func newSwapHandler(h slog.Handler) *swapHandler {
	root := &atomic.Pointer[slog.Handler]{}
	root.Store(&h)
	return &swapHandler{root: root, apply: func(h slog.Handler) slog.Handler { return h }}
}

func (s *swapHandler) current() slog.Handler {
	base := s.root.Load()
	if d := s.cache.Load(); d != nil && d.base == base {
		return d.h
	}
	h := s.apply(*base)
	s.cache.Store(&derivedHandler{base: base, h: h})
	return h
}

func (s *swapHandler) swap(h slog.Handler) {
	s.root.Store(&h)
}

func (s *swapHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return s.current().Enabled(ctx, level)
}

func (s *swapHandler) Handle(ctx context.Context, r slog.Record) error {
	return s.current().Handle(ctx, r)
}

func (s *swapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prev := s.apply
	return &swapHandler{root: s.root, apply: func(h slog.Handler) slog.Handler {
		return prev(h).WithAttrs(attrs)
	}}
}

func (s *swapHandler) WithGroup(name string) slog.Handler {
	prev := s.apply
	return &swapHandler{root: s.root, apply: func(h slog.Handler) slog.Handler {
		return prev(h).WithGroup(name)
	}}
}

// Manager owns the logger lifecycle and supports runtime reconfiguration.
type Manager struct {
	mu       sync.Mutex
	levelVar *slog.LevelVar
	handler  *swapHandler
	config   Config
	closer   io.Closer
	stdout   io.Writer
}

// NewManager creates a Manager writing to stdout (and optionally a rotating
// file) and returns it along with a ready-to-use logger.
func NewManager(cfg Config) (*Manager, *slog.Logger) {
	return newManager(cfg, os.Stdout)
}

func newManager(cfg Config, stdout io.Writer) (*Manager, *slog.Logger) {
	lvl := &slog.LevelVar{}
	lvl.Set(ParseLevel(cfg.Level))

	w, closer := buildWriter(cfg, stdout)
	m := &Manager{
		levelVar: lvl,
		handler:  newSwapHandler(buildHandler(w, lvl, cfg.Format)),
		config:   cfg,
		closer:   closer,
		stdout:   stdout,
	}
	return m, slog.New(m.handler)
}

// Reconfigure applies cfg at runtime. Loggers already handed out pick up
// the change, including those derived with With.
func (m *Manager) Reconfigure(cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.levelVar.Set(ParseLevel(cfg.Level))

	if m.config.outputChanged(cfg) {
		if m.closer != nil {
			m.closer.Close() //nolint:errcheck
			m.closer = nil
		}
		w, closer := buildWriter(cfg, m.stdout)
		m.handler.swap(buildHandler(w, m.levelVar, cfg.Format))
		m.closer = closer
	}

	m.config = cfg
}

// Config returns the current configuration snapshot.
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// Close releases the log file writer, if any.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closer == nil {
		return nil
	}
	err := m.closer.Close()
	m.closer = nil
	return err
}

// ParseLevel converts a level name to slog.Level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// buildWriter returns stdout, or stdout plus a lumberjack file when a path
// is configured. The lumberjack logger is returned as the closer.
func buildWriter(cfg Config, stdout io.Writer) (io.Writer, io.Closer) {
	if cfg.FilePath == "" {
		return stdout, nil
	}

	def := DefaultConfig()
	lj := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    positiveOr(cfg.FileMaxSizeMB, def.FileMaxSizeMB),
		MaxBackups: positiveOr(cfg.FileMaxFiles, def.FileMaxFiles),
		MaxAge:     positiveOr(cfg.FileMaxAgeDays, def.FileMaxAgeDays),
	}
	return io.MultiWriter(stdout, lj), lj
}

func buildHandler(w io.Writer, leveler slog.Leveler, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: leveler}
	if format == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

func positiveOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
