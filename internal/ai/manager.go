package ai

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// OpLimits bounds one AI operation: wall-clock timeout in seconds and a
// cap on input size in bytes.
type OpLimits struct {
	Timeout       int
	MaxInputChars int
}

type ManagerConfig struct {
	Embed    OpLimits
	Generate OpLimits
}

// Manager pairs the embedder with an optional text generator. The
// generator only serves summary polishing; it is never required for the
// embedding path to work. Each operation runs under its own limits.
type Manager struct {
	embedder  IEmbedder
	generator IGenerator
	cfg       ManagerConfig
}

func NewManager(embedder IEmbedder, generator IGenerator, cfg ManagerConfig) *Manager {
	return &Manager{
		embedder:  embedder,
		generator: generator,
		cfg:       cfg,
	}
}

func (m *Manager) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	if m.embedder == nil {
		return nil, fmt.Errorf("embedder not configured")
	}
	text = truncateInput(text, m.cfg.Embed.MaxInputChars)
	if m.cfg.Embed.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(m.cfg.Embed.Timeout)*time.Second)
		defer cancel()
	}
	return m.embedder.Embed(ctx, text, taskType)
}

// PolishSummary rewrites an intake summary for clarity without changing
// its content. Returns ErrUnavailable when no generator is configured.
func (m *Manager) PolishSummary(ctx context.Context, summary string) (string, error) {
	if m.generator == nil {
		return "", ErrUnavailable
	}
	summary = truncateInput(summary, m.cfg.Generate.MaxInputChars)
	prompt := fmt.Sprintf(`You are a clinical documentation assistant.
Rewrite the patient intake summary below to be clear and well organized.
- Keep every fact, do not add findings or recommendations.
- Keep the section structure.
- Output ONLY the rewritten summary.

SUMMARY:
%s`, summary)
	if m.cfg.Generate.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(m.cfg.Generate.Timeout)*time.Second)
		defer cancel()
	}
	resp, err := m.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp)
	if text == "" {
		return "", fmt.Errorf("empty ai response")
	}
	return text, nil
}

func (m *Manager) EmbeddingModelName() string {
	if m.embedder == nil {
		return ""
	}
	return m.embedder.ModelName()
}

func (m *Manager) MaxInputChars() int {
	return m.cfg.Embed.MaxInputChars
}

// truncateInput caps text at max bytes without splitting a multi-byte
// rune at the cut point.
func truncateInput(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
