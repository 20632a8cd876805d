package repository

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"golang-stock-selector/internal/analyzer/config"
	"golang-stock-selector/internal/analyzer/dto"
	"golang-stock-selector/pkg/logger"
)

// claudeCLIRepository shells out to the Claude CLI for analysis.
type claudeCLIRepository struct {
	bin    string
	logger *logger.Logger
}

// NewClaudeCLIRepository creates an AIRepository backed by the Claude CLI.
func NewClaudeCLIRepository(cfg *config.Config, log *logger.Logger) AIRepository {
	bin := cfg.Claude.Bin
	if bin == "" {
		bin = "claude"
	}
	return &claudeCLIRepository{bin: bin, logger: log}
}

func (r *claudeCLIRepository) Analyze(ctx context.Context, prompt string) dto.LLMResult {
	out, err := runCLI(ctx, []string{r.bin, "--print", "-p", prompt}, "")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			r.logger.Error("Claude CLI not found. Is it installed?")
			return dto.LLMResult{"error": "Claude CLI not found"}
		}
		r.logger.Error("Claude CLI error", logger.ErrorField(err))
		return dto.LLMResult{"error": err.Error()}
	}

	return ParseLLMResponse(strings.TrimSpace(out.stdout))
}
