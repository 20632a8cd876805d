package repository

import (
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"strings"

	"golang-stock-selector/internal/analyzer/config"
	"golang-stock-selector/internal/analyzer/dto"
	"golang-stock-selector/pkg/logger"
)

const defaultCodexCmd = "codex exec --json {prompt}"

// codexCLIRepository shells out to the Codex CLI. The configured command is a
// template: a {prompt} placeholder is substituted shell-quoted, otherwise the
// prompt is passed on stdin.
type codexCLIRepository struct {
	bin         string
	cmdTemplate string
	logger      *logger.Logger
}

// NewCodexCLIRepository creates an AIRepository backed by the Codex CLI.
func NewCodexCLIRepository(cfg *config.Config, log *logger.Logger) AIRepository {
	cmd := cfg.Codex.Cmd
	if cmd == "" {
		cmd = defaultCodexCmd
	}
	bin := cfg.Codex.Bin
	if bin == "" {
		bin = "codex"
	}
	return &codexCLIRepository{bin: bin, cmdTemplate: cmd, logger: log}
}

func (r *codexCLIRepository) Analyze(ctx context.Context, prompt string) dto.LLMResult {
	cmdStr := r.cmdTemplate
	stdin := ""
	if strings.Contains(cmdStr, "{prompt}") {
		cmdStr = strings.ReplaceAll(cmdStr, "{prompt}", quoteArg(prompt))
	} else {
		stdin = prompt
	}

	argv := splitCommand(cmdStr)
	if len(argv) == 0 {
		return dto.LLMResult{"error": "codex command resolved to an empty command"}
	}
	if argv[0] == "codex" {
		argv[0] = r.bin
	}

	out, err := runCLI(ctx, argv, stdin)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			r.logger.Error("Codex CLI not found. Is it installed?")
			return dto.LLMResult{"error": "Codex CLI not found"}
		}
		r.logger.Error("Codex CLI error", logger.ErrorField(err))
		return dto.LLMResult{"error": err.Error()}
	}

	responseText := strings.TrimSpace(out.stdout)
	streamText, streamUsed := ExtractCodexStreamText(responseText)
	if streamUsed {
		var result map[string]interface{}
		if err := json.Unmarshal([]byte(streamText), &result); err != nil {
			return dto.LLMResult{
				"error":       "Codex JSON stream did not contain valid JSON in agent message",
				"raw_text":    streamText,
				"parse_error": true,
			}
		}
		return dto.LLMResult(result)
	}
	return ParseLLMResponse(streamText)
}
