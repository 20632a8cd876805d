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

const defaultOpencodeCmd = "opencode run {prompt} --format json"

// opencodeCLIRepository shells out to the Opencode CLI.
type opencodeCLIRepository struct {
	bin         string
	cmdTemplate string
	logger      *logger.Logger
}

// NewOpencodeCLIRepository creates an AIRepository backed by the Opencode CLI.
func NewOpencodeCLIRepository(cfg *config.Config, log *logger.Logger) AIRepository {
	cmd := cfg.Opencode.Cmd
	if cmd == "" {
		cmd = defaultOpencodeCmd
	}
	bin := cfg.Opencode.Bin
	if bin == "" {
		bin = "opencode"
	}
	return &opencodeCLIRepository{bin: bin, cmdTemplate: cmd, logger: log}
}

func (r *opencodeCLIRepository) Analyze(ctx context.Context, prompt string) dto.LLMResult {
	cmdStr := r.cmdTemplate
	stdin := ""
	if strings.Contains(cmdStr, "{prompt}") {
		cmdStr = strings.ReplaceAll(cmdStr, "{prompt}", quoteArg(prompt))
	} else {
		stdin = prompt
	}

	argv := splitCommand(cmdStr)
	if len(argv) == 0 {
		return dto.LLMResult{"error": "opencode command resolved to an empty command"}
	}
	if argv[0] == "opencode" {
		argv[0] = r.bin
	}

	out, err := runCLI(ctx, argv, stdin)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			r.logger.Error("Opencode CLI not found. Is it installed?")
			return dto.LLMResult{"error": "Opencode CLI not found"}
		}
		r.logger.Error("Opencode CLI error", logger.ErrorField(err))
		return dto.LLMResult{"error": err.Error()}
	}

	responseText := strings.TrimSpace(out.stdout)
	streamText, streamUsed := ExtractOpencodeStreamText(responseText)
	if streamUsed {
		var result map[string]interface{}
		if err := json.Unmarshal([]byte(streamText), &result); err != nil {
			return dto.LLMResult{
				"error":       "Opencode JSON stream did not contain valid JSON in text message",
				"raw_text":    streamText,
				"parse_error": true,
			}
		}
		return dto.LLMResult(result)
	}
	return ParseLLMResponse(streamText)
}
