package gemini

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/phrazzld/quill-api/internal/analysis"
	"github.com/phrazzld/quill-api/internal/config"
	"github.com/phrazzld/quill-api/internal/platform/logger"
	"google.golang.org/genai"
)

//go:embed prompt.tmpl
var defaultPrompt string

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 2 * time.Second
)

// contentGenerator is the part of the genai client the analyzer uses.
// *genai.Models satisfies it.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

type promptData struct {
	Text     string
	Language string
}

// GeminiAnalyzer scores journal entries with a Gemini model.
type GeminiAnalyzer struct {
	logger     *slog.Logger
	gen        contentGenerator
	model      string
	tmpl       *template.Template
	maxRetries int
	baseDelay  time.Duration
	rng        *rand.Rand
}

var _ analysis.Analyzer = (*GeminiAnalyzer)(nil)

// NewGeminiAnalyzer creates an analyzer from cfg. An empty
// PromptTemplatePath selects the built-in prompt.
func NewGeminiAnalyzer(ctx context.Context, log *slog.Logger, cfg config.LLMConfig) (*GeminiAnalyzer, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", analysis.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", analysis.ErrInvalidConfig, err)
	}

	return newAnalyzer(log, client.Models, cfg)
}

func newAnalyzer(log *slog.Logger, gen contentGenerator, cfg config.LLMConfig) (*GeminiAnalyzer, error) {
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", analysis.ErrInvalidConfig)
	}

	tmpl, err := loadTemplate(cfg.PromptTemplatePath)
	if err != nil {
		return nil, err
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}
	baseDelay := cfg.BaseDelay
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}

	return &GeminiAnalyzer{
		logger:     log.With(slog.String("component", "gemini_analyzer")),
		gen:        gen,
		model:      cfg.ModelName,
		tmpl:       tmpl,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

func loadTemplate(path string) (*template.Template, error) {
	text := defaultPrompt
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
				analysis.ErrInvalidConfig, path, err)
		}
		text = string(b)
	}

	tmpl, err := template.New("analysis").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", analysis.ErrInvalidConfig, err)
	}
	return tmpl, nil
}

func (a *GeminiAnalyzer) createPrompt(text, language string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyEntryText
	}
	if language == "" {
		language = "target language"
	}

	var buf bytes.Buffer
	if err := a.tmpl.Execute(&buf, promptData{Text: text, Language: language}); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

// AnalyzeEntry implements analysis.Analyzer.
func (a *GeminiAnalyzer) AnalyzeEntry(ctx context.Context, text, language string) (*analysis.Result, error) {
	log := logger.FromContextOrDefault(ctx, a.logger)

	prompt, err := a.createPrompt(text, language)
	if err != nil {
		return nil, err
	}

	raw, err := a.callWithRetry(ctx, log, prompt)
	if err != nil {
		return nil, err
	}

	result, err := parseResult(raw)
	if err != nil {
		log.WarnContext(ctx, "unparseable analysis response",
			slog.Int("response_length", len(raw)),
			slog.String("error", err.Error()))
		return nil, err
	}

	log.InfoContext(ctx, "entry analyzed",
		slog.Float64("overall", result.Overall),
		slog.String("language", language))
	return result, nil
}

// callWithRetry returns the text of the first candidate. API errors are
// retried up to maxRetries times with delay baseDelay * 2^attempt scaled by
// a jitter factor in [0.5, 1).
func (a *GeminiAnalyzer) callWithRetry(ctx context.Context, log *slog.Logger, prompt string) (string, error) {
	temperature := float32(0.2)
	cfg := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
	}

	for attempt := 0; ; attempt++ {
		resp, err := a.gen.GenerateContent(ctx, a.model, genai.Text(prompt), cfg)
		if err == nil {
			return responseText(resp)
		}

		log.ErrorContext(ctx, "Gemini API call failed",
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))

		if attempt >= a.maxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				analysis.ErrTransientFailure, a.maxRetries, err)
		}

		backoff := float64(a.baseDelay) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + a.rng.Float64()*0.5))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", analysis.ErrTransientFailure, ctx.Err())
		}
	}
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", analysis.ErrInvalidResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked (%s)", analysis.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", analysis.ErrInvalidResponse)
	}

	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: content blocked by safety filters", analysis.ErrContentBlocked)
	}
	if cand.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", analysis.ErrInvalidResponse)
	}

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}
