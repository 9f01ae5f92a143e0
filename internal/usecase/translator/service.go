package translator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/time/rate"

	"tscat/internal/domain"
	"tscat/internal/ports"
)

const maxAttempts = 3

type Deps struct {
	Provider ports.Provider
	// Info identifies Provider in the cache and in stored translations.
	Info    domain.Provider
	Cache   ports.CacheRepository
	Prompt  ports.PromptRenderer
	Limiter *rate.Limiter
	Log     *slog.Logger
}

type Service struct{ d Deps }

func New(d Deps) *Service {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Limiter == nil {
		d.Limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Service{d: d}
}

// ProviderName is recorded on translations produced by this service.
func (s *Service) ProviderName() string {
	if s.d.Info.Name != "" {
		return s.d.Info.Name
	}
	return s.d.Info.Type
}

type TranslateArgs struct {
	FileID      int64
	FilePath    string
	Unit        *domain.Unit
	SourceLang  string
	TargetLang  string
	Model       string
	BypassCache bool
}

// TranslateOne machine-translates a single unit. Placeholders are masked
// before the provider sees the text and must all come back unchanged.
func (s *Service) TranslateOne(ctx context.Context, a TranslateArgs) (string, error) {
	if a.Unit == nil {
		return "", errors.New("unit is required")
	}
	if s.d.Provider == nil {
		return "", errors.New("translate: no provider configured")
	}
	model := a.Model
	if model == "" {
		model = s.d.Info.Model
	}
	placeholders := extractPlaceholders(a.Unit.SourceText)
	masked, unmask := maskTokens(a.Unit.SourceText, placeholders)

	// cached text is stored masked
	key := domain.CacheKey{
		Context:  a.Unit.Context,
		Comment:  a.Unit.Comment,
		Source:   masked,
		SrcLang:  a.SourceLang,
		TgtLang:  a.TargetLang,
		Provider: s.d.Info.Type,
		Model:    model,
	}
	if !a.BypassCache && s.d.Cache != nil {
		ce, err := s.d.Cache.Get(ctx, key)
		if err != nil {
			s.d.Log.Warn("translation cache lookup failed", "error", err)
		} else if ce != nil {
			return unmask(ce.Translation), nil
		}
	}

	data := ports.PromptData{
		SrcLang:      a.SourceLang,
		TgtLang:      a.TargetLang,
		Key:          a.Unit.Key,
		Text:         masked,
		FilePath:     a.FilePath,
		Context:      a.Unit.Context,
		Comment:      a.Unit.Comment,
		Placeholders: maskedTokens(placeholders),
	}
	fileID := &a.FileID
	system, err := s.d.Prompt.Render(ctx, "file", fileID, "translate_single", "system", data)
	if err != nil {
		return "", fmt.Errorf("render system prompt: %w", err)
	}
	user, err := s.d.Prompt.Render(ctx, "file", fileID, "translate_single", "user", data)
	if err != nil {
		return "", fmt.Errorf("render user prompt: %w", err)
	}
	segment := ports.Segment{Key: a.Unit.Key, Text: masked, Context: a.Unit.Context, Comment: a.Unit.Comment, Placeholders: placeholders}

	var res ports.TranslateResult
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := s.d.Limiter.Wait(ctx); err != nil {
			return "", err
		}
		res, err = s.d.Provider.Translate(ctx, segment, ports.TranslateParams{
			SourceLang:   a.SourceLang,
			TargetLang:   a.TargetLang,
			Model:        model,
			Temperature:  0.0,
			SystemPrompt: system,
			UserPrompt:   user,
		})
		if err == nil {
			break
		}
		// Retry only on parse/formatting errors that models often flake on
		if !isRetryableTranslateError(err) || attempt == maxAttempts {
			return "", err
		}
		s.d.Log.Debug("retrying translation", "key", a.Unit.Key, "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(200*attempt) * time.Millisecond):
		}
	}
	maskedOut := keepEdges(masked, res.Translation)
	translated := unmask(maskedOut)
	for _, ph := range placeholders {
		if !strings.Contains(translated, ph) {
			return "", fmt.Errorf("placeholder missing in translation: %s", ph)
		}
	}
	if s.d.Cache != nil {
		if err := s.d.Cache.Put(ctx, key, maskedOut); err != nil {
			s.d.Log.Warn("translation cache write failed", "error", err)
		}
	}
	return translated, nil
}

// keepEdges trims the model output and restores the leading and trailing
// whitespace of the source, which labels like "Nom : " depend on.
func keepEdges(source, out string) string {
	body := strings.TrimSpace(out)
	if body == "" || strings.TrimSpace(source) == "" {
		return body
	}
	lead := source[:len(source)-len(strings.TrimLeftFunc(source, unicode.IsSpace))]
	trail := source[len(strings.TrimRightFunc(source, unicode.IsSpace)):]
	return lead + body + trail
}

// placeholderRE matches {0}-style positional arguments and Qt's %1 / %L1 / %n.
var placeholderRE = regexp.MustCompile(`\{\d+\}|%L?\d+|%n`)

func extractPlaceholders(s string) []string {
	m := placeholderRE.FindAllString(s, -1)
	if len(m) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(m))
	out := make([]string, 0, len(m))
	for _, v := range m {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func maskToken(i int) string { return fmt.Sprintf("__PH_%d__", i) }

func maskedTokens(placeholders []string) []string {
	out := make([]string, len(placeholders))
	for i := range placeholders {
		out[i] = maskToken(i)
	}
	return out
}

// maskTokens replaces placeholders with opaque tokens. Longer placeholders
// are masked first so that %10 is not split by %1.
func maskTokens(s string, placeholders []string) (string, func(string) string) {
	order := make([]int, len(placeholders))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return len(placeholders[order[a]]) > len(placeholders[order[b]])
	})
	masked := s
	for _, i := range order {
		masked = strings.ReplaceAll(masked, placeholders[i], maskToken(i))
	}
	unmask := func(in string) string {
		out := in
		for i := len(placeholders) - 1; i >= 0; i-- {
			out = strings.ReplaceAll(out, maskToken(i), placeholders[i])
		}
		return out
	}
	return masked, unmask
}

// isRetryableTranslateError returns true for transient output/format issues that
// are likely to succeed on retry (e.g., invalid/missing JSON in model response).
func isRetryableTranslateError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "failed to parse translation json"):
		return true
	case strings.Contains(msg, "no choices returned"):
		return true
	case strings.Contains(msg, "unexpected end of"):
		return true
	case strings.Contains(msg, "invalid character"):
		return true
	default:
		return false
	}
}
