package formatting

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"ai-orchestrator-be/pkg/llm"
	"ai-orchestrator-be/pkg/pipeline"
)

const (
	rewriteTemperature = 0.3
	rewriteMaxTokens   = 1500
	sentencesPerPara   = 3
)

// Stage transforms raw generated text into the requested output shape.
// Every LLM-backed path has a non-LLM fallback; Format never fails and
// never returns empty output for non-empty input.
type Stage struct {
	provider llm.LLMProvider
	logger   *log.Logger
}

func NewStage(provider llm.LLMProvider, logger *log.Logger) *Stage {
	return &Stage{
		provider: provider,
		logger:   logger,
	}
}

func (s *Stage) Format(ctx context.Context, content, prompt string, kc *pipeline.KnowledgeContext, rc *pipeline.RequestContext, credential string) string {
	var formatted string
	switch rc.Format {
	case "markdown":
		formatted = s.formatMarkdown(ctx, content, rc, credential)
	case "json":
		formatted = s.formatJSON(ctx, content, rc, credential)
	case "code":
		formatted = s.formatCode(ctx, content, rc, credential)
	case "table":
		formatted = s.formatTable(ctx, content, rc, credential)
	default:
		formatted = s.formatText(ctx, content, rc, credential)
	}

	if rc.AddCitations && kc != nil && len(kc.Sources) > 0 {
		formatted = AppendCitations(formatted, rc.Format, kc.Sources)
	}
	return formatted
}

// skipRewrite avoids an LLM round-trip for very short content. Off by
// default (SkipRewriteBelow == 0).
func (s *Stage) skipRewrite(content string, rc *pipeline.RequestContext) bool {
	return rc.SkipRewriteBelow > 0 && utf8.RuneCountInString(content) < rc.SkipRewriteBelow
}

func (s *Stage) rewrite(ctx context.Context, instruction, content string, rc *pipeline.RequestContext, credential string, opts ...llm.Option) (string, error) {
	prompt := instruction + "\n\n" + content
	callOpts := []llm.Option{
		llm.WithTemperature(rewriteTemperature),
		llm.WithMaxTokens(rewriteMaxTokens),
	}
	if credential != "" {
		callOpts = append(callOpts, llm.WithCredential(credential))
	}
	callOpts = append(callOpts, opts...)
	return s.provider.Generate(ctx, prompt, callOpts...)
}

// --- Text ---

func (s *Stage) formatText(ctx context.Context, content string, rc *pipeline.RequestContext, credential string) string {
	result := ReflowParagraphs(content)

	if rc.Tone == "conversational" && !s.skipRewrite(content, rc) {
		rewritten, err := s.rewrite(ctx, "Rewrite the following text in a conversational tone. Keep the meaning intact.", result, rc, credential)
		if err != nil {
			s.logger.Printf("[WARN] Tone rewrite failed, keeping reflowed text: %v", err)
			return result
		}
		if strings.TrimSpace(rewritten) != "" {
			return rewritten
		}
	}
	return result
}

// ReflowParagraphs groups sentences into paragraphs of at most three
// when the content has no blank-line paragraphs already.
func ReflowParagraphs(content string) string {
	if strings.Contains(content, "\n\n") {
		return content
	}

	sentences := strings.Split(content, ". ")
	if len(sentences) <= sentencesPerPara {
		return content
	}

	var paragraphs []string
	for i := 0; i < len(sentences); i += sentencesPerPara {
		end := i + sentencesPerPara
		if end > len(sentences) {
			end = len(sentences)
		}
		para := strings.Join(sentences[i:end], ". ")
		if end < len(sentences) && !strings.HasSuffix(para, ".") {
			para += "."
		}
		paragraphs = append(paragraphs, para)
	}
	return strings.Join(paragraphs, "\n\n")
}

// --- Markdown ---

func (s *Stage) formatMarkdown(ctx context.Context, content string, rc *pipeline.RequestContext, credential string) string {
	if !s.skipRewrite(content, rc) {
		rewritten, err := s.rewrite(ctx, "Convert the following text to well-structured markdown with headings and lists where appropriate. Return only the markdown.", content, rc, credential)
		if err == nil && strings.TrimSpace(rewritten) != "" {
			return rewritten
		}
		if err != nil {
			s.logger.Printf("[WARN] Markdown rewrite failed, using heuristic: %v", err)
		}
	}
	return MarkdownFallback(content)
}

// MarkdownFallback treats the first line as a heading and blank-line
// separates the rest.
func MarkdownFallback(content string) string {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) == 0 {
		return content
	}

	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(strings.TrimSpace(lines[0]))
	b.WriteString("\n")
	for _, line := range lines[1:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		b.WriteString("\n")
		b.WriteString(trimmed)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// --- JSON ---

func (s *Stage) formatJSON(ctx context.Context, content string, rc *pipeline.RequestContext, credential string) string {
	if !s.skipRewrite(content, rc) {
		rewritten, err := s.rewrite(ctx, "Convert the following text into a JSON object capturing its information. Return only valid JSON.", content, rc, credential, llm.WithFormat("json"))
		if err == nil && json.Valid([]byte(strings.TrimSpace(rewritten))) {
			return strings.TrimSpace(rewritten)
		}
		if err != nil {
			s.logger.Printf("[WARN] JSON rewrite failed, wrapping raw content: %v", err)
		}
	}
	return JSONFallback(content)
}

// JSONFallback wraps the raw text in a content object.
func JSONFallback(content string) string {
	wrapped, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return content
	}
	return string(wrapped)
}

// --- Code ---

func (s *Stage) formatCode(ctx context.Context, content string, rc *pipeline.RequestContext, credential string) string {
	language := rc.CodeLanguage
	if language == "" {
		language = "text"
	}

	if !s.skipRewrite(content, rc) {
		instruction := fmt.Sprintf("Extract the %s code from the following text and return it in a single fenced code block, nothing else.", language)
		rewritten, err := s.rewrite(ctx, instruction, content, rc, credential)
		if err == nil && strings.Contains(rewritten, "```") {
			return strings.TrimSpace(rewritten)
		}
		if err != nil {
			s.logger.Printf("[WARN] Code rewrite failed, fencing raw content: %v", err)
		}
	}
	return CodeFallback(content, language)
}

func CodeFallback(content, language string) string {
	return fmt.Sprintf("```%s\n%s\n```", language, strings.TrimSpace(content))
}

// --- Table ---

func (s *Stage) formatTable(ctx context.Context, content string, rc *pipeline.RequestContext, credential string) string {
	if !s.skipRewrite(content, rc) {
		rewritten, err := s.rewrite(ctx, "Convert the following text into a markdown table. Return only the table.", content, rc, credential)
		if err == nil && strings.TrimSpace(rewritten) != "" {
			return rewritten
		}
		if err != nil {
			s.logger.Printf("[WARN] Table rewrite failed, returning raw content: %v", err)
		}
	}
	// No heuristic can build a table from arbitrary prose.
	return content
}

// --- Citations ---

// AppendCitations adds a format-aware sources section.
func AppendCitations(content, format string, sources []string) string {
	if len(sources) == 0 {
		return content
	}

	switch format {
	case "markdown":
		var b strings.Builder
		b.WriteString(content)
		b.WriteString("\n\n---\n\n**Sources:**\n")
		for i, src := range sources {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, src))
		}
		return strings.TrimRight(b.String(), "\n")
	case "json":
		var parsed map[string]interface{}
		if err := json.Unmarshal([]byte(content), &parsed); err == nil {
			parsed["sources"] = sources
			if merged, err := json.Marshal(parsed); err == nil {
				return string(merged)
			}
		}
		return textCitations(content, sources)
	default:
		return textCitations(content, sources)
	}
}

func textCitations(content string, sources []string) string {
	var b strings.Builder
	b.WriteString(content)
	b.WriteString("\n\nSources:\n")
	for i, src := range sources {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, src))
	}
	return strings.TrimRight(b.String(), "\n")
}
