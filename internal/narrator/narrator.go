// Package narrator turns transmutations into prose, with Gemini when an
// API key is configured and from the rule's own lore otherwise.
package narrator

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"

	"github.com/alexxanorafa/Jornada-Arquetipica/internal/journal"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/trigger"
)

//go:embed prompts/narrate_transmutation.txt
var narratePrompt string

//go:embed prompts/summarize_journal.txt
var summarizePrompt string

// Model is the Gemini model used for narration.
const Model = "gemini-2.5-flash"

var ErrEmptyResponse = errors.New("no content returned from Gemini")

// Narration is the prose for one transmutation.
type Narration struct {
	Narrative  string `yaml:"narrative"`
	Reflection string `yaml:"reflection"`
}

// Narrator narrates transmutations and summarizes the journal.
type Narrator interface {
	Narrate(ctx context.Context, ev trigger.Event) (Narration, error)
	Summarize(ctx context.Context, summary string, entries []journal.Entry) (string, error)
	Close() error
}

// New returns a Gemini narrator, or the static one when apiKey is empty.
func New(ctx context.Context, apiKey string) (Narrator, error) {
	if apiKey == "" {
		return Static{}, nil
	}
	return NewGemini(ctx, apiKey)
}

var funcs = template.FuncMap{"join": strings.Join}

var (
	narrateTmpl   = template.Must(template.New("narrate_transmutation").Funcs(funcs).Parse(narratePrompt))
	summarizeTmpl = template.Must(template.New("summarize_journal").Parse(summarizePrompt))
)

func narrationPrompt(ev trigger.Event) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Name      string
		Icon      string
		Elements  []string
		Key       string
		Narrative string
		Pattern   string
	}{
		Name:      ev.Rule.Name,
		Icon:      ev.Rule.Icon,
		Elements:  ev.Elements,
		Key:       ev.Key,
		Narrative: ev.Rule.Narrative,
		Pattern:   ev.Rule.Pattern,
	}
	if err := narrateTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func summaryPrompt(summary string, entries []journal.Entry) (string, error) {
	var lines strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&lines, "- %s (%s), %d XP\n", e.Name, strings.Join(e.Elements, " + "), e.XP)
	}
	var buf bytes.Buffer
	data := struct {
		CurrentSummary string
		NewEntries     string
	}{summary, lines.String()}
	if err := summarizeTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// stripFence removes a markdown code fence around a model reply.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```yaml")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func parseNarration(text string) (Narration, error) {
	clean := stripFence(text)
	var n Narration
	if err := yaml.Unmarshal([]byte(clean), &n); err != nil {
		return Narration{}, fmt.Errorf("failed to parse narration YAML: %w\nOutput was: %s", err, clean)
	}
	if n.Narrative == "" {
		return Narration{}, fmt.Errorf("narration YAML has no narrative: %s", clean)
	}
	return n, nil
}

// Gemini narrates through the Gemini API.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Gemini{client: client, model: client.GenerativeModel(Model)}, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type from Gemini")
	}
	return string(text), nil
}

func (g *Gemini) Narrate(ctx context.Context, ev trigger.Event) (Narration, error) {
	prompt, err := narrationPrompt(ev)
	if err != nil {
		return Narration{}, err
	}
	text, err := g.generate(ctx, prompt)
	if err != nil {
		return Narration{}, err
	}
	return parseNarration(text)
}

func (g *Gemini) Summarize(ctx context.Context, summary string, entries []journal.Entry) (string, error) {
	if len(entries) == 0 {
		return summary, nil
	}
	prompt, err := summaryPrompt(summary, entries)
	if err != nil {
		return "", err
	}
	text, err := g.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Static narrates from the rule table alone.
type Static struct{}

func (Static) Narrate(_ context.Context, ev trigger.Event) (Narration, error) {
	n := Narration{Narrative: ev.Rule.Narrative}
	if n.Narrative == "" {
		n.Narrative = ev.Rule.Message
	}
	if n.Narrative == "" {
		n.Narrative = fmt.Sprintf("A transmutação de %s resultou em %s.", strings.Join(ev.Elements, " e "), ev.Rule.Name)
	}
	n.Reflection = fmt.Sprintf("O que %s desperta em você?", ev.Rule.Name)
	return n, nil
}

func (Static) Summarize(_ context.Context, summary string, entries []journal.Entry) (string, error) {
	if len(entries) == 0 {
		return summary, nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	line := fmt.Sprintf("Você realizou %d transmutações: %s.", len(entries), strings.Join(names, ", "))
	if summary == "" {
		return line, nil
	}
	return summary + " " + line, nil
}

func (Static) Close() error { return nil }
