package evaluation

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// BatchSystemPrompt frames the grader for scoring a chunk of decisions and auditing the prompts behind them.
const BatchSystemPrompt = `You are a senior trading desk reviewer auditing an automated trading agent.
You receive a batch of the agent's historical decisions together with the exact prompts the agent was given.
Grade both the decisions and the prompt quality: look for missing context, ambiguous instructions, inconsistent
bias handling, and actions that ignore the provided market snapshot or execution results.
Respond with a single JSON object only, with these fields:
  "overall_score" (0-10 number), "summary" (string), "strengths" (array of strings),
  "weaknesses" (array of strings), "prompt_issues" (array of strings), "action_quality" (object),
  "recommendations" (array of strings), "confidence" ("low" | "medium" | "high").
Do not wrap the JSON in markdown.`

// AggregateSystemPrompt frames the grader for merging several batch evaluations into one.
const AggregateSystemPrompt = `You are a senior trading desk reviewer consolidating several partial evaluations
of the same automated trading agent into one final evaluation.
Keep exactly the same JSON output schema used by the partial evaluations.
Merge the evidence from every batch, deduplicate findings that repeat across batches, weight issues by their
severity and how often they occur, and produce one balanced overall_score that reflects all batches.
Respond with a single JSON object only. Do not wrap the JSON in markdown.`

const batchUserPrompt = `Symbol: {{ .Symbol }}
Batch {{ .Batch }} of {{ .BatchCount }} ({{ len .Samples }} samples, most recent first).

Symbol-wide stats:
{{ toJSON .Stats }}

Batch stats:
{{ toJSON .ChunkStats }}

Samples:
{{ toJSON .Samples }}

Prompts under review:
{{ range $i, $s := .Samples }}--- prompt {{ inc $i }} ({{ $s.Timestamp.UTC.Format "2006-01-02T15:04:05Z07:00" }}) ---
{{ $s.Prompt }}
{{ end }}`

const aggregateUserPrompt = `Symbol: {{ .Symbol }}

Symbol-wide stats:
{{ toJSON .Stats }}

Partial evaluations ({{ len .Partials }} batches, in batch order):
{{ toJSON .Partials }}`

var promptFuncs = template.FuncMap{
	"toJSON": func(v any) (string, error) {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", err
		}
		return string(b), nil
	},
	"inc": func(i int) int { return i + 1 },
}

var (
	batchUserPromptTmpl     = template.Must(template.New("batchUserPrompt").Funcs(promptFuncs).Parse(batchUserPrompt))
	aggregateUserPromptTmpl = template.Must(template.New("aggregateUserPrompt").Funcs(promptFuncs).Parse(aggregateUserPrompt))
)

type batchPromptFields struct {
	Symbol     string
	Batch      int
	BatchCount int
	Samples    []Sample
	Stats      Stats
	ChunkStats ChunkStats
}

type aggregatePromptFields struct {
	Symbol   string
	Stats    Stats
	Partials []PartialVerdict
}

func renderPrompt(tmpl *template.Template, fields any) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, fields); err != nil {
		return "", fmt.Errorf("error rendering %s: %w", tmpl.Name(), err)
	}
	return b.String(), nil
}
