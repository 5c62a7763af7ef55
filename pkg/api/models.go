package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	AdminSecretHeader  = "X-Admin-Access-Secret"
	AdminSessionCookie = "admin_session"
)

func JobPath(jobId string) string {
	return "/api/v1/evaluations/jobs/" + jobId
}

// Param is a loosely typed request value. It accepts JSON strings, numbers and booleans,
// and plain query string values.
type Param string

func (p *Param) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*p = ""
	case string:
		*p = Param(t)
	case bool:
		*p = Param(strconv.FormatBool(t))
	case float64:
		*p = Param(strconv.FormatFloat(t, 'f', -1, 64))
	default:
		return fmt.Errorf("unsupported value %s", string(data))
	}
	return nil
}

// Bool maps true/1/yes/on and false/0/no/off, case-insensitively. Anything else yields def.
func (p Param) Bool(def bool) bool {
	switch strings.ToLower(strings.TrimSpace(string(p))) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return def
	}
}

// Int parses the value as an integer, falling back to def when absent or malformed.
func (p Param) Int(def int) int {
	s := strings.TrimSpace(string(p))
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return def
}

type EvaluateRequest struct {
	Symbol         string `json:"symbol" schema:"symbol"`
	Limit          Param  `json:"limit" schema:"limit"`
	BatchSize      Param  `json:"batch_size" schema:"batch_size"`
	IncludeBatches Param  `json:"include_batches" schema:"include_batches"`
	Async          Param  `json:"async" schema:"async"`
}

type EvaluateJobResponse struct {
	JobId  string `json:"job_id"`
	Status string `json:"status"`
	Poll   string `json:"poll"`
}

type PollParams struct {
	Execute Param `schema:"execute"`
}

type LatestEvaluationResponse struct {
	Symbol     string          `json:"symbol"`
	Evaluation json.RawMessage `json:"evaluation"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type RecordDecisionRequest struct {
	Symbol          string          `json:"symbol" validate:"required,max=32"`
	Timestamp       time.Time       `json:"timestamp" validate:"required"`
	Timeframe       string          `json:"timeframe" validate:"max=16"`
	Prompt          string          `json:"prompt"`
	Action          string          `json:"action" validate:"max=20"`
	SignalStrength  string          `json:"signal_strength" validate:"max=20"`
	Bias            string          `json:"bias" validate:"max=20"`
	Summary         string          `json:"summary"`
	Reason          string          `json:"reason"`
	DryRun          bool            `json:"dry_run"`
	Snapshot        json.RawMessage `json:"snapshot"`
	ExecutionResult json.RawMessage `json:"execution_result"`
	Model           string          `json:"ai_model" validate:"max=64"`
}

type RecordDecisionResponse struct {
	Id uint `json:"id"`
}
