package result

// SourceType classifies where cited data came from.
type SourceType string

const (
	SourceDatabase SourceType = "database"
	SourceAPI      SourceType = "api"
	SourceFile     SourceType = "file"
	SourceWeb      SourceType = "web"
	SourceCache    SourceType = "cache"
	SourceComputed SourceType = "computed"
)

// Source is a provenance citation attached to a result.
type Source struct {
	Name       string     `json:"name"`
	Type       SourceType `json:"type"`
	URL        string     `json:"url,omitempty"`
	AccessedAt string     `json:"accessedAt,omitempty"`
	Relevance  *float64   `json:"relevance,omitempty"`
	Snippet    string     `json:"snippet,omitempty"`
}

// PlanStepStatus is the lifecycle state of one plan entry.
type PlanStepStatus string

const (
	PlanPending   PlanStepStatus = "pending"
	PlanRunning   PlanStepStatus = "running"
	PlanCompleted PlanStepStatus = "completed"
	PlanFailed    PlanStepStatus = "failed"
	PlanSkipped   PlanStepStatus = "skipped"
)

// PlanStep records one step of the plan a command followed, so agents
// can show or audit multi-stage work.
type PlanStep struct {
	Step        int            `json:"step"`
	Description string         `json:"description"`
	Status      PlanStepStatus `json:"status"`
	DurationMs  *int64         `json:"durationMs,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// Alternative is a secondary answer a command considered, with the
// reason it was not chosen.
type Alternative struct {
	Data       any      `json:"data"`
	Reason     string   `json:"reason"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// WarningSeverity ranks warnings.
type WarningSeverity string

const (
	SeverityInfo     WarningSeverity = "info"
	SeverityCaution  WarningSeverity = "caution"
	SeverityCritical WarningSeverity = "critical"
)

// Warning is a non-fatal signal attached to an otherwise usable result.
type Warning struct {
	Code     string          `json:"code"`
	Message  string          `json:"message"`
	Severity WarningSeverity `json:"severity"`
	Context  map[string]any  `json:"context,omitempty"`
}

// Warn builds a caution-level warning.
func Warn(code, message string) Warning {
	return Warning{Code: code, Message: message, Severity: SeverityCaution}
}

// Info builds an info-level warning.
func Info(code, message string) Warning {
	return Warning{Code: code, Message: message, Severity: SeverityInfo}
}

// Critical builds a critical warning.
func Critical(code, message string) Warning {
	return Warning{Code: code, Message: message, Severity: SeverityCritical}
}
