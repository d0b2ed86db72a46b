package models

import "time"

// QuestionType is a closed set; the answer scorer switches exhaustively over it.
type QuestionType string

const (
	QuestionScale QuestionType = "scale"
	QuestionText  QuestionType = "text"
)

// Polarity says whether a higher raw answer means less stress (positive)
// or more stress (negative). An empty polarity is treated as negative.
type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
)

// DriverKey names the stress driver a question feeds into.
type DriverKey string

// Org is the tenant. Every survey, schedule and feedback channel is owned
// by exactly one org.
type Org struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

type User struct {
	ID        string
	Email     string
	PassHash  []byte
	OrgID     string
	Role      string // admin|manager
	CreatedAt time.Time
}

type SurveyStatus string

const (
	SurveyOpen   SurveyStatus = "open"
	SurveyClosed SurveyStatus = "closed"
)

// Survey carries survey-level default scale bounds; per-question bounds
// take precedence when set.
type Survey struct {
	ID        string       `json:"id"`
	OrgID     string       `json:"org_id,omitempty"`
	TeamID    string       `json:"team_id,omitempty"`
	Title     string       `json:"title"`
	Status    SurveyStatus `json:"status"`
	ScaleMin  int          `json:"scale_min"`
	ScaleMax  int          `json:"scale_max"`
	CreatedAt time.Time    `json:"created_at"`
}

type Question struct {
	ID       string       `json:"id"`
	SurveyID string       `json:"survey_id"`
	Type     QuestionType `json:"type"`
	Prompt   string       `json:"prompt"`
	ScaleMin int          `json:"scale_min,omitempty"`
	ScaleMax int          `json:"scale_max,omitempty"`
	Polarity Polarity     `json:"polarity,omitempty"`
	Driver   DriverKey    `json:"driver,omitempty"`
	Order    int          `json:"order,omitempty"`
}

// Invite is a single-use opaque token for one respondent.
type Invite struct {
	Token    string
	SurveyID string
	Email    string // optional; avoid storing if not required
	UsedAt   *time.Time
}

// Answer is immutable once created. Exactly one of ScaleValue/TextValue
// is meaningful depending on the question type.
type Answer struct {
	QuestionID string `json:"question_id"`
	ScaleValue *int   `json:"scale_value,omitempty"`
	TextValue  string `json:"text_value,omitempty"`
}

// Response is one respondent's full submission for one survey instance.
type Response struct {
	ID          string    `json:"id"`
	SurveyID    string    `json:"survey_id"`
	Answers     []Answer  `json:"answers"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type Frequency string

const (
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Schedule is a recurrence rule that spawns survey instances from a
// template survey.
type Schedule struct {
	ID               string       `json:"id"`
	OrgID            string       `json:"org_id,omitempty"`
	TemplateSurveyID string       `json:"template_survey_id"`
	Frequency        Frequency    `json:"frequency"`
	DayOfWeek        time.Weekday `json:"day_of_week,omitempty"`
	DayOfMonth       int          `json:"day_of_month,omitempty"`
	StartsOn         *time.Time   `json:"starts_on,omitempty"`
	LastRunAt        *time.Time   `json:"last_run_at,omitempty"`
	Active           bool         `json:"active"`
}

// FeedbackChannel collects authorless messages for an org.
type FeedbackChannel struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"org_id,omitempty"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedbackMessage intentionally has no author field.
type FeedbackMessage struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
