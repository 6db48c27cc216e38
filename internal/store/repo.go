package store

import (
	"context"
	"strings"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit int       // max results (0 = unlimited)
	From  time.Time // timestamp >= From
	To    time.Time // timestamp <= To
}

// User is a registered learner account.
type User struct {
	Username  string
	CreatedAt time.Time
}

// UserRepo manages learner accounts.
type UserRepo interface {
	// AddUser stores a user, replacing the password hash of an existing one.
	AddUser(ctx context.Context, username, passwordHash string) error

	// UserHash returns the stored password hash, or ErrNotFound.
	UserHash(ctx context.Context, username string) (string, error)

	// RegisterUser consumes an invitation code and creates the user in a
	// single transaction. An empty code skips the invitation check.
	RegisterUser(ctx context.Context, username, passwordHash, code string) error

	// ListUsers returns all users ordered by username.
	ListUsers(ctx context.Context) ([]User, error)
}

// ProgressRecord is one answered problem.
type ProgressRecord struct {
	ID             int64
	Username       string
	SessionID      string
	FolderName     string
	Year           int
	QuestionNumber int
	SetIdentifier  string
	Category       string
	UserChoice     string
	CorrectChoice  string
	AnswerTime     int // seconds
	AttemptDate    time.Time
	ImageFilename  string
}

// Correct reports whether the learner's choice matches the answer key.
func (r ProgressRecord) Correct() bool {
	return strings.EqualFold(strings.TrimSpace(r.UserChoice), strings.TrimSpace(r.CorrectChoice))
}

// ProgressRepo records and reads answer attempts.
type ProgressRepo interface {
	// SaveProgress appends an attempt. A zero AttemptDate means now.
	SaveProgress(ctx context.Context, rec ProgressRecord) error

	// UserProgress returns the user's attempts, most recent first.
	UserProgress(ctx context.Context, username string) ([]ProgressRecord, error)

	// ResetProgress deletes every attempt of the user and returns the count.
	ResetProgress(ctx context.Context, username string) (int64, error)
}

// InvitationCode is a one-time registration code.
type InvitationCode struct {
	Code      string
	Used      bool
	UsedBy    string
	UsedAt    time.Time
	CreatedAt time.Time
}

// InviteRepo manages invitation codes.
type InviteRepo interface {
	// AddInvitationCode stores a new unused code.
	AddInvitationCode(ctx context.Context, code string) error

	// ValidateInvitationCode reports whether code exists and is unused.
	ValidateInvitationCode(ctx context.Context, code string) (bool, error)

	// MarkCodeUsed flags an unused code as used by username. It reports
	// false when no unused code matched.
	MarkCodeUsed(ctx context.Context, code, username string) (bool, error)

	// ListInvitationCodes returns all codes, newest first.
	ListInvitationCodes(ctx context.Context) ([]InvitationCode, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStats aggregates LLM usage for one group key.
type LLMUsageStats struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns a single event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)

	// LLMUsageByPurpose aggregates token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsageStats, error)
}
