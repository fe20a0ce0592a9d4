package reports

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"healthtrack/internal/domain/metrics"
	"healthtrack/internal/domain/shared/events"
)

var (
	ErrIncomplete = errors.New("reports: every metric must be valid to store a report")
	ErrNotFound   = errors.New("reports: not found")
	ErrInvalidID  = errors.New("reports: invalid id")
)

// ID is the insertion sequence number assigned by the store.
type ID int64

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseID parses a path or form value into an ID.
func ParseID(raw string) (ID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || v <= 0 {
		return 0, ErrInvalidID
	}
	return ID(v), nil
}

// Owner identifies the account a report belongs to. The zero value is the
// guest scope: reports saved without an account, and queries that span every
// report in the store.
type Owner string

// Guest is the anonymous scope.
const Guest Owner = ""

func (o Owner) IsGuest() bool {
	return strings.TrimSpace(string(o)) == ""
}

// Matches reports whether a report owned by other is visible in scope o.
func (o Owner) Matches(other Owner) bool {
	return o.IsGuest() || o == other
}

// Report is a persisted snapshot of a fully valid submission.
type Report struct {
	events.Buffer

	ID           ID
	CreatedAt    time.Time
	Hemoglobin   float64
	FastingSugar float64
	Systolic     int
	Diastolic    int
	Cholesterol  float64
	HeightCM     float64
	WeightKG     float64
	BMI          float64
	Owner        Owner
}

type CreateParams struct {
	Values    metrics.Values
	Owner     Owner
	CreatedAt time.Time
}

// NewReport builds a report from evaluated values. It refuses partial
// submissions: if any of the eight values is absent nothing is stored.
func NewReport(params CreateParams) (*Report, error) {
	v := params.Values
	if !v.Complete() {
		return nil, ErrIncomplete
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	return &Report{
		CreatedAt:    now.UTC().Truncate(time.Second),
		Hemoglobin:   *v.Hemoglobin,
		FastingSugar: *v.FastingSugar,
		Systolic:     *v.Systolic,
		Diastolic:    *v.Diastolic,
		Cholesterol:  *v.Cholesterol,
		HeightCM:     *v.HeightCM,
		WeightKG:     *v.WeightKG,
		BMI:          *v.BMI,
		Owner:        Owner(strings.TrimSpace(string(params.Owner))),
	}, nil
}

// MarkRecorded raises the creation event once the store has assigned an ID.
func (r *Report) MarkRecorded() {
	r.Raise(ReportRecorded{
		ReportID: r.ID,
		Owner:    r.Owner,
		BMI:      r.BMI,
		At:       r.CreatedAt,
	})
}

// Repository persists reports. Every method takes the owner scope
// explicitly; the guest scope acts on all reports.
type Repository interface {
	// Insert stores the report and assigns its ID.
	Insert(ctx context.Context, report *Report) error
	// List returns reports visible in scope, ordered by ID ascending.
	List(ctx context.Context, owner Owner) ([]*Report, error)
	// Delete removes one report if it is visible in scope. It returns
	// ErrNotFound when nothing matched.
	Delete(ctx context.Context, id ID, owner Owner) error
	// DeleteAll removes every report visible in scope and returns the count.
	DeleteAll(ctx context.Context, owner Owner) (int64, error)
}
