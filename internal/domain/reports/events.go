package reports

import "time"

type ReportRecorded struct {
	ReportID ID        `json:"report_id"`
	Owner    Owner     `json:"owner,omitempty"`
	BMI      float64   `json:"bmi"`
	At       time.Time `json:"at"`
}

func (e ReportRecorded) EventName() string     { return "report.recorded" }
func (e ReportRecorded) AggregateID() string   { return e.ReportID.String() }
func (e ReportRecorded) OccurredAt() time.Time { return e.At }

type ReportDeleted struct {
	ReportID ID        `json:"report_id"`
	Owner    Owner     `json:"owner,omitempty"`
	At       time.Time `json:"at"`
}

func (e ReportDeleted) EventName() string     { return "report.deleted" }
func (e ReportDeleted) AggregateID() string   { return e.ReportID.String() }
func (e ReportDeleted) OccurredAt() time.Time { return e.At }

// ReportsCleared is emitted after a bulk delete. A guest-scoped clear has an
// empty owner and removed every report in the store.
type ReportsCleared struct {
	Owner   Owner     `json:"owner,omitempty"`
	Removed int64     `json:"removed"`
	At      time.Time `json:"at"`
}

func (e ReportsCleared) EventName() string { return "report.cleared" }
func (e ReportsCleared) AggregateID() string {
	if e.Owner.IsGuest() {
		return "guest"
	}
	return string(e.Owner)
}
func (e ReportsCleared) OccurredAt() time.Time { return e.At }
