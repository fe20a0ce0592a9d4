package memory

import (
	"context"
	"sync"

	domainreports "healthtrack/internal/domain/reports"
)

// ReportRepository keeps reports in insertion order. Not suitable for
// production: everything is lost on restart.
type ReportRepository struct {
	mu     sync.RWMutex
	nextID domainreports.ID
	items  []*domainreports.Report
}

func NewReportRepository() *ReportRepository {
	return &ReportRepository{nextID: 1}
}

func (r *ReportRepository) Insert(ctx context.Context, report *domainreports.Report) error {
	if report == nil {
		return domainreports.ErrIncomplete
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	report.ID = r.nextID
	r.nextID++
	r.items = append(r.items, cloneReport(report))
	return nil
}

func (r *ReportRepository) List(ctx context.Context, owner domainreports.Owner) ([]*domainreports.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainreports.Report, 0, len(r.items))
	for _, item := range r.items {
		if owner.Matches(item.Owner) {
			out = append(out, cloneReport(item))
		}
	}
	return out, nil
}

func (r *ReportRepository) Delete(ctx context.Context, id domainreports.ID, owner domainreports.Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, item := range r.items {
		if item.ID == id && owner.Matches(item.Owner) {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return domainreports.ErrNotFound
}

func (r *ReportRepository) DeleteAll(ctx context.Context, owner domainreports.Owner) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.items[:0]
	var removed int64
	for _, item := range r.items {
		if owner.Matches(item.Owner) {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	for i := len(kept); i < len(r.items); i++ {
		r.items[i] = nil
	}
	r.items = kept
	return removed, nil
}

func cloneReport(r *domainreports.Report) *domainreports.Report {
	return &domainreports.Report{
		ID:           r.ID,
		CreatedAt:    r.CreatedAt,
		Hemoglobin:   r.Hemoglobin,
		FastingSugar: r.FastingSugar,
		Systolic:     r.Systolic,
		Diastolic:    r.Diastolic,
		Cholesterol:  r.Cholesterol,
		HeightCM:     r.HeightCM,
		WeightKG:     r.WeightKG,
		BMI:          r.BMI,
		Owner:        r.Owner,
	}
}

var _ domainreports.Repository = (*ReportRepository)(nil)
