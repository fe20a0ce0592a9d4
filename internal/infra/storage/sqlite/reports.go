package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domainreports "healthtrack/internal/domain/reports"
)

const timeLayout = time.RFC3339Nano

type ReportRepository struct {
	store *Store
}

const reportColumns = `id, created_at, hemoglobin, fasting_sugar, bp_systolic, bp_diastolic,
	cholesterol, height_cm, weight_kg, bmi, owner`

func (r *ReportRepository) Insert(ctx context.Context, report *domainreports.Report) error {
	if report == nil {
		return domainreports.ErrIncomplete
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	res, err := r.store.db.ExecContext(ctx, `INSERT INTO reports
		(created_at, hemoglobin, fasting_sugar, bp_systolic, bp_diastolic, cholesterol, height_cm, weight_kg, bmi, owner)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.CreatedAt.UTC().Format(timeLayout),
		report.Hemoglobin,
		report.FastingSugar,
		report.Systolic,
		report.Diastolic,
		report.Cholesterol,
		report.HeightCM,
		report.WeightKG,
		report.BMI,
		string(report.Owner),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert report: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: report id: %w", err)
	}
	report.ID = domainreports.ID(id)
	return nil
}

func (r *ReportRepository) List(ctx context.Context, owner domainreports.Owner) ([]*domainreports.Report, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if owner.IsGuest() {
		rows, err = r.store.db.QueryContext(ctx, `SELECT `+reportColumns+` FROM reports ORDER BY id ASC`)
	} else {
		rows, err = r.store.db.QueryContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE owner = ? ORDER BY id ASC`, string(owner))
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: list reports: %w", err)
	}
	defer rows.Close()

	var out []*domainreports.Report
	for rows.Next() {
		var (
			report    domainreports.Report
			id        int64
			createdAt string
			ownerCol  string
		)
		if err := rows.Scan(&id, &createdAt, &report.Hemoglobin, &report.FastingSugar,
			&report.Systolic, &report.Diastolic, &report.Cholesterol,
			&report.HeightCM, &report.WeightKG, &report.BMI, &ownerCol); err != nil {
			return nil, fmt.Errorf("sqlite: scan report: %w", err)
		}
		report.ID = domainreports.ID(id)
		report.Owner = domainreports.Owner(ownerCol)
		if report.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: report %d created_at: %w", id, err)
		}
		out = append(out, &report)
	}
	return out, rows.Err()
}

func (r *ReportRepository) Delete(ctx context.Context, id domainreports.ID, owner domainreports.Owner) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var (
		res sql.Result
		err error
	)
	if owner.IsGuest() {
		res, err = r.store.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, int64(id))
	} else {
		res, err = r.store.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ? AND owner = ?`, int64(id), string(owner))
	}
	if err != nil {
		return fmt.Errorf("sqlite: delete report: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: delete report: %w", err)
	}
	if n == 0 {
		return domainreports.ErrNotFound
	}
	return nil
}

func (r *ReportRepository) DeleteAll(ctx context.Context, owner domainreports.Owner) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var (
		res sql.Result
		err error
	)
	if owner.IsGuest() {
		res, err = r.store.db.ExecContext(ctx, `DELETE FROM reports`)
	} else {
		res, err = r.store.db.ExecContext(ctx, `DELETE FROM reports WHERE owner = ?`, string(owner))
	}
	if err != nil {
		return 0, fmt.Errorf("sqlite: clear reports: %w", err)
	}
	return res.RowsAffected()
}

var _ domainreports.Repository = (*ReportRepository)(nil)
