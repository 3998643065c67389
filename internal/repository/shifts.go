package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

const shiftSelect = `
	SELECT id, employee_id, date, start_time, end_time, break_minutes, expected_hours, location_id, source, status, assignment_id, publish_batch_id, created_at, version
	FROM shifts
`

func scanShift(row interface{ Scan(dest ...any) error }, shift *domain.Shift) error {
	var locationID, assignmentID, publishBatchID sql.NullInt64
	dst := []any{
		&shift.ID,
		&shift.EmployeeID,
		&shift.Date,
		&shift.StartTime,
		&shift.EndTime,
		&shift.BreakMinutes,
		&shift.ExpectedHours,
		&locationID,
		&shift.Source,
		&shift.Status,
		&assignmentID,
		&publishBatchID,
		&shift.CreatedAt,
		&shift.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return err
	}
	if locationID.Valid {
		shift.LocationID = &locationID.Int64
	}
	if assignmentID.Valid {
		shift.AssignmentID = &assignmentID.Int64
	}
	if publishBatchID.Valid {
		shift.PublishBatchID = &publishBatchID.Int64
	}
	return nil
}

func (r *Repository) queryShifts(query string, args ...any) ([]*domain.Shift, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]*domain.Shift, 0)
	for rows.Next() {
		shift := &domain.Shift{}
		if err := scanShift(rows, shift); err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

func (r *Repository) GetShiftByID(id int64) (*domain.Shift, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	shift := &domain.Shift{}
	row := r.dbpool.QueryRowContext(ctx, shiftSelect+` WHERE id = $1`, id)
	if err := scanShift(row, shift); err != nil {
		return nil, err
	}

	return shift, nil
}

func (r *Repository) GetShiftsByEmployeeAndDateRange(employeeID int64, from time.Time, to time.Time) ([]*domain.Shift, error) {
	query := shiftSelect + ` WHERE employee_id = $1 AND date >= $2 AND date <= $3 ORDER BY date, start_time, id`
	return r.queryShifts(query, employeeID, from, to)
}

// GetShiftsByEmployeeAndDate 返回员工某一天的所有班次，按插入顺序排列，
// 作为冲突检查的比较集合。
func (r *Repository) GetShiftsByEmployeeAndDate(employeeID int64, date time.Time) ([]*domain.Shift, error) {
	query := shiftSelect + ` WHERE employee_id = $1 AND date = $2 ORDER BY id`
	return r.queryShifts(query, employeeID, date)
}

func (r *Repository) GetShiftsByIDs(ids []int64) ([]*domain.Shift, error) {
	shifts := make([]*domain.Shift, 0, len(ids))

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	for _, id := range ids {
		shift := &domain.Shift{}
		row := r.dbpool.QueryRowContext(ctx, shiftSelect+` WHERE id = $1`, id)
		if err := scanShift(row, shift); err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	return shifts, nil
}

func insertShiftTx(ctx context.Context, tx *sql.Tx, shift *domain.Shift) error {
	query := `
		INSERT INTO shifts (employee_id, date, start_time, end_time, break_minutes, expected_hours, location_id, source, status, assignment_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, version
	`
	params := []any{
		shift.EmployeeID,
		shift.Date,
		shift.StartTime,
		shift.EndTime,
		shift.BreakMinutes,
		shift.ExpectedHours,
		shift.LocationID,
		shift.Source,
		shift.Status,
		shift.AssignmentID,
	}
	return tx.QueryRowContext(ctx, query, params...).Scan(&shift.ID, &shift.CreatedAt, &shift.Version)
}

func (r *Repository) CreateShift(shift *domain.Shift) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO shifts (employee_id, date, start_time, end_time, break_minutes, expected_hours, location_id, source, status, assignment_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, version
	`
	params := []any{
		shift.EmployeeID,
		shift.Date,
		shift.StartTime,
		shift.EndTime,
		shift.BreakMinutes,
		shift.ExpectedHours,
		shift.LocationID,
		shift.Source,
		shift.Status,
		shift.AssignmentID,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&shift.ID, &shift.CreatedAt, &shift.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateShift(shift *domain.Shift) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE shifts
		SET
			date = $1,
			start_time = $2,
			end_time = $3,
			break_minutes = $4,
			expected_hours = $5,
			location_id = $6,
			source = $7,
			version = version + 1
		WHERE id = $8 AND version = $9
		RETURNING version
	`

	params := []any{
		shift.Date,
		shift.StartTime,
		shift.EndTime,
		shift.BreakMinutes,
		shift.ExpectedHours,
		shift.LocationID,
		shift.Source,
		shift.ID,
		shift.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&shift.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteShift(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM shifts WHERE id = $1
	`

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

// ReplaceTemplateDraftShifts 在一个事务里完成重新生成：
// 先删除员工所有 source=template 且 status=draft 的班次，再插入新生成的班次。
// 手动创建的班次和已发布的班次永远不会被这里删除。
func (r *Repository) ReplaceTemplateDraftShifts(employeeID int64, shifts []*domain.Shift) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		DELETE FROM shifts
		WHERE employee_id = $1 AND source = 'template' AND status = 'draft'
	`
	if _, err := tx.ExecContext(ctx, query, employeeID); err != nil {
		return err
	}

	for _, shift := range shifts {
		if err := insertShiftTx(ctx, tx, shift); err != nil {
			return err
		}
	}

	return tx.Commit()
}
