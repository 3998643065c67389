package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

const availabilitySelect = `
	SELECT id, employee_id, weekday, is_available, start_time, end_time, max_hours, note, created_at, version
	FROM employee_availabilities
`

func (r *Repository) GetAvailabilityByEmployee(employeeID int64) ([]*domain.EmployeeAvailability, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, availabilitySelect+` WHERE employee_id = $1 ORDER BY weekday`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*domain.EmployeeAvailability, 0, 7)
	for rows.Next() {
		item := &domain.EmployeeAvailability{}
		dst := []any{&item.ID, &item.EmployeeID, &item.Weekday, &item.IsAvailable, &item.StartTime, &item.EndTime, &item.MaxHours, &item.Note, &item.CreatedAt, &item.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// GetAvailabilityByEmployeeAndWeekday 返回员工某个星期几的可用性配置，
// 没有配置时返回 sql.ErrNoRows，调用方应视为没有约束。
func (r *Repository) GetAvailabilityByEmployeeAndWeekday(employeeID int64, weekday int32) (*domain.EmployeeAvailability, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	item := &domain.EmployeeAvailability{}
	dst := []any{&item.ID, &item.EmployeeID, &item.Weekday, &item.IsAvailable, &item.StartTime, &item.EndTime, &item.MaxHours, &item.Note, &item.CreatedAt, &item.Version}
	if err := r.dbpool.QueryRowContext(ctx, availabilitySelect+` WHERE employee_id = $1 AND weekday = $2`, employeeID, weekday).Scan(dst...); err != nil {
		return nil, err
	}

	return item, nil
}

// ReplaceAvailability 整体替换员工的可用性配置：先删除原有记录再插入。
func (r *Repository) ReplaceAvailability(employeeID int64, items []domain.EmployeeAvailability) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 先把原先的记录删除再插入
	query := `DELETE FROM employee_availabilities WHERE employee_id = $1`
	if _, err := tx.ExecContext(ctx, query, employeeID); err != nil {
		return err
	}

	for i := range items {
		query = `
			INSERT INTO employee_availabilities (employee_id, weekday, is_available, start_time, end_time, max_hours, note)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at, version
		`
		params := []any{employeeID, items[i].Weekday, items[i].IsAvailable, items[i].StartTime, items[i].EndTime, items[i].MaxHours, items[i].Note}
		if err := tx.QueryRowContext(ctx, query, params...).Scan(&items[i].ID, &items[i].CreatedAt, &items[i].Version); err != nil {
			return err
		}
		items[i].EmployeeID = employeeID
	}

	return tx.Commit()
}
