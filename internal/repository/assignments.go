package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

// CreateAssignment 创建一条新的分配记录。
// 同一个员工最多只能有一条未结束的分配，所以在同一个事务里
// 先把之前未结束的分配的生效结束日期设置为新分配的开始日期。
func (r *Repository) CreateAssignment(assignment *domain.TemplateAssignment) error {
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
		UPDATE template_assignments
		SET effective_end_date = $1, version = version + 1
		WHERE employee_id = $2 AND effective_end_date IS NULL
	`
	if _, err := tx.ExecContext(ctx, query, assignment.EffectiveStartDate, assignment.EmployeeID); err != nil {
		return err
	}

	query = `
		INSERT INTO template_assignments (employee_id, template_id, effective_start_date, effective_end_date, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`
	params := []any{assignment.EmployeeID, assignment.TemplateID, assignment.EffectiveStartDate, assignment.EffectiveEndDate, assignment.Notes}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&assignment.ID, &assignment.CreatedAt, &assignment.Version); err != nil {
		return err
	}

	return tx.Commit()
}

func scanAssignment(row interface{ Scan(dest ...any) error }, assignment *domain.TemplateAssignment) error {
	var endDate sql.NullTime
	dst := []any{
		&assignment.ID,
		&assignment.EmployeeID,
		&assignment.TemplateID,
		&assignment.EffectiveStartDate,
		&endDate,
		&assignment.Notes,
		&assignment.CreatedAt,
		&assignment.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return err
	}
	if endDate.Valid {
		assignment.EffectiveEndDate = &endDate.Time
	}
	return nil
}

const assignmentSelect = `
	SELECT id, employee_id, template_id, effective_start_date, effective_end_date, notes, created_at, version
	FROM template_assignments
`

func (r *Repository) GetAssignmentByID(id int64) (*domain.TemplateAssignment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	assignment := &domain.TemplateAssignment{}
	row := r.dbpool.QueryRowContext(ctx, assignmentSelect+` WHERE id = $1`, id)
	if err := scanAssignment(row, assignment); err != nil {
		return nil, err
	}

	return assignment, nil
}

// GetOpenAssignment 返回员工当前未结束的分配记录，不存在时返回 sql.ErrNoRows。
func (r *Repository) GetOpenAssignment(employeeID int64) (*domain.TemplateAssignment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	assignment := &domain.TemplateAssignment{}
	row := r.dbpool.QueryRowContext(ctx, assignmentSelect+` WHERE employee_id = $1 AND effective_end_date IS NULL`, employeeID)
	if err := scanAssignment(row, assignment); err != nil {
		return nil, err
	}

	return assignment, nil
}

func (r *Repository) GetAssignmentsByEmployee(employeeID int64) ([]*domain.TemplateAssignment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, assignmentSelect+` WHERE employee_id = $1 ORDER BY effective_start_date DESC`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]*domain.TemplateAssignment, 0)
	for rows.Next() {
		assignment := &domain.TemplateAssignment{}
		if err := scanAssignment(rows, assignment); err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}

// UnassignAssignment 结束一条分配记录：把生效结束日期设置为给定日期，
// 并在同一个事务里删除这条分配在该日期之后生成的、还处于草稿状态的模板班次。
// 手动创建的班次和已发布的班次不受影响。
func (r *Repository) UnassignAssignment(assignment *domain.TemplateAssignment, endDate time.Time) error {
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
		UPDATE template_assignments
		SET effective_end_date = $1, version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`
	if err := tx.QueryRowContext(ctx, query, endDate, assignment.ID, assignment.Version).Scan(&assignment.Version); err != nil {
		return err
	}
	assignment.EffectiveEndDate = &endDate

	query = `
		DELETE FROM shifts
		WHERE assignment_id = $1 AND date > $2 AND source = 'template' AND status = 'draft'
	`
	if _, err := tx.ExecContext(ctx, query, assignment.ID, endDate); err != nil {
		return err
	}

	return tx.Commit()
}
