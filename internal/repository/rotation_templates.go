package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

const rotationTemplateSelect = `
	SELECT
		rt.id,
		rt.name,
		rt.description,
		rt.status,
		rt.is_default,
		rt.employee_id,
		rt.rotation_length_weeks,
		rt.created_at,
		rt.version,
		rtw.id,
		rtw.week_index,
		rtw.label,
		rtp.id,
		rtp.weekday,
		rtp.is_working_day,
		rtp.start_time,
		rtp.end_time,
		rtp.break_minutes,
		rtp.expected_hours,
		rtp.location_id
	FROM rotation_templates rt
	LEFT JOIN rotation_template_weeks rtw ON rt.id = rtw.template_id
	LEFT JOIN rotation_template_patterns rtp ON rtw.id = rtp.week_id
`

type rotationTemplateRow struct {
	ID                  int64
	Name                string
	Description         string
	Status              domain.TemplateStatus
	IsDefault           bool
	EmployeeID          sql.NullInt64
	RotationLengthWeeks int32
	CreatedAt           time.Time
	Version             int32

	WeekID    sql.NullInt64
	WeekIndex sql.NullInt32
	Label     sql.NullString

	PatternID     sql.NullInt64
	Weekday       sql.NullInt32
	IsWorkingDay  sql.NullBool
	StartTime     sql.NullString
	EndTime       sql.NullString
	BreakMinutes  sql.NullInt32
	ExpectedHours sql.NullFloat64
	LocationID    sql.NullInt64
}

func (row *rotationTemplateRow) scanDst() []any {
	return []any{
		&row.ID,
		&row.Name,
		&row.Description,
		&row.Status,
		&row.IsDefault,
		&row.EmployeeID,
		&row.RotationLengthWeeks,
		&row.CreatedAt,
		&row.Version,
		&row.WeekID,
		&row.WeekIndex,
		&row.Label,
		&row.PatternID,
		&row.Weekday,
		&row.IsWorkingDay,
		&row.StartTime,
		&row.EndTime,
		&row.BreakMinutes,
		&row.ExpectedHours,
		&row.LocationID,
	}
}

// assembleRotationTemplates 把三层 LEFT JOIN 的结果组装成模板结构。
func assembleRotationTemplates(rows *sql.Rows) ([]*domain.RotationTemplate, error) {
	templatesMap := make(map[int64]*domain.RotationTemplate)
	weeksMap := make(map[int64]map[int64]*domain.TemplateWeek) // templateID -> weekID -> week
	templateOrder := make([]int64, 0)
	weekOrder := make(map[int64][]int64) // templateID -> weekID，保持查询的 week_index 顺序

	for rows.Next() {
		var row rotationTemplateRow

		if err := rows.Scan(row.scanDst()...); err != nil {
			return nil, err
		}

		if _, exists := templatesMap[row.ID]; !exists {
			// 说明此时是第一次查到这个 template，需要在 map 中初始化这个 template
			template := &domain.RotationTemplate{
				ID:                  row.ID,
				Name:                row.Name,
				Description:         row.Description,
				Status:              row.Status,
				IsDefault:           row.IsDefault,
				RotationLengthWeeks: row.RotationLengthWeeks,
				CreatedAt:           row.CreatedAt,
				Version:             row.Version,
			}
			if row.EmployeeID.Valid {
				template.EmployeeID = &row.EmployeeID.Int64
			}
			templatesMap[row.ID] = template
			weeksMap[row.ID] = make(map[int64]*domain.TemplateWeek)
			templateOrder = append(templateOrder, row.ID)
		}

		// 如果 weekID 为空，则表示这个模板还没有任何的周，此时可以跳过 week 解析的部分
		if !row.WeekID.Valid {
			continue
		}

		week, exists := weeksMap[row.ID][row.WeekID.Int64]
		if !exists {
			// 说明此时是第一次查到这个 week，需要在 map 中初始化这个 week
			week = &domain.TemplateWeek{
				ID:        row.WeekID.Int64,
				WeekIndex: row.WeekIndex.Int32,
				Label:     row.Label.String,
				Patterns:  make([]domain.WeekdayPattern, 0, 7),
			}
			weeksMap[row.ID][row.WeekID.Int64] = week
			weekOrder[row.ID] = append(weekOrder[row.ID], row.WeekID.Int64)
		}

		// 如果 patternID 为空，则表示这个周还没有任何的星期记录
		if !row.PatternID.Valid {
			continue
		}

		pattern := domain.WeekdayPattern{
			ID:            row.PatternID.Int64,
			Weekday:       row.Weekday.Int32,
			IsWorkingDay:  row.IsWorkingDay.Bool,
			StartTime:     row.StartTime.String,
			EndTime:       row.EndTime.String,
			BreakMinutes:  row.BreakMinutes.Int32,
			ExpectedHours: row.ExpectedHours.Float64,
		}
		if row.LocationID.Valid {
			pattern.LocationID = &row.LocationID.Int64
		}
		week.Patterns = append(week.Patterns, pattern)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 组装结果
	templates := make([]*domain.RotationTemplate, 0, len(templatesMap))
	for _, templateID := range templateOrder {
		template := templatesMap[templateID]
		template.Weeks = make([]domain.TemplateWeek, 0, len(weeksMap[templateID]))
		for _, weekID := range weekOrder[templateID] {
			template.Weeks = append(template.Weeks, *weeksMap[templateID][weekID])
		}
		templates = append(templates, template)
	}

	return templates, nil
}

// GetAllRotationTemplates 返回所有可复用的轮换模板（不包含员工自定义班表）。
func (r *Repository) GetAllRotationTemplates() ([]*domain.RotationTemplate, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := rotationTemplateSelect + `
		WHERE rt.employee_id IS NULL
		ORDER BY rt.id, rtw.week_index, rtp.weekday
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return assembleRotationTemplates(rows)
}

func (r *Repository) GetRotationTemplate(id int64) (*domain.RotationTemplate, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := rotationTemplateSelect + `
		WHERE rt.id = $1
		ORDER BY rtw.week_index, rtp.weekday
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates, err := assembleRotationTemplates(rows)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, sql.ErrNoRows
	}

	return templates[0], nil
}

// GetActiveCustomSchedule 返回员工当前启用的自定义班表，不存在时返回 sql.ErrNoRows。
func (r *Repository) GetActiveCustomSchedule(employeeID int64) (*domain.RotationTemplate, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := rotationTemplateSelect + `
		WHERE rt.employee_id = $1 AND rt.status = 'active'
		ORDER BY rtw.week_index, rtp.weekday
	`

	rows, err := r.dbpool.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates, err := assembleRotationTemplates(rows)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, sql.ErrNoRows
	}

	return templates[0], nil
}

func (r *Repository) createRotationTemplateTx(ctx context.Context, tx *sql.Tx, template *domain.RotationTemplate) error {
	query := `
		INSERT INTO rotation_templates (name, description, status, is_default, employee_id, rotation_length_weeks)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`
	params := []any{template.Name, template.Description, template.Status, template.IsDefault, template.EmployeeID, template.RotationLengthWeeks}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&template.ID, &template.CreatedAt, &template.Version); err != nil {
		return err
	}

	for i := range template.Weeks {
		query = `
			INSERT INTO rotation_template_weeks (template_id, week_index, label)
			VALUES ($1, $2, $3)
			RETURNING id
		`
		if err := tx.QueryRowContext(ctx, query, template.ID, template.Weeks[i].WeekIndex, template.Weeks[i].Label).Scan(&template.Weeks[i].ID); err != nil {
			return err
		}

		for j := range template.Weeks[i].Patterns {
			pattern := &template.Weeks[i].Patterns[j]
			query = `
				INSERT INTO rotation_template_patterns (week_id, weekday, is_working_day, start_time, end_time, break_minutes, expected_hours, location_id)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING id
			`
			params := []any{template.Weeks[i].ID, pattern.Weekday, pattern.IsWorkingDay, pattern.StartTime, pattern.EndTime, pattern.BreakMinutes, pattern.ExpectedHours, pattern.LocationID}
			if err := tx.QueryRowContext(ctx, query, params...).Scan(&pattern.ID); err != nil {
				return err
			}
		}
	}

	return nil
}

func (r *Repository) CreateRotationTemplate(template *domain.RotationTemplate) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := r.createRotationTemplateTx(ctx, tx, template); err != nil {
		return err
	}

	return tx.Commit()
}

// ReplaceCustomSchedule 覆盖员工的自定义班表：删除旧的自定义班表后插入新的。
func (r *Repository) ReplaceCustomSchedule(template *domain.RotationTemplate) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 先把原先的自定义班表删除再插入
	query := `DELETE FROM rotation_templates WHERE employee_id = $1`
	if _, err := tx.ExecContext(ctx, query, template.EmployeeID); err != nil {
		return err
	}

	if err := r.createRotationTemplateTx(ctx, tx, template); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateRotationTemplateMeta 只更新模板的元信息，周和星期记录需要整体替换。
func (r *Repository) UpdateRotationTemplateMeta(template *domain.RotationTemplate) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE rotation_templates
		SET
			name = $1,
			description = $2,
			status = $3,
			is_default = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version
	`

	params := []any{template.Name, template.Description, template.Status, template.IsDefault, template.ID, template.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&template.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteRotationTemplate(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM rotation_templates WHERE id = $1
	`

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

// IsTemplateReferenced 检查是否有分配记录（包括历史记录）引用了这个模板。
func (r *Repository) IsTemplateReferenced(templateID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT EXISTS (SELECT 1 FROM template_assignments WHERE template_id = $1)
	`

	isReferenced := false
	if err := r.dbpool.QueryRowContext(ctx, query, templateID).Scan(&isReferenced); err != nil {
		return false, err
	}

	return isReferenced, nil
}
