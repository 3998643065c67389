package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

// PublishShifts 把一批草稿班次发布出去：在一个事务里创建 PublishBatch 记录、
// 记录受影响的员工、并把每个班次的状态从 draft 改为 published 且盖上批次 ID。
// 任何一个班次已经不是草稿状态都会导致整个事务回滚。
func (r *Repository) PublishShifts(batch *domain.PublishBatch, shiftIDs []int64) error {
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
		INSERT INTO publish_batches (published_by, shifts_count, notes)
		VALUES ($1, $2, $3)
		RETURNING id, published_at
	`
	if err := tx.QueryRowContext(ctx, query, batch.PublishedBy, batch.ShiftsCount, batch.Notes).Scan(&batch.ID, &batch.PublishedAt); err != nil {
		return err
	}

	for _, employeeID := range batch.AffectedEmployeeIDs {
		query = `
			INSERT INTO publish_batch_employees (batch_id, employee_id)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, batch.ID, employeeID); err != nil {
			return err
		}
	}

	for _, shiftID := range shiftIDs {
		query = `
			UPDATE shifts
			SET status = 'published', publish_batch_id = $1, version = version + 1
			WHERE id = $2 AND status = 'draft'
		`
		result, err := tx.ExecContext(ctx, query, batch.ID, shiftID)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("班次 %d 不存在或不是草稿状态", shiftID)
		}
	}

	return tx.Commit()
}

// GetAllPublishBatches 返回所有的发布记录，最新的排在前面。
func (r *Repository) GetAllPublishBatches() ([]*domain.PublishBatch, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			pb.id,
			pb.published_by,
			pb.published_at,
			pb.shifts_count,
			pb.notes,
			pbe.employee_id
		FROM publish_batches pb
		LEFT JOIN publish_batch_employees pbe ON pb.id = pbe.batch_id
		ORDER BY pb.published_at DESC, pb.id DESC
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	batchesMap := make(map[int64]*domain.PublishBatch)
	batchOrder := make([]int64, 0)

	for rows.Next() {
		var row struct {
			ID          int64
			PublishedBy int64
			PublishedAt time.Time
			ShiftsCount int32
			Notes       string

			EmployeeID sql.NullInt64
		}

		dst := []any{&row.ID, &row.PublishedBy, &row.PublishedAt, &row.ShiftsCount, &row.Notes, &row.EmployeeID}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if _, exists := batchesMap[row.ID]; !exists {
			// 说明此时是第一次查到这个 batch，需要在 map 中初始化这个 batch
			batchesMap[row.ID] = &domain.PublishBatch{
				ID:                  row.ID,
				PublishedBy:         row.PublishedBy,
				PublishedAt:         row.PublishedAt,
				ShiftsCount:         row.ShiftsCount,
				AffectedEmployeeIDs: make([]int64, 0),
				Notes:               row.Notes,
			}
			batchOrder = append(batchOrder, row.ID)
		}

		if !row.EmployeeID.Valid {
			continue
		}

		batchesMap[row.ID].AffectedEmployeeIDs = append(batchesMap[row.ID].AffectedEmployeeIDs, row.EmployeeID.Int64)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	batches := make([]*domain.PublishBatch, 0, len(batchesMap))
	for _, batchID := range batchOrder {
		batches = append(batches, batchesMap[batchID])
	}

	return batches, nil
}
