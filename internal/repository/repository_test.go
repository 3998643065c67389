package repository

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

func newTestRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 5
	cfg.Database.TransactionTimeout = 10

	return NewRepository(cfg, db), mock
}

func testDate(day int) time.Time {
	return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
}

func TestReplaceTemplateDraftShifts(t *testing.T) {
	repo, mock := newTestRepository(t)

	shifts := []*domain.Shift{
		{
			EmployeeID:    42,
			Date:          testDate(1),
			StartTime:     "09:00",
			EndTime:       "17:00",
			BreakMinutes:  60,
			ExpectedHours: 7,
			Source:        domain.ShiftSourceTemplate,
			Status:        domain.ShiftStatusDraft,
		},
		{
			EmployeeID:    42,
			Date:          testDate(2),
			StartTime:     "09:00",
			EndTime:       "17:00",
			BreakMinutes:  60,
			ExpectedHours: 7,
			Source:        domain.ShiftSourceTemplate,
			Status:        domain.ShiftStatusDraft,
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM shifts")).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	for i := range shifts {
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO shifts")).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "version"}).
				AddRow(int64(i+1), time.Now(), int32(1)))
	}
	mock.ExpectCommit()

	err := repo.ReplaceTemplateDraftShifts(42, shifts)
	require.NoError(t, err)
	assert.Equal(t, int64(1), shifts[0].ID)
	assert.Equal(t, int64(2), shifts[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceTemplateDraftShifts_InsertFailureRollsBack(t *testing.T) {
	repo, mock := newTestRepository(t)

	shifts := []*domain.Shift{
		{EmployeeID: 42, Date: testDate(1), StartTime: "09:00", EndTime: "17:00", Source: domain.ShiftSourceTemplate, Status: domain.ShiftStatusDraft},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM shifts")).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO shifts")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.ReplaceTemplateDraftShifts(42, shifts)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublishShifts(t *testing.T) {
	repo, mock := newTestRepository(t)

	batch := &domain.PublishBatch{
		PublishedBy:         1,
		ShiftsCount:         2,
		AffectedEmployeeIDs: []int64{42, 43},
		Notes:               "第一次发布",
	}

	publishedAt := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO publish_batches")).
		WithArgs(int64(1), int32(2), "第一次发布").
		WillReturnRows(sqlmock.NewRows([]string{"id", "published_at"}).AddRow(int64(9), publishedAt))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO publish_batch_employees")).
		WithArgs(int64(9), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO publish_batch_employees")).
		WithArgs(int64(9), int64(43)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE shifts")).
		WithArgs(int64(9), int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE shifts")).
		WithArgs(int64(9), int64(101)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.PublishShifts(batch, []int64{100, 101})
	require.NoError(t, err)
	assert.Equal(t, int64(9), batch.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublishShifts_NonDraftRollsBack(t *testing.T) {
	repo, mock := newTestRepository(t)

	batch := &domain.PublishBatch{
		PublishedBy:         1,
		ShiftsCount:         1,
		AffectedEmployeeIDs: []int64{42},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO publish_batches")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "published_at"}).AddRow(int64(9), time.Now()))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO publish_batch_employees")).
		WithArgs(int64(9), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// 班次已经被发布过，更新不会命中任何行
	mock.ExpectExec(regexp.QuoteMeta("UPDATE shifts")).
		WithArgs(int64(9), int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.PublishShifts(batch, []int64{100})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "不是草稿状态")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 周的顺序必须和 week_index 一致，不能依赖 map 的遍历顺序。
func TestGetRotationTemplate_WeeksKeepIndexOrder(t *testing.T) {
	repo, mock := newTestRepository(t)

	columns := []string{
		"id", "name", "description", "status", "is_default", "employee_id", "rotation_length_weeks", "created_at", "version",
		"week_id", "week_index", "label",
		"pattern_id", "weekday", "is_working_day", "start_time", "end_time", "break_minutes", "expected_hours", "location_id",
	}
	rows := sqlmock.NewRows(columns)
	createdAt := time.Now()
	for weekIndex := int32(1); weekIndex <= 6; weekIndex++ {
		rows.AddRow(
			int64(1), "六周轮换", "", "active", false, nil, int32(6), createdAt, int32(1),
			int64(10+weekIndex), weekIndex, "",
			int64(100+weekIndex), int32(1), true, "09:00", "17:00", int32(60), 7.0, nil,
		)
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM rotation_templates")).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	template, err := repo.GetRotationTemplate(1)
	require.NoError(t, err)
	require.Len(t, template.Weeks, 6)
	for i, week := range template.Weeks {
		assert.Equal(t, int32(i+1), week.WeekIndex)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetShiftsByEmployeeAndDate(t *testing.T) {
	repo, mock := newTestRepository(t)

	columns := []string{"id", "employee_id", "date", "start_time", "end_time", "break_minutes", "expected_hours", "location_id", "source", "status", "assignment_id", "publish_batch_id", "created_at", "version"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM shifts")).
		WithArgs(int64(42), testDate(15)).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(1), int64(42), testDate(15), "09:00", "13:00", int32(0), 4.0, nil, "template", "draft", int64(5), nil, time.Now(), int32(1)).
			AddRow(int64(2), int64(42), testDate(15), "14:00", "18:00", int32(0), 4.0, nil, "manual", "draft", nil, nil, time.Now(), int32(1)))

	shifts, err := repo.GetShiftsByEmployeeAndDate(42, testDate(15))
	require.NoError(t, err)
	require.Len(t, shifts, 2)

	assert.Equal(t, domain.ShiftSourceTemplate, shifts[0].Source)
	require.NotNil(t, shifts[0].AssignmentID)
	assert.Equal(t, int64(5), *shifts[0].AssignmentID)

	assert.Equal(t, domain.ShiftSourceManual, shifts[1].Source)
	assert.Nil(t, shifts[1].AssignmentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnassignAssignment(t *testing.T) {
	repo, mock := newTestRepository(t)

	assignment := &domain.TemplateAssignment{
		ID:         5,
		EmployeeID: 42,
		TemplateID: 3,
		Version:    1,
	}
	endDate := testDate(20)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE template_assignments")).
		WithArgs(endDate, int64(5), int32(1)).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int32(2)))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM shifts")).
		WithArgs(int64(5), endDate).
		WillReturnResult(sqlmock.NewResult(0, 8))
	mock.ExpectCommit()

	err := repo.UnassignAssignment(assignment, endDate)
	require.NoError(t, err)
	assert.Equal(t, int32(2), assignment.Version)
	require.NotNil(t, assignment.EffectiveEndDate)
	assert.Equal(t, endDate, *assignment.EffectiveEndDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
