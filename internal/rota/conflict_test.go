package rota

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

func newShift(id int64, employeeID int64, day int, startTime string, endTime string) *domain.Shift {
	return &domain.Shift{
		ID:         id,
		EmployeeID: employeeID,
		Date:       date(2024, 1, day),
		StartTime:  startTime,
		EndTime:    endTime,
	}
}

func TestCheckOverlap(t *testing.T) {
	existing := []*domain.Shift{
		newShift(1, 42, 15, "09:00", "13:00"),
		newShift(2, 42, 15, "14:00", "18:00"),
	}

	t.Run("部分重叠", func(t *testing.T) {
		candidate := newShift(0, 42, 15, "12:00", "17:00")
		conflict := CheckOverlap(candidate, existing)
		require.NotNil(t, conflict)
		assert.Equal(t, int64(1), conflict.Shift.ID)
	})

	t.Run("完全包含", func(t *testing.T) {
		candidate := newShift(0, 42, 15, "10:00", "11:00")
		conflict := CheckOverlap(candidate, existing)
		require.NotNil(t, conflict)
		assert.Equal(t, int64(1), conflict.Shift.ID)
	})

	t.Run("首尾相接不算重叠", func(t *testing.T) {
		candidate := newShift(0, 42, 15, "13:00", "14:00")
		assert.Nil(t, CheckOverlap(candidate, existing))
	})

	t.Run("不同日期不冲突", func(t *testing.T) {
		candidate := newShift(0, 42, 16, "09:00", "13:00")
		assert.Nil(t, CheckOverlap(candidate, existing))
	})

	t.Run("不同员工不冲突", func(t *testing.T) {
		candidate := newShift(0, 43, 15, "09:00", "13:00")
		assert.Nil(t, CheckOverlap(candidate, existing))
	})

	t.Run("编辑时排除自身", func(t *testing.T) {
		// 把 1 号班次改成略微不同的时间，不应该和自己冲突
		candidate := newShift(1, 42, 15, "09:30", "13:00")
		assert.Nil(t, CheckOverlap(candidate, existing))
	})

	t.Run("编辑后撞上其他班次", func(t *testing.T) {
		candidate := newShift(1, 42, 15, "09:00", "15:00")
		conflict := CheckOverlap(candidate, existing)
		require.NotNil(t, conflict)
		assert.Equal(t, int64(2), conflict.Shift.ID)
	})
}

func TestNetHours(t *testing.T) {
	shift := newShift(0, 42, 15, "09:00", "17:00")
	shift.BreakMinutes = 60
	assert.InDelta(t, 7.0, NetHours(shift), 1e-9)

	shift.BreakMinutes = 0
	assert.InDelta(t, 8.0, NetHours(shift), 1e-9)
}

func TestCheckAvailability(t *testing.T) {
	candidate := newShift(0, 42, 15, "09:00", "17:00")
	candidate.BreakMinutes = 60

	t.Run("没有配置视为没有约束", func(t *testing.T) {
		assert.Equal(t, AvailabilityNoRecord, CheckAvailability(candidate, nil))
	})

	t.Run("当天不可用", func(t *testing.T) {
		availability := &domain.EmployeeAvailability{IsAvailable: false}
		assert.Equal(t, AvailabilityUnavailable, CheckAvailability(candidate, availability))
	})

	t.Run("超出可用时间窗口", func(t *testing.T) {
		availability := &domain.EmployeeAvailability{
			IsAvailable: true,
			StartTime:   "10:00",
			EndTime:     "18:00",
		}
		assert.Equal(t, AvailabilityTimeConflict, CheckAvailability(candidate, availability))
	})

	t.Run("超出最大工时", func(t *testing.T) {
		availability := &domain.EmployeeAvailability{
			IsAvailable: true,
			StartTime:   "08:00",
			EndTime:     "22:00",
			MaxHours:    6,
		}
		assert.Equal(t, AvailabilityHoursExceeded, CheckAvailability(candidate, availability))
	})

	t.Run("最大工时为零表示不限制", func(t *testing.T) {
		availability := &domain.EmployeeAvailability{
			IsAvailable: true,
			StartTime:   "08:00",
			EndTime:     "22:00",
			MaxHours:    0,
		}
		assert.Equal(t, AvailabilityOK, CheckAvailability(candidate, availability))
	})

	t.Run("带备注", func(t *testing.T) {
		availability := &domain.EmployeeAvailability{
			IsAvailable: true,
			StartTime:   "08:00",
			EndTime:     "22:00",
			Note:        "周五需要提前下班",
		}
		assert.Equal(t, AvailabilityNote, CheckAvailability(candidate, availability))
	})

	t.Run("完全可用", func(t *testing.T) {
		availability := &domain.EmployeeAvailability{
			IsAvailable: true,
			StartTime:   "09:00",
			EndTime:     "17:00",
			MaxHours:    8,
		}
		assert.Equal(t, AvailabilityOK, CheckAvailability(candidate, availability))
	})
}
