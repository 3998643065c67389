package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

func newValidTemplate(rotationLength int32) *domain.RotationTemplate {
	template := &domain.RotationTemplate{
		Name:                "测试模板",
		Status:              domain.TemplateStatusActive,
		RotationLengthWeeks: rotationLength,
		Weeks:               make([]domain.TemplateWeek, rotationLength),
	}

	for i := int32(0); i < rotationLength; i++ {
		week := domain.TemplateWeek{
			WeekIndex: i + 1,
			Patterns:  make([]domain.WeekdayPattern, 7),
		}
		for weekday := int32(1); weekday <= 7; weekday++ {
			week.Patterns[weekday-1] = domain.WeekdayPattern{
				Weekday:       weekday,
				IsWorkingDay:  weekday <= 5,
				StartTime:     "09:00",
				EndTime:       "17:00",
				BreakMinutes:  60,
				ExpectedHours: 7,
			}
		}
		template.Weeks[i] = week
	}

	return template
}

func TestValidateRotationTemplate(t *testing.T) {
	t.Run("合法模板", func(t *testing.T) {
		assert.Empty(t, ValidateRotationTemplate(newValidTemplate(2)))
	})

	t.Run("轮换周数超出范围", func(t *testing.T) {
		template := newValidTemplate(2)
		template.RotationLengthWeeks = 7
		violations := ValidateRotationTemplate(template)
		require.Len(t, violations, 1)
		assert.Contains(t, violations[0], "轮换周数")
	})

	t.Run("缺少周", func(t *testing.T) {
		template := newValidTemplate(3)
		template.Weeks = template.Weeks[:2]
		violations := ValidateRotationTemplate(template)
		require.NotEmpty(t, violations)
		assert.Contains(t, violations[0], "缺少周序号为 3 的周")
	})

	t.Run("周序号重复", func(t *testing.T) {
		template := newValidTemplate(2)
		template.Weeks[1].WeekIndex = 1
		violations := ValidateRotationTemplate(template)
		assert.NotEmpty(t, violations)
	})

	t.Run("周序号超出轮换周数", func(t *testing.T) {
		template := newValidTemplate(2)
		template.Weeks[1].WeekIndex = 5
		violations := ValidateRotationTemplate(template)
		assert.NotEmpty(t, violations)
	})

	t.Run("缺少星期记录", func(t *testing.T) {
		template := newValidTemplate(1)
		template.Weeks[0].Patterns = template.Weeks[0].Patterns[:6]
		violations := ValidateRotationTemplate(template)
		require.NotEmpty(t, violations)
		assert.Contains(t, violations[0], "缺少星期 7")
	})

	t.Run("星期重复", func(t *testing.T) {
		template := newValidTemplate(1)
		template.Weeks[0].Patterns[6].Weekday = 1
		violations := ValidateRotationTemplate(template)
		assert.NotEmpty(t, violations)
	})

	t.Run("工作日时间格式错误", func(t *testing.T) {
		template := newValidTemplate(1)
		template.Weeks[0].Patterns[0].StartTime = "9 点"
		violations := ValidateRotationTemplate(template)
		require.NotEmpty(t, violations)
		assert.Contains(t, violations[0], "开始时间格式错误")
	})

	t.Run("开始时间晚于结束时间", func(t *testing.T) {
		template := newValidTemplate(1)
		template.Weeks[0].Patterns[0].StartTime = "18:00"
		violations := ValidateRotationTemplate(template)
		require.NotEmpty(t, violations)
		assert.Contains(t, violations[0], "开始时间必须早于结束时间")
	})

	t.Run("非工作日不检查时间", func(t *testing.T) {
		template := newValidTemplate(1)
		template.Weeks[0].Patterns[6].StartTime = "乱写的"
		assert.Empty(t, ValidateRotationTemplate(template))
	})
}

func TestValidateShiftTime(t *testing.T) {
	shift := &domain.Shift{StartTime: "09:00", EndTime: "17:00", BreakMinutes: 60, ExpectedHours: 7}
	assert.NoError(t, ValidateShiftTime(shift))

	shift.StartTime = "17:00"
	shift.EndTime = "09:00"
	assert.Error(t, ValidateShiftTime(shift))

	shift.StartTime = "09:00"
	shift.EndTime = "17:00"
	shift.BreakMinutes = -1
	assert.Error(t, ValidateShiftTime(shift))

	shift.BreakMinutes = 0
	shift.StartTime = "早上九点"
	assert.Error(t, ValidateShiftTime(shift))
}

func TestValidateAssignmentDates(t *testing.T) {
	start := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	assignment := &domain.TemplateAssignment{EffectiveStartDate: start}
	assert.NoError(t, ValidateAssignmentDates(assignment))

	end := start.AddDate(0, 0, 30)
	assignment.EffectiveEndDate = &end
	assert.NoError(t, ValidateAssignmentDates(assignment))

	badEnd := start.AddDate(0, 0, -1)
	assignment.EffectiveEndDate = &badEnd
	assert.Error(t, ValidateAssignmentDates(assignment))
}

func TestValidateAvailabilitySet(t *testing.T) {
	newSet := func() []domain.EmployeeAvailability {
		items := make([]domain.EmployeeAvailability, 7)
		for weekday := int32(1); weekday <= 7; weekday++ {
			items[weekday-1] = domain.EmployeeAvailability{
				Weekday:     weekday,
				IsAvailable: true,
				StartTime:   "08:00",
				EndTime:     "22:00",
				MaxHours:    8,
			}
		}
		return items
	}

	t.Run("合法配置", func(t *testing.T) {
		assert.NoError(t, ValidateAvailabilitySet(newSet()))
	})

	t.Run("不要求覆盖整周", func(t *testing.T) {
		assert.NoError(t, ValidateAvailabilitySet(newSet()[:3]))
	})

	t.Run("星期重复", func(t *testing.T) {
		items := newSet()
		items[1].Weekday = 1
		assert.Error(t, ValidateAvailabilitySet(items))
	})

	t.Run("非法的星期", func(t *testing.T) {
		items := newSet()
		items[0].Weekday = 8
		assert.Error(t, ValidateAvailabilitySet(items))
	})

	t.Run("不可用的天不检查时间", func(t *testing.T) {
		items := newSet()
		items[0].IsAvailable = false
		items[0].StartTime = "乱写的"
		assert.NoError(t, ValidateAvailabilitySet(items))
	})

	t.Run("时间窗口非法", func(t *testing.T) {
		items := newSet()
		items[0].StartTime = "23:00"
		assert.Error(t, ValidateAvailabilitySet(items))
	})
}
