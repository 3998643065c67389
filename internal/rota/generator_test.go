package rota

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func workingDay(weekday int32, startTime string, endTime string) domain.WeekdayPattern {
	return domain.WeekdayPattern{
		Weekday:       weekday,
		IsWorkingDay:  true,
		StartTime:     startTime,
		EndTime:       endTime,
		BreakMinutes:  60,
		ExpectedHours: 7,
	}
}

func restDay(weekday int32) domain.WeekdayPattern {
	return domain.WeekdayPattern{Weekday: weekday, IsWorkingDay: false}
}

// 两周轮换：第一周周一到周五工作，第二周只有周一到周三工作。
func newTwoWeekTemplate() *domain.RotationTemplate {
	return &domain.RotationTemplate{
		ID:                  1,
		Name:                "两周轮换",
		Status:              domain.TemplateStatusActive,
		RotationLengthWeeks: 2,
		Weeks: []domain.TemplateWeek{
			{
				WeekIndex: 1,
				Patterns: []domain.WeekdayPattern{
					workingDay(1, "09:00", "17:00"),
					workingDay(2, "09:00", "17:00"),
					workingDay(3, "09:00", "17:00"),
					workingDay(4, "09:00", "17:00"),
					workingDay(5, "09:00", "17:00"),
					restDay(6),
					restDay(7),
				},
			},
			{
				WeekIndex: 2,
				Patterns: []domain.WeekdayPattern{
					workingDay(1, "13:00", "21:00"),
					workingDay(2, "13:00", "21:00"),
					workingDay(3, "13:00", "21:00"),
					restDay(4),
					restDay(5),
					restDay(6),
					restDay(7),
				},
			},
		},
	}
}

func TestMondayOnOrBefore(t *testing.T) {
	// 2024-01-01 本身就是周一
	assert.Equal(t, date(2024, 1, 1), MondayOnOrBefore(date(2024, 1, 1)))
	// 周三回退到本周周一
	assert.Equal(t, date(2024, 1, 1), MondayOnOrBefore(date(2024, 1, 3)))
	// 周日仍然属于本周，回退六天
	assert.Equal(t, date(2024, 1, 1), MondayOnOrBefore(date(2024, 1, 7)))
	// 下一个周一属于新的一周
	assert.Equal(t, date(2024, 1, 8), MondayOnOrBefore(date(2024, 1, 8)))
}

func TestGenerate_RotationCycle(t *testing.T) {
	template := newTwoWeekTemplate()
	assignment := &domain.TemplateAssignment{
		ID:                 10,
		EmployeeID:         42,
		TemplateID:         template.ID,
		EffectiveStartDate: date(2024, 1, 1), // 周一
	}

	// 四个完整的日历周：1 2 1 2
	shifts := Generate(assignment, template, date(2024, 1, 28))

	require.Len(t, shifts, 16) // 5 + 3 + 5 + 3

	for _, shift := range shifts {
		assert.Equal(t, int64(42), shift.EmployeeID)
		assert.Equal(t, domain.ShiftSourceTemplate, shift.Source)
		assert.Equal(t, domain.ShiftStatusDraft, shift.Status)
		require.NotNil(t, shift.AssignmentID)
		assert.Equal(t, int64(10), *shift.AssignmentID)
		// 两周都没有周末班次
		assert.NotEqual(t, time.Saturday, shift.Date.Weekday())
		assert.NotEqual(t, time.Sunday, shift.Date.Weekday())
	}

	// 第一周是早班
	assert.Equal(t, date(2024, 1, 1), shifts[0].Date)
	assert.Equal(t, "09:00", shifts[0].StartTime)
	assert.Equal(t, "17:00", shifts[0].EndTime)

	// 第二个日历周轮换到第二周的晚班
	assert.Equal(t, date(2024, 1, 8), shifts[5].Date)
	assert.Equal(t, "13:00", shifts[5].StartTime)
	assert.Equal(t, "21:00", shifts[5].EndTime)

	// 第三个日历周回到第一周
	assert.Equal(t, date(2024, 1, 15), shifts[8].Date)
	assert.Equal(t, "09:00", shifts[8].StartTime)

	// 按日期升序排列
	for i := 1; i < len(shifts); i++ {
		assert.True(t, shifts[i].Date.After(shifts[i-1].Date))
	}
}

func TestGenerate_MidWeekStart(t *testing.T) {
	template := newTwoWeekTemplate()
	assignment := &domain.TemplateAssignment{
		ID:                 11,
		EmployeeID:         42,
		TemplateID:         template.ID,
		EffectiveStartDate: date(2024, 1, 3), // 周三
	}

	shifts := Generate(assignment, template, date(2024, 1, 7))

	// 轮换周以周一为锚点，周三入职的第一个日历周仍然使用第一周的安排，
	// 但生效开始日期之前的周一周二不会生成班次
	require.Len(t, shifts, 3)
	assert.Equal(t, date(2024, 1, 3), shifts[0].Date)
	assert.Equal(t, date(2024, 1, 4), shifts[1].Date)
	assert.Equal(t, date(2024, 1, 5), shifts[2].Date)
	assert.Equal(t, "09:00", shifts[0].StartTime)
}

func TestGenerate_EffectiveEndClamp(t *testing.T) {
	template := newTwoWeekTemplate()
	endDate := date(2024, 1, 9) // 第二个日历周的周二
	assignment := &domain.TemplateAssignment{
		ID:                 12,
		EmployeeID:         42,
		TemplateID:         template.ID,
		EffectiveStartDate: date(2024, 1, 1),
		EffectiveEndDate:   &endDate,
	}

	// 地平线比生效结束日期晚得多，以生效结束日期为准
	shifts := Generate(assignment, template, date(2024, 3, 1))

	require.Len(t, shifts, 7) // 第一周 5 个 + 第二周的周一周二
	assert.Equal(t, endDate, shifts[len(shifts)-1].Date)
}

func TestGenerate_MissingWeekSkipped(t *testing.T) {
	template := newTwoWeekTemplate()
	// 人为去掉第二周，轮换长度仍然是 2
	template.Weeks = template.Weeks[:1]

	assignment := &domain.TemplateAssignment{
		ID:                 13,
		EmployeeID:         42,
		TemplateID:         template.ID,
		EffectiveStartDate: date(2024, 1, 1),
	}

	shifts := Generate(assignment, template, date(2024, 1, 28))

	// 第二和第四个日历周被整周跳过，不报错
	require.Len(t, shifts, 10)
	for _, shift := range shifts {
		week := shift.Date.Sub(date(2024, 1, 1)) / (7 * 24 * time.Hour)
		assert.Equal(t, int64(0), int64(week)%2)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	template := newTwoWeekTemplate()
	assignment := &domain.TemplateAssignment{
		ID:                 14,
		EmployeeID:         42,
		TemplateID:         template.ID,
		EffectiveStartDate: date(2024, 1, 1),
	}

	first := Generate(assignment, template, date(2024, 2, 25))
	second := Generate(assignment, template, date(2024, 2, 25))

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Date, second[i].Date)
		assert.Equal(t, first[i].StartTime, second[i].StartTime)
		assert.Equal(t, first[i].EndTime, second[i].EndTime)
	}
}

// 早晚班交替的完整场景：A 周工作日全勤，B 周周五休息、周六上半天班。
func TestGenerate_AlternatingWeeksScenario(t *testing.T) {
	template := &domain.RotationTemplate{
		ID:                  2,
		Name:                "早晚班交替",
		Status:              domain.TemplateStatusActive,
		RotationLengthWeeks: 2,
		Weeks: []domain.TemplateWeek{
			{
				WeekIndex: 1,
				Patterns: []domain.WeekdayPattern{
					workingDay(1, "09:00", "17:30"),
					workingDay(2, "09:00", "17:30"),
					workingDay(3, "09:00", "17:30"),
					workingDay(4, "09:00", "17:30"),
					workingDay(5, "09:00", "17:30"),
					restDay(6),
					restDay(7),
				},
			},
			{
				WeekIndex: 2,
				Patterns: []domain.WeekdayPattern{
					workingDay(1, "09:00", "17:30"),
					workingDay(2, "09:00", "17:30"),
					workingDay(3, "09:00", "17:30"),
					workingDay(4, "09:00", "17:30"),
					restDay(5),
					workingDay(6, "09:00", "13:00"),
					restDay(7),
				},
			},
		},
	}

	assignment := &domain.TemplateAssignment{
		ID:                 20,
		EmployeeID:         42,
		TemplateID:         template.ID,
		EffectiveStartDate: date(2024, 1, 1),
	}

	shifts := Generate(assignment, template, date(2024, 1, 28))

	// A 周 5 个 + B 周 5 个（周一到周四加周六），各出现两次
	require.Len(t, shifts, 20)

	for _, shift := range shifts {
		assert.NotEqual(t, time.Sunday, shift.Date.Weekday())

		week := int(shift.Date.Sub(date(2024, 1, 1)) / (7 * 24 * time.Hour))
		if week%2 == 0 {
			// A 周没有周六班次
			assert.NotEqual(t, time.Saturday, shift.Date.Weekday())
		} else {
			// B 周没有周五班次，周六只上半天
			assert.NotEqual(t, time.Friday, shift.Date.Weekday())
			if shift.Date.Weekday() == time.Saturday {
				assert.Equal(t, "09:00", shift.StartTime)
				assert.Equal(t, "13:00", shift.EndTime)
			}
		}
	}
}

// 自定义班表走的是合成分配记录，ID 为 0，生成的班次不能引用不存在的分配。
func TestGenerate_CustomScheduleShiftsReferenceNoAssignment(t *testing.T) {
	employeeID := int64(42)
	custom := newTwoWeekTemplate()
	custom.EmployeeID = &employeeID

	source := ResolveScheduleSource(custom, nil, nil, date(2024, 1, 3))
	require.Equal(t, ScheduleSourceCustom, source.Kind)
	require.Zero(t, source.Assignment.ID)

	shifts := Generate(source.Assignment, source.Template, date(2024, 1, 28))
	require.NotEmpty(t, shifts)
	for _, shift := range shifts {
		assert.Equal(t, employeeID, shift.EmployeeID)
		assert.Nil(t, shift.AssignmentID)
	}
}

func TestGenerate_HorizonBeforeStart(t *testing.T) {
	template := newTwoWeekTemplate()
	assignment := &domain.TemplateAssignment{
		ID:                 15,
		EmployeeID:         42,
		TemplateID:         template.ID,
		EffectiveStartDate: date(2024, 6, 1),
	}

	shifts := Generate(assignment, template, date(2024, 1, 1))
	assert.Empty(t, shifts)
}

func TestGenerate_ZeroRotationLength(t *testing.T) {
	template := newTwoWeekTemplate()
	template.RotationLengthWeeks = 0

	assignment := &domain.TemplateAssignment{
		ID:                 16,
		EmployeeID:         42,
		TemplateID:         template.ID,
		EffectiveStartDate: date(2024, 1, 1),
	}

	shifts := Generate(assignment, template, date(2024, 1, 28))
	assert.Empty(t, shifts)
}
