package rota

import (
	"time"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

// TruncateToDate 去掉时间部分，只保留 UTC 的日历日期。
// 所有的日期运算都基于日历日期，不做任何时区换算。
func TruncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MondayOnOrBefore 返回给定日期所在周的周一（ISO 周，周一为一周的第一天）。
func MondayOnOrBefore(t time.Time) time.Time {
	t = TruncateToDate(t)
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return t.AddDate(0, 0, -(weekday - 1))
}

// Generate 把轮换模板在分配记录的生效区间内展开成具体日期的班次。
//
// 生成的班次均为未持久化的草稿（source=template, status=draft），按日期升序排列。
// 相同的输入永远产生相同的输出，调用方负责在重新生成前删除旧的模板草稿。
//
// 轮换周的计算方式：以生效开始日期所在周的周一为锚点，
// 第 n 周（从 0 开始）对应模板中序号为 n mod 轮换长度 + 1 的周。
// 如果模板中缺少某个序号的周，则跳过整个日历周，不报错。
func Generate(assignment *domain.TemplateAssignment, template *domain.RotationTemplate, horizonEnd time.Time) []*domain.Shift {
	shifts := make([]*domain.Shift, 0)

	if template.RotationLengthWeeks <= 0 {
		return shifts
	}

	effectiveStart := TruncateToDate(assignment.EffectiveStartDate)
	effectiveEnd := TruncateToDate(horizonEnd)
	if assignment.EffectiveEndDate != nil {
		effectiveEnd = TruncateToDate(*assignment.EffectiveEndDate)
	}

	rotationAnchor := MondayOnOrBefore(effectiveStart)

	for weeksSinceAnchor := 0; ; weeksSinceAnchor++ {
		weekStart := rotationAnchor.AddDate(0, 0, weeksSinceAnchor*7)
		if weekStart.After(effectiveEnd) {
			break
		}

		rotationWeekIndex := int32(weeksSinceAnchor%int(template.RotationLengthWeeks)) + 1
		week := template.WeekByIndex(rotationWeekIndex)
		if week == nil {
			// 模板缺少这个序号的周，跳过整个日历周
			continue
		}

		for day := 0; day < 7; day++ {
			date := weekStart.AddDate(0, 0, day)
			if date.Before(effectiveStart) || date.After(effectiveEnd) {
				continue
			}

			pattern := week.PatternByWeekday(int32(day) + 1)
			if pattern == nil || !pattern.IsWorkingDay {
				continue
			}

			shift := &domain.Shift{
				EmployeeID:    assignment.EmployeeID,
				Date:          date,
				StartTime:     pattern.StartTime,
				EndTime:       pattern.EndTime,
				BreakMinutes:  pattern.BreakMinutes,
				ExpectedHours: pattern.ExpectedHours,
				LocationID:    pattern.LocationID,
				Source:        domain.ShiftSourceTemplate,
				Status:        domain.ShiftStatusDraft,
			}
			// 合成的分配记录（如自定义班表）没有持久化 ID，班次不能引用它
			if assignment.ID != 0 {
				assignmentID := assignment.ID
				shift.AssignmentID = &assignmentID
			}
			shifts = append(shifts, shift)
		}
	}

	return shifts
}
