package utils

import (
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

func parseClock(s string) (time.Time, error) {
	return time.Parse("15:04", s)
}

// ValidateRotationTemplate 检查轮换模板的结构是否完整，返回所有违反规则的描述。
// 返回空切片表示模板合法。校验不通过的模板不会被写入数据库，
// 因此生成器在正常流程中不会遇到缺周的模板。
func ValidateRotationTemplate(t *domain.RotationTemplate) []string {
	violations := []string{}

	if t.RotationLengthWeeks < 1 || t.RotationLengthWeeks > 6 {
		violations = append(violations, "轮换周数必须在 1 到 6 之间")
		return violations
	}

	// 检查周序号是否恰好覆盖 1~N 且没有重复
	seenWeeks := make(map[int32]bool)
	for _, week := range t.Weeks {
		if week.WeekIndex < 1 || week.WeekIndex > t.RotationLengthWeeks {
			violations = append(violations, fmt.Sprintf("周序号 %d 超出了轮换周数范围", week.WeekIndex))
			continue
		}
		if seenWeeks[week.WeekIndex] {
			violations = append(violations, fmt.Sprintf("周序号 %d 出现了多次", week.WeekIndex))
			continue
		}
		seenWeeks[week.WeekIndex] = true
	}
	for index := int32(1); index <= t.RotationLengthWeeks; index++ {
		if !seenWeeks[index] {
			violations = append(violations, fmt.Sprintf("缺少周序号为 %d 的周", index))
		}
	}

	// 检查每一周是否每个星期几都恰好有一条记录
	for _, week := range t.Weeks {
		seenWeekdays := make(map[int32]bool)
		for _, pattern := range week.Patterns {
			if pattern.Weekday < 1 || pattern.Weekday > 7 {
				violations = append(violations, fmt.Sprintf("第 %d 周存在非法的星期 %d", week.WeekIndex, pattern.Weekday))
				continue
			}
			if seenWeekdays[pattern.Weekday] {
				violations = append(violations, fmt.Sprintf("第 %d 周的星期 %d 出现了多次", week.WeekIndex, pattern.Weekday))
				continue
			}
			seenWeekdays[pattern.Weekday] = true
		}
		for weekday := int32(1); weekday <= 7; weekday++ {
			if !seenWeekdays[weekday] {
				violations = append(violations, fmt.Sprintf("第 %d 周缺少星期 %d 的记录", week.WeekIndex, weekday))
			}
		}

		// 工作日的时间窗口必须合法，非工作日的时间字段不做要求
		for _, pattern := range week.Patterns {
			if !pattern.IsWorkingDay {
				continue
			}

			startTime, err := parseClock(pattern.StartTime)
			if err != nil {
				violations = append(violations, fmt.Sprintf("第 %d 周星期 %d 的开始时间格式错误", week.WeekIndex, pattern.Weekday))
				continue
			}
			endTime, err := parseClock(pattern.EndTime)
			if err != nil {
				violations = append(violations, fmt.Sprintf("第 %d 周星期 %d 的结束时间格式错误", week.WeekIndex, pattern.Weekday))
				continue
			}
			if !startTime.Before(endTime) {
				violations = append(violations, fmt.Sprintf("第 %d 周星期 %d 的开始时间必须早于结束时间", week.WeekIndex, pattern.Weekday))
			}
			if pattern.BreakMinutes < 0 {
				violations = append(violations, fmt.Sprintf("第 %d 周星期 %d 的休息时间不能为负数", week.WeekIndex, pattern.Weekday))
			}
			if pattern.ExpectedHours < 0 {
				violations = append(violations, fmt.Sprintf("第 %d 周星期 %d 的预期工时不能为负数", week.WeekIndex, pattern.Weekday))
			}
		}
	}

	return violations
}

// ValidateShiftTime 检查单个班次的时间窗口是否合法。
func ValidateShiftTime(shift *domain.Shift) error {
	startTime, err := parseClock(shift.StartTime)
	if err != nil {
		return fmt.Errorf("开始时间格式错误")
	}
	endTime, err := parseClock(shift.EndTime)
	if err != nil {
		return fmt.Errorf("结束时间格式错误")
	}
	if !startTime.Before(endTime) {
		return fmt.Errorf("开始时间必须早于结束时间")
	}
	if shift.BreakMinutes < 0 {
		return fmt.Errorf("休息时间不能为负数")
	}
	if shift.ExpectedHours < 0 {
		return fmt.Errorf("预期工时不能为负数")
	}
	return nil
}

// ValidateAssignmentDates 检查分配记录的生效区间是否合法。
func ValidateAssignmentDates(assignment *domain.TemplateAssignment) error {
	if assignment.EffectiveEndDate != nil && assignment.EffectiveEndDate.Before(assignment.EffectiveStartDate) {
		return fmt.Errorf("生效结束日期不能早于生效开始日期")
	}
	return nil
}

// ValidateAvailabilitySet 检查员工可用性配置是否每个星期几恰好一条。
func ValidateAvailabilitySet(items []domain.EmployeeAvailability) error {
	seen := make(map[int32]bool)
	for _, item := range items {
		if item.Weekday < 1 || item.Weekday > 7 {
			return fmt.Errorf("存在非法的星期 %d", item.Weekday)
		}
		if seen[item.Weekday] {
			return fmt.Errorf("星期 %d 出现了多次", item.Weekday)
		}
		seen[item.Weekday] = true

		if !item.IsAvailable {
			continue
		}
		startTime, err := parseClock(item.StartTime)
		if err != nil {
			return fmt.Errorf("星期 %d 的开始时间格式错误", item.Weekday)
		}
		endTime, err := parseClock(item.EndTime)
		if err != nil {
			return fmt.Errorf("星期 %d 的结束时间格式错误", item.Weekday)
		}
		if !startTime.Before(endTime) {
			return fmt.Errorf("星期 %d 的开始时间必须早于结束时间", item.Weekday)
		}
		if item.MaxHours < 0 {
			return fmt.Errorf("星期 %d 的最大工时不能为负数", item.Weekday)
		}
	}
	return nil
}
