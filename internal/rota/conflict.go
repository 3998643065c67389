package rota

import (
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

// OverlapConflict 描述一次时间重叠冲突，冲突是硬性错误，必须阻止保存。
type OverlapConflict struct {
	Shift  *domain.Shift `json:"shift"`
	Reason string        `json:"reason"`
}

// minutesOfDay 把 HH:MM 格式的时间解析成当天的分钟数。
func minutesOfDay(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// CheckOverlap 检查候选班次和同一员工同一天已有的班次是否时间重叠。
// 重叠判断使用半开区间 [start, end)，首尾相接不算重叠。
// 返回第一个冲突的班次（按传入顺序），没有冲突时返回 nil。
// 编辑已有班次时，候选班次自身会从比较集合中排除。
func CheckOverlap(candidate *domain.Shift, existing []*domain.Shift) *OverlapConflict {
	candidateStart, err := minutesOfDay(candidate.StartTime)
	if err != nil {
		return nil
	}
	candidateEnd, err := minutesOfDay(candidate.EndTime)
	if err != nil {
		return nil
	}

	candidateDate := TruncateToDate(candidate.Date)

	for _, shift := range existing {
		if candidate.ID != 0 && shift.ID == candidate.ID {
			continue
		}
		if shift.EmployeeID != candidate.EmployeeID || !TruncateToDate(shift.Date).Equal(candidateDate) {
			continue
		}

		start, err := minutesOfDay(shift.StartTime)
		if err != nil {
			continue
		}
		end, err := minutesOfDay(shift.EndTime)
		if err != nil {
			continue
		}

		if candidateStart < end && candidateEnd > start {
			return &OverlapConflict{
				Shift:  shift,
				Reason: fmt.Sprintf("与当天 %s-%s 的班次时间重叠", shift.StartTime, shift.EndTime),
			}
		}
	}

	return nil
}

type AvailabilityStatus string

// 可用性检查的结果按优先级排列，除时间重叠外都只是提醒，不阻止保存。
const (
	AvailabilityNoRecord      AvailabilityStatus = "no_availability_record"
	AvailabilityUnavailable   AvailabilityStatus = "unavailable"
	AvailabilityTimeConflict  AvailabilityStatus = "time_conflict"
	AvailabilityHoursExceeded AvailabilityStatus = "hours_exceeded"
	AvailabilityNote          AvailabilityStatus = "note"
	AvailabilityOK            AvailabilityStatus = "available"
)

// NetHours 计算班次的净工作小时数，即时间窗口长度减去休息时间。
func NetHours(shift *domain.Shift) float64 {
	start, err := minutesOfDay(shift.StartTime)
	if err != nil {
		return 0
	}
	end, err := minutesOfDay(shift.EndTime)
	if err != nil {
		return 0
	}
	return (float64(end-start) - float64(shift.BreakMinutes)) / 60
}

// CheckAvailability 把候选班次和员工在该星期几的可用性配置做比较。
// availability 为 nil 表示员工没有配置该星期几的可用性，视为没有约束。
func CheckAvailability(candidate *domain.Shift, availability *domain.EmployeeAvailability) AvailabilityStatus {
	if availability == nil {
		return AvailabilityNoRecord
	}

	if !availability.IsAvailable {
		return AvailabilityUnavailable
	}

	candidateStart, err1 := minutesOfDay(candidate.StartTime)
	candidateEnd, err2 := minutesOfDay(candidate.EndTime)
	availableStart, err3 := minutesOfDay(availability.StartTime)
	availableEnd, err4 := minutesOfDay(availability.EndTime)
	if err1 == nil && err2 == nil && err3 == nil && err4 == nil {
		if candidateStart < availableStart || candidateEnd > availableEnd {
			return AvailabilityTimeConflict
		}
	}

	if availability.MaxHours > 0 && NetHours(candidate) > availability.MaxHours {
		return AvailabilityHoursExceeded
	}

	if availability.Note != "" {
		return AvailabilityNote
	}

	return AvailabilityOK
}
