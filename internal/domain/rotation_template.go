package domain

import (
	"time"
)

type TemplateStatus string

const (
	TemplateStatusActive   TemplateStatus = "active"
	TemplateStatusInactive TemplateStatus = "inactive"
)

// WeekdayPattern 描述轮换周内某一天的工作安排。
// Weekday 的取值为 1~7，1 表示周一。
// 当 IsWorkingDay 为 false 时，时间、休息和工时字段会被生成器忽略。
type WeekdayPattern struct {
	ID            int64   `json:"id"`
	Weekday       int32   `json:"weekday"`
	IsWorkingDay  bool    `json:"isWorkingDay"`
	StartTime     string  `json:"startTime"` // HH:MM 格式的本地时间
	EndTime       string  `json:"endTime"`
	BreakMinutes  int32   `json:"breakMinutes"`
	ExpectedHours float64 `json:"expectedHours"` // 与时间窗口相互独立，允许手动覆盖
	LocationID    *int64  `json:"locationID"`    // 为空表示沿用员工的默认工作地点
}

// TemplateWeek 是轮换模板中的一周，必须恰好包含 7 个 WeekdayPattern。
type TemplateWeek struct {
	ID        int64            `json:"id"`
	WeekIndex int32            `json:"weekIndex"` // 1~RotationLengthWeeks
	Label     string           `json:"label"`
	Patterns  []WeekdayPattern `json:"patterns"`
}

// RotationTemplate 既表示可复用的轮换模板（EmployeeID 为空），
// 也表示只作用于单个员工的自定义班表（EmployeeID 非空）。
type RotationTemplate struct {
	ID                  int64          `json:"id"`
	Name                string         `json:"name"`
	Description         string         `json:"description"`
	Status              TemplateStatus `json:"status"`
	IsDefault           bool           `json:"isDefault"`
	EmployeeID          *int64         `json:"employeeID"`
	RotationLengthWeeks int32          `json:"rotationLengthWeeks"` // 1~6
	Weeks               []TemplateWeek `json:"weeks"`
	CreatedAt           time.Time      `json:"createdAt"`
	Version             int32          `json:"-"`
}

// WeekByIndex 返回模板中指定轮换周序号的周，不存在时返回 nil。
func (t *RotationTemplate) WeekByIndex(index int32) *TemplateWeek {
	for i := range t.Weeks {
		if t.Weeks[i].WeekIndex == index {
			return &t.Weeks[i]
		}
	}
	return nil
}

// PatternByWeekday 返回某一周中指定星期的 WeekdayPattern，不存在时返回 nil。
func (w *TemplateWeek) PatternByWeekday(weekday int32) *WeekdayPattern {
	for i := range w.Patterns {
		if w.Patterns[i].Weekday == weekday {
			return &w.Patterns[i]
		}
	}
	return nil
}
