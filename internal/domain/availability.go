package domain

import "time"

// EmployeeAvailability 是员工在某个星期几的可用性配置。
// 没有记录的星期几视为没有约束；可用性检查只产生提醒，不阻止保存班次。
type EmployeeAvailability struct {
	ID          int64     `json:"id"`
	EmployeeID  int64     `json:"employeeID"`
	Weekday     int32     `json:"weekday"` // 1~7，1 表示周一
	IsAvailable bool      `json:"isAvailable"`
	StartTime   string    `json:"startTime"` // HH:MM，可用时间窗口
	EndTime     string    `json:"endTime"`
	MaxHours    float64   `json:"maxHours"` // 0 表示不限制
	Note        string    `json:"note"`
	CreatedAt   time.Time `json:"createdAt"`
	Version     int32     `json:"-"`
}
