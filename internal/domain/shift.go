package domain

import "time"

type ShiftSource string

const (
	ShiftSourceTemplate ShiftSource = "template"
	ShiftSourceManual   ShiftSource = "manual"
	ShiftSourceOverride ShiftSource = "override"
)

type ShiftStatus string

const (
	ShiftStatusDraft     ShiftStatus = "draft"
	ShiftStatusPublished ShiftStatus = "published"
)

// Shift 是某个员工在某一天的具体班次。
// Date 是纯粹的日历日期（取 UTC 零点），StartTime/EndTime 是 HH:MM 格式的本地挂钟时间。
type Shift struct {
	ID             int64       `json:"id"`
	EmployeeID     int64       `json:"employeeID"`
	Date           time.Time   `json:"date"`
	StartTime      string      `json:"startTime"`
	EndTime        string      `json:"endTime"`
	BreakMinutes   int32       `json:"breakMinutes"`
	ExpectedHours  float64     `json:"expectedHours"`
	LocationID     *int64      `json:"locationID"` // 为空表示使用员工的默认工作地点
	Source         ShiftSource `json:"source"`
	Status         ShiftStatus `json:"status"`
	AssignmentID   *int64      `json:"assignmentID"`   // 仅当 Source 为 template 时非空
	PublishBatchID *int64      `json:"publishBatchID"` // 仅在发布后非空
	CreatedAt      time.Time   `json:"createdAt"`
	Version        int32       `json:"-"`
}
