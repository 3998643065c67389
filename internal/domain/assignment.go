package domain

import "time"

// TemplateAssignment 把一个员工和一个轮换模板在某段日期内绑定起来，
// 同时确定轮换相位（生效开始日期所在的周对应模板的第一周）。
// 同一个员工在任意时刻最多只能有一条未结束（EffectiveEndDate 为空）的分配记录。
type TemplateAssignment struct {
	ID                 int64      `json:"id"`
	EmployeeID         int64      `json:"employeeID"`
	TemplateID         int64      `json:"templateID"`
	EffectiveStartDate time.Time  `json:"effectiveStartDate"`
	EffectiveEndDate   *time.Time `json:"effectiveEndDate"`
	Notes              string     `json:"notes"`
	CreatedAt          time.Time  `json:"createdAt"`
	Version            int32      `json:"-"`
}
