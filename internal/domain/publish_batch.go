package domain

import "time"

// PublishBatch 是一次发布操作的审计记录，创建后不可修改。
type PublishBatch struct {
	ID                  int64     `json:"id"`
	PublishedBy         int64     `json:"publishedBy"`
	PublishedAt         time.Time `json:"publishedAt"`
	ShiftsCount         int32     `json:"shiftsCount"`
	AffectedEmployeeIDs []int64   `json:"affectedEmployeeIDs"`
	Notes               string    `json:"notes"`
}
