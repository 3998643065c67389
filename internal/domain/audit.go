package domain

import (
	"encoding/json"
	"time"
)

// AuditRecord 是只追加的审计记录，由各个 handler 发布到 audit_queue，
// 再由 audit worker 持久化，本服务不会读取它。
type AuditRecord struct {
	ID          int64           `json:"id"`
	ActorID     int64           `json:"actorID"`
	ActorEmail  string          `json:"actorEmail"`
	ActorName   string          `json:"actorName"`
	Action      string          `json:"action"`
	EntityType  string          `json:"entityType"`
	EntityID    int64           `json:"entityID"`
	Description string          `json:"description"`
	Before      json.RawMessage `json:"before"`
	After       json.RawMessage `json:"after"`
	CreatedAt   time.Time       `json:"createdAt"`
}
