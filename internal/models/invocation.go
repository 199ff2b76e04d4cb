// internal/models/invocation.go
package models

import (
	"github.com/lib/pq"
)

// ToolInvocation is one audited call of a tool, over MCP or the REST mirror.
type ToolInvocation struct {
	BaseModel
	RequestID  string           `json:"request_id" gorm:"size:64;index"`
	Tool       string           `json:"tool" gorm:"size:64;not null;index"`
	Transport  Transport        `json:"transport" gorm:"type:varchar(10);not null"`
	Operator   string           `json:"operator,omitempty" gorm:"size:100;index"`
	ClientIP   string           `json:"client_ip,omitempty" gorm:"size:45"`
	Status     InvocationStatus `json:"status" gorm:"type:varchar(10);not null;index"`
	Arguments  JSONB            `json:"arguments" gorm:"type:jsonb"`
	Error      string           `json:"error,omitempty" gorm:"type:text"`
	DurationMs int64            `json:"duration_ms"`
	TxHashes   pq.StringArray   `json:"tx_hashes" gorm:"type:text[]"`
	Warnings   pq.StringArray   `json:"warnings" gorm:"type:text[]"`
}
