// internal/models/pin.go
package models

// MetadataPin records content pinned to IPFS through this server.
type MetadataPin struct {
	BaseModel
	CID          string `json:"cid" gorm:"size:100;not null;index"`
	Name         string `json:"name" gorm:"size:255"`
	Kind         string `json:"kind" gorm:"type:varchar(20);not null;index"`
	SHA256       string `json:"sha256" gorm:"size:64;not null"`
	Size         int64  `json:"size"`
	MirrorKey    string `json:"mirror_key,omitempty" gorm:"size:255"`
	InvocationID string `json:"invocation_id,omitempty" gorm:"size:64"`
}
