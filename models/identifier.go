package models

import "time"

// IdentifierMapping records the server identifier a temporary identifier was
// replaced with once its CREATE was confirmed.
type IdentifierMapping struct {
	TempID    string    `json:"temp_id"`
	RealID    string    `json:"real_id"`
	Resource  string    `json:"resource"`
	CreatedAt time.Time `json:"created_at"`
}

// MirrorPatch is posted to the host after a CREATE is confirmed so it can
// replace its cached entry keyed by TempID with Entity.
type MirrorPatch struct {
	TempID string  `json:"tempId"`
	RealID string  `json:"realId"`
	Entity Payload `json:"entity"`
}
