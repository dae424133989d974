package model

import "time"

// Contract statuses. Only active contracts participate in deadline scans.
const (
	ContractStatusActive     = "active"
	ContractStatusExpired    = "expired"
	ContractStatusTerminated = "terminated"
)

// Contract is a rental agreement between an owner and a tenant for a room.
// The contract schema itself is managed elsewhere; this model carries the
// fields the deadline scanner and reporting need.
type Contract struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	RoomName   string    `json:"room_name"`
	TenantName string    `json:"tenant_name"`
	Status     string    `json:"status"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	CreatedAt  time.Time `json:"created_at"`
}
