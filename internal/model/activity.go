package model

import "time"

// Entity kinds an activity event can reference.
const (
	EntityUser     = "user"
	EntityRoom     = "room"
	EntityContract = "contract"
	EntityInvoice  = "invoice"
	EntityReceipt  = "receipt"
)

// Common activity actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionLogin  = "login"
	ActionPurge  = "purge"
)

// ActivityEvent is an append-only audit record. Events are never mutated or
// individually deleted; the only removal path is the age-based bulk purge.
type ActivityEvent struct {
	ID          string            `json:"id"`
	ActorUserID string            `json:"actor_user_id"`
	Action      string            `json:"action"`
	EntityKind  string            `json:"entity_kind"`
	EntityID    string            `json:"entity_id"`
	EntityName  string            `json:"entity_name"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	ClientIP    string            `json:"client_ip"`
	UserAgent   string            `json:"user_agent"`
	CreatedAt   time.Time         `json:"created_at"`
}
