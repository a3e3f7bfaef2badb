package audit

import (
	"encoding/json"
	"strconv"
	"time"

	auditDatamodel "github.com/frahmantamala/procurement-inventory/internal/core/datamodel/audit"
)

type Action string

const (
	ActionCreate          Action = "CREATE"
	ActionUpdate          Action = "UPDATE"
	ActionDelete          Action = "DELETE"
	ActionSubmit          Action = "SUBMIT"
	ActionApprove         Action = "APPROVE"
	ActionDeliver         Action = "DELIVER"
	ActionInventoryUpdate Action = "INVENTORY_UPDATE"
	ActionLogin           Action = "LOGIN"
	ActionResetPassword   Action = "RESET_PASSWORD"
)

type EntityType string

const (
	EntityUser          EntityType = "User"
	EntitySupplier      EntityType = "Supplier"
	EntityProduct       EntityType = "Product"
	EntityPurchaseOrder EntityType = "PurchaseOrder"
)

// Entry is one state-changing action. Changes holds an arbitrary JSON document.
type Entry struct {
	ID         int64           `json:"id"`
	ActorID    int64           `json:"actor_id,omitempty"`
	Actor      *Actor          `json:"actor,omitempty"`
	Action     Action          `json:"action"`
	EntityType EntityType      `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Changes    json.RawMessage `json:"changes,omitempty"`
	Details    string          `json:"details,omitempty"`
	IPAddress  string          `json:"ip_address,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

type Actor struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// EntityRef formats a numeric id for Entry.EntityID.
func EntityRef(id int64) string {
	return strconv.FormatInt(id, 10)
}

func ToDataModel(e *Entry) *auditDatamodel.AuditLog {
	m := &auditDatamodel.AuditLog{
		ID:         e.ID,
		Action:     string(e.Action),
		EntityType: string(e.EntityType),
		EntityID:   e.EntityID,
		Details:    e.Details,
		IPAddress:  e.IPAddress,
		CreatedAt:  e.CreatedAt,
	}
	if e.ActorID != 0 {
		actor := e.ActorID
		m.ActorID = &actor
	}
	if len(e.Changes) > 0 {
		changes := string(e.Changes)
		m.Changes = &changes
	}
	return m
}

func FromDataModel(m *auditDatamodel.AuditLogWithActor) *Entry {
	e := &Entry{
		ID:         m.ID,
		Action:     Action(m.Action),
		EntityType: EntityType(m.EntityType),
		EntityID:   m.EntityID,
		Details:    m.Details,
		IPAddress:  m.IPAddress,
		CreatedAt:  m.CreatedAt,
	}
	if m.ActorID != nil {
		e.ActorID = *m.ActorID
		if m.ActorName != nil {
			e.Actor = &Actor{ID: *m.ActorID, Name: *m.ActorName}
			if m.ActorEmail != nil {
				e.Actor.Email = *m.ActorEmail
			}
			if m.ActorRole != nil {
				e.Actor.Role = *m.ActorRole
			}
		}
	}
	if m.Changes != nil && *m.Changes != "" {
		e.Changes = json.RawMessage(*m.Changes)
	}
	return e
}
