package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
)

// Estados de una solicitud de material. completed y rejected son terminales.
const (
	RequestStatusPending    = "pending"
	RequestStatusApproved   = "approved"
	RequestStatusInProgress = "in_progress"
	RequestStatusCompleted  = "completed"
	RequestStatusRejected   = "rejected"
)

var requestStatusDisplay = map[string]string{
	RequestStatusPending:    "Pendiente",
	RequestStatusApproved:   "Aprobada",
	RequestStatusInProgress: "En proceso",
	RequestStatusCompleted:  "Completada",
	RequestStatusRejected:   "Rechazada",
}

// MaterialRequestItem línea de una solicitud.
type MaterialRequestItem struct {
	ID           string
	RequestID    string
	IngredientID string
	Quantity     decimal.Decimal
	Notes        string
	Position     int
}

// MaterialRequest agregado solicitud + líneas; solo cambia por las transiciones de abajo.
type MaterialRequest struct {
	ID           string
	Title        string
	Description  string
	Status       string
	RequestedBy  string
	RequestedAt  time.Time
	ApprovedBy   string
	ApprovedAt   *time.Time
	RejectReason string
	AssignedTo   string
	AssignedAt   *time.Time
	CompletedBy  string
	CompletedAt  *time.Time
	UpdatedAt    time.Time
	Items        []MaterialRequestItem
}

// IsValidRequestStatus indica si s es un estado conocido.
func IsValidRequestStatus(s string) bool {
	_, ok := requestStatusDisplay[s]
	return ok
}

// StatusDisplay etiqueta legible del estado, calculada al leer.
func StatusDisplay(status string) string {
	if d, ok := requestStatusDisplay[status]; ok {
		return d
	}
	return status
}

// IsTerminal indica si la solicitud ya no admite transiciones.
func (r *MaterialRequest) IsTerminal() bool {
	return r.Status == RequestStatusCompleted || r.Status == RequestStatusRejected
}

// CanEdit: solo en pending, por el creador o un administrador.
func (r *MaterialRequest) CanEdit(actor Actor) error {
	if actor.ID != r.RequestedBy && !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	if r.Status != RequestStatusPending {
		return domain.ErrInvalidState
	}
	return nil
}

// Approve pending → approved.
func (r *MaterialRequest) Approve(actor Actor, now time.Time) error {
	if !actor.CanDecide() {
		return domain.ErrForbidden
	}
	if r.Status != RequestStatusPending {
		return domain.ErrInvalidState
	}
	r.Status = RequestStatusApproved
	r.ApprovedBy = actor.ID
	r.ApprovedAt = &now
	r.UpdatedAt = now
	return nil
}

// Reject pending → rejected. Guarda quién decidió y el motivo.
func (r *MaterialRequest) Reject(actor Actor, reason string, now time.Time) error {
	if !actor.CanDecide() {
		return domain.ErrForbidden
	}
	if r.Status != RequestStatusPending {
		return domain.ErrInvalidState
	}
	r.Status = RequestStatusRejected
	r.ApprovedBy = actor.ID
	r.ApprovedAt = &now
	r.RejectReason = reason
	r.UpdatedAt = now
	return nil
}

// Assign fija el responsable en una solicitud approved sin cambiar de estado.
func (r *MaterialRequest) Assign(actor Actor, employeeID string, now time.Time) error {
	if !actor.CanDecide() {
		return domain.ErrForbidden
	}
	if employeeID == "" {
		return domain.NewValidationError("employee_id", "requerido")
	}
	if r.Status != RequestStatusApproved {
		return domain.ErrInvalidState
	}
	if r.AssignedTo != "" {
		return domain.ErrAlreadyAssigned
	}
	r.AssignedTo = employeeID
	r.AssignedAt = &now
	r.UpdatedAt = now
	return nil
}

// StartProcessing approved → in_progress, por el asignado o un administrador.
func (r *MaterialRequest) StartProcessing(actor Actor, now time.Time) error {
	if r.Status != RequestStatusApproved || r.AssignedTo == "" {
		return domain.ErrInvalidState
	}
	if r.AssignedTo != actor.ID && !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	r.Status = RequestStatusInProgress
	r.UpdatedAt = now
	return nil
}

// CanComplete valida la precondición de Complete sin mutar.
func (r *MaterialRequest) CanComplete(actor Actor) error {
	if r.Status != RequestStatusInProgress {
		return domain.ErrInvalidState
	}
	if r.AssignedTo != actor.ID && !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

// Complete in_progress → completed. Los asientos de salida los registra el motor antes.
func (r *MaterialRequest) Complete(actor Actor, now time.Time) error {
	if err := r.CanComplete(actor); err != nil {
		return err
	}
	r.Status = RequestStatusCompleted
	r.CompletedBy = actor.ID
	r.CompletedAt = &now
	r.UpdatedAt = now
	return nil
}

// ValidateItems exige al menos una línea, con insumo y cantidad > 0 que quepa en NUMERIC(18,4).
func ValidateItems(items []MaterialRequestItem) error {
	ve := &domain.ValidationError{}
	if len(items) == 0 {
		ve.Add("items", "se requiere al menos una línea")
		return ve
	}
	for i, it := range items {
		if it.IngredientID == "" {
			ve.Add(fmt.Sprintf("items[%d].ingredient_id", i), "requerido")
		}
		if !it.Quantity.GreaterThan(decimal.Zero) {
			ve.Add(fmt.Sprintf("items[%d].quantity", i), "debe ser mayor que cero")
		} else if !FitsQuantity(it.Quantity) {
			ve.Add(fmt.Sprintf("items[%d].quantity", i), QuantityLimitMsg)
		}
	}
	return ve.OrNil()
}
