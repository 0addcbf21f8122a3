package store

import "vet-clinic-console/internal/clinic"

// Modal identifica el modal abierto (uno a la vez).
type Modal string

const (
	ModalNone          Modal = ""
	ModalAddPet        Modal = "add_pet"
	ModalEditOwner     Modal = "edit_owner"
	ModalEditPet       Modal = "edit_pet"
	ModalAssignVet     Modal = "assign_vet"
	ModalCompleteVisit Modal = "complete_visit"
	ModalPayBill       Modal = "pay_bill"
)

// UIState es el estado efímero de la vista: selección, filtros y modal.
// Es un struct plano y serializable que se pasa explícito al filtro y al
// renderer; nada de referencias ambientales.
type UIState struct {
	SelectedOwnerID string `json:"selected_owner_id"`

	// Filtros activos. Vacío = filtro apagado.
	OwnerQuery    string                   `json:"owner_query"`
	SpeciesFilter string                   `json:"species_filter"`
	ApptDate      string                   `json:"appt_date"` // YYYY-MM-DD
	ApptStatus    clinic.AppointmentStatus `json:"appt_status"`
	BillStatus    clinic.BillStatus        `json:"bill_status"`

	OpenModal     Modal  `json:"open_modal"`
	ModalTargetID string `json:"modal_target_id"`
}
