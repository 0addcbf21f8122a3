// Package render proyecta (Snapshot, UIState) a view-models neutros:
// filas de tabla, opciones de dropdown y prefill de modal. Funciones
// puras sin estado propio; cualquier tecnología de presentación puede
// consumir el resultado (la consola usa WriteTable, ver table.go).
package render

import (
	"fmt"
	"strconv"

	"vet-clinic-console/internal/clinic"
	"vet-clinic-console/internal/filter"
	"vet-clinic-console/internal/store"
)

// Option es una entrada de dropdown: Value es la identidad opaca de la
// entidad, Label lo que ve el usuario.
type Option struct {
	Value string
	Label string
}

// Row es una fila ya formateada.
type Row []string

// ViewModel es la proyección completa de la pantalla. Los counts son
// derivados: siempre la cardinalidad de la vista filtrada, nunca un
// contador guardado aparte.
type ViewModel struct {
	OwnerRows  []Row
	OwnerCount int

	PetRows  []Row
	PetCount int

	ScheduleRows  []Row
	ScheduleCount int

	BillingRows  []Row
	BillingCount int
	Stats        clinic.BillingStats

	HistoryRows []Row

	OwnerOptions []Option
	VetOptions   []Option

	OpenModal    store.Modal
	ModalPrefill map[string]string
}

// Encabezados que usa la consola; exportados para que los tests y el
// binario no los dupliquen.
var (
	OwnerHeader    = Row{"Name", "Phone", "Address", "Email"}
	PetHeader      = Row{"Name", "Species", "Breed", "Age"}
	ScheduleHeader = Row{"Date", "Time", "Pet", "Owner", "Vet", "Reason", "Status", "Action"}
	BillingHeader  = Row{"Date", "Appointment", "Amount", "Status", "Mode", "Action"}
	HistoryHeader  = Row{"Date", "Reason", "Vet", "Owner Contact"}
)

// Project recalcula toda la vista desde el snapshot. Cada cambio de
// filtro o de colección pasa por acá de nuevo; nunca se tocan filas
// individuales ya renderizadas.
func Project(snap store.Snapshot) ViewModel {
	vm := ViewModel{
		OpenModal:    snap.UI.OpenModal,
		ModalPrefill: prefillFor(snap),
	}

	owners := filter.Owners(snap.Owners, snap.UI.OwnerQuery)
	for _, o := range owners {
		vm.OwnerRows = append(vm.OwnerRows, Row{o.DisplayName(), o.Phone, o.Address, o.Email})
	}
	vm.OwnerCount = len(owners)

	pets := filter.PetsBySpecies(snap.Pets, snap.UI.SpeciesFilter)
	for _, p := range pets {
		vm.PetRows = append(vm.PetRows, Row{p.Name, p.Species, p.Breed, strconv.Itoa(p.Age)})
	}
	vm.PetCount = len(pets)

	appts := filter.Appointments(snap.Appointments, snap.UI.ApptDate, snap.UI.ApptStatus)
	for _, a := range appts {
		vm.ScheduleRows = append(vm.ScheduleRows, Row{
			filter.DatePart(a.Date), a.Time, a.PetName,
			ownerNameOf(a), a.VetName, a.Reason, string(a.Status),
			scheduleAction(a),
		})
	}
	vm.ScheduleCount = len(appts)

	bills := filter.BillsByStatus(snap.Bills, snap.UI.BillStatus)
	for _, b := range bills {
		vm.BillingRows = append(vm.BillingRows, Row{
			filter.DatePart(b.Date), b.AppointmentID,
			fmt.Sprintf("%.2f", b.Amount), string(b.Status), b.Mode,
			billAction(b),
		})
	}
	vm.BillingCount = len(bills)
	// Las estadísticas salen del cache completo, no del filtrado.
	vm.Stats = clinic.StatsFor(snap.Bills)

	for _, h := range snap.History {
		vm.HistoryRows = append(vm.HistoryRows, Row{
			filter.DatePart(h.Date), h.Reason, h.VetName, h.OwnerContact,
		})
	}

	vm.OwnerOptions = OwnerOptions(snap)
	vm.VetOptions = VetOptions(snap)

	return vm
}

func ownerNameOf(a clinic.Appointment) string {
	o := clinic.Owner{FirstName: a.OwnerFirstName, LastName: a.OwnerLastName}
	return o.DisplayName()
}

func scheduleAction(a clinic.Appointment) string {
	switch a.Status {
	case clinic.AppointmentScheduled:
		return "Complete Visit"
	case clinic.AppointmentCompleted:
		return "Remove"
	default:
		return ""
	}
}

func billAction(b clinic.Bill) string {
	switch b.Status {
	case clinic.BillUnpaid:
		return "Pay"
	case clinic.BillPaid:
		return "Delete"
	default:
		return ""
	}
}

// OwnerOptions arma el dropdown de dueños.
func OwnerOptions(snap store.Snapshot) []Option {
	out := make([]Option, 0, len(snap.Owners))
	for _, o := range snap.Owners {
		out = append(out, Option{Value: o.ID, Label: o.DisplayName()})
	}
	return out
}

// PetOptionsForOwner arma el dropdown de mascotas para la cascada de
// reserva: cambiar de dueño repuebla este set.
func PetOptionsForOwner(snap store.Snapshot, ownerID string) []Option {
	out := make([]Option, 0)
	for _, p := range snap.Pets {
		if p.OwnerID == ownerID {
			out = append(out, Option{Value: p.ID, Label: p.Name})
		}
	}
	return out
}

// VetOptions arma el dropdown de veterinarios. Los ya vinculados a la
// mascota target del modal se marcan en el label; el primario se
// distingue del resto.
func VetOptions(snap store.Snapshot) []Option {
	linked := make(map[string]bool, len(snap.PetVets))   // vetID -> isPrimary
	for _, l := range snap.PetVets {
		linked[l.VetID] = l.IsPrimary
	}

	out := make([]Option, 0, len(snap.Vets))
	for _, v := range snap.Vets {
		label := v.Name
		if isPrimary, ok := linked[v.ID]; ok {
			if isPrimary {
				label += " (primary)"
			} else {
				label += " (assigned)"
			}
		}
		out = append(out, Option{Value: v.ID, Label: label})
	}
	return out
}

// PrimaryVetFor devuelve el vet primario de la mascota si hay uno;
// la cascada de reserva lo auto-selecciona. El cache de PetVets
// pertenece a la mascota target del modal (GET /pets/{id}/vets no
// repite el pet_id); para cualquier otra mascota no hay dato.
func PrimaryVetFor(snap store.Snapshot, petID string) (string, bool) {
	if petID == "" || snap.UI.ModalTargetID != petID {
		return "", false
	}
	for _, l := range snap.PetVets {
		if l.IsPrimary {
			return l.VetID, true
		}
	}
	return "", false
}

// prefillFor arma los valores iniciales del modal abierto.
func prefillFor(snap store.Snapshot) map[string]string {
	target := snap.UI.ModalTargetID
	switch snap.UI.OpenModal {
	case store.ModalEditOwner:
		for _, o := range snap.Owners {
			if o.ID == target {
				return map[string]string{
					"first_name": o.FirstName,
					"last_name":  o.LastName,
					"phone":      o.Phone,
					"address":    o.Address,
					"email":      o.Email,
				}
			}
		}
	case store.ModalEditPet:
		for _, p := range snap.Pets {
			if p.ID == target {
				return map[string]string{
					"name":     p.Name,
					"species":  p.Species,
					"breed":    p.Breed,
					"age":      strconv.Itoa(p.Age),
					"owner_id": p.OwnerID,
				}
			}
		}
	case store.ModalAddPet:
		for _, o := range snap.Owners {
			if o.ID == target {
				return map[string]string{
					"owner_id":   o.ID,
					"owner_name": o.DisplayName(),
				}
			}
		}
	case store.ModalCompleteVisit, store.ModalAssignVet:
		if target != "" {
			return map[string]string{"target_id": target}
		}
	case store.ModalPayBill:
		for _, b := range snap.Bills {
			if b.ID == target {
				return map[string]string{
					"bill_id":        b.ID,
					"appointment_id": b.AppointmentID,
					"amount":         fmt.Sprintf("%.2f", b.Amount),
				}
			}
		}
	}
	return nil
}
