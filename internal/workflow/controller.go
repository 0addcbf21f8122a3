// Package workflow implementa el ciclo submit -> validar -> gateway ->
// actualizar store -> hooks de cada formulario de la clínica. Cada form
// corre una máquina de estados Idle -> Validating -> Submitting -> Idle;
// un segundo submit mientras hay uno en vuelo se rechaza (ErrSubmitInFlight),
// no se encola.
package workflow

import (
	"context"
	"errors"
	"sync"

	"vet-clinic-console/internal/gateway"
	"vet-clinic-console/internal/platform/logger"
	"vet-clinic-console/internal/store"
)

var (
	// ErrSubmitInFlight: ya hay un submit pendiente para ese formulario.
	ErrSubmitInFlight = errors.New("a submission for this form is already in flight")
)

// Form identifica cada tipo de formulario.
type Form string

const (
	FormAddOwner          Form = "add_owner"
	FormEditOwner         Form = "edit_owner"
	FormDeleteOwner       Form = "delete_owner"
	FormAddPet            Form = "add_pet"
	FormEditPet           Form = "edit_pet"
	FormDeletePet         Form = "delete_pet"
	FormBookAppointment   Form = "book_appointment"
	FormCompleteVisit     Form = "complete_visit"
	FormRemoveAppointment Form = "remove_appointment"
	FormAssignVet         Form = "assign_vet"
	FormProcessPayment    Form = "process_payment"
	FormDeleteBill        Form = "delete_bill"
)

// State de la máquina por formulario.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
)

// Result resume el desenlace de un submit para la capa de presentación.
// ClearForm=true solo en éxito: en error los campos se conservan para
// que el usuario reintente sin re-tipear.
type Result struct {
	Form      Form
	Message   string
	ClearForm bool
}

type Controller struct {
	gw  *gateway.Gateway
	st  *store.Store
	log logger.Logger

	mu     sync.Mutex
	states map[Form]State
}

func NewController(gw *gateway.Gateway, st *store.Store, log logger.Logger) *Controller {
	if log == nil {
		log = logger.Nop()
	}
	return &Controller{
		gw:     gw,
		st:     st,
		log:    log,
		states: make(map[Form]State),
	}
}

// StateOf expone el estado actual de un formulario (para deshabilitar
// el botón de submit mientras hay uno en vuelo).
func (c *Controller) StateOf(f Form) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.states[f]; ok {
		return s
	}
	return StateIdle
}

// begin transiciona Idle -> Validating, o rechaza si ya hay un submit
// en vuelo para ese formulario.
func (c *Controller) begin(f Form) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.states[f]; ok && s != StateIdle {
		return ErrSubmitInFlight
	}
	c.states[f] = StateValidating
	return nil
}

func (c *Controller) submitting(f Form) {
	c.mu.Lock()
	c.states[f] = StateSubmitting
	c.mu.Unlock()
}

func (c *Controller) finish(f Form) {
	c.mu.Lock()
	c.states[f] = StateIdle
	c.mu.Unlock()
}

// userMessage saca el texto visible de una falla del gateway.
func userMessage(err error) string {
	var ge *gateway.Error
	if errors.As(err, &ge) {
		return ge.Message
	}
	return gateway.FallbackMessage
}

// --- Refrescos post-mutación ---
// Siempre después del 2xx de la mutación, nunca antes (sin optimismo).
// Si el re-fetch falla, la vista conserva el último estado bueno conocido
// y el error queda en el log; la mutación en sí ya fue exitosa.

func (c *Controller) refreshOwners(ctx context.Context) {
	owners, err := c.gw.ListOwners(ctx)
	if err != nil {
		c.log.Warn("owners refresh failed, keeping last snapshot", map[string]any{"err": err.Error()})
		return
	}
	c.st.ReplaceOwners(owners)
}

func (c *Controller) refreshPets(ctx context.Context, ownerID string) {
	if ownerID == "" {
		return
	}
	pets, err := c.gw.ListPetsForOwner(ctx, ownerID)
	if err != nil {
		c.log.Warn("pets refresh failed, keeping last snapshot", map[string]any{"err": err.Error(), "owner_id": ownerID})
		return
	}
	c.st.ReplacePets(pets)
}

func (c *Controller) refreshAppointments(ctx context.Context) {
	appts, err := c.gw.ListAppointments(ctx)
	if err != nil {
		c.log.Warn("appointments refresh failed, keeping last snapshot", map[string]any{"err": err.Error()})
		return
	}
	c.st.ReplaceAppointments(appts)
}

func (c *Controller) refreshBills(ctx context.Context) {
	bills, err := c.gw.ListBills(ctx)
	if err != nil {
		c.log.Warn("bills refresh failed, keeping last snapshot", map[string]any{"err": err.Error()})
		return
	}
	c.st.ReplaceBills(bills)
}

func (c *Controller) refreshPetVets(ctx context.Context, petID string) {
	if petID == "" {
		return
	}
	links, err := c.gw.ListVetsForPet(ctx, petID)
	if err != nil {
		c.log.Warn("pet vets refresh failed, keeping last snapshot", map[string]any{"err": err.Error(), "pet_id": petID})
		return
	}
	c.st.ReplacePetVets(links)
}

// --- Carga inicial y navegación (fuera de la máquina de formularios) ---

// LoadAll trae las colecciones base. Un fetch fallido deja esa colección
// con su último snapshot y devuelve el primer error para notificar.
func (c *Controller) LoadAll(ctx context.Context) error {
	var first error

	if owners, err := c.gw.ListOwners(ctx); err == nil {
		c.st.ReplaceOwners(owners)
	} else if first == nil {
		first = err
	}
	if vets, err := c.gw.ListVets(ctx); err == nil {
		c.st.ReplaceVets(vets)
	} else if first == nil {
		first = err
	}
	if appts, err := c.gw.ListAppointments(ctx); err == nil {
		c.st.ReplaceAppointments(appts)
	} else if first == nil {
		first = err
	}
	if bills, err := c.gw.ListBills(ctx); err == nil {
		c.st.ReplaceBills(bills)
	} else if first == nil {
		first = err
	}
	return first
}

// SelectOwner fija la selección única y trae las mascotas del elegido.
// Elegir otro owner descarta primero las filas del anterior.
func (c *Controller) SelectOwner(ctx context.Context, ownerID string) error {
	c.st.SelectOwner(ownerID)
	if ownerID == "" {
		return nil
	}
	pets, err := c.gw.ListPetsForOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	c.st.ReplacePets(pets)
	return nil
}

// LoadHistory trae el historial clínico de una mascota.
func (c *Controller) LoadHistory(ctx context.Context, petID string) error {
	rows, err := c.gw.PetHistory(ctx, petID)
	if err != nil {
		return err
	}
	c.st.ReplaceHistory(rows)
	return nil
}

// OpenAssignVet abre el modal de asignación y cachea los vets ya
// vinculados a esa mascota (el renderer los marca en el dropdown).
func (c *Controller) OpenAssignVet(ctx context.Context, petID string) error {
	c.st.UpdateUI(func(ui *store.UIState) {
		ui.OpenModal = store.ModalAssignVet
		ui.ModalTargetID = petID
	})
	links, err := c.gw.ListVetsForPet(ctx, petID)
	if err != nil {
		return err
	}
	c.st.ReplacePetVets(links)
	return nil
}

// OpenModal fija modal + target sin tocar la red.
func (c *Controller) OpenModal(modal store.Modal, targetID string) {
	c.st.UpdateUI(func(ui *store.UIState) {
		ui.OpenModal = modal
		ui.ModalTargetID = targetID
	})
}

func (c *Controller) CloseModal() {
	c.st.UpdateUI(func(ui *store.UIState) {
		ui.OpenModal = store.ModalNone
		ui.ModalTargetID = ""
	})
}

// --- Filtros: puro estado de vista, cero red ---

func (c *Controller) SetAppointmentFilters(date string, status string) {
	c.st.UpdateUI(func(ui *store.UIState) {
		ui.ApptDate = date
		ui.ApptStatus = apptStatus(status)
	})
}

func (c *Controller) SetOwnerQuery(q string) {
	c.st.UpdateUI(func(ui *store.UIState) { ui.OwnerQuery = q })
}

func (c *Controller) SetSpeciesFilter(q string) {
	c.st.UpdateUI(func(ui *store.UIState) { ui.SpeciesFilter = q })
}

func (c *Controller) SetBillFilter(status string) {
	c.st.UpdateUI(func(ui *store.UIState) { ui.BillStatus = billStatus(status) })
}
