package workflow

import (
	"context"
	"strings"

	"vet-clinic-console/internal/clinic"
	"vet-clinic-console/internal/gateway"
)

// --- Formularios (campos tal cual los tipea el usuario) ---

type OwnerForm struct {
	FirstName string
	LastName  string
	Phone     string
	Address   string
	Email     string
}

type PetForm struct {
	Name    string
	Species string
	Breed   string
	Age     int
	OwnerID string
}

type AppointmentForm struct {
	PetID  string
	VetID  string
	Date   string // YYYY-MM-DD
	Time   string
	Reason string
}

type VisitForm struct {
	Description string
	Medicine    string
	Notes       string
	Cost        float64
}

type VetLinkForm struct {
	PetID     string
	VetID     string
	IsPrimary bool
}

// --- Owners ---

func validateOwner(f OwnerForm) *ValidationError {
	errs := fieldErrors{}
	errs.require("first_name", f.FirstName)
	errs.require("last_name", f.LastName)
	errs.require("address", f.Address)

	if strings.TrimSpace(f.Phone) == "" {
		errs.set("phone", "required")
	} else if !validPhone(f.Phone) {
		errs.set("phone", "must be 7 to 15 digits, optional leading +")
	}
	if !validEmail(strings.TrimSpace(f.Email)) {
		errs.set("email", "must look like local@domain.tld")
	}
	return errs.err()
}

func ownerInput(f OwnerForm) gateway.OwnerInput {
	return gateway.OwnerInput{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Phone:     normalizePhone(f.Phone),
		Address:   strings.TrimSpace(f.Address),
		Email:     strings.TrimSpace(f.Email),
	}
}

func (c *Controller) SubmitAddOwner(ctx context.Context, f OwnerForm) (Result, error) {
	if err := c.begin(FormAddOwner); err != nil {
		return Result{Form: FormAddOwner}, err
	}
	defer c.finish(FormAddOwner)

	if verr := validateOwner(f); verr != nil {
		return Result{Form: FormAddOwner, Message: verr.Error()}, verr
	}

	c.submitting(FormAddOwner)
	if _, err := c.gw.CreateOwner(ctx, ownerInput(f)); err != nil {
		return Result{Form: FormAddOwner, Message: userMessage(err)}, err
	}

	c.refreshOwners(ctx)
	return Result{Form: FormAddOwner, Message: "Owner added", ClearForm: true}, nil
}

func (c *Controller) SubmitEditOwner(ctx context.Context, ownerID string, f OwnerForm) (Result, error) {
	if err := c.begin(FormEditOwner); err != nil {
		return Result{Form: FormEditOwner}, err
	}
	defer c.finish(FormEditOwner)

	errs := fieldErrors{}
	errs.require("owner_id", ownerID)
	if verr := validateOwner(f); verr != nil {
		for field, msg := range verr.Fields {
			errs.set(field, msg)
		}
	}
	if verr := errs.err(); verr != nil {
		return Result{Form: FormEditOwner, Message: verr.Error()}, verr
	}

	c.submitting(FormEditOwner)
	if _, err := c.gw.UpdateOwner(ctx, strings.TrimSpace(ownerID), ownerInput(f)); err != nil {
		return Result{Form: FormEditOwner, Message: userMessage(err)}, err
	}

	c.refreshOwners(ctx)
	return Result{Form: FormEditOwner, Message: "Owner updated", ClearForm: true}, nil
}

func (c *Controller) SubmitDeleteOwner(ctx context.Context, ownerID string) (Result, error) {
	if err := c.begin(FormDeleteOwner); err != nil {
		return Result{Form: FormDeleteOwner}, err
	}
	defer c.finish(FormDeleteOwner)

	errs := fieldErrors{}
	errs.require("owner_id", ownerID)
	if verr := errs.err(); verr != nil {
		return Result{Form: FormDeleteOwner, Message: verr.Error()}, verr
	}

	c.submitting(FormDeleteOwner)
	if err := c.gw.DeleteOwner(ctx, strings.TrimSpace(ownerID)); err != nil {
		return Result{Form: FormDeleteOwner, Message: userMessage(err)}, err
	}

	// Si se borró el owner seleccionado, la selección ya no apunta a nada.
	if c.st.UI().SelectedOwnerID == strings.TrimSpace(ownerID) {
		c.st.SelectOwner("")
	}
	c.refreshOwners(ctx)
	return Result{Form: FormDeleteOwner, Message: "Owner deleted", ClearForm: true}, nil
}

// --- Pets ---

func validatePet(f PetForm) *ValidationError {
	errs := fieldErrors{}
	errs.require("name", f.Name)
	errs.require("species", f.Species)
	errs.require("owner_id", f.OwnerID)
	if f.Age < 0 {
		errs.set("age", "must be zero or positive")
	}
	return errs.err()
}

func petInput(f PetForm) gateway.PetInput {
	return gateway.PetInput{
		Name:    strings.TrimSpace(f.Name),
		Species: strings.TrimSpace(f.Species),
		Breed:   strings.TrimSpace(f.Breed),
		Age:     f.Age,
		OwnerID: strings.TrimSpace(f.OwnerID),
	}
}

func (c *Controller) SubmitAddPet(ctx context.Context, f PetForm) (Result, error) {
	if err := c.begin(FormAddPet); err != nil {
		return Result{Form: FormAddPet}, err
	}
	defer c.finish(FormAddPet)

	if verr := validatePet(f); verr != nil {
		return Result{Form: FormAddPet, Message: verr.Error()}, verr
	}

	c.submitting(FormAddPet)
	if _, err := c.gw.CreatePet(ctx, petInput(f)); err != nil {
		return Result{Form: FormAddPet, Message: userMessage(err)}, err
	}

	// El listado de mascotas visible es el del owner seleccionado.
	if c.st.UI().SelectedOwnerID == strings.TrimSpace(f.OwnerID) {
		c.refreshPets(ctx, strings.TrimSpace(f.OwnerID))
	}
	return Result{Form: FormAddPet, Message: "Pet added", ClearForm: true}, nil
}

func (c *Controller) SubmitEditPet(ctx context.Context, petID string, f PetForm) (Result, error) {
	if err := c.begin(FormEditPet); err != nil {
		return Result{Form: FormEditPet}, err
	}
	defer c.finish(FormEditPet)

	errs := fieldErrors{}
	errs.require("pet_id", petID)
	if verr := validatePet(f); verr != nil {
		for field, msg := range verr.Fields {
			errs.set(field, msg)
		}
	}
	if verr := errs.err(); verr != nil {
		return Result{Form: FormEditPet, Message: verr.Error()}, verr
	}

	c.submitting(FormEditPet)
	if _, err := c.gw.UpdatePet(ctx, strings.TrimSpace(petID), petInput(f)); err != nil {
		return Result{Form: FormEditPet, Message: userMessage(err)}, err
	}

	if c.st.UI().SelectedOwnerID == strings.TrimSpace(f.OwnerID) {
		c.refreshPets(ctx, strings.TrimSpace(f.OwnerID))
	}
	return Result{Form: FormEditPet, Message: "Pet updated", ClearForm: true}, nil
}

func (c *Controller) SubmitDeletePet(ctx context.Context, petID, ownerID string) (Result, error) {
	if err := c.begin(FormDeletePet); err != nil {
		return Result{Form: FormDeletePet}, err
	}
	defer c.finish(FormDeletePet)

	errs := fieldErrors{}
	errs.require("pet_id", petID)
	if verr := errs.err(); verr != nil {
		return Result{Form: FormDeletePet, Message: verr.Error()}, verr
	}

	c.submitting(FormDeletePet)
	if err := c.gw.DeletePet(ctx, strings.TrimSpace(petID)); err != nil {
		return Result{Form: FormDeletePet, Message: userMessage(err)}, err
	}

	if c.st.UI().SelectedOwnerID == strings.TrimSpace(ownerID) {
		c.refreshPets(ctx, strings.TrimSpace(ownerID))
	}
	return Result{Form: FormDeletePet, Message: "Pet deleted", ClearForm: true}, nil
}

// --- Appointments ---

func validateAppointment(f AppointmentForm) *ValidationError {
	errs := fieldErrors{}
	errs.require("pet_id", f.PetID)
	errs.require("vet_id", f.VetID)
	errs.require("date", f.Date)
	errs.require("time", f.Time)
	errs.require("reason", f.Reason)
	return errs.err()
}

func (c *Controller) SubmitBookAppointment(ctx context.Context, f AppointmentForm) (Result, error) {
	if err := c.begin(FormBookAppointment); err != nil {
		return Result{Form: FormBookAppointment}, err
	}
	defer c.finish(FormBookAppointment)

	if verr := validateAppointment(f); verr != nil {
		return Result{Form: FormBookAppointment, Message: verr.Error()}, verr
	}

	c.submitting(FormBookAppointment)
	_, err := c.gw.CreateAppointment(ctx, gateway.AppointmentInput{
		PetID:  strings.TrimSpace(f.PetID),
		VetID:  strings.TrimSpace(f.VetID),
		Date:   strings.TrimSpace(f.Date),
		Time:   strings.TrimSpace(f.Time),
		Reason: strings.TrimSpace(f.Reason),
	})
	if err != nil {
		return Result{Form: FormBookAppointment, Message: userMessage(err)}, err
	}

	c.refreshAppointments(ctx)
	return Result{Form: FormBookAppointment, Message: "Appointment booked", ClearForm: true}, nil
}

// SubmitCompleteVisit cierra la cita. El backend hace la transacción
// (tratamiento + Completed + factura Unpaid); acá solo se validan campos,
// se dispara la llamada y después del 2xx se refrescan citas y facturas.
func (c *Controller) SubmitCompleteVisit(ctx context.Context, appID string, f VisitForm) (Result, error) {
	if err := c.begin(FormCompleteVisit); err != nil {
		return Result{Form: FormCompleteVisit}, err
	}
	defer c.finish(FormCompleteVisit)

	errs := fieldErrors{}
	errs.require("appointment_id", appID)
	errs.require("description", f.Description)
	if f.Cost <= 0 {
		errs.set("cost", "must be greater than zero")
	}
	if a, ok := c.cachedAppointment(appID); ok && a.Status != clinic.AppointmentScheduled {
		errs.set("appointment_id", "appointment is already completed")
	}
	if verr := errs.err(); verr != nil {
		return Result{Form: FormCompleteVisit, Message: verr.Error()}, verr
	}

	c.submitting(FormCompleteVisit)
	err := c.gw.CompleteAppointment(ctx, strings.TrimSpace(appID), gateway.VisitInput{
		Description: strings.TrimSpace(f.Description),
		Medicine:    strings.TrimSpace(f.Medicine),
		Notes:       strings.TrimSpace(f.Notes),
		Cost:        f.Cost,
	})
	if err != nil {
		return Result{Form: FormCompleteVisit, Message: userMessage(err)}, err
	}

	c.refreshAppointments(ctx)
	c.refreshBills(ctx)
	return Result{Form: FormCompleteVisit, Message: "Visit completed and bill generated", ClearForm: true}, nil
}

// SubmitRemoveAppointment borra una cita. Solo las Completed se pueden
// remover; una Scheduled se rechaza local, sin llamada.
func (c *Controller) SubmitRemoveAppointment(ctx context.Context, appID string) (Result, error) {
	if err := c.begin(FormRemoveAppointment); err != nil {
		return Result{Form: FormRemoveAppointment}, err
	}
	defer c.finish(FormRemoveAppointment)

	errs := fieldErrors{}
	errs.require("appointment_id", appID)
	if a, ok := c.cachedAppointment(appID); ok && a.Status != clinic.AppointmentCompleted {
		errs.set("appointment_id", "only completed appointments can be removed")
	}
	if verr := errs.err(); verr != nil {
		return Result{Form: FormRemoveAppointment, Message: verr.Error()}, verr
	}

	c.submitting(FormRemoveAppointment)
	if err := c.gw.DeleteAppointment(ctx, strings.TrimSpace(appID)); err != nil {
		return Result{Form: FormRemoveAppointment, Message: userMessage(err)}, err
	}

	c.refreshAppointments(ctx)
	return Result{Form: FormRemoveAppointment, Message: "Appointment removed", ClearForm: true}, nil
}

// --- Vet links ---

func (c *Controller) SubmitAssignVet(ctx context.Context, f VetLinkForm) (Result, error) {
	if err := c.begin(FormAssignVet); err != nil {
		return Result{Form: FormAssignVet}, err
	}
	defer c.finish(FormAssignVet)

	errs := fieldErrors{}
	errs.require("pet_id", f.PetID)
	errs.require("vet_id", f.VetID)
	if verr := errs.err(); verr != nil {
		return Result{Form: FormAssignVet, Message: verr.Error()}, verr
	}

	c.submitting(FormAssignVet)
	err := c.gw.UpsertVetLink(ctx, gateway.VetLinkInput{
		PetID:     strings.TrimSpace(f.PetID),
		VetID:     strings.TrimSpace(f.VetID),
		IsPrimary: f.IsPrimary,
	})
	if err != nil {
		return Result{Form: FormAssignVet, Message: userMessage(err)}, err
	}

	c.refreshPetVets(ctx, strings.TrimSpace(f.PetID))
	return Result{Form: FormAssignVet, Message: "Veterinarian assigned", ClearForm: true}, nil
}

// --- Billing ---

// SubmitProcessPayment exige modo de pago no vacío antes de tocar la red.
func (c *Controller) SubmitProcessPayment(ctx context.Context, appID, billID, mode string) (Result, error) {
	if err := c.begin(FormProcessPayment); err != nil {
		return Result{Form: FormProcessPayment}, err
	}
	defer c.finish(FormProcessPayment)

	errs := fieldErrors{}
	errs.require("appointment_id", appID)
	errs.require("bill_id", billID)
	errs.require("mode", mode)
	if b, ok := c.cachedBill(billID); ok && b.Status == clinic.BillPaid {
		errs.set("bill_id", "bill is already paid")
	}
	if verr := errs.err(); verr != nil {
		return Result{Form: FormProcessPayment, Message: verr.Error()}, verr
	}

	c.submitting(FormProcessPayment)
	if err := c.gw.PayBill(ctx, strings.TrimSpace(appID), strings.TrimSpace(billID), strings.TrimSpace(mode)); err != nil {
		return Result{Form: FormProcessPayment, Message: userMessage(err)}, err
	}

	// Las estadísticas de caja se derivan del cache, así que con
	// refrescar facturas alcanza.
	c.refreshBills(ctx)
	return Result{Form: FormProcessPayment, Message: "Payment processed", ClearForm: true}, nil
}

// SubmitDeleteBill borra una factura; solo las Paid se pueden borrar.
func (c *Controller) SubmitDeleteBill(ctx context.Context, billID string) (Result, error) {
	if err := c.begin(FormDeleteBill); err != nil {
		return Result{Form: FormDeleteBill}, err
	}
	defer c.finish(FormDeleteBill)

	errs := fieldErrors{}
	errs.require("bill_id", billID)
	if b, ok := c.cachedBill(billID); ok && b.Status != clinic.BillPaid {
		errs.set("bill_id", "only paid bills can be deleted")
	}
	if verr := errs.err(); verr != nil {
		return Result{Form: FormDeleteBill, Message: verr.Error()}, verr
	}

	c.submitting(FormDeleteBill)
	if err := c.gw.DeleteBill(ctx, strings.TrimSpace(billID)); err != nil {
		return Result{Form: FormDeleteBill, Message: userMessage(err)}, err
	}

	c.refreshBills(ctx)
	return Result{Form: FormDeleteBill, Message: "Bill deleted", ClearForm: true}, nil
}

// --- Helpers sobre el cache ---

func (c *Controller) cachedAppointment(id string) (clinic.Appointment, bool) {
	id = strings.TrimSpace(id)
	for _, a := range c.st.Snapshot().Appointments {
		if a.ID == id {
			return a, true
		}
	}
	return clinic.Appointment{}, false
}

func (c *Controller) cachedBill(id string) (clinic.Bill, bool) {
	id = strings.TrimSpace(id)
	for _, b := range c.st.Snapshot().Bills {
		if b.ID == id {
			return b, true
		}
	}
	return clinic.Bill{}, false
}

func apptStatus(s string) clinic.AppointmentStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scheduled":
		return clinic.AppointmentScheduled
	case "completed":
		return clinic.AppointmentCompleted
	default:
		return ""
	}
}

func billStatus(s string) clinic.BillStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unpaid":
		return clinic.BillUnpaid
	case "paid":
		return clinic.BillPaid
	default:
		return ""
	}
}
