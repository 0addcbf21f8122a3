// Package gateway concentra todas las llamadas al backend de la clínica.
// Una operación por endpoint; entrada ya validada, salida decodificada.
// Toda falla sale como *Error (ver errors.go).
package gateway

import (
	"context"
	"net/http"
	"time"

	"vet-clinic-console/internal/clinic"
	"vet-clinic-console/internal/platform/httpclient"
	"vet-clinic-console/internal/platform/logger"
	"vet-clinic-console/internal/platform/metrics"
)

type Config struct {
	BaseURL string
	Timeout time.Duration

	// Opcionales; si vienen nil se usan no-ops.
	Logger  logger.Logger
	Metrics metrics.Recorder
}

type Gateway struct {
	http *httpclient.Client
	log  logger.Logger
	rec  metrics.Recorder
}

func New(cfg Config) (*Gateway, error) {
	c, err := httpclient.NewWithBaseURL(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return NewWithClient(c, cfg.Logger, cfg.Metrics), nil
}

// NewWithClient permite inyectar el httpclient (p.ej. con Transport de test).
func NewWithClient(c *httpclient.Client, log logger.Logger, rec metrics.Recorder) *Gateway {
	if log == nil {
		log = logger.Nop()
	}
	if rec == nil {
		rec = metrics.Nop()
	}
	return &Gateway{http: c, log: log, rec: rec}
}

// --- Inputs (ya validados por el workflow) ---

type OwnerInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Email     string `json:"email,omitempty"`
}

type PetInput struct {
	Name    string `json:"name"`
	Species string `json:"species"`
	Breed   string `json:"breed"`
	Age     int    `json:"age"`
	OwnerID string `json:"owner_id"`
}

type VetLinkInput struct {
	PetID     string `json:"pet_id"`
	VetID     string `json:"vet_id"`
	IsPrimary bool   `json:"is_primary"`
}

type AppointmentInput struct {
	PetID  string `json:"pet_id"`
	VetID  string `json:"vet_id"`
	Date   string `json:"date"` // YYYY-MM-DD
	Time   string `json:"time"`
	Reason string `json:"reason"`
}

// VisitInput es el body de complete-visit: el backend registra el tratamiento,
// pasa la cita a Completed y genera una factura Unpaid por Cost, todo junto.
type VisitInput struct {
	Description string  `json:"description"`
	Medicine    string  `json:"medicine"`
	Notes       string  `json:"notes"`
	Cost        float64 `json:"cost"`
}

type payRequest struct {
	Mode string `json:"mode"`
}

// --- Owners ---

func (g *Gateway) ListOwners(ctx context.Context) ([]clinic.Owner, error) {
	var out []clinic.Owner
	if err := g.call(ctx, "list_owners", http.MethodGet, "/owners", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Gateway) CreateOwner(ctx context.Context, in OwnerInput) (clinic.Owner, error) {
	var out clinic.Owner
	if err := g.call(ctx, "create_owner", http.MethodPost, "/owners", in, &out); err != nil {
		return clinic.Owner{}, err
	}
	return out, nil
}

func (g *Gateway) UpdateOwner(ctx context.Context, id string, in OwnerInput) (clinic.Owner, error) {
	var out clinic.Owner
	if err := g.call(ctx, "update_owner", http.MethodPut, "/owners/"+id, in, &out); err != nil {
		return clinic.Owner{}, err
	}
	return out, nil
}

func (g *Gateway) DeleteOwner(ctx context.Context, id string) error {
	if err := g.call(ctx, "delete_owner", http.MethodDelete, "/owners/"+id, nil, nil); err != nil {
		return err
	}
	return nil
}

// --- Pets ---

func (g *Gateway) ListPetsForOwner(ctx context.Context, ownerID string) ([]clinic.Pet, error) {
	var out []clinic.Pet
	if err := g.call(ctx, "list_pets_for_owner", http.MethodGet, "/owners/"+ownerID+"/pets", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Gateway) CreatePet(ctx context.Context, in PetInput) (clinic.Pet, error) {
	var out clinic.Pet
	if err := g.call(ctx, "create_pet", http.MethodPost, "/pets", in, &out); err != nil {
		return clinic.Pet{}, err
	}
	return out, nil
}

func (g *Gateway) UpdatePet(ctx context.Context, id string, in PetInput) (clinic.Pet, error) {
	var out clinic.Pet
	if err := g.call(ctx, "update_pet", http.MethodPut, "/pets/"+id, in, &out); err != nil {
		return clinic.Pet{}, err
	}
	return out, nil
}

func (g *Gateway) DeletePet(ctx context.Context, id string) error {
	if err := g.call(ctx, "delete_pet", http.MethodDelete, "/pets/"+id, nil, nil); err != nil {
		return err
	}
	return nil
}

// --- Veterinarians ---

func (g *Gateway) ListVets(ctx context.Context) ([]clinic.Veterinarian, error) {
	var out []clinic.Veterinarian
	if err := g.call(ctx, "list_vets", http.MethodGet, "/veterinarians", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Gateway) ListVetsForPet(ctx context.Context, petID string) ([]clinic.PetVet, error) {
	var out []clinic.PetVet
	if err := g.call(ctx, "list_vets_for_pet", http.MethodGet, "/pets/"+petID+"/vets", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertVetLink crea o actualiza la asociación vet-mascota.
func (g *Gateway) UpsertVetLink(ctx context.Context, in VetLinkInput) error {
	if err := g.call(ctx, "upsert_vet_link", http.MethodPost, "/vet-pet-link", in, nil); err != nil {
		return err
	}
	return nil
}

// --- Appointments ---

func (g *Gateway) ListAppointments(ctx context.Context) ([]clinic.Appointment, error) {
	var out []clinic.Appointment
	if err := g.call(ctx, "list_appointments", http.MethodGet, "/appointments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Gateway) CreateAppointment(ctx context.Context, in AppointmentInput) (clinic.Appointment, error) {
	var out clinic.Appointment
	if err := g.call(ctx, "create_appointment", http.MethodPost, "/appointments", in, &out); err != nil {
		return clinic.Appointment{}, err
	}
	return out, nil
}

// CompleteAppointment cierra la visita. El backend hace la transacción
// completa (tratamiento + status + factura); el cliente solo dispara
// los re-fetch después del 2xx.
func (g *Gateway) CompleteAppointment(ctx context.Context, appID string, in VisitInput) error {
	if err := g.call(ctx, "complete_appointment", http.MethodPost, "/appointments/"+appID+"/complete", in, nil); err != nil {
		return err
	}
	return nil
}

func (g *Gateway) DeleteAppointment(ctx context.Context, id string) error {
	if err := g.call(ctx, "delete_appointment", http.MethodDelete, "/appointments/"+id, nil, nil); err != nil {
		return err
	}
	return nil
}

// --- Pet history ---

func (g *Gateway) PetHistory(ctx context.Context, petID string) ([]clinic.HistoryEntry, error) {
	var out []clinic.HistoryEntry
	if err := g.call(ctx, "pet_history", http.MethodGet, "/pet-history/"+petID, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- Billing ---

func (g *Gateway) ListBills(ctx context.Context) ([]clinic.Bill, error) {
	var out []clinic.Bill
	if err := g.call(ctx, "list_bills", http.MethodGet, "/billing", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Gateway) PayBill(ctx context.Context, appID, billID, mode string) error {
	path := "/billing/" + appID + "/" + billID + "/pay"
	if err := g.call(ctx, "pay_bill", http.MethodPut, path, payRequest{Mode: mode}, nil); err != nil {
		return err
	}
	return nil
}

func (g *Gateway) DeleteBill(ctx context.Context, id string) error {
	if err := g.call(ctx, "delete_bill", http.MethodDelete, "/billing/"+id, nil, nil); err != nil {
		return err
	}
	return nil
}

// call ejecuta la llamada, registra métricas y normaliza el error.
func (g *Gateway) call(ctx context.Context, op, method, path string, in, out any) *Error {
	start := time.Now()
	err := g.http.DoJSON(ctx, method, path, nil, in, out)
	elapsed := time.Since(start)

	if err == nil {
		g.rec.Observe(op, metrics.OutcomeOK, elapsed)
		g.log.Debug("backend call", map[string]any{
			"op": op, "ms": elapsed.Milliseconds(),
		})
		return nil
	}

	e := normalize(err)
	outcome := metrics.OutcomeRequest
	if e.Transport {
		outcome = metrics.OutcomeTransport
	}
	g.rec.Observe(op, outcome, elapsed)
	g.log.Warn("backend call failed", map[string]any{
		"op": op, "status": e.Status, "transport": e.Transport, "msg": e.Message,
	})
	return e
}
