// Package backendstub es un backend de clínica en memoria con la misma
// superficie REST que el servicio real. Sirve para desarrollo local y
// como doble de test end-to-end del cliente; no pretende ser un backend
// de producto (sin persistencia, sin auth).
package backendstub

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"vet-clinic-console/internal/clinic"
)

// treatment es lo que registra complete-visit además del cambio de status.
type treatment struct {
	Description string
	Medicine    string
	Notes       string
	Cost        float64
}

type Server struct {
	mu sync.RWMutex

	owners       []clinic.Owner
	pets         []clinic.Pet
	vets         []clinic.Veterinarian
	links        []clinic.VetPetLink
	appointments []clinic.Appointment
	bills        []clinic.Bill
	treatments   map[string]treatment // appointmentID -> registro

	now func() time.Time

	router chi.Router
}

func New() *Server {
	s := &Server{
		treatments: make(map[string]treatment),
		now:        time.Now,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/owners", func(or chi.Router) {
		or.Get("/", s.listOwners)
		or.Post("/", s.createOwner)
		or.Put("/{ownerID}", s.updateOwner)
		or.Delete("/{ownerID}", s.deleteOwner)
		or.Get("/{ownerID}/pets", s.listPetsForOwner)
	})

	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", s.createPet)
		pr.Put("/{petID}", s.updatePet)
		pr.Delete("/{petID}", s.deletePet)
		pr.Get("/{petID}/vets", s.listVetsForPet)
	})

	r.Get("/veterinarians", s.listVets)
	r.Post("/vet-pet-link", s.upsertVetLink)

	r.Route("/appointments", func(ar chi.Router) {
		ar.Get("/", s.listAppointments)
		ar.Post("/", s.createAppointment)
		ar.Post("/{appID}/complete", s.completeAppointment)
		ar.Delete("/{appID}", s.deleteAppointment)
	})

	r.Get("/pet-history/{petID}", s.petHistory)

	r.Route("/billing", func(br chi.Router) {
		br.Get("/", s.listBills)
		br.Put("/{appID}/{billID}/pay", s.payBill)
		br.Delete("/{billID}", s.deleteBill)
	})

	s.router = r
	return s
}

// Handler expone el router (para http.Server o httptest.NewServer).
func (s *Server) Handler() http.Handler {
	return s.router
}

// SeedVets carga veterinarios de ejemplo para dev y tests.
func (s *Server) SeedVets(names ...string) []clinic.Veterinarian {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]clinic.Veterinarian, 0, len(names))
	for _, n := range names {
		v := clinic.Veterinarian{ID: uuid.NewString(), Name: n}
		s.vets = append(s.vets, v)
		out = append(out, v)
	}
	return out
}

// --- Owners ---

type ownerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Email     string `json:"email"`
}

func (s *Server) listOwners(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	out := make([]clinic.Owner, len(s.owners))
	copy(out, s.owners)
	s.mu.RUnlock()

	// Mismo orden que el backend real: por nombre.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FirstName < out[j].FirstName
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createOwner(w http.ResponseWriter, r *http.Request) {
	var req ownerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.FirstName == "" || req.LastName == "" || req.Phone == "" || req.Address == "" {
		writeMessage(w, http.StatusBadRequest, "first_name, last_name, phone and address are required")
		return
	}

	o := clinic.Owner{
		ID:        uuid.NewString(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
		Email:     req.Email,
	}

	s.mu.Lock()
	s.owners = append(s.owners, o)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) updateOwner(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "ownerID")

	var req ownerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOwner(s.owners, id)
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "owner not found")
		return
	}

	o := &s.owners[i]
	o.FirstName = req.FirstName
	o.LastName = req.LastName
	o.Phone = req.Phone
	o.Address = req.Address
	o.Email = req.Email

	writeJSON(w, http.StatusOK, *o)
}

func (s *Server) deleteOwner(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "ownerID")

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOwner(s.owners, id)
	if i < 0 {
		// Borrar dos veces da 404, nunca un crash del cliente.
		writeMessage(w, http.StatusNotFound, "owner not found")
		return
	}
	s.owners = append(s.owners[:i], s.owners[i+1:]...)

	// Las mascotas del dueño se van con él.
	kept := s.pets[:0]
	for _, p := range s.pets {
		if p.OwnerID != id {
			kept = append(kept, p)
		}
	}
	s.pets = kept

	writeMessage(w, http.StatusOK, "owner deleted")
}

func (s *Server) listPetsForOwner(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "ownerID")

	s.mu.RLock()
	defer s.mu.RUnlock()

	if indexOwner(s.owners, id) < 0 {
		writeMessage(w, http.StatusNotFound, "owner not found")
		return
	}

	out := make([]clinic.Pet, 0)
	for _, p := range s.pets {
		if p.OwnerID == id {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// --- Pets ---

type petRequest struct {
	Name    string `json:"name"`
	Species string `json:"species"`
	Breed   string `json:"breed"`
	Age     int    `json:"age"`
	OwnerID string `json:"owner_id"`
}

func (s *Server) createPet(w http.ResponseWriter, r *http.Request) {
	var req petRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" || req.Species == "" {
		writeMessage(w, http.StatusBadRequest, "name and species are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOwner(s.owners, req.OwnerID) < 0 {
		writeMessage(w, http.StatusNotFound, "owner not found")
		return
	}

	p := clinic.Pet{
		ID:      uuid.NewString(),
		Name:    req.Name,
		Species: req.Species,
		Breed:   req.Breed,
		Age:     req.Age,
		OwnerID: req.OwnerID,
	}
	s.pets = append(s.pets, p)

	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) updatePet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "petID")

	var req petRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexPet(s.pets, id)
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "pet not found")
		return
	}

	p := &s.pets[i]
	p.Name = req.Name
	p.Species = req.Species
	p.Breed = req.Breed
	p.Age = req.Age

	writeJSON(w, http.StatusOK, *p)
}

func (s *Server) deletePet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "petID")

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexPet(s.pets, id)
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "pet not found")
		return
	}
	s.pets = append(s.pets[:i], s.pets[i+1:]...)

	kept := s.links[:0]
	for _, l := range s.links {
		if l.PetID != id {
			kept = append(kept, l)
		}
	}
	s.links = kept

	writeMessage(w, http.StatusOK, "pet deleted")
}

// --- Veterinarians y links ---

func (s *Server) listVets(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	out := make([]clinic.Veterinarian, len(s.vets))
	copy(out, s.vets)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listVetsForPet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "petID")

	s.mu.RLock()
	defer s.mu.RUnlock()

	if indexPet(s.pets, id) < 0 {
		writeMessage(w, http.StatusNotFound, "pet not found")
		return
	}

	out := make([]clinic.PetVet, 0)
	for _, l := range s.links {
		if l.PetID != id {
			continue
		}
		name := ""
		if j := indexVet(s.vets, l.VetID); j >= 0 {
			name = s.vets[j].Name
		}
		out = append(out, clinic.PetVet{VetID: l.VetID, VetName: name, IsPrimary: l.IsPrimary})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) upsertVetLink(w http.ResponseWriter, r *http.Request) {
	var req clinic.VetPetLink
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if indexPet(s.pets, req.PetID) < 0 {
		writeMessage(w, http.StatusNotFound, "pet not found")
		return
	}
	if indexVet(s.vets, req.VetID) < 0 {
		writeMessage(w, http.StatusNotFound, "veterinarian not found")
		return
	}

	// Un solo primario por mascota: marcar uno nuevo degrada al anterior.
	if req.IsPrimary {
		for i := range s.links {
			if s.links[i].PetID == req.PetID {
				s.links[i].IsPrimary = false
			}
		}
	}

	for i := range s.links {
		if s.links[i].PetID == req.PetID && s.links[i].VetID == req.VetID {
			s.links[i].IsPrimary = req.IsPrimary
			writeJSON(w, http.StatusOK, s.links[i])
			return
		}
	}

	s.links = append(s.links, req)
	writeJSON(w, http.StatusCreated, req)
}

// --- Appointments ---

type appointmentRequest struct {
	PetID  string `json:"pet_id"`
	VetID  string `json:"vet_id"`
	Date   string `json:"date"`
	Time   string `json:"time"`
	Reason string `json:"reason"`
}

func (s *Server) listAppointments(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	out := make([]clinic.Appointment, len(s.appointments))
	copy(out, s.appointments)
	s.mu.RUnlock()

	// El schedule real viene ORDER BY date, time.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createAppointment(w http.ResponseWriter, r *http.Request) {
	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Date == "" || req.Time == "" || req.Reason == "" {
		writeMessage(w, http.StatusBadRequest, "date, time and reason are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pi := indexPet(s.pets, req.PetID)
	if pi < 0 {
		writeMessage(w, http.StatusNotFound, "pet not found")
		return
	}
	vi := indexVet(s.vets, req.VetID)
	if vi < 0 {
		writeMessage(w, http.StatusNotFound, "veterinarian not found")
		return
	}

	pet := s.pets[pi]
	var owner clinic.Owner
	if oi := indexOwner(s.owners, pet.OwnerID); oi >= 0 {
		owner = s.owners[oi]
	}

	a := clinic.Appointment{
		ID:             uuid.NewString(),
		Date:           req.Date,
		Time:           req.Time,
		Reason:         req.Reason,
		Status:         clinic.AppointmentScheduled,
		PetID:          pet.ID,
		PetName:        pet.Name,
		OwnerID:        owner.ID,
		OwnerFirstName: owner.FirstName,
		OwnerLastName:  owner.LastName,
		VetID:          s.vets[vi].ID,
		VetName:        s.vets[vi].Name,
	}
	s.appointments = append(s.appointments, a)

	writeJSON(w, http.StatusCreated, a)
}

type visitRequest struct {
	Description string  `json:"description"`
	Medicine    string  `json:"medicine"`
	Notes       string  `json:"notes"`
	Cost        float64 `json:"cost"`
}

// completeAppointment reproduce la transacción del backend real bajo un
// solo lock: registrar tratamiento, pasar la cita a Completed y generar
// exactamente una factura Unpaid por el costo.
func (s *Server) completeAppointment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "appID")

	var req visitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexAppointment(s.appointments, id)
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "appointment not found")
		return
	}
	if s.appointments[i].Status != clinic.AppointmentScheduled {
		writeMessage(w, http.StatusConflict, "appointment is already completed")
		return
	}

	s.treatments[id] = treatment{
		Description: req.Description,
		Medicine:    req.Medicine,
		Notes:       req.Notes,
		Cost:        req.Cost,
	}
	s.appointments[i].Status = clinic.AppointmentCompleted
	s.bills = append(s.bills, clinic.Bill{
		ID:            uuid.NewString(),
		AppointmentID: id,
		Date:          s.now().Format("2006-01-02"),
		Amount:        req.Cost,
		Status:        clinic.BillUnpaid,
	})

	writeMessage(w, http.StatusOK, "visit completed and bill generated")
}

func (s *Server) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "appID")

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexAppointment(s.appointments, id)
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "appointment not found")
		return
	}
	if s.appointments[i].Status == clinic.AppointmentScheduled {
		writeMessage(w, http.StatusConflict, "only completed appointments can be deleted")
		return
	}
	s.appointments = append(s.appointments[:i], s.appointments[i+1:]...)

	writeMessage(w, http.StatusOK, "appointment deleted")
}

// --- Pet history ---

func (s *Server) petHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "petID")

	s.mu.RLock()
	defer s.mu.RUnlock()

	pi := indexPet(s.pets, id)
	if pi < 0 {
		writeMessage(w, http.StatusNotFound, "pet not found")
		return
	}

	contact := ""
	if oi := indexOwner(s.owners, s.pets[pi].OwnerID); oi >= 0 {
		contact = s.owners[oi].Phone
	}

	out := make([]clinic.HistoryEntry, 0)
	for _, a := range s.appointments {
		if a.PetID != id {
			continue
		}
		out = append(out, clinic.HistoryEntry{
			Date:         a.Date,
			Reason:       a.Reason,
			VetName:      a.VetName,
			OwnerContact: contact,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })

	writeJSON(w, http.StatusOK, out)
}

// --- Billing ---

type payBillRequest struct {
	Mode string `json:"mode"`
}

func (s *Server) listBills(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	out := make([]clinic.Bill, len(s.bills))
	copy(out, s.bills)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) payBill(w http.ResponseWriter, r *http.Request) {
	appID := chi.URLParam(r, "appID")
	billID := chi.URLParam(r, "billID")

	var req payBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Mode == "" {
		writeMessage(w, http.StatusBadRequest, "payment mode is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexBill(s.bills, billID)
	if i < 0 || s.bills[i].AppointmentID != appID {
		writeMessage(w, http.StatusNotFound, "bill not found")
		return
	}
	if s.bills[i].Status == clinic.BillPaid {
		writeMessage(w, http.StatusConflict, "bill is already paid")
		return
	}

	s.bills[i].Status = clinic.BillPaid
	s.bills[i].Mode = req.Mode

	writeJSON(w, http.StatusOK, s.bills[i])
}

func (s *Server) deleteBill(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "billID")

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexBill(s.bills, id)
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "bill not found")
		return
	}
	if s.bills[i].Status != clinic.BillPaid {
		writeMessage(w, http.StatusConflict, "only paid bills can be deleted")
		return
	}
	s.bills = append(s.bills[:i], s.bills[i+1:]...)

	writeMessage(w, http.StatusOK, "bill deleted")
}

// --- Helpers ---

func indexOwner(list []clinic.Owner, id string) int {
	for i, o := range list {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func indexPet(list []clinic.Pet, id string) int {
	for i, p := range list {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func indexVet(list []clinic.Veterinarian, id string) int {
	for i, v := range list {
		if v.ID == id {
			return i
		}
	}
	return -1
}

func indexAppointment(list []clinic.Appointment, id string) int {
	for i, a := range list {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func indexBill(list []clinic.Bill, id string) int {
	for i, b := range list {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
