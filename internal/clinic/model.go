package clinic

// Owner es la proyección cliente de un dueño registrado.
// El backend es dueño del estado canónico; acá solo se cachea.
type Owner struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Email     string `json:"email,omitempty"`
}

// DisplayName arma el nombre visible "First Last".
func (o Owner) DisplayName() string {
	if o.FirstName == "" {
		return o.LastName
	}
	if o.LastName == "" {
		return o.FirstName
	}
	return o.FirstName + " " + o.LastName
}

// Pet pertenece a exactamente un Owner; la propiedad no se transfiere
// desde este cliente.
type Pet struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Species string `json:"species"`
	Breed   string `json:"breed"`
	Age     int    `json:"age"`
	OwnerID string `json:"owner_id"`
}

type Veterinarian struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// VetPetLink asocia un veterinario a una mascota.
// La unicidad del primario por mascota es contrato del backend,
// el cliente no la fuerza.
type VetPetLink struct {
	PetID     string `json:"pet_id"`
	VetID     string `json:"vet_id"`
	IsPrimary bool   `json:"is_primary"`
}

// PetVet es la vista joineada que devuelve GET /pets/{id}/vets.
type PetVet struct {
	VetID     string `json:"vet_id"`
	VetName   string `json:"vet_name"`
	IsPrimary bool   `json:"is_primary"`
}

// Appointment incluye campos denormalizados (PetName, VetName, nombre del
// dueño) porque el listado del backend ya viene con los joins hechos.
type Appointment struct {
	ID     string            `json:"id"`
	Date   string            `json:"date"` // YYYY-MM-DD
	Time   string            `json:"time"`
	Reason string            `json:"reason"`
	Status AppointmentStatus `json:"status"`

	PetID   string `json:"pet_id"`
	PetName string `json:"pet_name"`

	OwnerID        string `json:"owner_id"`
	OwnerFirstName string `json:"owner_first_name"`
	OwnerLastName  string `json:"owner_last_name"`

	VetID   string `json:"vet_id"`
	VetName string `json:"vet_name"`
}

// Bill se genera en el backend al completar una visita (una por visita).
type Bill struct {
	ID            string     `json:"id"`
	AppointmentID string     `json:"appointment_id"`
	Date          string     `json:"date"` // YYYY-MM-DD
	Amount        float64    `json:"amount"`
	Status        BillStatus `json:"status"`
	Mode          string     `json:"mode,omitempty"` // vacío hasta que se paga
}

// HistoryEntry es una fila del historial de una mascota.
type HistoryEntry struct {
	Date         string `json:"date"`
	Reason       string `json:"reason"`
	VetName      string `json:"vet_name"`
	OwnerContact string `json:"owner_contact"`
}

// BillingStats se deriva del cache de facturas; nunca se persiste.
type BillingStats struct {
	Total       float64
	PaidCount   int
	UnpaidCount int
	PaidAmount  float64
	DueAmount   float64
}

// StatsFor recalcula las estadísticas de caja sobre la colección cacheada.
func StatsFor(bills []Bill) BillingStats {
	var s BillingStats
	for _, b := range bills {
		s.Total += b.Amount
		switch b.Status {
		case BillPaid:
			s.PaidCount++
			s.PaidAmount += b.Amount
		default:
			s.UnpaidCount++
			s.DueAmount += b.Amount
		}
	}
	return s
}
