package clinic

// AppointmentStatus define el ciclo de vida de una cita.
// @Enum Scheduled, Completed
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "Scheduled"
	AppointmentCompleted AppointmentStatus = "Completed"
)

// BillStatus define el ciclo de vida de una factura.
// @Enum Unpaid, Paid
type BillStatus string

const (
	BillUnpaid BillStatus = "Unpaid"
	BillPaid   BillStatus = "Paid"
)

// PaymentMode son los modos de pago que ofrece el formulario de caja.
// El backend acepta cualquier string no vacío; estos son los del dropdown.
type PaymentMode string

const (
	PayCash   PaymentMode = "Cash"
	PayCard   PaymentMode = "Card"
	PayOnline PaymentMode = "Online"
)
