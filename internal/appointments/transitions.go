package appointments

import (
	"fmt"

	"medconnect-server/internal/models"
)

// Event is a lifecycle change of an appointment.
type Event string

const (
	EventBooked      Event = "appointment_booked"
	EventConfirmed   Event = "appointment_confirmed"
	EventCancelled   Event = "appointment_cancelled"
	EventRescheduled Event = "appointment_rescheduled"
	EventCompleted   Event = "appointment_completed"
	EventPaid        Event = "payment_received"
	EventRefunded    Event = "payment_refunded"
)

type party int

const (
	partyPatient party = iota
	partyDoctor
	partyHospital
)

type rule struct {
	// from lists the statuses the event may start from; nil allows any.
	from   []models.AppointmentStatus
	notify []party
}

var open = []models.AppointmentStatus{models.StatusPending, models.StatusConfirmed}

var rules = map[Event]rule{
	EventBooked:      {notify: []party{partyPatient, partyDoctor, partyHospital}},
	EventConfirmed:   {from: open, notify: []party{partyPatient}},
	EventCancelled:   {from: open, notify: []party{partyPatient, partyDoctor}},
	EventRescheduled: {notify: []party{partyPatient}},
	EventCompleted:   {notify: []party{partyPatient}},
	EventPaid:        {notify: []party{partyPatient}},
	EventRefunded:    {notify: []party{partyPatient}},
}

func (r rule) allows(status models.AppointmentStatus) bool {
	if r.from == nil {
		return true
	}
	for _, s := range r.from {
		if s == status {
			return true
		}
	}
	return false
}

// CanTransition reports whether ev may be applied to an appointment in status.
func CanTransition(ev Event, status models.AppointmentStatus) bool {
	r, ok := rules[ev]
	return ok && r.allows(status)
}

// CancelledBy names who cancels an appointment.
type CancelledBy string

const (
	CancelledByPatient  CancelledBy = "patient"
	CancelledByHospital CancelledBy = "hospital"
)

// Status returns the cancelled status for c.
func (c CancelledBy) Status() (models.AppointmentStatus, error) {
	switch c {
	case CancelledByPatient:
		return models.StatusCancelledByPatient, nil
	case CancelledByHospital:
		return models.StatusCancelledByHospital, nil
	}
	return "", models.NewValidationError("cancelledBy", "must be either 'patient' or 'hospital'")
}

func recipientID(p party, appt *models.Appointment) (string, models.Role) {
	switch p {
	case partyDoctor:
		return appt.DoctorID, models.RoleDoctor
	case partyHospital:
		return appt.HospitalID, models.RoleHospital
	}
	return appt.PatientID, models.RolePatient
}

func message(ev Event, p party, appt *models.Appointment) (title, body string) {
	when := fmt.Sprintf("%s at %s", appt.AppointmentDate.Format("Jan 2, 2006"), appt.AppointmentTime)

	switch ev {
	case EventBooked:
		switch p {
		case partyDoctor:
			return "New Appointment", fmt.Sprintf("%s booked an appointment with you on %s.", appt.PatientName, when)
		case partyHospital:
			return "New Appointment", fmt.Sprintf("%s booked an appointment with Dr. %s on %s.", appt.PatientName, appt.DoctorName, when)
		}
		return "Appointment Booked", fmt.Sprintf("Your appointment with Dr. %s at %s on %s is awaiting confirmation.", appt.DoctorName, appt.HospitalName, when)
	case EventConfirmed:
		return "Appointment Confirmed", fmt.Sprintf("Your appointment with Dr. %s on %s has been confirmed.", appt.DoctorName, when)
	case EventCancelled:
		who := "the patient"
		if appt.Status == models.StatusCancelledByHospital {
			who = appt.HospitalName
		}
		if p == partyDoctor {
			return "Appointment Cancelled", fmt.Sprintf("The appointment with %s on %s was cancelled by %s.", appt.PatientName, when, who)
		}
		return "Appointment Cancelled", fmt.Sprintf("Your appointment with Dr. %s on %s was cancelled by %s.", appt.DoctorName, when, who)
	case EventRescheduled:
		return "Appointment Rescheduled", fmt.Sprintf("Your appointment with Dr. %s has been moved to %s.", appt.DoctorName, when)
	case EventCompleted:
		return "Appointment Completed", fmt.Sprintf("Thank you for visiting Dr. %s at %s.", appt.DoctorName, appt.HospitalName)
	case EventPaid:
		return "Payment Successful", fmt.Sprintf("We received your payment for the appointment on %s.", when)
	case EventRefunded:
		return "Payment Refunded", fmt.Sprintf("Your payment for the appointment on %s has been refunded.", when)
	}
	return "Appointment Update", fmt.Sprintf("Your appointment on %s was updated.", when)
}
