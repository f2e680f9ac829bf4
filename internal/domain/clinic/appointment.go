package clinic

import (
	"strings"
	"time"
)

// ScheduleRequest asks for the SlotIndex-th listed time of a doctor's date.
type ScheduleRequest struct {
	PatientID string `json:"patient_id"`
	DoctorID  string `json:"doctor_id"`
	Date      string `json:"date"`
	SlotIndex int    `json:"slot_index"`
}

// Appointment is the confirmation of a booked slot.
type Appointment struct {
	PatientID   string    `json:"patient_id"`
	PatientName string    `json:"patient_name"`
	DoctorID    string    `json:"doctor_id"`
	DoctorName  string    `json:"doctor_name"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	BookedAt    time.Time `json:"booked_at"`
}

// AppointmentScheduler books doctor slots and sends the patient back to triage.
type AppointmentScheduler struct {
	store  *EntityStore
	triage *TriageQueue
	now    func() time.Time
}

func NewAppointmentScheduler(store *EntityStore, triage *TriageQueue) *AppointmentScheduler {
	return &AppointmentScheduler{store: store, triage: triage, now: time.Now}
}

// Schedule resolves the requested index against the doctor's listing for the
// date, records that time again and re-queues the patient. Every check runs
// before the first mutation, so a failed call changes nothing.
func (s *AppointmentScheduler) Schedule(req ScheduleRequest) (*Appointment, error) {
	patient, err := s.store.FindPatient(req.PatientID)
	if err != nil {
		return nil, err
	}
	doctor, err := s.store.FindDoctor(req.DoctorID)
	if err != nil {
		return nil, err
	}
	date := strings.TrimSpace(req.Date)
	at, err := doctor.Schedule.Resolve(date, req.SlotIndex)
	if err != nil {
		return nil, err
	}

	if err := doctor.Schedule.AddSlot(date, at); err != nil {
		return nil, err
	}
	s.triage.Enqueue(patient)

	return &Appointment{
		PatientID:   patient.ID(),
		PatientName: patient.Name,
		DoctorID:    doctor.ID(),
		DoctorName:  doctor.Name,
		Date:        date,
		Time:        at,
		BookedAt:    s.now(),
	}, nil
}
