package clinic

import (
	"fmt"
	"strings"
)

// EntityStore owns the canonical patient and doctor records. Registering a
// patient also places them on the arrival ledger and the triage queue.
type EntityStore struct {
	patients     map[string]*Patient
	patientOrder []*Patient
	doctors      map[string]*Doctor
	doctorOrder  []*Doctor

	arrivals *ArrivalLedger
	triage   *TriageQueue
}

func NewEntityStore(arrivals *ArrivalLedger, triage *TriageQueue) *EntityStore {
	return &EntityStore{
		patients: make(map[string]*Patient),
		doctors:  make(map[string]*Doctor),
		arrivals: arrivals,
		triage:   triage,
	}
}

// AddPatient registers a new patient and queues them for arrival and triage.
func (s *EntityStore) AddPatient(in PatientInput) (*Patient, error) {
	p, err := newPatient(in)
	if err != nil {
		return nil, err
	}
	if err := s.insertPatient(p); err != nil {
		return nil, err
	}
	s.arrivals.Append(p)
	s.triage.Enqueue(p)
	return p, nil
}

// AddDoctor registers a new doctor with an empty schedule.
func (s *EntityStore) AddDoctor(in DoctorInput) (*Doctor, error) {
	d, err := newDoctor(in)
	if err != nil {
		return nil, err
	}
	if err := s.insertDoctor(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *EntityStore) FindPatient(id string) (*Patient, error) {
	p, ok := s.patients[strings.TrimSpace(id)]
	if !ok {
		return nil, fmt.Errorf("%w: patient %q", ErrEntityNotFound, id)
	}
	return p, nil
}

func (s *EntityStore) FindDoctor(id string) (*Doctor, error) {
	d, ok := s.doctors[strings.TrimSpace(id)]
	if !ok {
		return nil, fmt.Errorf("%w: doctor %q", ErrEntityNotFound, id)
	}
	return d, nil
}

// Patients returns every patient in registration order.
func (s *EntityStore) Patients() []*Patient {
	out := make([]*Patient, len(s.patientOrder))
	copy(out, s.patientOrder)
	return out
}

// Doctors returns every doctor in registration order.
func (s *EntityStore) Doctors() []*Doctor {
	out := make([]*Doctor, len(s.doctorOrder))
	copy(out, s.doctorOrder)
	return out
}

func (s *EntityStore) insertPatient(p *Patient) error {
	if _, exists := s.patients[p.id]; exists {
		return fmt.Errorf("%w: patient %q", ErrDuplicateIdentifier, p.id)
	}
	s.patients[p.id] = p
	s.patientOrder = append(s.patientOrder, p)
	return nil
}

func (s *EntityStore) insertDoctor(d *Doctor) error {
	if _, exists := s.doctors[d.id]; exists {
		return fmt.Errorf("%w: doctor %q", ErrDuplicateIdentifier, d.id)
	}
	s.doctors[d.id] = d
	s.doctorOrder = append(s.doctorOrder, d)
	return nil
}
