package clinic

import (
	"fmt"
	"sort"
	"strings"
)

// Prescription is an immutable medication order attached to exactly one patient.
type Prescription struct {
	Medication   string `json:"medication" bson:"medication"`
	Dosage       string `json:"dosage" bson:"dosage"`
	Frequency    string `json:"frequency" bson:"frequency"`
	Instructions string `json:"instructions" bson:"instructions"`
}

// VitalSigns maps a vital sign name (e.g. "Blood Pressure") to its latest reading.
type VitalSigns map[string]string

// Set records a reading, replacing any previous reading under the same name.
func (v VitalSigns) Set(name, reading string) error {
	name = strings.TrimSpace(name)
	reading = strings.TrimSpace(reading)
	if name == "" {
		return fmt.Errorf("%w: vital sign name is required", ErrValidation)
	}
	if reading == "" {
		return fmt.Errorf("%w: reading for vital sign %q is required", ErrValidation, name)
	}
	v[name] = reading
	return nil
}

// stageVitalSigns validates raw readings into a fresh VitalSigns. Two names
// that differ only in surrounding blanks are rejected.
func stageVitalSigns(raw map[string]string) (VitalSigns, error) {
	vitals := make(VitalSigns, len(raw))
	for name, reading := range raw {
		if _, dup := vitals[strings.TrimSpace(name)]; dup {
			return nil, fmt.Errorf("%w: duplicate vital sign %q", ErrValidation, strings.TrimSpace(name))
		}
		if err := vitals.Set(name, reading); err != nil {
			return nil, err
		}
	}
	return vitals, nil
}

// Names returns the recorded vital sign names in lexical order.
func (v VitalSigns) Names() []string {
	names := make([]string, 0, len(v))
	for k := range v {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// StringSet is an insertion-ordered set of non-blank strings.
type StringSet struct {
	items []string
}

// NewStringSet builds a set from items, dropping repeats.
func NewStringSet(items ...string) (StringSet, error) {
	var s StringSet
	for _, item := range items {
		if _, err := s.Add(item); err != nil {
			return StringSet{}, err
		}
	}
	return s, nil
}

// Add inserts item and reports whether it was new.
func (s *StringSet) Add(item string) (bool, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return false, fmt.Errorf("%w: blank entry", ErrValidation)
	}
	if s.Contains(item) {
		return false, nil
	}
	s.items = append(s.items, item)
	return true, nil
}

func (s StringSet) Contains(item string) bool {
	for _, existing := range s.items {
		if existing == item {
			return true
		}
	}
	return false
}

func (s StringSet) Len() int { return len(s.items) }

// Items returns a copy of the set contents in insertion order.
func (s StringSet) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Patient is a registered patient record. Its identifier is fixed at
// registration; everything else may be updated in place.
type Patient struct {
	id                string
	Name              string
	Age               int
	Gender            string
	Address           string
	Phone             string
	Email             string
	MedicalCondition  string
	RiskLevel         int
	Height            *string
	Weight            *string
	Allergies         StringSet
	PreviousSurgeries StringSet
	VitalSigns        VitalSigns
	prescriptions     []Prescription
}

func (p *Patient) ID() string { return p.id }

// AddVitalSign records or replaces a single vital sign reading.
func (p *Patient) AddVitalSign(name, reading string) error {
	return p.VitalSigns.Set(name, reading)
}

// SetWeight replaces the recorded weight. A blank value clears it.
func (p *Patient) SetWeight(weight string) {
	p.Weight = optional(weight)
}

// AddPrescription appends rx to the patient's prescription history.
func (p *Patient) AddPrescription(rx Prescription) {
	p.prescriptions = append(p.prescriptions, rx)
}

// Prescriptions returns a copy of the prescription history in the order issued.
func (p *Patient) Prescriptions() []Prescription {
	out := make([]Prescription, len(p.prescriptions))
	copy(out, p.prescriptions)
	return out
}

// Doctor is a registered doctor together with their booked time slots.
type Doctor struct {
	id             string
	Name           string
	Specialization string
	Address        string
	Phone          string
	Email          string
	Schedule       *ScheduleBook
}

func (d *Doctor) ID() string { return d.id }

// PatientInput carries the fields needed to register a patient.
type PatientInput struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Age               int           `json:"age"`
	Gender            string        `json:"gender"`
	Address           string        `json:"address"`
	Phone             string        `json:"phone_number"`
	Email             string        `json:"email"`
	MedicalCondition  string        `json:"medical_condition"`
	RiskLevel         int           `json:"risk_level"`
	Height            *string       `json:"height,omitempty"`
	Weight            *string       `json:"weight,omitempty"`
	Allergies         TextList      `json:"allergies,omitempty"`
	PreviousSurgeries TextList      `json:"previous_surgeries,omitempty"`
	VitalSigns        VitalReadings `json:"vital_signs,omitempty"`
}

// Validate performs shape checks only; identifier uniqueness is the store's job.
func (in PatientInput) Validate() error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if in.Age < 0 {
		return fmt.Errorf("%w: age must not be negative", ErrValidation)
	}
	if in.RiskLevel < 0 {
		return fmt.Errorf("%w: risk_level must not be negative", ErrValidation)
	}
	return nil
}

func newPatient(in PatientInput) (*Patient, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	allergies, err := NewStringSet(in.Allergies...)
	if err != nil {
		return nil, fmt.Errorf("allergies: %w", err)
	}
	surgeries, err := NewStringSet(in.PreviousSurgeries...)
	if err != nil {
		return nil, fmt.Errorf("previous_surgeries: %w", err)
	}
	vitals, err := stageVitalSigns(in.VitalSigns)
	if err != nil {
		return nil, err
	}
	return &Patient{
		id:                strings.TrimSpace(in.ID),
		Name:              in.Name,
		Age:               in.Age,
		Gender:            in.Gender,
		Address:           in.Address,
		Phone:             in.Phone,
		Email:             in.Email,
		MedicalCondition:  in.MedicalCondition,
		RiskLevel:         in.RiskLevel,
		Height:            optionalPtr(in.Height),
		Weight:            optionalPtr(in.Weight),
		Allergies:         allergies,
		PreviousSurgeries: surgeries,
		VitalSigns:        vitals,
	}, nil
}

// DoctorInput carries the fields needed to register a doctor.
type DoctorInput struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Address        string `json:"address"`
	Phone          string `json:"phone_number"`
	Email          string `json:"email"`
}

func (in DoctorInput) Validate() error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	return nil
}

func newDoctor(in DoctorInput) (*Doctor, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &Doctor{
		id:             strings.TrimSpace(in.ID),
		Name:           in.Name,
		Specialization: in.Specialization,
		Address:        in.Address,
		Phone:          in.Phone,
		Email:          in.Email,
		Schedule:       NewScheduleBook(),
	}, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func optionalPtr(s *string) *string {
	if s == nil {
		return nil
	}
	return optional(*s)
}
