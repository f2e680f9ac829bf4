package clinic

// Clinic wires the record store to the collections and workflows that
// reference it. It is not safe for concurrent use; Service serialises access.
type Clinic struct {
	Store     *EntityStore
	Arrivals  *ArrivalLedger
	Triage    *TriageQueue
	Scheduler *AppointmentScheduler
	Dispenser *PrescriptionDispenser
}

// New returns an empty clinic using the default medication catalog.
func New() *Clinic {
	arrivals := NewArrivalLedger()
	triage := NewTriageQueue()
	store := NewEntityStore(arrivals, triage)
	return &Clinic{
		Store:     store,
		Arrivals:  arrivals,
		Triage:    triage,
		Scheduler: NewAppointmentScheduler(store, triage),
		Dispenser: NewPrescriptionDispenser(store, triage, DefaultCatalog()),
	}
}

// RemoveFromTriage drops the patient's first triage entry. The arrival ledger
// is left untouched.
func (c *Clinic) RemoveFromTriage(patientID string) (*Patient, error) {
	return c.Triage.Remove(c.Store, patientID)
}

// UpdatePatientRequest replaces individual vital sign readings and, when set,
// the patient's weight.
type UpdatePatientRequest struct {
	VitalSigns VitalReadings `json:"vital_signs,omitempty"`
	Weight     *string       `json:"weight,omitempty"`
}

// UpdatePatient applies req to the patient. Readings are validated before any
// of them is written.
func (c *Clinic) UpdatePatient(patientID string, req UpdatePatientRequest) (*Patient, error) {
	p, err := c.Store.FindPatient(patientID)
	if err != nil {
		return nil, err
	}
	staged, err := stageVitalSigns(req.VitalSigns)
	if err != nil {
		return nil, err
	}
	for name, reading := range staged {
		p.VitalSigns[name] = reading
	}
	if req.Weight != nil {
		p.SetWeight(*req.Weight)
	}
	return p, nil
}
