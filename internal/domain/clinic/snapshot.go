package clinic

import (
	"fmt"
	"time"
)

// Snapshot is the complete, serialisable state of a clinic.
type Snapshot struct {
	Revision string          `json:"revision" bson:"revision"`
	TakenAt  time.Time       `json:"taken_at" bson:"taken_at"`
	Patients []PatientRecord `json:"patients" bson:"patients"`
	Doctors  []DoctorRecord  `json:"doctors" bson:"doctors"`
	Arrivals []EntryRecord   `json:"arrivals" bson:"arrivals"`
	Triage   []EntryRecord   `json:"triage" bson:"triage"`
}

type PatientRecord struct {
	ID                string            `json:"id" bson:"id"`
	Name              string            `json:"name" bson:"name"`
	Age               int               `json:"age" bson:"age"`
	Gender            string            `json:"gender" bson:"gender"`
	Address           string            `json:"address" bson:"address"`
	Phone             string            `json:"phone_number" bson:"phone_number"`
	Email             string            `json:"email" bson:"email"`
	MedicalCondition  string            `json:"medical_condition" bson:"medical_condition"`
	RiskLevel         int               `json:"risk_level" bson:"risk_level"`
	Height            *string           `json:"height,omitempty" bson:"height,omitempty"`
	Weight            *string           `json:"weight,omitempty" bson:"weight,omitempty"`
	Allergies         []string          `json:"allergies" bson:"allergies"`
	PreviousSurgeries []string          `json:"previous_surgeries" bson:"previous_surgeries"`
	VitalSigns        map[string]string `json:"vital_signs" bson:"vital_signs"`
	Prescriptions     []Prescription    `json:"prescriptions" bson:"prescriptions"`
}

type DoctorRecord struct {
	ID             string      `json:"id" bson:"id"`
	Name           string      `json:"name" bson:"name"`
	Specialization string      `json:"specialization" bson:"specialization"`
	Address        string      `json:"address" bson:"address"`
	Phone          string      `json:"phone_number" bson:"phone_number"`
	Email          string      `json:"email" bson:"email"`
	Schedule       []DayRecord `json:"schedule" bson:"schedule"`
}

type DayRecord struct {
	Date  string   `json:"date" bson:"date"`
	Times []string `json:"times" bson:"times"`
}

type EntryRecord struct {
	PatientID string    `json:"patient_id" bson:"patient_id"`
	At        time.Time `json:"at" bson:"at"`
}

// Snapshot captures the clinic's current state.
func (c *Clinic) Snapshot() *Snapshot {
	snap := &Snapshot{TakenAt: time.Now().UTC()}
	for _, p := range c.Store.Patients() {
		v := p.View()
		snap.Patients = append(snap.Patients, PatientRecord{
			ID:                v.ID,
			Name:              v.Name,
			Age:               v.Age,
			Gender:            v.Gender,
			Address:           v.Address,
			Phone:             v.Phone,
			Email:             v.Email,
			MedicalCondition:  v.MedicalCondition,
			RiskLevel:         v.RiskLevel,
			Height:            v.Height,
			Weight:            v.Weight,
			Allergies:         v.Allergies,
			PreviousSurgeries: v.PreviousSurgeries,
			VitalSigns:        v.VitalSigns,
			Prescriptions:     v.Prescriptions,
		})
	}
	for _, d := range c.Store.Doctors() {
		rec := DoctorRecord{
			ID:             d.id,
			Name:           d.Name,
			Specialization: d.Specialization,
			Address:        d.Address,
			Phone:          d.Phone,
			Email:          d.Email,
		}
		for _, date := range d.Schedule.Dates() {
			rec.Schedule = append(rec.Schedule, DayRecord{Date: date, Times: d.Schedule.Times(date)})
		}
		snap.Doctors = append(snap.Doctors, rec)
	}
	snap.Arrivals = entryRecords(c.Arrivals.AllInOrder())
	snap.Triage = entryRecords(c.Triage.Entries())
	return snap
}

func entryRecords(entries []Entry) []EntryRecord {
	out := make([]EntryRecord, len(entries))
	for i, e := range entries {
		out[i] = EntryRecord{PatientID: e.Patient.id, At: e.At}
	}
	return out
}

// Restore rebuilds a clinic from snap. Queue and ledger entries must refer to
// patients present in the snapshot.
func Restore(snap *Snapshot) (*Clinic, error) {
	c := New()
	for _, rec := range snap.Patients {
		p, err := newPatient(PatientInput{
			ID:                rec.ID,
			Name:              rec.Name,
			Age:               rec.Age,
			Gender:            rec.Gender,
			Address:           rec.Address,
			Phone:             rec.Phone,
			Email:             rec.Email,
			MedicalCondition:  rec.MedicalCondition,
			RiskLevel:         rec.RiskLevel,
			Height:            rec.Height,
			Weight:            rec.Weight,
			Allergies:         rec.Allergies,
			PreviousSurgeries: rec.PreviousSurgeries,
			VitalSigns:        rec.VitalSigns,
		})
		if err != nil {
			return nil, fmt.Errorf("restore patient %q: %w", rec.ID, err)
		}
		for _, rx := range rec.Prescriptions {
			p.AddPrescription(rx)
		}
		if err := c.Store.insertPatient(p); err != nil {
			return nil, fmt.Errorf("restore patient: %w", err)
		}
	}
	for _, rec := range snap.Doctors {
		d, err := newDoctor(DoctorInput{
			ID:             rec.ID,
			Name:           rec.Name,
			Specialization: rec.Specialization,
			Address:        rec.Address,
			Phone:          rec.Phone,
			Email:          rec.Email,
		})
		if err != nil {
			return nil, fmt.Errorf("restore doctor %q: %w", rec.ID, err)
		}
		for _, day := range rec.Schedule {
			for _, at := range day.Times {
				if err := d.Schedule.AddSlot(day.Date, at); err != nil {
					return nil, fmt.Errorf("restore doctor %q schedule: %w", rec.ID, err)
				}
			}
		}
		if err := c.Store.insertDoctor(d); err != nil {
			return nil, fmt.Errorf("restore doctor: %w", err)
		}
	}
	for _, e := range snap.Arrivals {
		p, err := c.Store.FindPatient(e.PatientID)
		if err != nil {
			return nil, fmt.Errorf("restore arrivals: %w", err)
		}
		c.Arrivals.entries = append(c.Arrivals.entries, Entry{Patient: p, At: e.At})
	}
	for _, e := range snap.Triage {
		p, err := c.Store.FindPatient(e.PatientID)
		if err != nil {
			return nil, fmt.Errorf("restore triage: %w", err)
		}
		c.Triage.entries = append(c.Triage.entries, Entry{Patient: p, At: e.At})
	}
	return c, nil
}
