package clinic

import "time"

// PatientView is the displayable projection of a patient record.
type PatientView struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Age               int               `json:"age"`
	Gender            string            `json:"gender"`
	Address           string            `json:"address"`
	Phone             string            `json:"phone_number"`
	Email             string            `json:"email"`
	MedicalCondition  string            `json:"medical_condition"`
	RiskLevel         int               `json:"risk_level"`
	Height            *string           `json:"height,omitempty"`
	Weight            *string           `json:"weight,omitempty"`
	Allergies         []string          `json:"allergies"`
	PreviousSurgeries []string          `json:"previous_surgeries"`
	VitalSigns        map[string]string `json:"vital_signs"`
	Prescriptions     []Prescription    `json:"prescriptions"`
}

func (p *Patient) View() *PatientView {
	vitals := make(map[string]string, len(p.VitalSigns))
	for k, v := range p.VitalSigns {
		vitals[k] = v
	}
	return &PatientView{
		ID:                p.id,
		Name:              p.Name,
		Age:               p.Age,
		Gender:            p.Gender,
		Address:           p.Address,
		Phone:             p.Phone,
		Email:             p.Email,
		MedicalCondition:  p.MedicalCondition,
		RiskLevel:         p.RiskLevel,
		Height:            p.Height,
		Weight:            p.Weight,
		Allergies:         p.Allergies.Items(),
		PreviousSurgeries: p.PreviousSurgeries.Items(),
		VitalSigns:        vitals,
		Prescriptions:     p.Prescriptions(),
	}
}

// DoctorView is the displayable projection of a doctor and their schedule.
type DoctorView struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Specialization string        `json:"specialization"`
	Address        string        `json:"address"`
	Phone          string        `json:"phone_number"`
	Email          string        `json:"email"`
	Schedule       []DaySchedule `json:"schedule"`
}

func (d *Doctor) View() *DoctorView {
	return &DoctorView{
		ID:             d.id,
		Name:           d.Name,
		Specialization: d.Specialization,
		Address:        d.Address,
		Phone:          d.Phone,
		Email:          d.Email,
		Schedule:       d.Schedule.Days(),
	}
}

// EntryView is one line of the calling queue or the arrival ledger.
type EntryView struct {
	Position  int       `json:"position"`
	PatientID string    `json:"patient_id"`
	Name      string    `json:"name"`
	RiskLevel int       `json:"risk_level"`
	At        time.Time `json:"at"`
}

func entryViews(entries []Entry) []EntryView {
	out := make([]EntryView, len(entries))
	for i, e := range entries {
		out[i] = EntryView{
			Position:  i + 1,
			PatientID: e.Patient.id,
			Name:      e.Patient.Name,
			RiskLevel: e.Patient.RiskLevel,
			At:        e.At,
		}
	}
	return out
}
