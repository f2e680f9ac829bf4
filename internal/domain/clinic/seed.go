package clinic

import (
	"context"
	"fmt"
)

// DemoDate is the day every demo doctor has slots on.
const DemoDate = "2024-04-01"

func strPtr(s string) *string { return &s }

var demoPatients = []PatientInput{
	{
		ID: "P001", Name: "Abdualla Hassan", Age: 35, Gender: "Male",
		Address: "123 Main St", Phone: "555-123-4567", Email: "Abdualla@example.com",
		MedicalCondition: "Fever", RiskLevel: 3,
		Height: strPtr("180 cm"), Weight: strPtr("75 kg"),
		Allergies:         []string{"Penicillin"},
		PreviousSurgeries: []string{"Appendectomy"},
		VitalSigns:        map[string]string{"Body Temperature": "101°F"},
	},
	{
		ID: "P002", Name: "Nora Ahmaed", Age: 40, Gender: "Female",
		Address: "456 Oak St", Phone: "555-987-6543", Email: "Nora@example.com",
		MedicalCondition: "Diabetes", RiskLevel: 2,
		Height: strPtr("165 cm"), Weight: strPtr("90 kg"),
		Allergies:  []string{"Sulfa Drugs"},
		VitalSigns: map[string]string{"Blood Pressure": "120/80 mmHg"},
	},
	{
		ID: "P003", Name: "Maryam Saeed", Age: 25, Gender: "Female",
		Address: "789 Elm St", Phone: "555-555-5555", Email: "Maryam@example.com",
		MedicalCondition: "Broken Arm", RiskLevel: 1,
		Height: strPtr("170 cm"), Weight: strPtr("60 kg"),
		VitalSigns: map[string]string{"Pulse Rate": "80 bpm"},
	},
}

var demoDoctors = []struct {
	DoctorInput
	Times []string
}{
	{DoctorInput{ID: "D001", Name: "Dr. Smith", Specialization: "Cardiologist", Address: "100 Hospital Rd", Phone: "555-111-2222", Email: "smith@example.com"}, []string{"10:00 AM", "02:00 PM"}},
	{DoctorInput{ID: "D002", Name: "Dr. Johnson", Specialization: "Neurologist", Address: "200 Hospital Rd", Phone: "555-333-4444", Email: "johnson@example.com"}, []string{"09:00 AM", "11:00 AM"}},
	{DoctorInput{ID: "D003", Name: "Dr. Williams", Specialization: "Pediatrician", Address: "300 Hospital Rd", Phone: "555-555-6666", Email: "williams@example.com"}, []string{"11:00 AM", "03:00 PM"}},
}

// SeedDemo registers the demo patients P001-P003 and doctors D001-D003 with
// their slots on DemoDate. Registering the patients queues them as usual.
func SeedDemo(c *Clinic) error {
	for _, in := range demoPatients {
		if _, err := c.Store.AddPatient(in); err != nil {
			return fmt.Errorf("seed patient %s: %w", in.ID, err)
		}
	}
	for _, dd := range demoDoctors {
		d, err := c.Store.AddDoctor(dd.DoctorInput)
		if err != nil {
			return fmt.Errorf("seed doctor %s: %w", dd.ID, err)
		}
		for _, at := range dd.Times {
			if err := d.Schedule.AddSlot(DemoDate, at); err != nil {
				return fmt.Errorf("seed doctor %s: %w", dd.ID, err)
			}
		}
	}
	return nil
}

// NewDemo returns a clinic preloaded with the demo records.
func NewDemo() *Clinic {
	c := New()
	if err := SeedDemo(c); err != nil {
		panic(err)
	}
	return c
}

// Seed loads the demo records into the service's clinic and persists the
// result. It fails with ErrDuplicateIdentifier when any demo record exists.
func (s *Service) Seed(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, in := range demoPatients {
		if _, err := s.clinic.Store.FindPatient(in.ID); err == nil {
			return fmt.Errorf("seed: %w: patient %q", ErrDuplicateIdentifier, in.ID)
		}
	}
	for _, dd := range demoDoctors {
		if _, err := s.clinic.Store.FindDoctor(dd.ID); err == nil {
			return fmt.Errorf("seed: %w: doctor %q", ErrDuplicateIdentifier, dd.ID)
		}
	}
	if err := SeedDemo(s.clinic); err != nil {
		return err
	}
	s.logger.Info().Int("patients", len(demoPatients)).Int("doctors", len(demoDoctors)).Msg("demo data seeded")
	s.persist(ctx)
	return nil
}
