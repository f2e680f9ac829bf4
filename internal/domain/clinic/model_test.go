package clinic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringSet_OrderAndRepeats(t *testing.T) {
	s, err := NewStringSet("Penicillin", " Latex ", "Penicillin")
	require.NoError(t, err)
	assert.Equal(t, []string{"Penicillin", "Latex"}, s.Items())
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("Latex"))

	added, err := s.Add("Latex")
	require.NoError(t, err)
	assert.False(t, added)
}

func TestStringSet_RejectsBlank(t *testing.T) {
	_, err := NewStringSet("Penicillin", "  ")
	assert.ErrorIs(t, err, ErrValidation)

	var s StringSet
	_, err = s.Add("")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, s.Len())
}

func TestStringSet_ItemsIsACopy(t *testing.T) {
	s, _ := NewStringSet("a")
	items := s.Items()
	items[0] = "mutated"
	assert.Equal(t, []string{"a"}, s.Items())
}

func TestVitalSigns_Set(t *testing.T) {
	v := VitalSigns{}
	require.NoError(t, v.Set(" Pulse Rate ", " 80 bpm "))
	require.NoError(t, v.Set("Blood Pressure", "120/80 mmHg"))
	require.NoError(t, v.Set("Pulse Rate", "92 bpm"))

	assert.Equal(t, "92 bpm", v["Pulse Rate"])
	assert.Equal(t, []string{"Blood Pressure", "Pulse Rate"}, v.Names())

	assert.ErrorIs(t, v.Set("", "1"), ErrValidation)
	assert.ErrorIs(t, v.Set("Temp", " "), ErrValidation)
}

func TestPatientInput_Validate(t *testing.T) {
	tests := []struct {
		name string
		in   PatientInput
		ok   bool
	}{
		{"valid", PatientInput{ID: "P1", Name: "Ann"}, true},
		{"missing id", PatientInput{Name: "Ann"}, false},
		{"blank name", PatientInput{ID: "P1", Name: "  "}, false},
		{"negative age", PatientInput{ID: "P1", Name: "Ann", Age: -1}, false},
		{"negative risk", PatientInput{ID: "P1", Name: "Ann", RiskLevel: -2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrValidation)
			}
		})
	}
}

func TestNewPatient_DefaultsEmptyContainers(t *testing.T) {
	p, err := newPatient(PatientInput{ID: " P9 ", Name: "Zed"})
	require.NoError(t, err)

	assert.Equal(t, "P9", p.ID())
	assert.Zero(t, p.Allergies.Len())
	assert.Zero(t, p.PreviousSurgeries.Len())
	assert.NotNil(t, p.VitalSigns)
	assert.Empty(t, p.Prescriptions())
	assert.Nil(t, p.Height)
	assert.Nil(t, p.Weight)
}

func TestNewPatient_BlankOptionalBecomesNil(t *testing.T) {
	blank := "  "
	p, err := newPatient(PatientInput{ID: "P1", Name: "A", Height: &blank})
	require.NoError(t, err)
	assert.Nil(t, p.Height)
}

func TestNewPatient_RejectsBlankAllergy(t *testing.T) {
	_, err := newPatient(PatientInput{ID: "P1", Name: "A", Allergies: []string{"Dust", ""}})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNewPatient_RejectsCollidingVitalNames(t *testing.T) {
	_, err := newPatient(PatientInput{
		ID: "P1", Name: "A",
		VitalSigns: map[string]string{"Pulse": "80 bpm", " Pulse": "95 bpm"},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPatient_SetWeight(t *testing.T) {
	p, _ := newPatient(PatientInput{ID: "P1", Name: "A"})
	p.SetWeight("70 kg")
	require.NotNil(t, p.Weight)
	assert.Equal(t, "70 kg", *p.Weight)

	p.SetWeight("")
	assert.Nil(t, p.Weight)
}

func TestPatient_PrescriptionsIsACopy(t *testing.T) {
	p, _ := newPatient(PatientInput{ID: "P1", Name: "A"})
	p.AddPrescription(Prescription{Medication: "Aspirin"})
	got := p.Prescriptions()
	got[0].Medication = "changed"
	assert.Equal(t, "Aspirin", p.Prescriptions()[0].Medication)
}

func TestDoctorInput_Validate(t *testing.T) {
	assert.NoError(t, DoctorInput{ID: "D1", Name: "Dr. X"}.Validate())
	assert.ErrorIs(t, DoctorInput{Name: "Dr. X"}.Validate(), ErrValidation)
	assert.ErrorIs(t, DoctorInput{ID: "D1"}.Validate(), ErrValidation)
}

func TestReason(t *testing.T) {
	assert.Equal(t, "", Reason(nil))
	assert.Equal(t, "entity_not_found", Reason(ErrEntityNotFound))
	assert.Equal(t, "not_in_queue", Reason(ErrNotInQueue))
	assert.Equal(t, "invalid_selection", Reason(ErrInvalidSelection))
	assert.Equal(t, "duplicate_identifier", Reason(ErrDuplicateIdentifier))
	assert.Equal(t, "validation", Reason(ErrValidation))
	assert.Equal(t, "internal", Reason(assert.AnError))
}
