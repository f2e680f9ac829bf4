package clinic

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Mocks --

type mockSnapshotRepo struct {
	mu          sync.Mutex
	saved       []*Snapshot
	saveCtxErrs []error
	loadErr     error
	saveErr     error
}

func (m *mockSnapshotRepo) Load(_ context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if len(m.saved) == 0 {
		return nil, ErrNoSnapshot
	}
	return m.saved[len(m.saved)-1], nil
}

func (m *mockSnapshotRepo) Save(ctx context.Context, snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCtxErrs = append(m.saveCtxErrs, ctx.Err())
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, snap)
	return nil
}

type mockRecorder struct {
	registered int
	booked     int
	dispensed  map[string]int
	failures   map[string]int
	triage     int
	arrivals   int
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{dispensed: map[string]int{}, failures: map[string]int{}}
}

func (m *mockRecorder) PatientRegistered() { m.registered++ }
func (m *mockRecorder) AppointmentBooked() { m.booked++ }
func (m *mockRecorder) PrescriptionDispensed(med string) { m.dispensed[med]++ }
func (m *mockRecorder) OperationFailed(op, reason string) {
	m.failures[op+"/"+reason]++
}
func (m *mockRecorder) QueueSizes(triage, arrivals int) {
	m.triage, m.arrivals = triage, arrivals
}

func newTestService(opts ...Option) *Service {
	return NewService(NewDemo(), opts...)
}

// -- Tests --

func TestService_RegisterPatient(t *testing.T) {
	repo := &mockSnapshotRepo{}
	rec := newMockRecorder()
	svc := NewService(nil, WithRepository(repo), WithRecorder(rec))

	v, err := svc.RegisterPatient(context.Background(), PatientInput{
		ID: "P100", Name: "Lina", RiskLevel: 4, Allergies: []string{"Latex"},
	})
	require.NoError(t, err)
	assert.Equal(t, "P100", v.ID)
	assert.Equal(t, []string{"Latex"}, v.Allergies)

	assert.Equal(t, 1, rec.registered)
	assert.Equal(t, 1, rec.triage)
	assert.Equal(t, 1, rec.arrivals)
	require.Len(t, repo.saved, 1)
	assert.Len(t, repo.saved[0].Patients, 1)
}

func TestService_RegisterPatient_Duplicate(t *testing.T) {
	repo := &mockSnapshotRepo{}
	rec := newMockRecorder()
	svc := newTestService(WithRepository(repo), WithRecorder(rec))

	_, err := svc.RegisterPatient(context.Background(), PatientInput{ID: "P001", Name: "Again"})
	assert.ErrorIs(t, err, ErrDuplicateIdentifier)
	assert.Equal(t, 1, rec.failures["register_patient/duplicate_identifier"])
	assert.Empty(t, repo.saved, "rejected calls are not persisted")
}

func TestService_ListPatientsWindow(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	items, total, err := svc.ListPatients(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 2)
	assert.Equal(t, "P002", items[0].ID)

	items, _, _ = svc.ListPatients(ctx, 10, 5)
	assert.Empty(t, items)
}

func TestService_ScheduleAppointment(t *testing.T) {
	rec := newMockRecorder()
	svc := newTestService(WithRecorder(rec))
	ctx := context.Background()

	appt, err := svc.ScheduleAppointment(ctx, ScheduleRequest{PatientID: "P001", DoctorID: "D001", Date: DemoDate, SlotIndex: 2})
	require.NoError(t, err)
	assert.Equal(t, "02:00 PM", appt.Time)
	assert.Equal(t, 1, rec.booked)
	assert.Equal(t, 4, rec.triage)

	days, err := svc.DoctorSchedule(ctx, "D001")
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Len(t, days[0].Times, 3)

	_, err = svc.ScheduleAppointment(ctx, ScheduleRequest{PatientID: "P001", DoctorID: "D001", Date: DemoDate, SlotIndex: 9})
	assert.ErrorIs(t, err, ErrInvalidSelection)
	assert.Equal(t, 1, rec.failures["schedule_appointment/invalid_selection"])
}

func TestService_AddSlotAndAvailableSlots(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.AddSlot(ctx, "D002", "2024-04-02", "01:00 PM")
	require.NoError(t, err)

	slots, err := svc.AvailableSlots(ctx, "D002", "2024-04-02")
	require.NoError(t, err)
	assert.Equal(t, []SlotOption{{Time: "01:00 PM", Index: 1}}, slots)

	_, err = svc.AddSlot(ctx, "D404", "2024-04-02", "01:00 PM")
	assert.ErrorIs(t, err, ErrEntityNotFound)
	_, err = svc.AvailableSlots(ctx, "D404", DemoDate)
	assert.ErrorIs(t, err, ErrEntityNotFound)
}

func TestService_PaddedDateListsWhatBookingResolves(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	padded := " " + DemoDate + " "

	slots, err := svc.AvailableSlots(ctx, "D001", padded)
	require.NoError(t, err)
	require.Len(t, slots, 2)

	appt, err := svc.ScheduleAppointment(ctx, ScheduleRequest{PatientID: "P001", DoctorID: "D001", Date: padded, SlotIndex: 2})
	require.NoError(t, err)
	assert.Equal(t, slots[1].Time, appt.Time)

	_, err = svc.AddSlot(ctx, "D001", padded, " 05:00 PM ")
	require.NoError(t, err)
	slots, err = svc.AvailableSlots(ctx, "D001", DemoDate)
	require.NoError(t, err)
	assert.Len(t, slots, 4)
}

func TestService_RemoveFromQueue(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	queue, err := svc.RemoveFromQueue(ctx, "P001")
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, "P002", queue[0].PatientID)
	assert.Equal(t, 1, queue[0].Position)

	_, err = svc.RemoveFromQueue(ctx, "P001")
	assert.ErrorIs(t, err, ErrNotInQueue)

	arrivals, total := svc.Arrivals(ctx, 0, 0)
	assert.Equal(t, 3, total)
	assert.Equal(t, "P001", arrivals[0].PatientID)
}

func TestService_Dispense(t *testing.T) {
	rec := newMockRecorder()
	svc := newTestService(WithRecorder(rec))
	ctx := context.Background()

	rx, err := svc.Dispense(ctx, "P002", 3)
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol", rx.Medication)
	assert.Equal(t, 1, rec.dispensed["Paracetamol"])

	rx, err = svc.Dispense(ctx, "P002", 1)
	assert.ErrorIs(t, err, ErrNotInQueue)
	require.NotNil(t, rx)
	assert.Equal(t, "Aspirin", rx.Medication)
	assert.Equal(t, 1, rec.failures["dispense/not_in_queue"])

	_, err = svc.Dispense(ctx, "P002", 8)
	assert.ErrorIs(t, err, ErrInvalidSelection)

	v, _ := svc.GetPatient(ctx, "P002")
	assert.Len(t, v.Prescriptions, 2)
}

func TestService_SaveFailureDoesNotFailMutation(t *testing.T) {
	repo := &mockSnapshotRepo{saveErr: fmt.Errorf("connection refused")}
	svc := newTestService(WithRepository(repo))

	_, err := svc.RegisterDoctor(context.Background(), DoctorInput{ID: "D010", Name: "Dr. New"})
	require.NoError(t, err)

	_, err = svc.GetDoctor(context.Background(), "D010")
	assert.NoError(t, err)
}

func TestService_PersistsAfterCallerCancels(t *testing.T) {
	repo := &mockSnapshotRepo{}
	svc := NewService(New(), WithRepository(repo))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.RegisterPatient(ctx, PatientInput{ID: "P100", Name: "Lina"})
	require.NoError(t, err)

	require.Len(t, repo.saved, 1)
	assert.Equal(t, []error{nil}, repo.saveCtxErrs)
	require.Len(t, repo.saved[0].Patients, 1)
	assert.Equal(t, "P100", repo.saved[0].Patients[0].ID)
}

func TestService_Restore(t *testing.T) {
	ctx := context.Background()
	repo := &mockSnapshotRepo{}
	first := newTestService(WithRepository(repo))
	_, err := first.Dispense(ctx, "P001", 2)
	require.NoError(t, err)

	second := NewService(nil, WithRepository(repo))
	ok, err := second.Restore(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	v, err := second.GetPatient(ctx, "P001")
	require.NoError(t, err)
	require.Len(t, v.Prescriptions, 1)
	assert.Equal(t, "Ibuprofen", v.Prescriptions[0].Medication)
	assert.Len(t, second.CallingQueue(ctx), 2)
}

func TestService_Restore_Nothing(t *testing.T) {
	ok, err := NewService(nil).Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = NewService(nil, WithRepository(&mockSnapshotRepo{})).Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = NewService(nil, WithRepository(&mockSnapshotRepo{loadErr: assert.AnError})).Restore(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestService_Seed(t *testing.T) {
	repo := &mockSnapshotRepo{}
	svc := NewService(nil, WithRepository(repo))
	ctx := context.Background()

	require.NoError(t, svc.Seed(ctx))
	require.Len(t, repo.saved, 1)
	assert.Len(t, repo.saved[0].Doctors, 3)

	assert.ErrorIs(t, svc.Seed(ctx), ErrDuplicateIdentifier)
	_, total, _ := svc.ListPatients(ctx, 0, 0)
	assert.Equal(t, 3, total)
}

func TestService_Catalog(t *testing.T) {
	items := newTestService().Catalog()
	require.Len(t, items, 5)
	assert.Equal(t, "Aspirin", items[0].Medication)
}

func TestService_ConcurrentRegistration(t *testing.T) {
	svc := NewService(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			svc.RegisterPatient(ctx, PatientInput{ID: fmt.Sprintf("P%03d", i), Name: "N", RiskLevel: i % 4})
			svc.CallingQueue(ctx)
		}(i)
	}
	wg.Wait()

	assert.Len(t, svc.CallingQueue(ctx), 50)
	_, total := svc.Arrivals(ctx, 0, 0)
	assert.Equal(t, 50, total)
}
