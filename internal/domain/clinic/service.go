package clinic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Recorder receives operational counters. The metrics package provides the
// Prometheus implementation.
type Recorder interface {
	PatientRegistered()
	AppointmentBooked()
	PrescriptionDispensed(medication string)
	OperationFailed(operation, reason string)
	QueueSizes(triage, arrivals int)
}

type nopRecorder struct{}

func (nopRecorder) PatientRegistered() {}
func (nopRecorder) AppointmentBooked() {}
func (nopRecorder) PrescriptionDispensed(string) {}
func (nopRecorder) OperationFailed(string, string) {}
func (nopRecorder) QueueSizes(int, int) {}

// Service is the concurrency-safe entry point to a clinic. Every call holds a
// single lock for its whole duration, so multi-step workflows (book then
// re-queue, dispense then dequeue) are never interleaved with other callers.
type Service struct {
	mu      sync.Mutex
	clinic  *Clinic
	repo    SnapshotRepository
	metrics Recorder
	logger  zerolog.Logger
}

type Option func(*Service)

// WithRepository persists a snapshot after every successful mutation.
func WithRepository(repo SnapshotRepository) Option {
	return func(s *Service) { s.repo = repo }
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.metrics = r
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(c *Clinic, opts ...Option) *Service {
	if c == nil {
		c = New()
	}
	s := &Service{clinic: c, metrics: nopRecorder{}, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics.QueueSizes(c.Triage.Len(), c.Arrivals.Len())
	return s
}

// Restore replaces the in-memory state with the repository's latest snapshot.
// It reports false when no repository is configured or nothing was stored.
func (s *Service) Restore(ctx context.Context) (bool, error) {
	if s.repo == nil {
		return false, nil
	}
	snap, err := s.repo.Load(ctx)
	if errors.Is(err, ErrNoSnapshot) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	c, err := Restore(snap)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clinic = c
	s.metrics.QueueSizes(c.Triage.Len(), c.Arrivals.Len())
	s.logger.Info().
		Str("revision", snap.Revision).
		Int("patients", len(snap.Patients)).
		Int("doctors", len(snap.Doctors)).
		Msg("clinic state restored")
	return true, nil
}

// -- Patients --

func (s *Service) RegisterPatient(ctx context.Context, in PatientInput) (*PatientView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.clinic.Store.AddPatient(in)
	if err != nil {
		return nil, s.fail("register_patient", err)
	}
	s.metrics.PatientRegistered()
	s.logger.Info().Str("patient_id", p.ID()).Int("risk_level", p.RiskLevel).Msg("patient registered")
	s.persist(ctx)
	return p.View(), nil
}

func (s *Service) GetPatient(_ context.Context, id string) (*PatientView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.clinic.Store.FindPatient(id)
	if err != nil {
		return nil, err
	}
	return p.View(), nil
}

func (s *Service) ListPatients(_ context.Context, limit, offset int) ([]*PatientView, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.clinic.Store.Patients()
	lo, hi := window(len(all), limit, offset)
	out := make([]*PatientView, 0, hi-lo)
	for _, p := range all[lo:hi] {
		out = append(out, p.View())
	}
	return out, len(all), nil
}

func (s *Service) UpdatePatient(ctx context.Context, id string, req UpdatePatientRequest) (*PatientView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.clinic.UpdatePatient(id, req)
	if err != nil {
		return nil, s.fail("update_patient", err)
	}
	s.logger.Info().Str("patient_id", p.ID()).Int("vital_signs", len(req.VitalSigns)).Msg("patient updated")
	s.persist(ctx)
	return p.View(), nil
}

// -- Doctors --

func (s *Service) RegisterDoctor(ctx context.Context, in DoctorInput) (*DoctorView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.clinic.Store.AddDoctor(in)
	if err != nil {
		return nil, s.fail("register_doctor", err)
	}
	s.logger.Info().Str("doctor_id", d.ID()).Msg("doctor registered")
	s.persist(ctx)
	return d.View(), nil
}

func (s *Service) GetDoctor(_ context.Context, id string) (*DoctorView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.clinic.Store.FindDoctor(id)
	if err != nil {
		return nil, err
	}
	return d.View(), nil
}

func (s *Service) ListDoctors(_ context.Context, limit, offset int) ([]*DoctorView, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.clinic.Store.Doctors()
	lo, hi := window(len(all), limit, offset)
	out := make([]*DoctorView, 0, hi-lo)
	for _, d := range all[lo:hi] {
		out = append(out, d.View())
	}
	return out, len(all), nil
}

// -- Schedules --

func (s *Service) AddSlot(ctx context.Context, doctorID, date, at string) ([]DaySchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.clinic.Store.FindDoctor(doctorID)
	if err != nil {
		return nil, s.fail("add_slot", err)
	}
	date, at = strings.TrimSpace(date), strings.TrimSpace(at)
	if err := d.Schedule.AddSlot(date, at); err != nil {
		return nil, s.fail("add_slot", err)
	}
	s.logger.Info().Str("doctor_id", d.ID()).Str("date", date).Str("time", at).Msg("slot added")
	s.persist(ctx)
	return d.Schedule.Days(), nil
}

func (s *Service) DoctorSchedule(_ context.Context, doctorID string) ([]DaySchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.clinic.Store.FindDoctor(doctorID)
	if err != nil {
		return nil, err
	}
	return d.Schedule.Days(), nil
}

func (s *Service) AvailableSlots(_ context.Context, doctorID, date string) ([]SlotOption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.clinic.Store.FindDoctor(doctorID)
	if err != nil {
		return nil, err
	}
	return d.Schedule.AvailableSlots(date), nil
}

func (s *Service) ScheduleAppointment(ctx context.Context, req ScheduleRequest) (*Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appt, err := s.clinic.Scheduler.Schedule(req)
	if err != nil {
		return nil, s.fail("schedule_appointment", err)
	}
	s.metrics.AppointmentBooked()
	s.logger.Info().
		Str("patient_id", appt.PatientID).
		Str("doctor_id", appt.DoctorID).
		Str("date", appt.Date).
		Str("time", appt.Time).
		Msg("appointment scheduled")
	s.persist(ctx)
	return appt, nil
}

// -- Triage --

// CallingQueue returns the triage queue in calling order.
func (s *Service) CallingQueue(_ context.Context) []EntryView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return entryViews(s.clinic.Triage.PriorityView())
}

// RemoveFromQueue drops the patient's first triage entry and returns the
// updated calling queue.
func (s *Service) RemoveFromQueue(ctx context.Context, patientID string) ([]EntryView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.clinic.RemoveFromTriage(patientID)
	if err != nil {
		return nil, s.fail("remove_from_queue", err)
	}
	s.logger.Info().Str("patient_id", p.ID()).Msg("patient removed from triage queue")
	s.persist(ctx)
	return entryViews(s.clinic.Triage.PriorityView()), nil
}

// Arrivals returns a window of the arrival ledger, oldest first.
func (s *Service) Arrivals(_ context.Context, limit, offset int) ([]EntryView, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := entryViews(s.clinic.Arrivals.AllInOrder())
	lo, hi := window(len(all), limit, offset)
	return all[lo:hi], len(all)
}

// -- Prescriptions --

func (s *Service) Catalog() []CatalogItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clinic.Dispenser.Catalog().Items()
}

// Dispense issues a catalog medication. On ErrNotInQueue the returned
// prescription is non-nil because it has already been recorded.
func (s *Service) Dispense(ctx context.Context, patientID string, selection int) (*Prescription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rx, err := s.clinic.Dispenser.Dispense(patientID, selection)
	if err != nil && !errors.Is(err, ErrNotInQueue) {
		return nil, s.fail("dispense", err)
	}
	s.metrics.PrescriptionDispensed(rx.Medication)
	s.logger.Info().
		Str("patient_id", patientID).
		Str("medication", rx.Medication).
		Str("dosage", rx.Dosage).
		Msg("prescription dispensed")
	s.persist(ctx)
	if err != nil {
		return &rx, s.fail("dispense", err)
	}
	return &rx, nil
}

// -- internals --

func (s *Service) fail(op string, err error) error {
	s.metrics.OperationFailed(op, Reason(err))
	s.logger.Warn().Err(err).Str("operation", op).Msg("operation rejected")
	return err
}

// snapshotSaveTimeout bounds a save that no longer follows the caller's deadline.
const snapshotSaveTimeout = 10 * time.Second

// persist saves the current state. The in-memory clinic stays authoritative:
// a failed save is logged and does not undo the mutation. The save outlives a
// cancelled caller, since the mutation it records has already happened.
func (s *Service) persist(ctx context.Context) {
	s.metrics.QueueSizes(s.clinic.Triage.Len(), s.clinic.Arrivals.Len())
	if s.repo == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), snapshotSaveTimeout)
	defer cancel()
	if err := s.repo.Save(saveCtx, s.clinic.Snapshot()); err != nil {
		s.logger.Error().Err(fmt.Errorf("persist snapshot: %w", err)).Msg("snapshot not saved")
	}
}

func window(total, limit, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return offset, end
}
