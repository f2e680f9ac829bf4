package clinic

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients", h.ListPatients)
	api.POST("/patients", h.CreatePatient)
	api.GET("/patients/:id", h.GetPatient)
	api.PATCH("/patients/:id", h.UpdatePatient)
	api.POST("/patients/:id/prescriptions", h.Dispense)

	api.GET("/doctors", h.ListDoctors)
	api.POST("/doctors", h.CreateDoctor)
	api.GET("/doctors/:id", h.GetDoctor)
	api.GET("/doctors/:id/schedule", h.GetSchedule)
	api.GET("/doctors/:id/slots", h.ListSlots)
	api.POST("/doctors/:id/slots", h.AddSlot)

	api.POST("/appointments", h.CreateAppointment)

	api.GET("/triage", h.ListTriage)
	api.DELETE("/triage/:patient_id", h.RemoveFromTriage)
	api.GET("/arrivals", h.ListArrivals)

	api.GET("/medications", h.ListMedications)
}

// httpError maps a clinic error onto its HTTP status.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrEntityNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidSelection), errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotInQueue), errors.Is(err, ErrDuplicateIdentifier):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// bind decodes the request body. HTTP errors raised while reading it, such
// as an oversized body, keep their status.
func bind(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// -- Patient Handlers --

func (h *Handler) CreatePatient(c echo.Context) error {
	var in PatientInput
	if err := bind(c, &in); err != nil {
		return err
	}
	p, err := h.svc.RegisterPatient(c.Request().Context(), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	p, err := h.svc.GetPatient(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPatients(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset).WithLinks(c.Request().URL.Path))
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	var req UpdatePatientRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := h.svc.UpdatePatient(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

// DispenseRequest selects a medication from the catalog by its menu number.
type DispenseRequest struct {
	Selection int `json:"selection"`
}

type dispenseResponse struct {
	PatientID    string       `json:"patient_id"`
	Prescription Prescription `json:"prescription"`
	Warning      string       `json:"warning,omitempty"`
}

func (h *Handler) Dispense(c echo.Context) error {
	var req DispenseRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	id := c.Param("id")
	rx, err := h.svc.Dispense(c.Request().Context(), id, req.Selection)
	if err != nil && !errors.Is(err, ErrNotInQueue) {
		return httpError(err)
	}
	resp := dispenseResponse{PatientID: id, Prescription: *rx}
	if err != nil {
		// the prescription is recorded even though there was no queue entry
		resp.Warning = err.Error()
		return c.JSON(http.StatusOK, resp)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *Handler) ListMedications(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Catalog())
}

// -- Doctor Handlers --

func (h *Handler) CreateDoctor(c echo.Context) error {
	var in DoctorInput
	if err := bind(c, &in); err != nil {
		return err
	}
	d, err := h.svc.RegisterDoctor(c.Request().Context(), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) GetDoctor(c echo.Context) error {
	d, err := h.svc.GetDoctor(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDoctors(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset).WithLinks(c.Request().URL.Path))
}

func (h *Handler) GetSchedule(c echo.Context) error {
	days, err := h.svc.DoctorSchedule(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, days)
}

// SlotRequest records a time on a doctor's schedule.
type SlotRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

func (h *Handler) AddSlot(c echo.Context) error {
	var req SlotRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	days, err := h.svc.AddSlot(c.Request().Context(), c.Param("id"), req.Date, req.Time)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, days)
}

func (h *Handler) ListSlots(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date is required")
	}
	slots, err := h.svc.AvailableSlots(c.Request().Context(), c.Param("id"), date)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, DaySchedule{Date: date, Times: slots})
}

// -- Appointment Handlers --

func (h *Handler) CreateAppointment(c echo.Context) error {
	var req ScheduleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	appt, err := h.svc.ScheduleAppointment(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, appt)
}

// -- Queue Handlers --

func (h *Handler) ListTriage(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.CallingQueue(c.Request().Context()))
}

func (h *Handler) RemoveFromTriage(c echo.Context) error {
	queue, err := h.svc.RemoveFromQueue(c.Request().Context(), c.Param("patient_id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, queue)
}

func (h *Handler) ListArrivals(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total := h.svc.Arrivals(c.Request().Context(), pg.Limit, pg.Offset)
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset).WithLinks(c.Request().URL.Path))
}
