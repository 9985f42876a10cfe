package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"cancha-bot/api"
	"cancha-bot/session"
	"cancha-bot/types"
)

// State of the booking workflow for one chat
type State string

const (
	StateIdle         State = "idle"
	StateSlotsLoading State = "slots_loading"
	StateSlotsReady   State = "slots_ready"
	StateChecking     State = "availability_checking"
	StateConfirmed    State = "availability_confirmed"
	StateRejected     State = "availability_rejected"
	StateSubmitting   State = "submitting"
	StateSubmitted    State = "submitted"
	StateFailed       State = "failed"
)

// Validation failures carry the exact message shown to the user
var (
	ErrSinReserva        = errors.New("No hay una reserva en curso. Usá /canchas para empezar")
	ErrNoSession         = errors.New("Debés iniciar sesión para reservar")
	ErrFaltanHorarios    = errors.New("Por favor completa fecha, hora de inicio y hora de fin")
	ErrSinVerificar      = errors.New("Por favor verifica la disponibilidad primero")
	ErrCamposIncompletos = errors.New("Por favor completa todos los campos")
	ErrHorarioInvalido   = errors.New("Horario inválido")
)

// DraftStore interface para evitar dependencia directa del paquete storage
type DraftStore interface {
	SaveDraft(chatID int64, draft any) error
	GetDraft(chatID int64) ([]byte, error)
	DeleteDraft(chatID int64) error
}

// Workflow is the observable state of one booking modal session
type Workflow struct {
	Cancha types.Cancha         `json:"cancha"`
	Config types.ScheduleConfig `json:"config"`
	Draft  types.BookingDraft   `json:"draft"`

	Slots []types.TimeSlot `json:"slots"`
	State State            `json:"state"`

	// Disponibilidad is only valid for the Verified* parameters below;
	// any edit of fecha/horaInicio/horaFin discards it.
	Disponibilidad *types.AvailabilityResult `json:"disponibilidad,omitempty"`
	VerifiedFecha  string                    `json:"-"`
	VerifiedInicio string                    `json:"-"`
	VerifiedFin    string                    `json:"-"`

	// per-operation in-flight flags for the UI
	LoadingSlots bool `json:"-"`
	Verifying    bool `json:"-"`
	Submitting   bool `json:"-"`

	// most recent error message; starting a new operation clears it
	ErrorMsg string `json:"-"`
}

// Total is the display price; the backend computes the real one
func (w Workflow) Total() float64 {
	return w.Draft.Total(w.Cancha.PrecioPorHora)
}

type workflowState struct {
	Workflow

	slotGen     uint64
	availGen    uint64
	cancelSlots context.CancelFunc
}

// Controller orchestrates the booking workflow: configuration loading, slot
// listing, slot selection, the pre-submit availability re-check and the
// reservation itself. One workflow per chat.
type Controller struct {
	api      *api.Client
	sessions *session.Store
	drafts   DraftStore
	webURL   string

	// OnSlots fires after an asynchronous slot load has been applied,
	// with a snapshot. Superseded responses never reach it.
	OnSlots func(chatID int64, wf Workflow)

	mu        sync.Mutex
	workflows map[int64]*workflowState
}

func New(client *api.Client, sessions *session.Store, drafts DraftStore, webURL string) *Controller {
	return &Controller{
		api:       client,
		sessions:  sessions,
		drafts:    drafts,
		webURL:    webURL,
		workflows: make(map[int64]*workflowState),
	}
}

// Open starts a booking session for a cancha. The schedule configuration is
// fetched once here; on any failure the fixed default is substituted so the
// flow stays usable without that metadata.
func (c *Controller) Open(ctx context.Context, chatID int64, cancha types.Cancha) Workflow {
	token := c.sessions.Token(chatID)
	config, err := c.api.GetScheduleConfig(ctx, token, cancha.ID)
	if err != nil {
		log.Printf("⚠️ Error cargando configuración de horarios de cancha %d: %v (usando valores por defecto)", cancha.ID, err)
		config = types.DefaultScheduleConfig()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.workflows[chatID]; ok && prev.cancelSlots != nil {
		prev.cancelSlots()
	}
	ws := &workflowState{
		Workflow: Workflow{
			Cancha: cancha,
			Config: config,
			Draft:  types.BookingDraft{CanchaID: cancha.ID},
			State:  StateIdle,
		},
	}
	c.workflows[chatID] = ws
	c.persist(chatID, ws)
	return ws.Workflow
}

// SetFecha stores the chosen date and triggers the dependent slot reload.
// The reload is asynchronous; a generation counter keyed to the parameters
// current at issue time makes sure only the latest response is applied.
func (c *Controller) SetFecha(chatID int64, fecha string) (Workflow, error) {
	c.mu.Lock()
	ws := c.lookup(chatID)
	if ws == nil {
		c.mu.Unlock()
		return Workflow{}, ErrSinReserva
	}

	ws.Draft.Fecha = fecha
	c.clearAvailability(ws)
	ws.ErrorMsg = ""

	// slot listing needs both a configuration and a date
	if fecha == "" || ws.Config.DuracionTurnoMinutos <= 0 {
		ws.Slots = nil
		ws.State = StateIdle
		snap := ws.Workflow
		c.persist(chatID, ws)
		c.mu.Unlock()
		return snap, nil
	}

	ws.slotGen++
	gen := ws.slotGen
	if ws.cancelSlots != nil {
		ws.cancelSlots()
	}
	loadCtx, cancel := context.WithCancel(context.Background())
	ws.cancelSlots = cancel
	ws.LoadingSlots = true
	ws.State = StateSlotsLoading

	canchaID := ws.Draft.CanchaID
	snap := ws.Workflow
	c.persist(chatID, ws)
	c.mu.Unlock()

	go c.loadSlots(loadCtx, chatID, canchaID, fecha, gen)
	return snap, nil
}

func (c *Controller) loadSlots(ctx context.Context, chatID, canchaID int64, fecha string, gen uint64) {
	token := c.sessions.Token(chatID)
	slots, err := c.api.ListAvailableSlots(ctx, token, canchaID, fecha)
	if err != nil {
		if ctx.Err() != nil {
			return // superseded by a newer date selection
		}
		log.Printf("⚠️ Error cargando horarios disponibles: %v", err)
		slots = nil // fail-open: nothing available, never crash the flow
	}

	c.mu.Lock()
	ws := c.workflows[chatID]
	if ws == nil || ws.slotGen != gen || ws.Draft.Fecha != fecha || ws.Draft.CanchaID != canchaID {
		c.mu.Unlock()
		return // a newer request owns the slot list
	}
	if slots == nil {
		slots = []types.TimeSlot{}
	}
	ws.Slots = slots
	ws.LoadingSlots = false
	ws.State = StateSlotsReady
	snap := ws.Workflow
	c.persist(chatID, ws)
	c.mu.Unlock()

	if c.OnSlots != nil {
		c.OnSlots(chatID, snap)
	}
}

// SelectSlot adopts the start/end times of a rendered slot
func (c *Controller) SelectSlot(chatID int64, idx int) (Workflow, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ws := c.lookup(chatID)
	if ws == nil {
		return Workflow{}, ErrSinReserva
	}
	if idx < 0 || idx >= len(ws.Slots) {
		return ws.Workflow, ErrHorarioInvalido
	}
	ws.Draft.HoraInicio = ws.Slots[idx].HoraInicio
	ws.Draft.HoraFin = ws.Slots[idx].HoraFin
	c.clearAvailability(ws)
	c.persist(chatID, ws)
	return ws.Workflow, nil
}

// SetHoras sets manually entered start/end times
func (c *Controller) SetHoras(chatID int64, horaInicio, horaFin string) (Workflow, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ws := c.lookup(chatID)
	if ws == nil {
		return Workflow{}, ErrSinReserva
	}
	ws.Draft.HoraInicio = horaInicio
	ws.Draft.HoraFin = horaFin
	c.clearAvailability(ws)
	c.persist(chatID, ws)
	return ws.Workflow, nil
}

// SetContacto fills the player name and phone; neither invalidates a
// previously confirmed availability.
func (c *Controller) SetContacto(chatID int64, nombre, telefono string) (Workflow, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ws := c.lookup(chatID)
	if ws == nil {
		return Workflow{}, ErrSinReserva
	}
	if nombre != "" {
		ws.Draft.NombreJugador = nombre
	}
	if telefono != "" {
		ws.Draft.Telefono = telefono
	}
	c.persist(chatID, ws)
	return ws.Workflow, nil
}

// Verify is the explicit pre-submit availability re-check. Missing fields
// fail locally without any network call; a transport failure moves the
// workflow to Failed but leaves the draft intact for retry.
func (c *Controller) Verify(ctx context.Context, chatID int64) (Workflow, error) {
	c.mu.Lock()
	ws := c.lookup(chatID)
	if ws == nil {
		c.mu.Unlock()
		return Workflow{}, ErrSinReserva
	}

	d := ws.Draft
	if d.Fecha == "" || d.HoraInicio == "" || d.HoraFin == "" {
		ws.ErrorMsg = ErrFaltanHorarios.Error()
		snap := ws.Workflow
		c.mu.Unlock()
		return snap, ErrFaltanHorarios
	}

	ws.availGen++
	gen := ws.availGen
	ws.Verifying = true
	ws.State = StateChecking
	ws.ErrorMsg = ""
	token := c.sessions.Token(chatID)
	c.mu.Unlock()

	result, err := c.api.CheckAvailability(ctx, token, d.CanchaID, d.FechaInicio(), d.FechaFin())

	c.mu.Lock()
	ws = c.workflows[chatID]
	if ws == nil {
		c.mu.Unlock()
		return Workflow{}, ErrSinReserva
	}
	ws.Verifying = false
	if ws.availGen != gen || ws.Draft.Fecha != d.Fecha ||
		ws.Draft.HoraInicio != d.HoraInicio || ws.Draft.HoraFin != d.HoraFin {
		// the draft moved while the check was in flight, result no longer applies
		snap := ws.Workflow
		c.mu.Unlock()
		return snap, nil
	}

	if err != nil {
		log.Printf("⚠️ Error verificando disponibilidad: %v", err)
		ws.Disponibilidad = nil
		ws.State = StateFailed
		ws.ErrorMsg = "Error al verificar disponibilidad"
		snap := ws.Workflow
		c.persist(chatID, ws)
		c.mu.Unlock()
		return snap, nil
	}

	res := result
	ws.Disponibilidad = &res
	ws.VerifiedFecha = d.Fecha
	ws.VerifiedInicio = d.HoraInicio
	ws.VerifiedFin = d.HoraFin
	if res.Disponible {
		ws.State = StateConfirmed
	} else {
		ws.State = StateRejected
	}
	snap := ws.Workflow
	c.persist(chatID, ws)
	c.mu.Unlock()
	return snap, nil
}

// Submit creates the reservation ("reservar y pagar"). Preconditions are
// re-checked here independent of any UI disablement: an authenticated
// session, availability confirmed for the current parameters, and non-empty
// contact fields. Any violation fails locally with zero backend calls.
// On success it returns the payment URL for the new reservation.
func (c *Controller) Submit(ctx context.Context, chatID int64) (string, error) {
	c.mu.Lock()
	ws := c.lookup(chatID)
	if ws == nil {
		c.mu.Unlock()
		return "", ErrSinReserva
	}

	sess, err := c.sessions.Get(chatID)
	if err != nil || sess == nil {
		c.mu.Unlock()
		return "", ErrNoSession
	}

	d := ws.Draft
	if ws.Disponibilidad == nil || !ws.Disponibilidad.Disponible ||
		ws.VerifiedFecha != d.Fecha || ws.VerifiedInicio != d.HoraInicio || ws.VerifiedFin != d.HoraFin {
		ws.ErrorMsg = ErrSinVerificar.Error()
		c.mu.Unlock()
		return "", ErrSinVerificar
	}
	if d.NombreJugador == "" || d.Telefono == "" {
		ws.ErrorMsg = ErrCamposIncompletos.Error()
		c.mu.Unlock()
		return "", ErrCamposIncompletos
	}

	ws.Submitting = true
	ws.State = StateSubmitting
	ws.ErrorMsg = ""
	token := sess.Token
	c.mu.Unlock()

	reservaID, err := c.api.CreateReserva(ctx, token, d.CanchaID, d.FechaInicio(), d.FechaFin())

	c.mu.Lock()
	ws = c.workflows[chatID]
	if ws == nil {
		c.mu.Unlock()
		return "", ErrSinReserva
	}
	ws.Submitting = false
	if err != nil {
		msg := api.Message(err, "Error al crear la reserva")
		ws.State = StateFailed
		ws.ErrorMsg = msg
		c.persist(chatID, ws)
		c.mu.Unlock()
		if c.sessions.Invalidate(chatID, err) {
			return "", ErrNoSession
		}
		return "", errors.New(msg)
	}

	ws.State = StateSubmitted
	delete(c.workflows, chatID)
	c.mu.Unlock()

	if delErr := c.drafts.DeleteDraft(chatID); delErr != nil {
		log.Printf("⚠️ No se pudo limpiar el borrador de chatID %d: %v", chatID, delErr)
	}
	log.Printf("✅ Reserva %d creada para chatID %d", reservaID, chatID)
	return fmt.Sprintf("%s/pagar/%d", c.webURL, reservaID), nil
}

// Snapshot returns a copy of the current workflow, if one is open
func (c *Controller) Snapshot(chatID int64) (Workflow, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ws := c.lookup(chatID)
	if ws == nil {
		return Workflow{}, false
	}
	return ws.Workflow, true
}

// Close abandons the booking session
func (c *Controller) Close(chatID int64) {
	c.mu.Lock()
	ws, ok := c.workflows[chatID]
	if ok {
		if ws.cancelSlots != nil {
			ws.cancelSlots()
		}
		delete(c.workflows, chatID)
	}
	c.mu.Unlock()
	if err := c.drafts.DeleteDraft(chatID); err != nil {
		log.Printf("⚠️ No se pudo limpiar el borrador de chatID %d: %v", chatID, err)
	}
}

// AvailableDates lists the next daysAhead dates on which the cancha
// operates, per its configuration
func (c *Controller) AvailableDates(chatID int64, daysAhead int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ws := c.lookup(chatID)
	if ws == nil {
		return nil
	}
	return availableDates(ws.Config, time.Now(), daysAhead)
}

func availableDates(config types.ScheduleConfig, now time.Time, daysAhead int) []string {
	dates := make([]string, 0, daysAhead)
	for i := 0; i < daysAhead; i++ {
		// today stops being offerable once the cancha has closed
		if i == 0 && pastClosing(now, config.HoraCierre) {
			continue
		}
		day := now.AddDate(0, 0, i)
		if config.DayAvailable(day.Weekday()) {
			dates = append(dates, day.Format("2006-01-02"))
		}
	}
	return dates
}

func pastClosing(now time.Time, horaCierre string) bool {
	cierre, err := time.Parse("15:04", horaCierre)
	if err != nil {
		return false
	}
	return now.Hour()*60+now.Minute() >= cierre.Hour()*60+cierre.Minute()
}

// clearAvailability enforces the invalidation rule: whenever fecha,
// horaInicio or horaFin changes, the previous availability result is gone.
// Caller holds the lock.
func (c *Controller) clearAvailability(ws *workflowState) {
	ws.Disponibilidad = nil
	ws.VerifiedFecha = ""
	ws.VerifiedInicio = ""
	ws.VerifiedFin = ""
	switch ws.State {
	case StateChecking, StateConfirmed, StateRejected, StateFailed:
		if len(ws.Slots) > 0 {
			ws.State = StateSlotsReady
		} else {
			ws.State = StateIdle
		}
	}
}

// lookup finds the in-memory workflow, falling back to the persisted draft
// (a bot restart should not lose a half-filled form). Caller holds the lock.
func (c *Controller) lookup(chatID int64) *workflowState {
	if ws, ok := c.workflows[chatID]; ok {
		return ws
	}

	data, err := c.drafts.GetDraft(chatID)
	if err != nil || data == nil {
		return nil
	}
	var wf Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil
	}
	// availability is transient and never restored
	wf.Disponibilidad = nil
	if len(wf.Slots) > 0 {
		wf.State = StateSlotsReady
	} else {
		wf.State = StateIdle
	}
	ws := &workflowState{Workflow: wf}
	c.workflows[chatID] = ws
	return ws
}

// persist mirrors the workflow to redis so the draft survives restarts.
// Caller holds the lock.
func (c *Controller) persist(chatID int64, ws *workflowState) {
	if err := c.drafts.SaveDraft(chatID, ws.Workflow); err != nil {
		log.Printf("⚠️ No se pudo guardar el borrador de chatID %d: %v", chatID, err)
	}
}
