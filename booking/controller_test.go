package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cancha-bot/api"
	"cancha-bot/session"
	"cancha-bot/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebURL = "https://reservapp.test"

type fakeDrafts struct {
	mu     sync.Mutex
	drafts map[int64][]byte
}

func newFakeDrafts() *fakeDrafts {
	return &fakeDrafts{drafts: make(map[int64][]byte)}
}

func (f *fakeDrafts) SaveDraft(chatID int64, draft any) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.drafts[chatID] = data
	f.mu.Unlock()
	return nil
}

func (f *fakeDrafts) GetDraft(chatID int64) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.drafts[chatID], nil
}

func (f *fakeDrafts) DeleteDraft(chatID int64) error {
	f.mu.Lock()
	delete(f.drafts, chatID)
	f.mu.Unlock()
	return nil
}

func (f *fakeDrafts) has(chatID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.drafts[chatID] != nil
}

type fakeSessionStorage struct {
	mu       sync.Mutex
	sessions map[int64][]byte
}

func (f *fakeSessionStorage) SaveSession(chatID int64, data []byte) error {
	f.mu.Lock()
	f.sessions[chatID] = data
	f.mu.Unlock()
	return nil
}

func (f *fakeSessionStorage) GetSession(chatID int64) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[chatID], nil
}

func (f *fakeSessionStorage) DeleteSession(chatID int64) error {
	f.mu.Lock()
	delete(f.sessions, chatID)
	f.mu.Unlock()
	return nil
}

// counters let tests assert which failures never reach the backend
type counters struct {
	availability int32
	reservas     int32
}

// reservappHandler fakes the backend endpoints the booking flow touches
func reservappHandler(c *counters) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/configuracion-horarios/cancha/"):
			w.Write([]byte(`{"success":true,"configuracion":{
				"horaApertura":"09:00","horaCierre":"22:00",
				"duracionTurnoMinutos":60,"diasDisponibles":"1,2,3,4,5,6,7"}}`))

		case strings.HasPrefix(r.URL.Path, "/api/configuracion-horarios/horarios-disponibles/"):
			w.Write([]byte(`{"success":true,"horarios":[
				{"horaInicio":"19:00","horaFin":"20:00"},
				{"horaInicio":"20:00","horaFin":"21:00"}]}`))

		case r.URL.Path == "/api/reservas/disponibilidad":
			atomic.AddInt32(&c.availability, 1)
			w.Write([]byte(`{"disponible":true}`))

		case r.URL.Path == "/api/reservas" && r.Method == http.MethodPost:
			atomic.AddInt32(&c.reservas, 1)
			w.Write([]byte(`{"success":true,"reserva":{"id":42}}`))

		default:
			http.NotFound(w, r)
		}
	}
}

type env struct {
	ctrl     *Controller
	sessions *session.Store
	drafts   *fakeDrafts
	slots    chan Workflow
}

func newEnv(t *testing.T, handler http.Handler) *env {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	drafts := newFakeDrafts()
	sessions := session.New(&fakeSessionStorage{sessions: make(map[int64][]byte)})
	ctrl := New(api.New(server.URL), sessions, drafts, testWebURL)

	slots := make(chan Workflow, 8)
	ctrl.OnSlots = func(chatID int64, wf Workflow) {
		slots <- wf
	}
	return &env{ctrl: ctrl, sessions: sessions, drafts: drafts, slots: slots}
}

func (e *env) waitSlots(t *testing.T) Workflow {
	t.Helper()
	select {
	case wf := <-e.slots:
		return wf
	case <-time.After(2 * time.Second):
		t.Fatal("slot load never completed")
		return Workflow{}
	}
}

func (e *env) login(t *testing.T, chatID int64) {
	t.Helper()
	require.NoError(t, e.sessions.Save(chatID, "tok", types.Usuario{ID: 7, Nombre: "Ana"}))
}

var testCancha = types.Cancha{ID: 5, Nombre: "Cancha Norte", Deporte: "Fútbol", PrecioPorHora: 100}

func TestOpenFallsBackToDefaultConfig(t *testing.T) {
	e := newEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	wf := e.ctrl.Open(context.Background(), 1, testCancha)

	assert.Equal(t, types.DefaultScheduleConfig(), wf.Config)
	assert.Equal(t, StateIdle, wf.State)
	assert.Equal(t, testCancha.ID, wf.Draft.CanchaID)
}

func TestSetFechaLoadsSlots(t *testing.T) {
	e := newEnv(t, reservappHandler(&counters{}))
	e.ctrl.Open(context.Background(), 1, testCancha)

	wf, err := e.ctrl.SetFecha(1, "2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, StateSlotsLoading, wf.State)
	assert.True(t, wf.LoadingSlots)

	loaded := e.waitSlots(t)
	assert.Equal(t, StateSlotsReady, loaded.State)
	require.Len(t, loaded.Slots, 2)
	assert.Equal(t, "19:00", loaded.Slots[0].HoraInicio)
}

func TestSetFechaWithoutWorkflow(t *testing.T) {
	e := newEnv(t, reservappHandler(&counters{}))

	_, err := e.ctrl.SetFecha(1, "2026-09-01")
	assert.ErrorIs(t, err, ErrSinReserva)
}

func TestStaleSlotResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	c := &counters{}
	base := reservappHandler(c)
	e := newEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/configuracion-horarios/horarios-disponibles/") &&
			r.URL.Query().Get("fecha") == "2026-09-01" {
			// hold the first date's response until after the second resolves
			<-release
			w.Write([]byte(`{"success":true,"horarios":[{"horaInicio":"08:00","horaFin":"09:00"}]}`))
			return
		}
		base(w, r)
	}))

	e.ctrl.Open(context.Background(), 1, testCancha)
	_, err := e.ctrl.SetFecha(1, "2026-09-01")
	require.NoError(t, err)
	_, err = e.ctrl.SetFecha(1, "2026-09-02")
	require.NoError(t, err)

	loaded := e.waitSlots(t)
	assert.Equal(t, "2026-09-02", loaded.Draft.Fecha)
	require.Len(t, loaded.Slots, 2)
	close(release)

	// the superseded response must never surface
	select {
	case wf := <-e.slots:
		t.Fatalf("stale slot load applied for fecha %s", wf.Draft.Fecha)
	case <-time.After(200 * time.Millisecond):
	}

	snap, ok := e.ctrl.Snapshot(1)
	require.True(t, ok)
	assert.Len(t, snap.Slots, 2)
}

func TestVerifyFailsLocallyOnIncompleteDraft(t *testing.T) {
	c := &counters{}
	e := newEnv(t, reservappHandler(c))
	e.ctrl.Open(context.Background(), 1, testCancha)

	snap, err := e.ctrl.Verify(context.Background(), 1)
	assert.ErrorIs(t, err, ErrFaltanHorarios)
	assert.Equal(t, ErrFaltanHorarios.Error(), snap.ErrorMsg)
	assert.Equal(t, int32(0), atomic.LoadInt32(&c.availability),
		"local validation must not hit the backend")
}

func TestVerifyConfirmsAvailability(t *testing.T) {
	e := newEnv(t, reservappHandler(&counters{}))
	e.ctrl.Open(context.Background(), 1, testCancha)
	e.ctrl.SetFecha(1, "2026-09-01")
	e.waitSlots(t)
	_, err := e.ctrl.SetHoras(1, "19:00", "20:30")
	require.NoError(t, err)

	wf, err := e.ctrl.Verify(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, wf.State)
	require.NotNil(t, wf.Disponibilidad)
	assert.True(t, wf.Disponibilidad.Disponible)
}

func TestEditingTimesDiscardsAvailability(t *testing.T) {
	c := &counters{}
	e := newEnv(t, reservappHandler(c))
	e.login(t, 1)
	e.ctrl.Open(context.Background(), 1, testCancha)
	e.ctrl.SetFecha(1, "2026-09-01")
	e.waitSlots(t)
	e.ctrl.SetHoras(1, "19:00", "20:00")

	wf, err := e.ctrl.Verify(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, StateConfirmed, wf.State)

	// any change of the time range drops the confirmation
	wf, err = e.ctrl.SetHoras(1, "20:00", "21:00")
	require.NoError(t, err)
	assert.Nil(t, wf.Disponibilidad)
	assert.Equal(t, StateSlotsReady, wf.State)

	e.ctrl.SetContacto(1, "Juan", "555-1234")
	_, err = e.ctrl.Submit(context.Background(), 1)
	assert.ErrorIs(t, err, ErrSinVerificar)
	assert.Equal(t, int32(0), atomic.LoadInt32(&c.reservas),
		"stale confirmation must not reach the backend")
}

func TestContactoDoesNotDiscardAvailability(t *testing.T) {
	e := newEnv(t, reservappHandler(&counters{}))
	e.ctrl.Open(context.Background(), 1, testCancha)
	e.ctrl.SetFecha(1, "2026-09-01")
	e.waitSlots(t)
	e.ctrl.SetHoras(1, "19:00", "20:00")
	_, err := e.ctrl.Verify(context.Background(), 1)
	require.NoError(t, err)

	wf, err := e.ctrl.SetContacto(1, "Juan", "555-1234")
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, wf.State)
	assert.NotNil(t, wf.Disponibilidad)
}

func TestSubmitRequiresSession(t *testing.T) {
	c := &counters{}
	e := newEnv(t, reservappHandler(c))
	e.ctrl.Open(context.Background(), 1, testCancha)
	e.ctrl.SetFecha(1, "2026-09-01")
	e.waitSlots(t)
	e.ctrl.SetHoras(1, "19:00", "20:00")
	e.ctrl.SetContacto(1, "Juan", "555-1234")
	_, err := e.ctrl.Verify(context.Background(), 1)
	require.NoError(t, err)

	_, err = e.ctrl.Submit(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Equal(t, int32(0), atomic.LoadInt32(&c.reservas))
}

func TestSubmitRequiresContacto(t *testing.T) {
	c := &counters{}
	e := newEnv(t, reservappHandler(c))
	e.login(t, 1)
	e.ctrl.Open(context.Background(), 1, testCancha)
	e.ctrl.SetFecha(1, "2026-09-01")
	e.waitSlots(t)
	e.ctrl.SetHoras(1, "19:00", "20:00")
	_, err := e.ctrl.Verify(context.Background(), 1)
	require.NoError(t, err)

	_, err = e.ctrl.Submit(context.Background(), 1)
	assert.ErrorIs(t, err, ErrCamposIncompletos)
	assert.Equal(t, int32(0), atomic.LoadInt32(&c.reservas))
}

func TestFullBookingFlow(t *testing.T) {
	c := &counters{}
	e := newEnv(t, reservappHandler(c))
	e.login(t, 1)

	e.ctrl.Open(context.Background(), 1, testCancha)
	_, err := e.ctrl.SetFecha(1, "2026-09-01")
	require.NoError(t, err)
	e.waitSlots(t)

	wf, err := e.ctrl.SelectSlot(1, 0)
	require.NoError(t, err)
	assert.Equal(t, "19:00", wf.Draft.HoraInicio)
	assert.Equal(t, "20:00", wf.Draft.HoraFin)
	assert.InDelta(t, 100.0, wf.Total(), 0.001)

	_, err = e.ctrl.SetContacto(1, "Juan Pérez", "555-1234")
	require.NoError(t, err)

	wf, err = e.ctrl.Verify(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, StateConfirmed, wf.State)

	pagoURL, err := e.ctrl.Submit(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, testWebURL+"/pagar/42", pagoURL)

	// the workflow and its draft are gone once the reservation exists
	_, ok := e.ctrl.Snapshot(1)
	assert.False(t, ok)
	assert.False(t, e.drafts.has(1))
}

func TestVerifyTransportFailureKeepsDraft(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	base := reservappHandler(&counters{})
	e := newEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/reservas/disponibilidad" && fail.Load() {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		base(w, r)
	}))

	e.ctrl.Open(context.Background(), 1, testCancha)
	e.ctrl.SetFecha(1, "2026-09-01")
	e.waitSlots(t)
	e.ctrl.SetHoras(1, "19:00", "20:00")

	wf, err := e.ctrl.Verify(context.Background(), 1)
	require.NoError(t, err, "a failed check is UI state, not a returned error")
	assert.Equal(t, StateFailed, wf.State)
	assert.Equal(t, "Error al verificar disponibilidad", wf.ErrorMsg)
	assert.Nil(t, wf.Disponibilidad)
	assert.Equal(t, "19:00", wf.Draft.HoraInicio, "the draft survives for retry")

	fail.Store(false)
	wf, err = e.ctrl.Verify(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, wf.State)
	assert.Empty(t, wf.ErrorMsg)
}

func TestSubmitBackendRejection(t *testing.T) {
	base := reservappHandler(&counters{})
	e := newEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/reservas" && r.Method == http.MethodPost {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"message":"Ya existe una reserva en ese horario"}`))
			return
		}
		base(w, r)
	}))
	e.login(t, 1)

	e.ctrl.Open(context.Background(), 1, testCancha)
	e.ctrl.SetFecha(1, "2026-09-01")
	e.waitSlots(t)
	e.ctrl.SetHoras(1, "19:00", "20:00")
	e.ctrl.SetContacto(1, "Juan", "555-1234")
	_, err := e.ctrl.Verify(context.Background(), 1)
	require.NoError(t, err)

	_, err = e.ctrl.Submit(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, "Ya existe una reserva en ese horario", err.Error())

	snap, ok := e.ctrl.Snapshot(1)
	require.True(t, ok, "a failed submission keeps the workflow for retry")
	assert.Equal(t, StateFailed, snap.State)
	assert.Equal(t, "Ya existe una reserva en ese horario", snap.ErrorMsg)
}

func TestSubmitAuthErrorLogsOut(t *testing.T) {
	base := reservappHandler(&counters{})
	e := newEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/reservas" && r.Method == http.MethodPost {
			http.Error(w, `{"message":"Token inválido"}`, http.StatusUnauthorized)
			return
		}
		base(w, r)
	}))
	e.login(t, 1)

	e.ctrl.Open(context.Background(), 1, testCancha)
	e.ctrl.SetFecha(1, "2026-09-01")
	e.waitSlots(t)
	e.ctrl.SetHoras(1, "19:00", "20:00")
	e.ctrl.SetContacto(1, "Juan", "555-1234")
	_, err := e.ctrl.Verify(context.Background(), 1)
	require.NoError(t, err)

	_, err = e.ctrl.Submit(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Equal(t, "", e.sessions.Token(1), "a rejected token ends the session")
}

func TestDraftSurvivesRestart(t *testing.T) {
	e := newEnv(t, reservappHandler(&counters{}))
	e.ctrl.Open(context.Background(), 1, testCancha)
	e.ctrl.SetFecha(1, "2026-09-01")
	e.waitSlots(t)
	e.ctrl.SetHoras(1, "19:00", "20:00")
	e.ctrl.SetContacto(1, "Juan", "555-1234")
	_, err := e.ctrl.Verify(context.Background(), 1)
	require.NoError(t, err)

	// a second controller over the same storage stands in for a restart
	reborn := New(e.ctrl.api, e.sessions, e.drafts, testWebURL)
	snap, ok := reborn.Snapshot(1)
	require.True(t, ok)
	assert.Equal(t, "2026-09-01", snap.Draft.Fecha)
	assert.Equal(t, "Juan", snap.Draft.NombreJugador)
	assert.Nil(t, snap.Disponibilidad, "availability is transient and never restored")
}

func TestClose(t *testing.T) {
	e := newEnv(t, reservappHandler(&counters{}))
	e.ctrl.Open(context.Background(), 1, testCancha)
	e.ctrl.SetFecha(1, "2026-09-01")
	e.waitSlots(t)

	e.ctrl.Close(1)

	_, ok := e.ctrl.Snapshot(1)
	assert.False(t, ok)
	assert.False(t, e.drafts.has(1))
}

func TestAvailableDatesRespectsOperatingDays(t *testing.T) {
	config := types.ScheduleConfig{
		HoraApertura: "09:00", HoraCierre: "22:00",
		DuracionTurnoMinutos: 60, DiasDisponibles: "1,2,3,4,5",
	}
	// a Monday morning, well before closing
	lunes := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)

	dates := availableDates(config, lunes, 7)

	assert.Len(t, dates, 5, "a weekday-only cancha has 5 bookable days per week")
	assert.Equal(t, "2026-09-07", dates[0])
	for _, fecha := range dates {
		day, err := time.Parse("2006-01-02", fecha)
		require.NoError(t, err)
		assert.NotEqual(t, time.Saturday, day.Weekday())
		assert.NotEqual(t, time.Sunday, day.Weekday())
	}
}

func TestAvailableDatesSkipsTodayAfterClosing(t *testing.T) {
	config := types.ScheduleConfig{
		HoraApertura: "09:00", HoraCierre: "22:00",
		DuracionTurnoMinutos: 60, DiasDisponibles: "1,2,3,4,5,6,7",
	}
	nocturno := time.Date(2026, 9, 7, 22, 30, 0, 0, time.UTC)

	dates := availableDates(config, nocturno, 3)

	require.Len(t, dates, 2, "today is gone once the cancha closed")
	assert.Equal(t, "2026-09-08", dates[0])

	// before closing, today still leads the list
	dates = availableDates(config, nocturno.Add(-4*time.Hour), 3)
	require.Len(t, dates, 3)
	assert.Equal(t, "2026-09-07", dates[0])
}
