package types

import (
	"strconv"
	"strings"
	"time"
)

// Cancha represents a bookable facility from the reservapp backend
type Cancha struct {
	ID            int64   `json:"id"`
	Nombre        string  `json:"nombre"`
	Deporte       string  `json:"deporte"`
	Ubicacion     string  `json:"ubicacion"`
	PrecioPorHora float64 `json:"precioPorHora"`
}

// ScheduleConfig holds the per-cancha operating hours configuration
type ScheduleConfig struct {
	HoraApertura         string `json:"horaApertura"` // "09:00"
	HoraCierre           string `json:"horaCierre"`   // "22:00"
	DuracionTurnoMinutos int    `json:"duracionTurnoMinutos"`
	DiasDisponibles      string `json:"diasDisponibles"` // "1,2,3,4,5,6,7" (1=Monday)
}

// DefaultScheduleConfig is used whenever the configuration fetch fails:
// the booking flow has to stay usable without this metadata.
func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{
		HoraApertura:         "09:00",
		HoraCierre:           "22:00",
		DuracionTurnoMinutos: 60,
		DiasDisponibles:      "1,2,3,4,5,6,7",
	}
}

// DayAvailable reports whether the cancha operates on the given weekday.
// DiasDisponibles uses 1=Monday..7=Sunday.
func (c ScheduleConfig) DayAvailable(day time.Weekday) bool {
	iso := int(day)
	if iso == 0 {
		iso = 7 // Sunday
	}
	for _, part := range strings.Split(c.DiasDisponibles, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if n == iso {
			return true
		}
	}
	return false
}

// TimeSlot is a backend-computed bookable start/end pair for one date.
// The client never synthesizes slots, it only renders and selects them.
type TimeSlot struct {
	HoraInicio string `json:"horaInicio"` // "10:00"
	HoraFin    string `json:"horaFin"`    // "11:00"
}

// AvailabilityResult is the answer of an explicit availability re-check.
// It is only trusted for the exact draft parameters it was requested with.
type AvailabilityResult struct {
	Disponible bool `json:"disponible"`
}

// BookingDraft is the in-progress reservation form for one modal session
type BookingDraft struct {
	CanchaID      int64  `json:"canchaId"`
	Fecha         string `json:"fecha"` // "2024-06-01"
	HoraInicio    string `json:"horaInicio"`
	HoraFin       string `json:"horaFin"`
	NombreJugador string `json:"nombreJugador"`
	Telefono      string `json:"telefono"`
}

// FechaInicio combines the date with the start time into the local
// ISO timestamp the backend expects (no timezone suffix).
func (d BookingDraft) FechaInicio() string {
	return d.Fecha + "T" + d.HoraInicio + ":00"
}

func (d BookingDraft) FechaFin() string {
	return d.Fecha + "T" + d.HoraFin + ":00"
}

// DuracionMinutos returns the selected duration, or 0 when the times are
// missing, malformed or horaFin is not after horaInicio.
func (d BookingDraft) DuracionMinutos() int {
	inicio, err := time.Parse("15:04", d.HoraInicio)
	if err != nil {
		return 0
	}
	fin, err := time.Parse("15:04", d.HoraFin)
	if err != nil {
		return 0
	}
	minutos := int(fin.Sub(inicio).Minutes())
	if minutos <= 0 {
		return 0
	}
	return minutos
}

// Total computes the display price: (minutes/60) × hourly rate.
// The backend is the source of truth for the real price, this is never sent.
func (d BookingDraft) Total(precioPorHora float64) float64 {
	minutos := d.DuracionMinutos()
	if minutos <= 0 || precioPorHora <= 0 {
		return 0
	}
	return float64(minutos) / 60 * precioPorHora
}

// Reserva is server-owned; the client only reads what it renders
type Reserva struct {
	ID          int64   `json:"id"`
	CanchaID    int64   `json:"canchaId"`
	Cancha      Cancha  `json:"cancha"`
	FechaInicio string  `json:"fechaInicio"`
	FechaFin    string  `json:"fechaFin"`
	Estado      string  `json:"estado"`
	MontoTotal  float64 `json:"montoTotal"`
}

// Usuario is the authenticated identity returned by the auth endpoints
type Usuario struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
	Email  string `json:"email"`
	Tipo   string `json:"tipo"` // "jugador" or "admin"
}

// Favorito links a user to a cancha with optional notes
type Favorito struct {
	ID     int64  `json:"id"`
	Cancha Cancha `json:"cancha"`
	Notas  string `json:"notas"`
}

// DeporteJugador is one sport entry of a player profile
type DeporteJugador struct {
	Deporte         string  `json:"deporte"`
	Puntuacion      float64 `json:"puntuacion"`
	Posicion        string  `json:"posicion"`
	AnosExperiencia int     `json:"anosExperiencia"`
	Nivel           string  `json:"nivel"`
}

// PerfilJugador is the player profile resource
type PerfilJugador struct {
	ID        int64            `json:"id"`
	Nombre    string           `json:"nombre"`
	Bio       string           `json:"bio"`
	Deportes  []DeporteJugador `json:"deportes"`
	Adjetivos []string         `json:"adjetivos"`
}

// Producto is a catalog item managed by admins
type Producto struct {
	ID         int64   `json:"id"`
	Nombre     string  `json:"nombre"`
	Precio     float64 `json:"precio"`
	Disponible bool    `json:"disponible"`
}
