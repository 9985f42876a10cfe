package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetScheduleConfig(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/configuracion-horarios/cancha/3", r.URL.Path)
		w.Write([]byte(`{"success":true,"configuracion":{
			"horaApertura":"08:00","horaCierre":"23:00",
			"duracionTurnoMinutos":90,"diasDisponibles":"1,3,5"}}`))
	}))
	defer server.Close()

	client := New(server.URL)

	config, err := client.GetScheduleConfig(context.Background(), "tok", 3)
	require.NoError(t, err)
	assert.Equal(t, "08:00", config.HoraApertura)
	assert.Equal(t, "23:00", config.HoraCierre)
	assert.Equal(t, 90, config.DuracionTurnoMinutos)
	assert.Equal(t, "1,3,5", config.DiasDisponibles)
}

func TestListAvailableSlots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/configuracion-horarios/horarios-disponibles/3", r.URL.Path)
		assert.Equal(t, "2026-09-01", r.URL.Query().Get("fecha"))
		w.Write([]byte(`{"success":true,"horarios":[
			{"horaInicio":"10:00","horaFin":"11:00"},
			{"horaInicio":"11:00","horaFin":"12:00"}]}`))
	}))
	defer server.Close()

	client := New(server.URL)

	slots, err := client.ListAvailableSlots(context.Background(), "tok", 3, "2026-09-01")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "10:00", slots[0].HoraInicio)
	assert.Equal(t, "12:00", slots[1].HoraFin)
}

func TestListAvailableSlotsNotSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"Cancha sin configuración"}`))
	}))
	defer server.Close()

	client := New(server.URL)

	_, err := client.ListAvailableSlots(context.Background(), "tok", 3, "2026-09-01")
	require.Error(t, err)
	assert.Equal(t, "Cancha sin configuración", Message(err, "fallback"))
}
