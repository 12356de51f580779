// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/nutrilab/internal/handlers"
	"codeberg.org/oliverandrich/nutrilab/internal/storage"
)

func setupRoutes(e *echo.Echo, d *deps) {
	h := handlers.New()
	ah := handlers.NewAuth(d.auth, d.activation, d.sessions)
	ch := handlers.NewClinic(d.clinic, d.sessions)

	// Uploaded images of the local backend
	if local, ok := d.store.(*storage.LocalStore); ok {
		e.Static(d.cfg.Media.URL, local.Dir())
	}

	e.GET("/health", h.Health)
	e.GET("/", h.Home)

	// Auth routes - public, form posts rate limited
	limit := authRateLimiter(&d.cfg.RateLimit)
	a := e.Group("/auth")
	a.GET("/cadastro", ah.RegisterPage)
	a.POST("/cadastro", ah.Register, limit)
	a.GET("/logar", ah.LoginPage)
	a.POST("/logar", ah.Login, limit)
	a.GET("/sair", ah.Logout)
	a.GET("/ativar_conta/:token", ah.Activate)

	// Protected routes - require authentication
	protected := requireAuth(d.sessions)
	e.GET("/pacientes", ch.Patients, protected)
	e.POST("/pacientes", ch.CreatePatient, protected)
	e.GET("/dados_paciente", ch.MeasurementPatients, protected)
	e.GET("/dados_paciente/:id", ch.Measurements, protected)
	e.POST("/dados_paciente/:id", ch.AddMeasurement, protected)
	e.GET("/grafico_peso/:id", ch.WeightChart, protected)
	e.GET("/plano_alimentar", ch.MealPlanPatients, protected)
	e.GET("/plano_alimentar/:id", ch.MealPlan, protected)
	e.POST("/refeicao/:id", ch.AddMeal, protected)
	e.POST("/opcao/:id", ch.AddMealOption, protected)
}
