// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package models holds the database row types.
package models

import "time"

// Patient is a person followed by one practitioner.
type Patient struct { //nolint:govet // fieldalignment: readability over optimization
	ID             int64     `db:"id" json:"id"`
	PractitionerID int64     `db:"practitioner_id" json:"-"`
	Name           string    `db:"name" json:"name"`
	Sex            string    `db:"sex" json:"sex"`
	Age            int       `db:"age" json:"age"`
	Email          string    `db:"email" json:"email"`
	Phone          string    `db:"phone" json:"phone"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// OwnedBy reports whether the patient belongs to the given practitioner.
func (p *Patient) OwnedBy(practitionerID int64) bool {
	return p.PractitionerID == practitionerID
}

// Measurement is one body-metric sample. Samples are never updated.
type Measurement struct { //nolint:govet // fieldalignment: readability over optimization
	ID               int64     `db:"id" json:"id"`
	PatientID        int64     `db:"patient_id" json:"-"`
	TakenAt          time.Time `db:"taken_at" json:"taken_at"`
	Weight           float64   `db:"weight" json:"weight"`
	Height           float64   `db:"height" json:"height"`
	BodyFat          float64   `db:"body_fat" json:"body_fat"`
	Muscle           float64   `db:"muscle" json:"muscle"`
	HDL              float64   `db:"hdl" json:"hdl"`
	LDL              float64   `db:"ldl" json:"ldl"`
	TotalCholesterol float64   `db:"total_cholesterol" json:"total_cholesterol"`
	Triglycerides    float64   `db:"triglycerides" json:"triglycerides"`
}

// Meal is an entry of a patient's meal plan.
type Meal struct { //nolint:govet // fieldalignment: readability over optimization
	ID        int64  `db:"id" json:"id"`
	PatientID int64  `db:"patient_id" json:"-"`
	Title     string `db:"title" json:"title"`
	TimeOfDay string `db:"time_of_day" json:"time_of_day"` // HH:MM
	Carbs     int    `db:"carbs" json:"carbs"`
	Protein   int    `db:"protein" json:"protein"`
	Fat       int    `db:"fat" json:"fat"`
}

// MealOption is an alternative dish for a meal, with a picture.
type MealOption struct { //nolint:govet // fieldalignment: readability over optimization
	ID          int64     `db:"id" json:"id"`
	MealID      int64     `db:"meal_id" json:"meal_id"`
	ImageKey    string    `db:"image_key" json:"-"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
