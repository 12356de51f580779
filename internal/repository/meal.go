// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/oliverandrich/nutrilab/internal/models"
)

// CreateMeal adds a meal to a patient's plan.
func (r *Repository) CreateMeal(ctx context.Context, m *models.Meal) error {
	return r.db.GetContext(ctx, m,
		`INSERT INTO meals (patient_id, title, time_of_day, carbs, protein, fat)
		 VALUES (?, ?, ?, ?, ?, ?) RETURNING *`,
		m.PatientID, m.Title, m.TimeOfDay, m.Carbs, m.Protein, m.Fat)
}

// GetMeal retrieves a meal by ID.
func (r *Repository) GetMeal(ctx context.Context, id int64) (*models.Meal, error) {
	var m models.Meal
	if err := r.db.GetContext(ctx, &m, `SELECT * FROM meals WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &m, nil
}

// ListMeals returns a patient's meals ordered by time of day.
func (r *Repository) ListMeals(ctx context.Context, patientID int64) ([]models.Meal, error) {
	meals := []models.Meal{}
	err := r.db.SelectContext(ctx, &meals,
		`SELECT * FROM meals WHERE patient_id = ? ORDER BY time_of_day, id`, patientID)
	return meals, err
}

// CreateMealOption adds an option to a meal.
func (r *Repository) CreateMealOption(ctx context.Context, o *models.MealOption) error {
	return r.db.GetContext(ctx, o,
		`INSERT INTO meal_options (meal_id, image_key, description) VALUES (?, ?, ?) RETURNING *`,
		o.MealID, o.ImageKey, o.Description)
}

// ListMealOptionsForPatient returns the options of all meals of a patient.
func (r *Repository) ListMealOptionsForPatient(ctx context.Context, patientID int64) ([]models.MealOption, error) {
	options := []models.MealOption{}
	err := r.db.SelectContext(ctx, &options,
		`SELECT o.* FROM meal_options o
		 JOIN meals m ON m.id = o.meal_id
		 WHERE m.patient_id = ?
		 ORDER BY o.meal_id, o.id`, patientID)
	return options, err
}
