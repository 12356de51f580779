// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package clinic

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"codeberg.org/oliverandrich/nutrilab/internal/apperr"
	"codeberg.org/oliverandrich/nutrilab/internal/models"
	"codeberg.org/oliverandrich/nutrilab/internal/repository"
	"codeberg.org/oliverandrich/nutrilab/internal/validate"
)

// MealOptionPrefix is the storage key prefix of meal option images.
const MealOptionPrefix = "meal-options/"

// mealTimeLayout matches the datetime rule on MealInput.Time.
const mealTimeLayout = "15:04"

// MealInput is the meal form.
type MealInput struct {
	Title   string `form:"titulo" validate:"required,max=50"`
	Time    string `form:"horario" validate:"required,datetime=15:04"`
	Carbs   string `form:"carboidratos" validate:"required,number"`
	Protein string `form:"proteinas" validate:"required,number"`
	Fat     string `form:"gorduras" validate:"required,number"`
}

// MealOptionInput is the meal option form. Image is the uploaded picture.
type MealOptionInput struct {
	MealID      string `form:"refeicao" validate:"required,number"`
	Description string `form:"descricao" validate:"required"`
	Image       *Upload
}

// Upload is an uploaded file.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// MealPlan is a patient's plan, meals ordered by time of day.
type MealPlan struct {
	Patient *models.Patient
	Meals   []PlannedMeal
}

// PlannedMeal is a meal with its options.
type PlannedMeal struct {
	models.Meal
	Options []PlannedOption
}

// PlannedOption is a meal option with the URL of its image.
type PlannedOption struct {
	models.MealOption
	ImageURL string
}

// imageExtensions maps detected image types to file extensions.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// AddMeal adds a meal to the patient's plan.
func (s *Service) AddMeal(ctx context.Context, practitionerID, patientID int64, in MealInput) (*models.Meal, error) {
	patient, err := s.authorize(ctx, practitionerID, patientID)
	if err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Time = strings.TrimSpace(in.Time)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	// time_of_day sorts as text, so hours are stored zero-padded
	at, err := time.Parse(mealTimeLayout, in.Time)
	if err != nil {
		return nil, apperr.Validation("horario", "ValidationTime")
	}

	meal := &models.Meal{PatientID: patient.ID, Title: in.Title, TimeOfDay: at.Format(mealTimeLayout)}
	// number guarantees digits only; Atoi can only fail on overflow
	for _, f := range []struct {
		name  string
		value string
		dst   *int
	}{
		{"carboidratos", in.Carbs, &meal.Carbs},
		{"proteinas", in.Protein, &meal.Protein},
		{"gorduras", in.Fat, &meal.Fat},
	} {
		v, err := strconv.Atoi(f.value)
		if err != nil {
			return nil, apperr.Validation(f.name, "ValidationNumeric")
		}
		*f.dst = v
	}

	if err := s.repo.CreateMeal(ctx, meal); err != nil {
		return nil, internal("create meal", err)
	}

	slog.Info("meal_added", "practitioner_id", practitionerID, "patient_id", patient.ID, "meal_id", meal.ID)
	return meal, nil
}

// AddMealOption stores the uploaded image and adds an option to one of the
// patient's meals. Only image uploads are accepted; the type is sniffed
// from the content.
func (s *Service) AddMealOption(ctx context.Context, practitionerID, patientID int64, in MealOptionInput) (*models.MealOption, error) {
	patient, err := s.authorize(ctx, practitionerID, patientID)
	if err != nil {
		return nil, err
	}

	in.Description = strings.TrimSpace(in.Description)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if in.Image == nil || in.Image.Body == nil {
		return nil, apperr.Validation("imagem", "ValidationRequired")
	}

	mealID, err := strconv.ParseInt(in.MealID, 10, 64)
	if err != nil {
		return nil, apperr.Validation("refeicao", "ValidationNumeric")
	}
	meal, err := s.repo.GetMeal(ctx, mealID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("meal %d: %w", mealID, apperr.ErrNotFound)
		}
		return nil, internal("load meal", err)
	}
	if meal.PatientID != patient.ID {
		slog.Warn("access_denied", "practitioner_id", practitionerID, "patient_id", patient.ID, "meal_id", mealID)
		return nil, fmt.Errorf("meal %d: %w", mealID, apperr.ErrForbidden)
	}

	body, contentType, err := sniffImage(in.Image.Body)
	if err != nil {
		return nil, err
	}
	key := MealOptionPrefix + uuid.NewString() + imageExtension(in.Image.Filename, contentType)

	if err := s.store.Put(ctx, key, body, contentType); err != nil {
		return nil, internal("store meal option image", err)
	}

	option := &models.MealOption{MealID: meal.ID, ImageKey: key, Description: in.Description}
	if err := s.repo.CreateMealOption(ctx, option); err != nil {
		// Cleanup runs even when the request was cancelled.
		if derr := s.store.Delete(context.WithoutCancel(ctx), key); derr != nil {
			slog.Error("meal_option_orphaned_image", "key", key, "error", derr)
		}
		return nil, internal("create meal option", err)
	}

	slog.Info("meal_option_added", "practitioner_id", practitionerID, "meal_id", meal.ID, "option_id", option.ID)
	return option, nil
}

// sniffImage detects the content type from the first bytes and rejects
// anything that is not an image. The returned reader yields the full body.
func sniffImage(r io.Reader) (io.Reader, string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, "", internal("read upload", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", apperr.Validation("imagem", "ValidationImage")
	}
	return io.MultiReader(bytes.NewReader(head), r), contentType, nil
}

func imageExtension(filename, contentType string) string {
	if ext, ok := imageExtensions[contentType]; ok {
		return ext
	}
	return strings.ToLower(filepath.Ext(filename))
}

// MealPlan returns the patient's meals with their options.
func (s *Service) MealPlan(ctx context.Context, practitionerID, patientID int64) (*MealPlan, error) {
	patient, err := s.authorize(ctx, practitionerID, patientID)
	if err != nil {
		return nil, err
	}

	meals, err := s.repo.ListMeals(ctx, patient.ID)
	if err != nil {
		return nil, internal("list meals", err)
	}
	options, err := s.repo.ListMealOptionsForPatient(ctx, patient.ID)
	if err != nil {
		return nil, internal("list meal options", err)
	}

	byMeal := lo.GroupBy(options, func(o models.MealOption) int64 { return o.MealID })

	return &MealPlan{
		Patient: patient,
		Meals: lo.Map(meals, func(m models.Meal, _ int) PlannedMeal {
			return PlannedMeal{
				Meal: m,
				Options: lo.Map(byMeal[m.ID], func(o models.MealOption, _ int) PlannedOption {
					return PlannedOption{MealOption: o, ImageURL: s.store.URL(o.ImageKey)}
				}),
			}
		}),
	}, nil
}
