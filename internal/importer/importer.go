// Package importer loads recipe source files into the catalog store.
package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/pageza/nocapcooking/backend/internal/model"
	"github.com/pageza/nocapcooking/backend/internal/recipefile"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrMissingName    = errors.New("recipe has no name")
	ErrMissingCuisine = errors.New("recipe has no cuisine")
)

// RecordError is one record, or one whole file, that could not be imported.
type RecordError struct {
	File string
	// Index is the record's position in the file, -1 when the file itself
	// could not be read.
	Index int
	Name  string
	Err   error
}

func (e RecordError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %v", e.File, e.Err)
	}
	return fmt.Sprintf("%s[%d] %q: %v", e.File, e.Index, e.Name, e.Err)
}

func (e RecordError) Unwrap() error {
	return e.Err
}

// Report summarizes an import run.
type Report struct {
	Files    int
	Imported int
	Failed   []RecordError
}

// Importer writes source records into the catalog, one transaction per
// record, so a bad record never affects its neighbours.
type Importer struct {
	db     *gorm.DB
	logger *zap.Logger
}

func New(db *gorm.DB, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{db: db, logger: logger}
}

// ImportDir imports every source file in dir. Only a missing or unreadable
// directory is an error; file and record failures land in the report.
func (im *Importer) ImportDir(ctx context.Context, dir string) (*Report, error) {
	paths, err := recipefile.Paths(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		im.logger.Warn("no JSON files found", zap.String("dir", dir))
	}

	report := &Report{}
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		im.importFile(ctx, p, report)
	}
	return report, nil
}

func (im *Importer) importFile(ctx context.Context, path string, report *Report) {
	report.Files++
	logger := im.logger.With(zap.String("file", path))

	file, err := recipefile.ReadFile(path)
	if err != nil {
		logger.Error("failed to read file", zap.Error(err))
		report.Failed = append(report.Failed, RecordError{File: path, Index: -1, Err: err})
		return
	}

	imported := 0
	for i, rec := range file.Records {
		if _, err := im.ImportRecord(ctx, rec); err != nil {
			logger.Error("failed to import recipe",
				zap.Int("index", i),
				zap.String("name", rec.Name),
				zap.Error(err))
			report.Failed = append(report.Failed, RecordError{File: path, Index: i, Name: rec.Name, Err: err})
			continue
		}
		imported++
	}
	report.Imported += imported
	logger.Info("imported file", zap.Int("recipes", imported), zap.Int("records", len(file.Records)))
}

// ImportRecord creates a recipe from rec in its own transaction. Cuisine,
// diet and ingredient rows are matched by exact name and created when
// missing.
func (im *Importer) ImportRecord(ctx context.Context, rec recipefile.Record) (*model.Recipe, error) {
	if rec.Name == "" {
		return nil, ErrMissingName
	}
	if rec.Cuisine == "" {
		return nil, ErrMissingCuisine
	}

	recipe := &model.Recipe{
		Name:         rec.Name,
		Instructions: rec.Instructions,
		ImagePath:    rec.Image,
		AudioPath:    rec.Audio,
	}

	err := im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cuisine := model.Cuisine{}
		if err := tx.Where(model.Cuisine{Name: rec.Cuisine}).FirstOrCreate(&cuisine).Error; err != nil {
			return fmt.Errorf("cuisine %q: %w", rec.Cuisine, err)
		}
		recipe.CuisineID = cuisine.ID

		diets := make([]model.Diet, 0, len(rec.Diets))
		for _, name := range rec.Diets {
			diet := model.Diet{}
			if err := tx.Where(model.Diet{Name: name}).FirstOrCreate(&diet).Error; err != nil {
				return fmt.Errorf("diet %q: %w", name, err)
			}
			diets = append(diets, diet)
		}

		ingredients := make([]model.Ingredient, 0, len(rec.Ingredients))
		for _, name := range rec.Ingredients {
			ingredient := model.Ingredient{}
			if err := tx.Where(model.Ingredient{Name: name}).FirstOrCreate(&ingredient).Error; err != nil {
				return fmt.Errorf("ingredient %q: %w", name, err)
			}
			ingredients = append(ingredients, ingredient)
		}

		if err := tx.Omit("Cuisine", "Diets", "Ingredients").Create(recipe).Error; err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}
		if len(diets) > 0 {
			if err := tx.Model(recipe).Association("Diets").Append(&diets); err != nil {
				return fmt.Errorf("link diets: %w", err)
			}
		}
		if len(ingredients) > 0 {
			if err := tx.Model(recipe).Association("Ingredients").Append(&ingredients); err != nil {
				return fmt.Errorf("link ingredients: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recipe, nil
}
