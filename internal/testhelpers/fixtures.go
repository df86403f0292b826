package testhelpers

import (
	"testing"

	"github.com/pageza/nocapcooking/backend/internal/model"
	"gorm.io/gorm"
)

// RecipeFixture describes a recipe by the names of its related entities.
type RecipeFixture struct {
	Name         string
	Cuisine      string
	Diets        []string
	Ingredients  []string
	Instructions string
	ImagePath    string
	AudioPath    string
}

// Seed inserts fixtures in order. Related entities are created on first
// mention, so their ids follow the order in which names first appear.
func Seed(t *testing.T, db *gorm.DB, fixtures ...RecipeFixture) []model.Recipe {
	t.Helper()

	cuisines := map[string]uint{}
	diets := map[string]uint{}
	ingredients := map[string]uint{}

	out := make([]model.Recipe, 0, len(fixtures))
	for _, f := range fixtures {
		recipe := model.Recipe{
			Name:         f.Name,
			CuisineID:    ensure(t, db, cuisines, &model.Cuisine{Name: f.Cuisine}),
			Instructions: f.Instructions,
			ImagePath:    f.ImagePath,
			AudioPath:    f.AudioPath,
		}
		for _, name := range f.Diets {
			recipe.Diets = append(recipe.Diets, model.Diet{ID: ensure(t, db, diets, &model.Diet{Name: name}), Name: name})
		}
		for _, name := range f.Ingredients {
			recipe.Ingredients = append(recipe.Ingredients, model.Ingredient{ID: ensure(t, db, ingredients, &model.Ingredient{Name: name}), Name: name})
		}
		if err := db.Create(&recipe).Error; err != nil {
			t.Fatalf("failed to seed recipe %q: %v", f.Name, err)
		}
		out = append(out, recipe)
	}
	return out
}

// ensure creates row unless its name was seen before and returns its id.
func ensure(t *testing.T, db *gorm.DB, seen map[string]uint, row interface{}) uint {
	t.Helper()
	name, _ := nameAndID(row)
	if existing, ok := seen[name]; ok {
		return existing
	}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("failed to seed %q: %v", name, err)
	}
	_, id := nameAndID(row)
	seen[name] = id
	return id
}

func nameAndID(row interface{}) (string, uint) {
	switch r := row.(type) {
	case *model.Cuisine:
		return r.Name, r.ID
	case *model.Diet:
		return r.Name, r.ID
	case *model.Ingredient:
		return r.Name, r.ID
	}
	return "", 0
}

// Scenario is the three-recipe catalog shared by the query and handler tests:
//
//	A: cuisine C1, diet D1, ingredient I1
//	B: cuisine C2, diet D2, ingredients I1 and I2
//	C: cuisine C1, diet D1, ingredient I2
var Scenario = []RecipeFixture{
	{Name: "A", Cuisine: "C1", Diets: []string{"D1"}, Ingredients: []string{"I1"}, Instructions: "Recipe A"},
	{Name: "B", Cuisine: "C2", Diets: []string{"D2"}, Ingredients: []string{"I1", "I2"}, Instructions: "Recipe B"},
	{Name: "C", Cuisine: "C1", Diets: []string{"D1"}, Ingredients: []string{"I2"}, Instructions: "Recipe C"},
}

// SeedScenario inserts Scenario.
func SeedScenario(t *testing.T, db *gorm.DB) []model.Recipe {
	t.Helper()
	return Seed(t, db, Scenario...)
}

// RecipeNames returns the names of recipes in order.
func RecipeNames(recipes []model.Recipe) []string {
	names := make([]string, 0, len(recipes))
	for _, r := range recipes {
		names = append(names, r.Name)
	}
	return names
}
