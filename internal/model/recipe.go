package model

// Cuisine is the single-valued categorical tag on a Recipe.
type Cuisine struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:50;not null;index" json:"name"`
}

func (Cuisine) TableName() string {
	return "cuisines"
}

// Diet is a multi-valued categorical tag on a Recipe.
type Diet struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:50;not null;index" json:"name"`
}

func (Diet) TableName() string {
	return "diets"
}

// Ingredient is a multi-valued categorical tag on a Recipe.
type Ingredient struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:50;not null;index" json:"name"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}

// Recipe is a catalog entry. Every recipe belongs to exactly one cuisine and
// is removed together with it.
type Recipe struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"size:100;not null" json:"name"`
	CuisineID    uint         `gorm:"not null;index" json:"cuisine_id"`
	Cuisine      *Cuisine     `gorm:"foreignKey:CuisineID;constraint:OnDelete:CASCADE" json:"cuisine,omitempty"`
	Diets        []Diet       `gorm:"many2many:recipe_diets;constraint:OnDelete:CASCADE" json:"diets"`
	Ingredients  []Ingredient `gorm:"many2many:recipe_ingredients;constraint:OnDelete:CASCADE" json:"ingredients"`
	Instructions string       `gorm:"column:recipe;type:text;not null;default:''" json:"recipe"`
	ImagePath    string       `gorm:"type:text;not null;default:''" json:"image_path"`
	AudioPath    string       `gorm:"type:text;not null;default:''" json:"audio_path"`
}

func (Recipe) TableName() string {
	return "recipes"
}

// All lists every catalog entity in dependency order for auto-migration.
func All() []interface{} {
	return []interface{}{
		&Cuisine{},
		&Diet{},
		&Ingredient{},
		&Recipe{},
	}
}
