package catalog

import "time"

type classRow struct {
	Name      string `gorm:"primaryKey;size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Supertypes  []supertypeRow  `gorm:"foreignKey:ClassName;references:Name;constraint:OnDelete:CASCADE"`
	Annotations []annotationRow `gorm:"foreignKey:ClassName;references:Name;constraint:OnDelete:CASCADE"`
}

func (classRow) TableName() string { return "classes" }

// supertypeRow is a direct supertype edge. The supertype need not have a
// row of its own.
type supertypeRow struct {
	ClassName string `gorm:"primaryKey;size:255"`
	Supertype string `gorm:"primaryKey;size:255;index"`
	Ordinal   int
}

func (supertypeRow) TableName() string { return "class_supertypes" }

type annotationRow struct {
	ClassName string `gorm:"primaryKey;size:255"`
	Marker    string `gorm:"primaryKey;size:255"`
}

func (annotationRow) TableName() string { return "class_annotations" }
