package model

// Design is one coin-face description. DesignEn holds the cleaned text that
// annotation spans refer to; DesignEnOrig keeps the text as stored upstream.
type Design struct {
	ID           int          `gorm:"primarykey;column:id" json:"id"`
	DesignEn     string       `gorm:"column:design_en;type:text" json:"design_en"`
	DesignEnOrig string       `gorm:"-" json:"design_en_orig,omitempty"`
	Annotations  []Annotation `gorm:"-" json:"annotations"`
}

// TableName 指定表名
func (Design) TableName() string {
	return "nlp_training_designs"
}

// Annotation is a half-open rune span [Start, End) of Design.DesignEn tagged with an entity class.
type Annotation struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Label string `json:"label"`
}

// EntityRow is one named entity with its comma separated alternative spellings.
type EntityRow struct {
	ID                 int     `gorm:"primarykey;column:id"`
	NameEn             string  `gorm:"column:name_en"`
	AlternativeNamesEn *string `gorm:"column:alternativenames_en"`
	Class              string  `gorm:"column:class"`
}

func (EntityRow) TableName() string {
	return "nlp_list_entities"
}
