package model

// Wire records, one per pipeline stage. JSON tags are the artifact column names.

type EnhancedDesign struct {
	DesignID         int        `json:"design_id"`
	NewListOfStrings EntityList `json:"new_list_of_strings" validate:"dive,mention"`
}

type EntityValidation struct {
	DesignID    int    `json:"design_id"`
	Relevance   int    `json:"relevance" validate:"oneof=-1 0 1"`
	Correctness int    `json:"correctness" validate:"oneof=-1 0 1"`
	CommentEnh  string `json:"comment_enh"`
}

type Pair struct {
	DesignID     int    `json:"design_id"`
	SOID         string `json:"s_o_id" validate:"required,lowercase,alpha"`
	Subject      string `json:"s" validate:"required"`
	SubjectClass string `json:"subject_class" validate:"oneof=PERSON OBJECT ANIMAL PLANT NULL"`
	Object       string `json:"o" validate:"required"`
	ObjectClass  string `json:"object_class" validate:"oneof=PERSON OBJECT ANIMAL PLANT NULL"`
}

// IsNull reports whether the model found no meaningful pair for the design.
func (p Pair) IsNull() bool {
	return p.Subject == Null && p.Object == Null
}

type PairValidation struct {
	DesignID    int    `json:"design_id"`
	SOID        string `json:"s_o_id" validate:"required"`
	ValiditySOP int    `json:"validity_sop" validate:"oneof=-1 0 1"`
	CommentSOP  string `json:"comment_sop"`
}

type PredicateAssignment struct {
	DesignID  int    `json:"design_id"`
	SOID      string `json:"s_o_id" validate:"required"`
	Predicate string `json:"predicate" validate:"required"`
}

// Triple is a Pair with its predicate. A nil Predicate means none was assigned yet.
type Triple struct {
	Pair
	Predicate *string `json:"predicate"`
}

// NewTriple joins a pair with a predicate.
func NewTriple(p Pair, predicate string) Triple {
	return Triple{Pair: p, Predicate: &predicate}
}

// PredicateOrNull returns the predicate text, or Null when unassigned.
func (t Triple) PredicateOrNull() string {
	if t.Predicate == nil {
		return Null
	}
	return *t.Predicate
}

type TripleValidation struct {
	DesignID     int    `json:"design_id"`
	SOID         string `json:"s_o_id" validate:"required"`
	ValidityPred int    `json:"validity_pred" validate:"oneof=-1 0 1"`
	CommentPred  string `json:"comment_pred"`
	ImplicitPred string `json:"implicit_pred"`
}

// PairKey identifies a pair within the whole dataset.
type PairKey struct {
	DesignID int
	SOID     string
}

func (p Pair) Key() PairKey {
	return PairKey{DesignID: p.DesignID, SOID: p.SOID}
}
