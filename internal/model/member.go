package model

// Member is a family member reference record. The view engine only reads
// these to resolve display fields; it never mutates them.
type Member struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	FamilyID *int   `json:"familyId,omitempty"`
}

type Family struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
