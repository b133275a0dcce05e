package models

// Semantic roles filled by the extraction endpoint
const (
	RoleProductName = "product_name"
	RolePrice       = "price"
	RoleDescription = "description"
	RoleImageURL    = "image_url"
)

// Roles lists every role in output order
var Roles = []string{RoleProductName, RolePrice, RoleDescription, RoleImageURL}

// Attribute pairs an extracted value with the selector reported for it.
// Selector is nil when no selector could be looked up for the value.
type Attribute struct {
	Value    string  `json:"value"`
	Selector *string `json:"selector"`
	Matches  int     `json:"matches"` // Nodes the selector matches in the submitted HTML
}

// Extraction maps a semantic role to its attribute
type Extraction map[string]Attribute
