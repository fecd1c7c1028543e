// Package domain defines the core types, error taxonomy, and result
// validation for the paper classification pipeline. It acts as the validation
// gate between the agent's free-form output and the API response.
package domain

// Category is one of the four medical categories a paper can belong to.
type Category string

const (
	CategoryCardiovascular Category = "Cardiovascular"
	CategoryNeurological   Category = "Neurological"
	CategoryHepatorenal    Category = "Hepatorenal"
	CategoryOncological    Category = "Oncological"
)

// ValidCategories is the closed set of accepted categories.
var ValidCategories = map[Category]bool{
	CategoryCardiovascular: true,
	CategoryNeurological:   true,
	CategoryHepatorenal:    true,
	CategoryOncological:    true,
}

// Categories lists the accepted categories in prompt order.
var Categories = []Category{
	CategoryCardiovascular,
	CategoryNeurological,
	CategoryHepatorenal,
	CategoryOncological,
}

// Query is a classification request: the paper's title and abstract.
type Query struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
}

// Result is a validated classification outcome.
type Result struct {
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
	Rationale  string   `json:"rationale"`
}

// DocumentMatch is a single paper returned by the vector store.
type DocumentMatch struct {
	Title    string  `json:"title"`
	Abstract string  `json:"abstract"`
	Group    string  `json:"group"`
	Score    float32 `json:"score"`
}
