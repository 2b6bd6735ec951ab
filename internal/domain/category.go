package domain

// Category groups products. Categories are created on demand when a product
// names one that does not exist yet; Slug is the dedupe key.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"-"`
}
