// pkg/registry/schema.go
package registry

// GalleryRegistry is the read-only catalogue of example portfolios shown
// next to the submission form.
type GalleryRegistry struct {
	Version     string         `json:"version" validate:"required"`
	LastUpdated string         `json:"lastUpdated"`
	Entries     []GalleryEntry `json:"entries" validate:"required,min=1,dive"`
}

type GalleryEntry struct {
	ID           string `json:"id" validate:"required,max=64"`
	Category     string `json:"category" validate:"required"`
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description,omitempty"`
	ViewLink     string `json:"viewLink" validate:"required,link"`
	PreviewImage string `json:"previewImage" validate:"required,link"`
}

// Category groups entries under a heading, in registry order.
type Category struct {
	Name    string         `json:"name"`
	Entries []GalleryEntry `json:"entries"`
}
