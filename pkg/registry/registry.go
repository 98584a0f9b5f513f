// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

//go:embed default_gallery.json
var defaultGallery []byte

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("link", func(fl validator.FieldLevel) bool {
		return isLink(fl.Field().String())
	})
	return v
}

// isLink accepts absolute http(s) URLs and root-relative paths.
func isLink(s string) bool {
	if strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//") {
		return true
	}
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// LoadRegistry reads and validates a registry file.
func LoadRegistry(path string) (*GalleryRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Default returns the built-in gallery.
func Default() *GalleryRegistry {
	reg, err := Parse(defaultGallery)
	if err != nil {
		panic(fmt.Sprintf("embedded gallery is invalid: %v", err))
	}
	return reg
}

// Load reads path, or returns the built-in gallery when path is empty.
func Load(path string) (*GalleryRegistry, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadRegistry(path)
}

func Parse(data []byte) (*GalleryRegistry, error) {
	var reg GalleryRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse gallery registry: %w", err)
	}
	if err := Validate(&reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate checks field rules and ID uniqueness.
func Validate(reg *GalleryRegistry) error {
	if err := validate.Struct(reg); err != nil {
		return fmt.Errorf("invalid gallery registry: %w", err)
	}
	ids := make(map[string]bool, len(reg.Entries))
	for _, e := range reg.Entries {
		if ids[e.ID] {
			return fmt.Errorf("duplicate gallery entry ID: %s", e.ID)
		}
		ids[e.ID] = true
	}
	return nil
}

// Find returns the entry with id.
func (r *GalleryRegistry) Find(id string) (*GalleryEntry, bool) {
	for i := range r.Entries {
		if r.Entries[i].ID == id {
			return &r.Entries[i], true
		}
	}
	return nil, false
}

// Resolve returns a copy whose root-relative links point at baseURL.
func (r *GalleryRegistry) Resolve(baseURL string) *GalleryRegistry {
	base := strings.TrimRight(baseURL, "/")
	out := *r
	out.Entries = make([]GalleryEntry, len(r.Entries))
	for i, e := range r.Entries {
		e.ViewLink = resolveLink(base, e.ViewLink)
		e.PreviewImage = resolveLink(base, e.PreviewImage)
		out.Entries[i] = e
	}
	return &out
}

func resolveLink(base, link string) string {
	if strings.HasPrefix(link, "/") && !strings.HasPrefix(link, "//") {
		return base + link
	}
	return link
}

// Categories groups entries by category in first-seen order.
func (r *GalleryRegistry) Categories() []Category {
	var out []Category
	index := make(map[string]int)
	for _, e := range r.Entries {
		i, ok := index[e.Category]
		if !ok {
			i = len(out)
			index[e.Category] = i
			out = append(out, Category{Name: e.Category})
		}
		out[i].Entries = append(out[i].Entries, e)
	}
	return out
}
