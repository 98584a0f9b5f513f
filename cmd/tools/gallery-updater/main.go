// cmd/tools/gallery-updater/main.go
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"portfolio-builder/pkg/registry"
)

const defaultPath = "configs/gallery.json"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 1 {
		help()
		return errors.New("missing command")
	}

	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("add", flag.ContinueOnError)
		path := fs.String("path", defaultPath, "Path to gallery file")
		entry := registry.GalleryEntry{}
		fs.StringVar(&entry.ID, "id", "", "Entry ID (e.g., ola)")
		fs.StringVar(&entry.Category, "category", "", "Category (e.g., Landing Pages)")
		fs.StringVar(&entry.Title, "title", "", "Title shown under the preview")
		fs.StringVar(&entry.Description, "description", "", "Optional description")
		fs.StringVar(&entry.ViewLink, "viewLink", "", "Absolute URL or path under the backend")
		fs.StringVar(&entry.PreviewImage, "previewImage", "", "Absolute URL or path of the preview image")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := addEntry(*path, entry); err != nil {
			return fmt.Errorf("add entry: %w", err)
		}
		fmt.Printf("Added gallery entry: %s\n", entry.ID)

	case "update":
		fs := flag.NewFlagSet("update", flag.ContinueOnError)
		path := fs.String("path", defaultPath, "Path to gallery file")
		id := fs.String("id", "", "Entry ID to update")
		field := fs.String("field", "", "Field to update (category, title, description, viewLink, previewImage)")
		value := fs.String("value", "", "New value for the field")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *id == "" || *field == "" {
			fs.Usage()
			return errors.New("id and field are required for update")
		}
		if err := updateEntry(*path, *id, *field, *value); err != nil {
			return fmt.Errorf("update entry: %w", err)
		}
		fmt.Printf("Updated gallery entry %s, field %s\n", *id, *field)

	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		path := fs.String("path", defaultPath, "Path to gallery file")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		reg, err := registry.LoadRegistry(*path)
		if err != nil {
			return fmt.Errorf("gallery validation failed: %w", err)
		}
		fmt.Printf("Gallery validation passed. Found %d entries in %d categories.\n", len(reg.Entries), len(reg.Categories()))

	case "help":
		help()

	default:
		help()
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}

func addEntry(path string, entry registry.GalleryEntry) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load gallery: %w", err)
		}
		reg = &registry.GalleryRegistry{Version: "1.0.0"}
	}

	if _, exists := reg.Find(entry.ID); exists {
		return fmt.Errorf("entry with ID %s already exists", entry.ID)
	}
	reg.Entries = append(reg.Entries, entry)
	return saveRegistry(reg, path)
}

func updateEntry(path, id, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load gallery: %w", err)
	}

	entry, ok := reg.Find(id)
	if !ok {
		return fmt.Errorf("entry with ID %s not found", id)
	}

	switch field {
	case "category":
		entry.Category = value
	case "title":
		entry.Title = value
	case "description":
		entry.Description = value
	case "viewLink":
		entry.ViewLink = value
	case "previewImage":
		entry.PreviewImage = value
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	return saveRegistry(reg, path)
}

// saveRegistry validates reg and writes it to path.
func saveRegistry(reg *registry.GalleryRegistry, path string) error {
	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	if err := registry.Validate(reg); err != nil {
		return err
	}

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal gallery: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write gallery file: %w", err)
	}
	return nil
}

func help() {
	fmt.Print(`
Usage: gallery-updater <command> [flags]

Commands:
  add      Add a new entry to the gallery
  update   Update an existing entry's field
  validate Validate the gallery file
  help     Show this help message

Examples:
  gallery-updater add -id ola -category "Landing Pages" -title "Ola Cabs" -viewLink /static/clones/ola.html -previewImage /static/previews/ola.png
  gallery-updater update -id ola -field description -value "Ride Hailing Service"
  gallery-updater validate -path configs/gallery.json

Use 'gallery-updater <command> -h' for more information about a command.
`)
}
