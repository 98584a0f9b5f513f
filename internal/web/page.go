package web

import (
	_ "embed"
	"html/template"

	"portfolio-builder/internal/models"
	"portfolio-builder/pkg/registry"

	"github.com/gofiber/fiber/v2"
)

//go:embed templates/index.html
var indexHTML string

var pageTemplate = template.Must(template.New("index").Parse(indexHTML))

type pageData struct {
	AppName    string
	State      models.SubmissionState
	Categories []registry.Category
	Year       int
}

func renderPage(c *fiber.Ctx, data pageData) error {
	return pageTemplate.Execute(c.Response().BodyWriter(), data)
}
