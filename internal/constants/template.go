package constants

import "github.com/mharris/quotly/internal/models"

// DefaultTemplate seeds the template table on first init. Users are expected
// to reshape it immediately; it exists so a fresh install has a usable day.
func DefaultTemplate() models.Template {
	return models.Template{
		Version: 1,
		Items: []models.TemplateItem{
			{Label: "Progress", DefaultWhy: "move a project forward"},
			{Label: "Care/Connection", DefaultWhy: "serve or connect"},
			{Label: "Maintenance", DefaultWhy: "body / admin / environment"},
		},
	}
}
