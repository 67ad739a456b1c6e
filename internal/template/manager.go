// Package template manages the quota template that seeds new days. Every
// edit replaces the full template and bumps its version; day rows are never
// touched from here, which keeps snapshot semantics auditable.
package template

import (
	"fmt"

	"github.com/mharris/quotly/internal/logging"
	"github.com/mharris/quotly/internal/models"
	"github.com/mharris/quotly/internal/storage"
)

type Manager struct {
	store storage.Provider
}

func New(store storage.Provider) *Manager {
	return &Manager{store: store}
}

// Current returns the stored template.
func (m *Manager) Current() (models.Template, error) {
	return m.store.LoadTemplate()
}

// AddItem appends a new item. Labels are the item identity, so duplicates
// are rejected.
func (m *Manager) AddItem(label, defaultWhy string) (models.Template, error) {
	if label == "" {
		return models.Template{}, fmt.Errorf("item label cannot be empty")
	}

	tmpl, err := m.store.LoadTemplate()
	if err != nil {
		return models.Template{}, err
	}
	if tmpl.IndexOf(label) >= 0 {
		return models.Template{}, fmt.Errorf("template already has an item labeled %q", label)
	}

	next := tmpl.Clone()
	next.Items = append(next.Items, models.TemplateItem{Label: label, DefaultWhy: defaultWhy})
	return m.save(next)
}

// RemoveItem drops the item with the given label. Existing days keep their
// snapshots; only future days are affected.
func (m *Manager) RemoveItem(label string) (models.Template, error) {
	tmpl, err := m.store.LoadTemplate()
	if err != nil {
		return models.Template{}, err
	}

	idx := tmpl.IndexOf(label)
	if idx < 0 {
		return models.Template{}, fmt.Errorf("no template item labeled %q", label)
	}

	next := tmpl.Clone()
	next.Items = append(next.Items[:idx], next.Items[idx+1:]...)
	return m.save(next)
}

// ReorderItems rearranges the template to match the given label order,
// which must be a complete permutation of the current labels.
func (m *Manager) ReorderItems(labels []string) (models.Template, error) {
	tmpl, err := m.store.LoadTemplate()
	if err != nil {
		return models.Template{}, err
	}
	if len(labels) != len(tmpl.Items) {
		return models.Template{}, fmt.Errorf("reorder needs all %d labels, got %d", len(tmpl.Items), len(labels))
	}

	next := tmpl.Clone()
	next.Items = next.Items[:0]
	seen := make(map[string]bool, len(labels))
	for _, label := range labels {
		if seen[label] {
			return models.Template{}, fmt.Errorf("duplicate label %q in reorder", label)
		}
		seen[label] = true

		idx := tmpl.IndexOf(label)
		if idx < 0 {
			return models.Template{}, fmt.Errorf("no template item labeled %q", label)
		}
		next.Items = append(next.Items, tmpl.Items[idx])
	}
	return m.save(next)
}

// EditItem renames an item and/or replaces its default why. Nil fields are
// left unchanged.
func (m *Manager) EditItem(label string, newLabel, newDefaultWhy *string) (models.Template, error) {
	tmpl, err := m.store.LoadTemplate()
	if err != nil {
		return models.Template{}, err
	}

	idx := tmpl.IndexOf(label)
	if idx < 0 {
		return models.Template{}, fmt.Errorf("no template item labeled %q", label)
	}

	next := tmpl.Clone()
	if newLabel != nil {
		if *newLabel == "" {
			return models.Template{}, fmt.Errorf("item label cannot be empty")
		}
		if *newLabel != label && next.IndexOf(*newLabel) >= 0 {
			return models.Template{}, fmt.Errorf("template already has an item labeled %q", *newLabel)
		}
		next.Items[idx].Label = *newLabel
	}
	if newDefaultWhy != nil {
		next.Items[idx].DefaultWhy = *newDefaultWhy
	}
	return m.save(next)
}

func (m *Manager) save(tmpl models.Template) (models.Template, error) {
	tmpl.Version++
	if err := m.store.SaveTemplate(tmpl); err != nil {
		return models.Template{}, err
	}
	logging.Info("saved template", "version", tmpl.Version, "items", len(tmpl.Items))
	return tmpl, nil
}
