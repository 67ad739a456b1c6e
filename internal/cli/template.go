package cli

import (
	"fmt"
	"strings"
)

type TemplateListCmd struct{}

func (c *TemplateListCmd) Run(ctx *Context) error {
	tmpl, err := ctx.Templates.Current()
	if err != nil {
		return err
	}

	fmt.Printf("Template v%d:\n", tmpl.Version)
	for i, item := range tmpl.Items {
		fmt.Printf("%2d. %s", i+1, item.Label)
		if item.DefaultWhy != "" {
			fmt.Printf("  (%s)", item.DefaultWhy)
		}
		fmt.Println()
	}
	return nil
}

type TemplateAddCmd struct {
	Label string `arg:"" help:"Label of the new quota item."`
	Why   string `short:"w" help:"Default why seeded into new days."`
}

func (c *TemplateAddCmd) Run(ctx *Context) error {
	tmpl, err := ctx.Templates.AddItem(c.Label, c.Why)
	if err != nil {
		return err
	}
	fmt.Printf("Added %q (template now v%d)\n", c.Label, tmpl.Version)
	return nil
}

type TemplateRemoveCmd struct {
	Label string `arg:"" help:"Label of the item to remove."`
}

func (c *TemplateRemoveCmd) Run(ctx *Context) error {
	tmpl, err := ctx.Templates.RemoveItem(c.Label)
	if err != nil {
		return err
	}
	fmt.Printf("Removed %q (template now v%d); existing days are unaffected\n", c.Label, tmpl.Version)
	return nil
}

type TemplateEditCmd struct {
	Label    string  `arg:"" help:"Label of the item to edit."`
	NewLabel *string `help:"New label."`
	NewWhy   *string `help:"New default why."`
}

func (c *TemplateEditCmd) Run(ctx *Context) error {
	tmpl, err := ctx.Templates.EditItem(c.Label, c.NewLabel, c.NewWhy)
	if err != nil {
		return err
	}
	fmt.Printf("Edited %q (template now v%d)\n", c.Label, tmpl.Version)
	return nil
}

type TemplateMoveCmd struct {
	Order string `arg:"" help:"Comma-separated labels in the desired order."`
}

func (c *TemplateMoveCmd) Run(ctx *Context) error {
	var labels []string
	for _, label := range strings.Split(c.Order, ",") {
		labels = append(labels, strings.TrimSpace(label))
	}

	tmpl, err := ctx.Templates.ReorderItems(labels)
	if err != nil {
		return err
	}
	fmt.Printf("Reordered template (now v%d)\n", tmpl.Version)
	return nil
}
