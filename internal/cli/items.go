package cli

import "fmt"

type CheckCmd struct {
	Item     string `arg:"" help:"Item to complete, by 1-based position or label."`
	Evidence string `short:"e" required:"" help:"Evidence text proving the item was done."`
	Why      string `short:"w" help:"Optional note on why this mattered today."`
	Date     string `help:"Day to record against (YYYY-MM-DD or 'today')." default:"today"`
}

func (c *CheckCmd) Run(ctx *Context) error {
	date, err := parseDate(c.Date)
	if err != nil {
		return err
	}

	day, err := ctx.Service.EnsureDay(date)
	if err != nil {
		return err
	}

	item, err := resolveItem(day, c.Item)
	if err != nil {
		return err
	}

	updated, err := ctx.Service.ToggleItem(day.ID, item.ID, c.Evidence, c.Why)
	if err != nil {
		return err
	}
	fmt.Printf("Completed %q on %s\n", updated.Label, date)
	return nil
}

type UncheckCmd struct {
	Item string `arg:"" help:"Item to uncheck, by 1-based position or label."`
	Date string `help:"Day to record against (YYYY-MM-DD or 'today')." default:"today"`
}

func (c *UncheckCmd) Run(ctx *Context) error {
	date, err := parseDate(c.Date)
	if err != nil {
		return err
	}

	day, err := ctx.Service.GetDay(date)
	if err != nil {
		return err
	}

	item, err := resolveItem(day, c.Item)
	if err != nil {
		return err
	}

	updated, err := ctx.Service.UncheckItem(day.ID, item.ID)
	if err != nil {
		return err
	}
	fmt.Printf("Unchecked %q on %s\n", updated.Label, date)
	return nil
}
