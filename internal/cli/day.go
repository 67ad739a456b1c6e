package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/mharris/quotly/internal/constants"
	"github.com/mharris/quotly/internal/storage"
)

type DayCmd struct {
	Date string `arg:"" optional:"" help:"Date to show (YYYY-MM-DD or 'today')." default:"today"`
}

func (c *DayCmd) Run(ctx *Context) error {
	date, err := parseDate(c.Date)
	if err != nil {
		return err
	}

	day, err := ctx.Service.EnsureDay(date)
	if err != nil {
		return err
	}
	printDay(day)
	return nil
}

type CloseCmd struct {
	Date string `arg:"" optional:"" help:"Date to close (YYYY-MM-DD or 'today')." default:"today"`
}

func (c *CloseCmd) Run(ctx *Context) error {
	date, err := parseDate(c.Date)
	if err != nil {
		return err
	}

	day, err := ctx.Service.CloseDay(date)
	if err != nil {
		if errors.Is(err, storage.ErrDayNotFound) {
			return fmt.Errorf("no day exists for %s", date)
		}
		return err
	}
	fmt.Printf("Closed %s; its items are now read-only\n", day.Date)
	return nil
}

type ReopenCmd struct {
	Date    string `arg:"" optional:"" help:"Date to reopen (YYYY-MM-DD or 'today')." default:"today"`
	Confirm bool   `help:"Acknowledge that reopening makes a closed day editable again." default:"false"`
}

func (c *ReopenCmd) Run(ctx *Context) error {
	date, err := parseDate(c.Date)
	if err != nil {
		return err
	}

	day, err := ctx.Service.ReopenDay(date, c.Confirm)
	if err != nil {
		return err
	}
	fmt.Printf("Reopened %s\n", day.Date)
	return nil
}

type HistoryCmd struct {
	Start string `help:"Range start (YYYY-MM-DD). Defaults to 7 days ago."`
	End   string `help:"Range end (YYYY-MM-DD). Defaults to today."`
}

func (c *HistoryCmd) Run(ctx *Context) error {
	now := time.Now()
	start := c.Start
	if start == "" {
		start = now.AddDate(0, 0, -7).Format(constants.DateFormat)
	}
	end := c.End
	if end == "" {
		end = now.Format(constants.DateFormat)
	}

	summaries, err := ctx.Service.ListDays(start, end)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Printf("No days recorded between %s and %s\n", start, end)
		return nil
	}

	for _, s := range summaries {
		fmt.Printf("%s  %d/%d done  [%s]\n", s.Date, s.DoneCount, s.ItemCount, s.Status)
	}
	return nil
}
