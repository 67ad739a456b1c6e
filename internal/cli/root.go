package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/mharris/quotly/internal/constants"
	"github.com/mharris/quotly/internal/models"
	"github.com/mharris/quotly/internal/quota"
	"github.com/mharris/quotly/internal/storage"
	"github.com/mharris/quotly/internal/template"
)

type Context struct {
	Store     storage.Provider
	Service   *quota.Service
	Templates *template.Manager
}

// parseDate accepts YYYY-MM-DD or the literal "today".
func parseDate(s string) (string, error) {
	if s == "" || s == "today" {
		return time.Now().Format(constants.DateFormat), nil
	}
	t, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		return "", fmt.Errorf("invalid date format, use YYYY-MM-DD or 'today': %w", err)
	}
	return t.Format(constants.DateFormat), nil
}

// resolveItem finds a day's item by 1-based position or by label.
func resolveItem(day models.Day, ref string) (models.QuotaItem, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(day.Items) {
			return models.QuotaItem{}, fmt.Errorf("item %d out of range (day has %d items)", n, len(day.Items))
		}
		return day.Items[n-1], nil
	}
	if item := day.ItemByLabel(ref); item != nil {
		return *item, nil
	}
	return models.QuotaItem{}, fmt.Errorf("no item %q on %s", ref, day.Date)
}

func printDay(day models.Day) {
	status := "open"
	if day.Closed() {
		status = "closed"
	}
	fmt.Printf("%s  [%s]  (template v%d)\n\n", day.Date, status, day.TemplateVersion)

	for i, item := range day.Items {
		mark := "[ ]"
		if item.Completed {
			mark = "[x]"
		}
		fmt.Printf("%2d. %s %s\n", i+1, mark, item.Label)
		if item.Completed && item.Evidence != "" {
			fmt.Printf("       evidence: %s\n", item.Evidence)
		}
		if item.Why != "" {
			fmt.Printf("       why: %s\n", item.Why)
		}
	}
}
