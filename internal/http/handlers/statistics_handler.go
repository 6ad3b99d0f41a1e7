package handlers

import (
	"github.com/gofiber/fiber/v2"

	"litshop/internal/domain"
	applog "litshop/internal/log"
	"litshop/internal/services"
)

type StatisticsHandler struct {
	Stats      *services.StatisticsService
	Categories services.CategoryLister
}

// API handles GET /api/v1/statistics.
func (h *StatisticsHandler) API(c *fiber.Ctx) error {
	st, err := h.Stats.Get(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(st)
}

type categoryRow struct {
	Name      string
	TotalSold int
	Most      bool
	Least     bool
}

// Page renders the sales dashboard. Categories without sales are listed with zero.
func (h *StatisticsHandler) Page(c *fiber.Ctx) error {
	st, err := h.Stats.Get(c.UserContext())
	if err != nil {
		applog.Error(c, "statistics.page.fail", err, nil)
		return c.Status(fiber.StatusServiceUnavailable).Render("notfound", fiber.Map{"Message": "Statistics are unavailable right now"})
	}

	sold := make(map[string]int, len(st.Categories))
	for _, cs := range st.Categories {
		sold[cs.Name] = cs.TotalSold
	}
	cats, err := h.Categories.List(c.UserContext())
	if err != nil {
		applog.Error(c, "statistics.categories.fail", err, nil)
	}
	rows := make([]categoryRow, 0, len(cats))
	seen := make(map[string]bool, len(cats))
	for _, cat := range cats {
		rows = append(rows, h.row(st, cat.Name, sold[cat.Name]))
		seen[cat.Name] = true
	}
	// a category renamed or removed since it sold still shows up
	for _, cs := range st.Categories {
		if !seen[cs.Name] {
			rows = append(rows, h.row(st, cs.Name, cs.TotalSold))
		}
	}

	return render(c, "statistics", fiber.Map{
		"Stats":      st,
		"Categories": rows,
	})
}

func (h *StatisticsHandler) row(st domain.Statistics, name string, sold int) categoryRow {
	return categoryRow{
		Name:      name,
		TotalSold: sold,
		Most:      st.MostSoldCategory != nil && st.MostSoldCategory.Name == name,
		Least:     st.LeastSoldCategory != nil && st.LeastSoldCategory.Name == name,
	}
}
