package dto

// ReportRequest is the raw report filter. Every field is optional except Blocks.
type ReportRequest struct {
	WeekStart          string   `json:"weekStart"`
	WeeksRange         int      `json:"weeksRange"`
	Days               []int    `json:"days"`
	Laps               []int    `json:"laps"`
	Blocks             []string `json:"blocks"`
	Students           []string `json:"students"`
	Categories         []string `json:"categories"`
	CategoriesMatchAll bool     `json:"categoriesMatchAll"`
	Standards          []string `json:"standards"`
	ViewMode           string   `json:"viewMode"`
	Sort               string   `json:"sort"`
	Order              string   `json:"order"`
}
