package domain

import "context"

// Item is one caller-supplied batch entry. Items arrive as loose JSON
// mappings; the pipelines validate and coerce each field themselves so a
// single bad item never rejects the whole batch.
type Item map[string]any

// Rejection records why one item could not be priced, at its original
// batch index.
type Rejection struct {
	Index       int            `json:"index"`
	Reason      string         `json:"reason"`
	Item        Item           `json:"item,omitempty"`
	FiltersUsed map[string]any `json:"filters_used,omitempty"`
}

// TreeItemResult is the priced outcome of one isolated-tree item.
type TreeItemResult struct {
	Municipality         string  `json:"municipality"`
	Group                string  `json:"group,omitempty"`
	Quantity             int     `json:"quantidade"`
	Endangered           bool    `json:"endangered"`
	BaseCompensation     int     `json:"base_compensation"`
	EndangeredMultiplier float64 `json:"endangered_multiplier"`
	CompensationPerTree  float64 `json:"compensation_per_tree"`
	ItemTotal            float64 `json:"item_total"`
}

type TreeBatchResult struct {
	Processed  []TreeItemResult `json:"processed_items"`
	GrandTotal float64          `json:"total_compensation"`
	Rejected   []Rejection      `json:"items_without_rule"`
}

// PatchItemResult is the priced outcome of one vegetation-patch item.
type PatchItemResult struct {
	Municipality      string  `json:"municipality"`
	AreaM2            float64 `json:"area_m2"`
	CompensationPerM2 float64 `json:"compensation_per_m2"`
	ItemTotal         float64 `json:"item_total"`
}

type PatchBatchResult struct {
	Processed  []PatchItemResult `json:"processed_patches"`
	GrandTotal float64           `json:"total_compensation"`
	Rejected   []Rejection       `json:"patches_without_rule"`
}

// AppItemResult is the priced outcome of one permanent-preservation-area
// item.
type AppItemResult struct {
	Municipality        string  `json:"municipality"`
	Quantity            float64 `json:"quantidade"`
	CompensationPerUnit float64 `json:"compensation_per_unit"`
	ItemTotal           float64 `json:"item_total"`
}

type AppBatchResult struct {
	Processed  []AppItemResult `json:"processed_apps"`
	GrandTotal float64         `json:"total_compensation"`
	Rejected   []Rejection     `json:"apps_without_rule"`
}

// Service prices batches of vegetation-removal items. Each call validates
// its items independently, resolves the applicable municipality rule and
// returns successes, a grand total and per-item rejections, all in input
// order. Only an empty or missing batch fails the call as a whole.
type Service interface {
	CalculateTreeBatch(ctx context.Context, items []Item) (*TreeBatchResult, error)
	CalculatePatchBatch(ctx context.Context, items []Item) (*PatchBatchResult, error)
	CalculateAppBatch(ctx context.Context, items []Item) (*AppBatchResult, error)
}
