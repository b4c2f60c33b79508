// Package aggregate derives read-only figures from lists and materials.
// All functions are pure: empty input yields zero values, never an error.
package aggregate

import (
	"math"
	"sort"

	"supplies-service/internal/model"
)

func linePrice(item model.ListItem) float64 {
	if item.Material == nil {
		// unresolved material reference counts as free
		return 0
	}
	return item.Material.Price * float64(item.Quantity)
}

// ComputeTotal sums price x quantity over all line items
func ComputeTotal(items []model.ListItem) float64 {
	var total float64
	for _, item := range items {
		total += linePrice(item)
	}
	return total
}

// ComputePurchasedValue sums price x quantity over purchased line items
func ComputePurchasedValue(items []model.ListItem) float64 {
	var total float64
	for _, item := range items {
		if item.Purchased {
			total += linePrice(item)
		}
	}
	return total
}

// CountPurchased returns how many line items are purchased
func CountPurchased(items []model.ListItem) int {
	n := 0
	for _, item := range items {
		if item.Purchased {
			n++
		}
	}
	return n
}

// Percent returns part/whole as a rounded percentage, 0 when whole is 0
func Percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// ComputeProgress is the rounded share of purchased line items
func ComputeProgress(items []model.ListItem) int {
	return Percent(CountPurchased(items), len(items))
}

// TagStat is the usage of one tag
type TagStat struct {
	TagID string `json:"tag_id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
	Count int    `json:"count"`
}

// TagUsage is the result of AggregateTagUsage
type TagUsage struct {
	Stats       []TagStat   `json:"stats"`
	TotalActive int         `json:"total_active"`
	InUse       int         `json:"in_use"`
	Unused      []model.Tag `json:"unused"`
}

// AggregateTagUsage counts materials per tag, most used first, and lists the
// active tags no material carries. Ties are broken by name for stable output.
func AggregateTagUsage(materials []model.Material, tags []model.Tag) TagUsage {
	meta := make(map[string]model.Tag, len(tags))
	for _, t := range tags {
		meta[t.ID] = t
	}

	counts := make(map[string]*TagStat)
	for _, m := range materials {
		seen := make(map[string]bool, len(m.Tags))
		for _, t := range m.Tags {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true

			stat, ok := counts[t.ID]
			if !ok {
				info, known := meta[t.ID]
				if !known {
					info = t
				}
				stat = &TagStat{TagID: t.ID, Name: info.Name, Color: info.Color, Icon: info.Icon}
				counts[t.ID] = stat
			}
			stat.Count++
		}
	}

	usage := TagUsage{Stats: make([]TagStat, 0, len(counts)), Unused: []model.Tag{}}
	for _, stat := range counts {
		usage.Stats = append(usage.Stats, *stat)
	}
	// referenced tags count as in use even after deactivation
	usage.InUse = len(usage.Stats)
	sort.Slice(usage.Stats, func(i, j int) bool {
		a, b := usage.Stats[i], usage.Stats[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.TagID < b.TagID
	})

	for _, t := range tags {
		if !t.Active {
			continue
		}
		usage.TotalActive++
		if _, used := counts[t.ID]; used {
			continue
		}
		usage.Unused = append(usage.Unused, t)
	}
	sort.Slice(usage.Unused, func(i, j int) bool { return usage.Unused[i].Name < usage.Unused[j].Name })

	return usage
}

// ListSummary is the per-list row of a parent summary
type ListSummary struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Level          string  `json:"level"`
	Teacher        string  `json:"teacher"`
	Items          int     `json:"items"`
	Purchased      int     `json:"purchased"`
	Progress       int     `json:"progress"`
	PurchasedValue float64 `json:"purchased_value"`
	Total          float64 `json:"total"`
}

// ParentSummary folds purchase progress over a set of lists
type ParentSummary struct {
	TotalLists     int           `json:"total_lists"`
	TotalItems     int           `json:"total_items"`
	TotalPurchased int           `json:"total_purchased"`
	TotalPending   int           `json:"total_pending"`
	Percent        int           `json:"percent"`
	TotalCost      float64       `json:"total_cost"`
	PurchasedCost  float64       `json:"purchased_cost"`
	PendingCost    float64       `json:"pending_cost"`
	Lists          []ListSummary `json:"lists"`
}

// BuildParentSummary computes the purchase summary over the given lists
func BuildParentSummary(lists []model.List) ParentSummary {
	summary := ParentSummary{Lists: make([]ListSummary, 0, len(lists))}

	for _, l := range lists {
		purchased := CountPurchased(l.Items)
		total := ComputeTotal(l.Items)
		value := ComputePurchasedValue(l.Items)

		row := ListSummary{
			ID:             l.ID,
			Name:           l.Name,
			Level:          l.Level.Label(),
			Items:          len(l.Items),
			Purchased:      purchased,
			Progress:       ComputeProgress(l.Items),
			PurchasedValue: value,
			Total:          total,
		}
		if l.Owner != nil {
			row.Teacher = l.Owner.Name
		}
		summary.Lists = append(summary.Lists, row)

		summary.TotalItems += len(l.Items)
		summary.TotalPurchased += purchased
		summary.TotalCost += total
		summary.PurchasedCost += value
	}

	summary.TotalLists = len(lists)
	summary.TotalPending = summary.TotalItems - summary.TotalPurchased
	summary.Percent = Percent(summary.TotalPurchased, summary.TotalItems)
	summary.PendingCost = summary.TotalCost - summary.PurchasedCost

	return summary
}
