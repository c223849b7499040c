package handlers

import (
	"fmt"
	"net/http"

	"patient-activation/models"
)

type listFilter struct {
	status   models.Status
	priority models.Priority
	category models.Category
}

func parseListFilter(r *http.Request) (listFilter, error) {
	q := r.URL.Query()
	f := listFilter{
		status:   models.Status(q.Get("status")),
		priority: models.Priority(q.Get("priority")),
		category: models.Category(q.Get("category")),
	}
	if f.status != "" && !f.status.Valid() {
		return f, fmt.Errorf("invalid status filter %q", f.status)
	}
	if f.priority != "" && !f.priority.Valid() {
		return f, fmt.Errorf("invalid priority filter %q", f.priority)
	}
	if f.category != "" && !f.category.Valid() {
		return f, fmt.Errorf("invalid category filter %q", f.category)
	}
	return f, nil
}

// apply keeps the order of objectives.
func (f listFilter) apply(objectives []models.Objective) []models.Objective {
	if f == (listFilter{}) {
		return objectives
	}
	kept := make([]models.Objective, 0, len(objectives))
	for _, o := range objectives {
		if f.status != "" && o.Status != f.status {
			continue
		}
		if f.priority != "" && o.Priority != f.priority {
			continue
		}
		if f.category != "" && o.Category != f.category {
			continue
		}
		kept = append(kept, o)
	}
	return kept
}
