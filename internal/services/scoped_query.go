package services

import (
	"time"

	"github.com/sjperalta/bufete-api/internal/metrics"
	"github.com/sjperalta/bufete-api/internal/models"
	"github.com/sjperalta/bufete-api/internal/policy"
	"github.com/sjperalta/bufete-api/internal/query"
)

// Pagination is the page metadata returned with every listing
type Pagination struct {
	Page      int `json:"page"`
	PageCount int `json:"page_count"`
	PerPage   int `json:"per_page"`
	Total     int `json:"total"`
}

// ScopedResult is what a role-scoped listing returns. HasAccess=false means the
// role may not see this domain at all, which is different from zero matches.
type ScopedResult[T any, S any] struct {
	Role          models.Role         `json:"role"`
	HasAccess     bool                `json:"has_access"`
	AccessMessage string              `json:"access_message,omitempty"`
	Capabilities  policy.Capabilities `json:"capabilities"`
	Copy          policy.Copy         `json:"copy"`
	Records       []T                 `json:"records"`
	Stats         S                   `json:"stats"`
	Pagination    Pagination          `json:"pagination"`

	// Visible is the whole filtered set, used for exports
	Visible []T `json:"-"`
}

// runScoped resolves the actor's policy and runs the shared pipeline
func runScoped[T any, S any](
	reg *policy.Registry[T],
	snapshot []T,
	actor models.Actor,
	filters []query.Predicate[T],
	aggregate func([]T) S,
	page, size int,
) (ScopedResult[T, S], error) {
	start := time.Now()

	pol, err := reg.Resolve(actor.Role)
	if err != nil {
		metrics.ObserveQuery(reg.Domain(), "unknown", metrics.OutcomeUnknownRole, time.Since(start))
		return ScopedResult[T, S]{}, err
	}

	res := query.Run(snapshot, query.Plan[T, S]{
		Scope:     pol.Bind(actor),
		Filters:   filters,
		Aggregate: aggregate,
	}, page, size)

	out := ScopedResult[T, S]{
		Role:         actor.Role,
		HasAccess:    pol.Capabilities.HasAccess,
		Capabilities: pol.Capabilities,
		Copy:         pol.Copy,
		Records:      res.Page.Items,
		Stats:        res.Stats,
		Pagination: Pagination{
			Page:      res.Page.Number,
			PageCount: res.Page.Count,
			PerPage:   res.Page.Size,
			Total:     res.Page.Total,
		},
		Visible: res.Visible,
	}

	outcome := metrics.OutcomeOK
	if !out.HasAccess {
		out.AccessMessage = pol.Copy.NoAccess
		outcome = metrics.OutcomeNoAccess
	}
	metrics.ObserveQuery(reg.Domain(), string(actor.Role), outcome, time.Since(start))

	return out, nil
}
