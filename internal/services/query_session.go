package services

import (
	"context"

	"github.com/sjperalta/bufete-api/internal/models"
	"github.com/sjperalta/bufete-api/internal/statemachine"
)

// AuditSession is one actor's browsing state over the activity log. Every
// Resolve recomputes from the current snapshot; nothing is cached.
type AuditSession struct {
	svc   *AuditService
	actor models.Actor
	state *statemachine.QuerySession[AuditFilter]
}

// NewSession starts an idle session for actor
func (s *AuditService) NewSession(actor models.Actor) *AuditSession {
	return &AuditSession{
		svc:   s,
		actor: actor,
		state: statemachine.NewQuerySession[AuditFilter](),
	}
}

// ApplyFilter parses raw input, replaces the filter and goes back to page 1.
// An invalid filter leaves the session untouched.
func (a *AuditSession) ApplyFilter(ctx context.Context, in AuditFilterInput) error {
	filter, err := ParseAuditFilter(in, a.svc.Location())
	if err != nil {
		return err
	}
	return a.state.SetFilter(ctx, filter)
}

// GoToPage requests page; out of range values are clamped on Resolve
func (a *AuditSession) GoToPage(ctx context.Context, page int) error {
	return a.state.SetPage(ctx, page)
}

// Reset clears the filter
func (a *AuditSession) Reset(ctx context.Context) error {
	return a.state.Reset(ctx)
}

// Resolve runs the query for the current state
func (a *AuditSession) Resolve(ctx context.Context) (AuditQueryResult, error) {
	filter, page := a.state.State()
	res, err := a.svc.Query(ctx, a.actor, filter, page)
	if err != nil {
		return AuditQueryResult{}, err
	}
	if err := a.state.Settle(ctx, res.Pagination.Page); err != nil {
		return AuditQueryResult{}, err
	}
	return res, nil
}

// State returns the session state name
func (a *AuditSession) State() string {
	return a.state.Current()
}
