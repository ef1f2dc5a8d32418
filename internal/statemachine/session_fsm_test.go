package statemachine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFilter struct {
	Query string
}

func TestQuerySession_StartsIdleOnFirstPage(t *testing.T) {
	s := NewQuerySession[testFilter]()

	f, page := s.State()
	assert.Equal(t, SessionIdle, s.Current())
	assert.Equal(t, testFilter{}, f)
	assert.Equal(t, 1, page)
	assert.False(t, s.Can(EventReset))
}

func TestQuerySession_FilterChangeResetsPage(t *testing.T) {
	ctx := context.Background()
	s := NewQuerySession[testFilter]()

	require.NoError(t, s.SetPage(ctx, 4))
	assert.Equal(t, SessionPaginated, s.Current())

	require.NoError(t, s.SetFilter(ctx, testFilter{Query: "contrato"}))
	f, page := s.State()
	assert.Equal(t, SessionFiltering, s.Current())
	assert.Equal(t, "contrato", f.Query)
	assert.Equal(t, 1, page)
}

func TestQuerySession_RepeatedEventsAreNotErrors(t *testing.T) {
	ctx := context.Background()
	s := NewQuerySession[testFilter]()

	require.NoError(t, s.SetFilter(ctx, testFilter{Query: "a"}))
	require.NoError(t, s.SetFilter(ctx, testFilter{Query: "b"}))
	require.NoError(t, s.SetPage(ctx, 2))
	require.NoError(t, s.SetPage(ctx, 3))

	f, page := s.State()
	assert.Equal(t, "b", f.Query)
	assert.Equal(t, 3, page)
}

func TestQuerySession_Reset(t *testing.T) {
	ctx := context.Background()
	s := NewQuerySession[testFilter]()

	require.NoError(t, s.Reset(ctx))
	require.NoError(t, s.SetFilter(ctx, testFilter{Query: "x"}))
	require.NoError(t, s.SetPage(ctx, 5))
	require.NoError(t, s.Reset(ctx))

	f, page := s.State()
	assert.Equal(t, SessionIdle, s.Current())
	assert.Equal(t, testFilter{}, f)
	assert.Equal(t, 1, page)
}

func TestQuerySession_Settle(t *testing.T) {
	ctx := context.Background()
	s := NewQuerySession[testFilter]()

	require.NoError(t, s.Settle(ctx, 1))
	assert.Equal(t, SessionIdle, s.Current())

	require.NoError(t, s.SetPage(ctx, 99))
	require.NoError(t, s.Settle(ctx, 3))
	_, page := s.State()
	assert.Equal(t, 3, page)
	assert.Equal(t, SessionPaginated, s.Current())

	require.NoError(t, s.SetFilter(ctx, testFilter{Query: "demanda"}))
	assert.Equal(t, SessionFiltering, s.Current())
	require.NoError(t, s.Settle(ctx, 1))
	assert.Equal(t, SessionPaginated, s.Current())
	assert.False(t, s.Can(EventSettle))
}
