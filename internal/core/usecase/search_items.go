package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/goncalofm90/foodi3/internal/contextkeys"
	"github.com/goncalofm90/foodi3/internal/core/domain"
	"github.com/goncalofm90/foodi3/internal/core/port"
	"github.com/goncalofm90/foodi3/internal/core/session"
)

// DefaultQuery is what the list pages search for before the user types.
const DefaultQuery = "a"

type SearchItemsUseCase struct {
	sources  map[domain.ItemKind]port.ContentSourcePort
	sessions *session.Registry
}

func NewSearchItemsUseCase(sessions *session.Registry, sources ...port.ContentSourcePort) *SearchItemsUseCase {
	return &SearchItemsUseCase{sources: sourcesByKind(sources), sessions: sessions}
}

func sourcesByKind(sources []port.ContentSourcePort) map[domain.ItemKind]port.ContentSourcePort {
	m := make(map[domain.ItemKind]port.ContentSourcePort, len(sources))
	for _, s := range sources {
		m[s.Kind()] = s
	}
	return m
}

func (uc *SearchItemsUseCase) Execute(ctx context.Context, kind domain.ItemKind, query, userID string) (*domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		query = DefaultQuery
	}
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "SearchItems",
		"kind":     kind,
		"query":    query,
		"user_id":  userID,
	})
	ucLogger.Info("Use case started", nil)

	source, ok := uc.sources[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownItemKind, kind)
	}

	items, err := source.Search(ctx, query)
	if err != nil {
		ucLogger.Error("Content source search failed", err, nil)
		return nil, err
	}

	result := &domain.SearchResult{Kind: kind, Query: query, Items: make([]domain.AnnotatedItem, 0, len(items))}
	annotate := annotator(ctx, uc.sessions, userID, ucLogger)
	for _, item := range items {
		result.Items = append(result.Items, domain.AnnotatedItem{DisplayItem: item, FavouriteMark: annotate(item.ID)})
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"results": len(result.Items)})
	return result, nil
}

// annotator returns a lookup of favourite marks for the caller. Anonymous
// callers, and callers whose index cannot be loaded, get empty marks.
func annotator(ctx context.Context, sessions *session.Registry, userID string, logger port.LoggerPort) func(itemID string) domain.FavouriteMark {
	empty := func(string) domain.FavouriteMark { return domain.FavouriteMark{} }
	if userID == "" || sessions == nil {
		return empty
	}
	s, err := loadedSession(ctx, sessions, userID, logger)
	if err != nil {
		logger.Warn("Results returned without favourite marks", port.Fields{"error": err.Error()})
		return empty
	}
	snapshot := s.Snapshot()
	return func(itemID string) domain.FavouriteMark {
		return domain.MarkFromSnapshot(snapshot, itemID, s.State(itemID))
	}
}
