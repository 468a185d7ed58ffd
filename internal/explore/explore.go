// Package explore answers artist lookups by combining the local corpus, the
// name resolver, graph recommendations and Last.fm data into one response.
package explore

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sydlexius/songscape/internal/artist"
	"github.com/sydlexius/songscape/internal/document"
	"github.com/sydlexius/songscape/internal/metrics"
	"github.com/sydlexius/songscape/internal/recommend"
)

// Resolver maps free text onto a canonical artist name.
type Resolver interface {
	Resolve(query string) (artist.Resolved, bool)
}

// Store is the read side of the local corpus.
type Store interface {
	Names() []string
	Metadata(name string) (document.Document, bool)
	Lyrics(name string) document.Document
}

// Recommender ranks related artists from the similarity graph.
type Recommender interface {
	Recommend(name string, topN int) []string
}

// InfoGateway fetches remote artist data. Implementations return empty
// values instead of errors.
type InfoGateway interface {
	FetchProfile(ctx context.Context, name string) document.Document
	FetchSimilar(ctx context.Context, name string) []document.Document
}

// Service runs artist queries.
type Service struct {
	resolver    Resolver
	store       Store
	recommender Recommender
	gateway     InfoGateway
	topN        int
	logger      *slog.Logger
}

// NewService creates a Service. topN <= 0 uses recommend.DefaultTopN.
func NewService(resolver Resolver, store Store, recommender Recommender, gateway InfoGateway, topN int, logger *slog.Logger) *Service {
	if topN <= 0 {
		topN = recommend.DefaultTopN
	}
	return &Service{
		resolver:    resolver,
		store:       store,
		recommender: recommender,
		gateway:     gateway,
		topN:        topN,
		logger:      logger.With(slog.String("component", "explore")),
	}
}

// Query answers one lookup. A blank query lists every known artist, an
// unresolvable one yields an empty response, and anything else yields the
// combined artist result. Query never fails.
func (s *Service) Query(ctx context.Context, raw string) Response {
	q := strings.TrimSpace(raw)
	if q == "" {
		metrics.ArtistQueries.WithLabelValues("list").Inc()
		return Response{Mode: ModeList, AllArtists: s.store.Names()}
	}

	res, ok := s.resolver.Resolve(q)
	if !ok {
		metrics.ArtistQueries.WithLabelValues("none").Inc()
		s.logger.Debug("no artist matched", slog.String("query", q))
		return Response{Mode: ModeNoMatch}
	}
	metrics.ArtistQueries.WithLabelValues(string(res.Tier)).Inc()
	s.logger.Debug("artist resolved",
		slog.String("query", q),
		slog.String("name", res.Name),
		slog.String("tier", string(res.Tier)),
		slog.Float64("score", res.Score))

	return Response{Mode: ModeArtist, Artist: s.lookup(ctx, res.Name)}
}

func (s *Service) lookup(ctx context.Context, name string) *Result {
	meta, ok := s.store.Metadata(name)
	if !ok {
		meta = document.Empty()
	}
	result := &Result{
		Meta:        meta,
		Songs:       s.store.Lyrics(name),
		LocalRecs:   s.recommender.Recommend(name, s.topN),
		MatchedName: name,
	}

	var g errgroup.Group
	g.Go(func() error {
		result.LastFMInfo = s.gateway.FetchProfile(ctx, name)
		return nil
	})
	g.Go(func() error {
		result.LastFMSimilar = s.gateway.FetchSimilar(ctx, name)
		return nil
	})
	_ = g.Wait()

	return result
}
