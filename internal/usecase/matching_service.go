package usecase

import (
	"context"
	"log/slog"
	"slices"

	"github.com/listmatch/backend/internal/domain"
)

// Scoring weights
const (
	modelMatchScore  = 1 // Model appears as a bounded token sequence
	familyMatchBonus = 1 // Declared family appears as well
	noMatchScore     = 0
)

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	EnableDebugLogging bool
	Logger             *slog.Logger
}

// MatchingService scores catalog products against listing titles and
// picks the single best candidate.
type MatchingService struct {
	enableDebugLogging bool
	logger             *slog.Logger
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(config MatchConfig) *MatchingService {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &MatchingService{
		enableDebugLogging: config.EnableDebugLogging,
		logger:             logger.With("component", "match"),
	}
}

// Score returns the match quality of product p for a listing title.
// Zero means the product is not a plausible referent.
func (s *MatchingService) Score(p *domain.Product, title string) int {
	return scoreProduct(p, tokenizeTitle(title))
}

// scoreProduct applies the gates in order: model, accessory exclusion,
// family. Passing all of them earns the base score plus bonuses.
func scoreProduct(p *domain.Product, title tokenizedTitle) int {
	model := phrase(p.Model)
	at := title.occurrences(model)
	if len(at) == 0 {
		return noMatchScore
	}

	// "... Kit for Nikon D300s, D300, D3000 ..." sells an accessory, not the camera.
	if kw := title.firstKeyword(accessoryKeyword); kw >= 0 && at[len(at)-1] > kw {
		return noMatchScore
	}

	score := modelMatchScore
	if p.HasFamily() {
		if !title.contains(phrase(p.Family)) {
			return noMatchScore
		}
		score += familyMatchBonus
	}

	if title.contains(spacedName(p.Name)) {
		score += nameLength(p.Name)
	}

	return score
}

// rankCandidates scores every candidate and returns the non-zero ones,
// highest score first. Equal scores keep candidate order.
func (s *MatchingService) rankCandidates(
	ctx context.Context,
	title string,
	candidates []*domain.Product,
) ([]scoredProduct, error) {
	tokens := tokenizeTitle(title)

	ranked := make([]scoredProduct, 0, len(candidates))
	for i, p := range candidates {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		score := scoreProduct(p, tokens)

		if s.enableDebugLogging {
			s.logger.Debug("scored candidate",
				"title", title,
				"product", p.Name,
				"model", p.Model,
				"family", p.Family,
				"score", score)
		}

		if score > noMatchScore {
			ranked = append(ranked, scoredProduct{product: p, index: i, score: score})
		}
	}

	slices.SortStableFunc(ranked, func(a, b scoredProduct) int {
		return b.score - a.score
	})

	return ranked, nil
}

// FindBestMatch returns the highest-scoring candidate for title. Ties go to
// the candidate that appears first. Returns ErrNoCandidates if every
// candidate scores zero.
func (s *MatchingService) FindBestMatch(
	ctx context.Context,
	title string,
	candidates []*domain.Product,
) (*domain.MatchResult, int, error) {
	ranked, err := s.rankCandidates(ctx, title, candidates)
	if err != nil {
		return nil, -1, err
	}
	if len(ranked) == 0 {
		return nil, -1, domain.ErrNoCandidates
	}

	best := ranked[0]
	if s.enableDebugLogging {
		s.logger.Debug("best match", "title", title, "product", best.product.Name, "score", best.score)
	}

	return &domain.MatchResult{
		Matched:     true,
		ProductName: best.product.Name,
		Score:       best.score,
		Candidates:  candidateScores(ranked),
	}, best.index, nil
}

// scoredProduct is a candidate with its score and position in the bucket
type scoredProduct struct {
	product *domain.Product
	index   int
	score   int
}

func candidateScores(ranked []scoredProduct) []domain.CandidateScore {
	out := make([]domain.CandidateScore, len(ranked))
	for i, r := range ranked {
		out[i] = domain.CandidateScore{
			ProductName: r.product.Name,
			Model:       r.product.Model,
			Family:      r.product.Family,
			Score:       r.score,
		}
	}
	return out
}

// ScoreCandidates returns the ranked non-zero scores for title without
// selecting or recording anything.
func (s *MatchingService) ScoreCandidates(
	ctx context.Context,
	title string,
	candidates []*domain.Product,
) ([]domain.CandidateScore, error) {
	ranked, err := s.rankCandidates(ctx, title, candidates)
	if err != nil {
		return nil, err
	}
	return candidateScores(ranked), nil
}
