package service

import (
	"context"
	"errors"

	"github.com/roboclean/ops-sync/internal/taxonomy"
)

type TaxonomyService struct {
	expander *taxonomy.Expander
}

func NewTaxonomyService(expander *taxonomy.Expander) *TaxonomyService {
	return &TaxonomyService{expander: expander}
}

func (s *TaxonomyService) ExpandLocation(ctx context.Context, locationID string) (taxonomy.Result, error) {
	result, err := s.expander.Expand(ctx, locationID)
	if err != nil {
		if errors.Is(err, taxonomy.ErrLocationNotFound) {
			return taxonomy.Result{}, NewErrLocationNotFound(locationID)
		}
		return taxonomy.Result{}, err
	}
	return result, nil
}
