package service

import (
	"context"

	"github.com/andresuchdata/pomonitor/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// ImportFailure records why one input of a batch was rejected.
type ImportFailure struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// ImportResult summarizes a batch import.
type ImportResult struct {
	Created []int64         `json:"created"`
	Failed  []ImportFailure `json:"failed"`
}

// Import creates each input in order. Rows that fail validation are
// reported and skipped; a storage failure aborts the batch.
func (s *POService) Import(ctx context.Context, inputs []domain.PurchaseOrderInput) (*ImportResult, error) {
	result := &ImportResult{
		Created: make([]int64, 0, len(inputs)),
		Failed:  make([]ImportFailure, 0),
	}

	for i, input := range inputs {
		created, err := s.Create(ctx, input)
		if err != nil {
			if _, ok := domain.AsValidation(err); ok {
				log.Warn().Err(err).Int("index", i).Msg("skipping invalid purchase order")
				result.Failed = append(result.Failed, ImportFailure{Index: i, Error: err.Error()})
				continue
			}
			return result, err
		}
		result.Created = append(result.Created, created.ID)
	}

	return result, nil
}
