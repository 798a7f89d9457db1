package query

import (
	"log/slog"

	"github.com/MikeSquared-Agency/resortinfo/internal/chunker"
	"github.com/MikeSquared-Agency/resortinfo/internal/dataset"
)

// Request carries the arguments shared by the filter endpoints.
type Request struct {
	PrimaryName       string              `json:"primary_name"`
	Source            string              `json:"source"`
	AdditionalFilters []dataset.Predicate `json:"additional_filters,omitempty"`
	ChunkNumber       *int                `json:"chunk_number,omitempty"`
}

// Result is a page of filtered records plus pagination metadata.
type Result struct {
	Data     []dataset.Record `json:"data"`
	Metadata Metadata         `json:"metadata"`
}

type Metadata struct {
	TotalCount          int  `json:"total_count"`
	Chunked             bool `json:"chunked"`
	TotalChunks         int  `json:"total_chunks,omitempty"`
	CurrentChunk        int  `json:"current_chunk,omitempty"`
	EstimatedTokenCount int  `json:"estimated_token_count"`
}

// Service answers filter, chunk and catalog queries over a dataset.Source.
type Service struct {
	source *dataset.Source
	budget int
	logger *slog.Logger
}

func New(source *dataset.Source, budget int, logger *slog.Logger) *Service {
	if budget <= 0 {
		budget = chunker.DefaultBudget
	}
	return &Service{source: source, budget: budget, logger: logger}
}

// Budget returns the token budget responses are chunked against.
func (s *Service) Budget() int {
	return s.budget
}

// FilterInformation returns the filtered records whole when they fit the
// budget, otherwise the first chunk.
func (s *Service) FilterInformation(req Request) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	recs, err := s.load(req)
	if err != nil {
		return nil, err
	}

	tokens := chunker.EstimateTokens(recs)
	if tokens <= s.budget {
		s.logger.Debug("filter served unchunked",
			"primary_name", req.PrimaryName,
			"source", req.Source,
			"matches", len(recs),
			"tokens", tokens,
		)
		return &Result{
			Data: recs,
			Metadata: Metadata{
				TotalCount:          len(recs),
				Chunked:             false,
				EstimatedTokenCount: tokens,
			},
		}, nil
	}

	chunks := chunker.Chunk(recs, s.budget)
	return s.page(req, recs, chunks, 1), nil
}

// GetChunk always chunks the filtered records and returns the 1-based
// chunk req.ChunkNumber.
func (s *Service) GetChunk(req Request) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.ChunkNumber == nil {
		return nil, invalidArgument("chunk_number is required")
	}
	if *req.ChunkNumber < 1 {
		return nil, invalidArgument("invalid chunk number")
	}

	recs, err := s.load(req)
	if err != nil {
		return nil, err
	}

	chunks := chunker.Chunk(recs, s.budget)
	if *req.ChunkNumber > len(chunks) {
		return nil, invalidArgument("invalid chunk number")
	}
	return s.page(req, recs, chunks, *req.ChunkNumber), nil
}

func (s *Service) load(req Request) ([]dataset.Record, error) {
	all, err := s.source.Load(req.PrimaryName, req.Source)
	if err != nil {
		return nil, classify(err)
	}
	return dataset.Filter(all, req.AdditionalFilters), nil
}

func (s *Service) page(req Request, recs []dataset.Record, chunks [][]dataset.Record, n int) *Result {
	data := chunks[n-1]
	tokens := chunker.EstimateTokens(data)

	s.logger.Debug("filter served chunk",
		"primary_name", req.PrimaryName,
		"source", req.Source,
		"matches", len(recs),
		"chunk", n,
		"total_chunks", len(chunks),
		"tokens", tokens,
	)

	return &Result{
		Data: data,
		Metadata: Metadata{
			TotalCount:          len(recs),
			Chunked:             true,
			TotalChunks:         len(chunks),
			CurrentChunk:        n,
			EstimatedTokenCount: tokens,
		},
	}
}

func validate(req Request) error {
	if req.PrimaryName == "" || req.Source == "" {
		return invalidArgument("primary_name and source are required")
	}
	return nil
}
