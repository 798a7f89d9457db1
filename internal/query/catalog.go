package query

import "sort"

// ListSources returns the source names available for a resort, sorted.
func (s *Service) ListSources(resort string) ([]string, error) {
	if resort == "" {
		return nil, invalidArgument("primary_name is required")
	}
	sources, err := s.source.ListSources(resort)
	if err != nil {
		return nil, classify(err)
	}
	sort.Strings(sources)
	return sources, nil
}

// GetSchema returns the column headers of a resort's source.
func (s *Service) GetSchema(resort, source string) ([]string, error) {
	if resort == "" || source == "" {
		return nil, invalidArgument("primary_name and source are required")
	}
	cols, err := s.source.Headers(resort, source)
	if err != nil {
		return nil, classify(err)
	}
	return cols, nil
}
