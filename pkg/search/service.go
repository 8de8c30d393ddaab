package search

import (
	"context"
	"errors"
	"math"
	"strconv"

	"github.com/rubiojr/agentscope/pkg/core"
	"github.com/rubiojr/agentscope/pkg/log"
)

const (
	// DefaultPageSize is used when a search does not specify a positive page size.
	DefaultPageSize = 50
	// DefaultFirst is the default page size of reputation searches.
	DefaultFirst = 50
	// MaxPageSize caps the page size of both search kinds.
	MaxPageSize = 1000
)

var logger = log.ForService("search")

// Service is the discovery query engine. It holds references to its
// collaborators, assigned once at construction, and no other state: a Service is
// safe for concurrent use and every call works on its own fetched batch.
type Service struct {
	source core.IndexedSource
	chain  ChainReader
}

// Option configures a Service.
type Option func(*Service)

// WithChainReader replaces the strategy used when an id lookup misses the index.
func WithChainReader(r ChainReader) Option {
	return func(s *Service) {
		if r != nil {
			s.chain = r
		}
	}
}

// NewService creates a discovery engine over source. A nil source is accepted:
// the engine is then unconfigured and every operation fails with a
// *core.ConfigurationError.
//
// Parameters:
//   - source: The indexed source answering id, filtered and reputation queries
//   - opts: Optional settings such as WithChainReader
//
// Returns:
//   - *Service: A service ready to execute queries
func NewService(source core.IndexedSource, opts ...Option) *Service {
	s := &Service{
		source: source,
		chain:  UnsupportedChainReader{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configured reports whether an indexed source backs the service.
func (s *Service) Configured() bool {
	return s.source != nil
}

func (s *Service) requireSource() (core.IndexedSource, error) {
	if s.source == nil {
		return nil, &core.ConfigurationError{Reason: core.ErrNoSource.Error()}
	}
	return s.source, nil
}

// GetAgent looks up a single agent by id ("chainId:agentId" or a bare agent id).
//
// The indexed source is trusted to return the normalized shape, so a hit is
// returned unchanged. On a miss the chain reader is consulted; the default
// reader does not support direct chain access and the lookup fails with a
// *core.NotFoundError naming the id.
func (s *Service) GetAgent(ctx context.Context, agentID string) (*core.AgentSummary, error) {
	source, err := s.requireSource()
	if err != nil {
		return nil, err
	}

	agent, err := source.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if agent != nil {
		return agent, nil
	}

	logger.Debugf("agent %s not indexed, trying chain reader", agentID)
	agent, err = s.chain.LoadAgent(ctx, agentID)
	if err != nil {
		if errors.Is(err, core.ErrNotSupported) {
			return nil, &core.NotFoundError{ID: agentID}
		}
		return nil, err
	}
	if agent == nil {
		return nil, &core.NotFoundError{ID: agentID}
	}
	return agent, nil
}

// SearchAgents runs a filtered search and returns one page of results.
//
// The search operation:
//  1. Decodes the cursor into an offset (empty cursor means offset 0)
//  2. Fetches pageSize+1 records at that offset, passing every criterion to the source
//  3. Re-applies all criteria locally, whatever the source already did
//  4. Truncates to pageSize and issues a next cursor if the extra record survived
//
// A nil params value searches without criteria; a non-positive pageSize selects
// DefaultPageSize and larger ones are capped at MaxPageSize. Source failures are
// returned as is. No cursor is issued once the next offset would overflow an int.
func (s *Service) SearchAgents(ctx context.Context, params *core.SearchParams, pageSize int, cursor string) (*core.SearchResult, error) {
	source, err := s.requireSource()
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = &core.SearchParams{}
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pageSize = min(pageSize, MaxPageSize)

	offset, err := DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	records, err := source.Search(ctx, *params, pageSize+1, offset)
	if err != nil {
		return nil, err
	}

	items := Filter(records, params)
	logger.Debugf("offset %d: fetched %d, %d passed residual filter", offset, len(records), len(items))

	result := &core.SearchResult{Items: items}
	if len(items) > pageSize {
		result.Items = items[:pageSize]
		if offset <= math.MaxInt-pageSize {
			result.NextCursor = EncodeCursor(offset + pageSize)
		}
	}
	return result, nil
}

// SearchAgentsByReputation runs a reputation search and normalizes each nested
// record into an AgentSummary.
//
// Only the first sort entry is honoured (see ParseSort). A next cursor is issued
// when the page came back full, i.e. exactly q.First records (capped at
// MaxPageSize). Unlike SearchAgents, failures of the source are wrapped in a
// *core.SearchError.
func (s *Service) SearchAgentsByReputation(ctx context.Context, q core.ReputationQuery) (*core.SearchResult, error) {
	source, err := s.requireSource()
	if err != nil {
		return nil, err
	}

	first := q.First
	if first <= 0 {
		first = DefaultFirst
	}
	first = min(first, MaxPageSize)
	skip := q.Skip
	if skip < 0 {
		skip = 0
	}
	orderBy, direction := ParseSort(q.Sort)

	records, err := source.SearchByReputation(ctx, q.ReputationCriteria, first, skip, orderBy, direction)
	if err != nil {
		logger.Warnf("reputation search failed: %v", err)
		return nil, &core.SearchError{Err: err}
	}
	if len(records) > first {
		records = records[:first]
	}

	items := make([]core.AgentSummary, 0, len(records))
	for i := range records {
		items = append(items, records[i].Summary())
	}

	result := &core.SearchResult{Items: items}
	if len(items) == first && skip <= math.MaxInt-first {
		result.NextCursor = strconv.Itoa(skip + len(items))
	}
	return result, nil
}
