package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rubiojr/agentscope/pkg/core"
)

// fakeSource is an in-memory IndexedSource that performs no native filtering.
type fakeSource struct {
	agents  []core.AgentSummary
	records []core.AgentRecord
	err     error

	searchCalls []searchCall
	repCalls    []repCall
}

type searchCall struct {
	params        core.SearchParams
	limit, offset int
}

type repCall struct {
	criteria           core.ReputationCriteria
	limit, offset      int
	orderBy, direction string
}

func (f *fakeSource) GetByID(_ context.Context, id string) (*core.AgentSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.agents {
		if f.agents[i].AgentID == id || f.agents[i].Key() == id {
			a := f.agents[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (f *fakeSource) Search(_ context.Context, params core.SearchParams, limit, offset int) ([]core.AgentSummary, error) {
	f.searchCalls = append(f.searchCalls, searchCall{params, limit, offset})
	if f.err != nil {
		return nil, f.err
	}
	if offset >= len(f.agents) {
		return nil, nil
	}
	end := min(offset+limit, len(f.agents))
	out := make([]core.AgentSummary, end-offset)
	copy(out, f.agents[offset:end])
	return out, nil
}

func (f *fakeSource) SearchByReputation(_ context.Context, c core.ReputationCriteria, limit, offset int, orderBy, direction string) ([]core.AgentRecord, error) {
	f.repCalls = append(f.repCalls, repCall{c, limit, offset, orderBy, direction})
	if f.err != nil {
		return nil, f.err
	}
	if offset >= len(f.records) {
		return nil, nil
	}
	end := min(offset+limit, len(f.records))
	return f.records[offset:end], nil
}

func agent(id string, mcp bool) core.AgentSummary {
	a := core.AgentSummary{ChainID: 1, AgentID: id, Name: "agent " + id, MCP: mcp}
	a.Normalize()
	return a
}

func agents(n int) []core.AgentSummary {
	out := make([]core.AgentSummary, n)
	for i := range out {
		out[i] = agent(fmt.Sprintf("%d", i), i%2 == 0)
	}
	return out
}

func records(n int) []core.AgentRecord {
	out := make([]core.AgentRecord, n)
	for i := range out {
		out[i] = core.AgentRecord{ChainID: "1", AgentID: fmt.Sprintf("%d", i)}
	}
	return out
}

func TestGetAgent(t *testing.T) {
	src := &fakeSource{agents: []core.AgentSummary{agent("1", true)}}
	svc := NewService(src)

	got, err := svc.GetAgent(context.Background(), "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(src.agents[0], *got); diff != "" {
		t.Errorf("agent should pass through unchanged (-want +got):\n%s", diff)
	}
}

func TestGetAgentMissing(t *testing.T) {
	svc := NewService(&fakeSource{})

	_, err := svc.GetAgent(context.Background(), "missing-id")
	var nf *core.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if !strings.Contains(err.Error(), "missing-id") {
		t.Errorf("expected id in error message, got %q", err.Error())
	}
}

type stubChain struct {
	agent *core.AgentSummary
	err   error
}

func (s stubChain) LoadAgent(context.Context, string) (*core.AgentSummary, error) {
	return s.agent, s.err
}

func TestGetAgentChainReader(t *testing.T) {
	onChain := agent("9", false)

	svc := NewService(&fakeSource{}, WithChainReader(stubChain{agent: &onChain}))
	got, err := svc.GetAgent(context.Background(), "9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AgentID != "9" {
		t.Errorf("expected agent 9 from chain reader, got %q", got.AgentID)
	}

	boom := errors.New("rpc down")
	svc = NewService(&fakeSource{}, WithChainReader(stubChain{err: boom}))
	if _, err := svc.GetAgent(context.Background(), "9"); !errors.Is(err, boom) {
		t.Errorf("expected chain reader error to propagate, got %v", err)
	}
}

func TestUnconfiguredService(t *testing.T) {
	svc := NewService(nil)
	ctx := context.Background()

	if svc.Configured() {
		t.Fatal("service without source reports configured")
	}

	_, err := svc.GetAgent(ctx, "1")
	assertConfigurationError(t, err)

	_, err = svc.SearchAgents(ctx, nil, 10, "")
	assertConfigurationError(t, err)

	_, err = svc.SearchAgentsByReputation(ctx, core.ReputationQuery{})
	assertConfigurationError(t, err)
}

func assertConfigurationError(t *testing.T, err error) {
	t.Helper()
	var ce *core.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if !errors.Is(err, core.ErrNoSource) {
		t.Errorf("expected error to match ErrNoSource")
	}
}

func TestSearchAgentsMCPExample(t *testing.T) {
	src := &fakeSource{agents: []core.AgentSummary{
		agent("a", true), agent("b", true), agent("c", true),
		agent("d", false), agent("e", false),
	}}
	svc := NewService(src)

	res, err := svc.SearchAgents(context.Background(), &core.SearchParams{MCP: core.Bool(true)}, 2, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(res.Items))
	}
	for _, a := range res.Items {
		if !a.MCP {
			t.Errorf("agent %s is not mcp capable", a.AgentID)
		}
	}
	if res.NextCursor != "2" {
		t.Errorf("expected next cursor \"2\", got %q", res.NextCursor)
	}

	call := src.searchCalls[0]
	if call.limit != 3 || call.offset != 0 {
		t.Errorf("expected fetch of 3 at offset 0, got %d at %d", call.limit, call.offset)
	}
	if call.params.MCP == nil || !*call.params.MCP {
		t.Error("criteria should be passed to the source in full")
	}
}

func TestSearchAgentsDefaults(t *testing.T) {
	src := &fakeSource{agents: agents(3)}
	svc := NewService(src)

	res, err := svc.SearchAgents(context.Background(), nil, 0, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Items) != 3 || res.HasMore() {
		t.Errorf("expected 3 items and no cursor, got %d items cursor %q", len(res.Items), res.NextCursor)
	}
	if got := src.searchCalls[0].limit; got != DefaultPageSize+1 {
		t.Errorf("expected default fetch of %d, got %d", DefaultPageSize+1, got)
	}
}

func TestSearchAgentsEmptyResultHasItems(t *testing.T) {
	svc := NewService(&fakeSource{})
	res, err := svc.SearchAgents(context.Background(), nil, 5, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Items == nil {
		t.Error("items should be an empty slice, not nil")
	}
}

func TestSearchAgentsCursorRoundTrip(t *testing.T) {
	src := &fakeSource{agents: agents(11)}
	svc := NewService(src)
	ctx := context.Background()

	var seen []string
	cursor := ""
	for pages := 0; ; pages++ {
		if pages > 10 {
			t.Fatal("pagination did not terminate")
		}
		res, err := svc.SearchAgents(ctx, nil, 4, cursor)
		if err != nil {
			t.Fatalf("page %d: %v", pages, err)
		}
		if len(res.Items) > 4 {
			t.Fatalf("page %d has %d items, more than page size", pages, len(res.Items))
		}
		for _, a := range res.Items {
			seen = append(seen, a.AgentID)
		}
		if !res.HasMore() {
			break
		}
		cursor = res.NextCursor
	}

	var want []string
	for _, a := range src.agents {
		want = append(want, a.AgentID)
	}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Errorf("pages overlap or leave gaps (-want +got):\n%s", diff)
	}
}

func TestSearchAgentsIdempotent(t *testing.T) {
	svc := NewService(&fakeSource{agents: agents(9)})
	params := &core.SearchParams{MCP: core.Bool(true)}

	first, err := svc.SearchAgents(context.Background(), params, 3, "1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.SearchAgents(context.Background(), params, 3, "1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated search differs (-first +second):\n%s", diff)
	}
}

func TestSearchAgentsShortPageWithoutCursor(t *testing.T) {
	// The fetched window holds one match; more matches exist further along but
	// the over-fetch cannot see them.
	src := &fakeSource{agents: []core.AgentSummary{
		agent("a", true), agent("b", false), agent("c", false),
		agent("d", true), agent("e", true),
	}}
	svc := NewService(src)

	res, err := svc.SearchAgents(context.Background(), &core.SearchParams{MCP: core.Bool(true)}, 2, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Items) != 1 || res.HasMore() {
		t.Errorf("expected a single item without cursor, got %d items cursor %q", len(res.Items), res.NextCursor)
	}
}

func TestSearchAgentsInvalidCursor(t *testing.T) {
	for _, cursor := range []string{"abc", "-3", "1.5", "NaN"} {
		t.Run(cursor, func(t *testing.T) {
			src := &fakeSource{agents: agents(3)}
			svc := NewService(src)

			_, err := svc.SearchAgents(context.Background(), nil, 2, cursor)
			var ice *core.InvalidCursorError
			if !errors.As(err, &ice) {
				t.Fatalf("expected InvalidCursorError, got %v", err)
			}
			if len(src.searchCalls) != 0 {
				t.Error("source must not be queried with an invalid cursor")
			}
		})
	}
}

func TestSearchAgentsSourceErrorVerbatim(t *testing.T) {
	boom := errors.New("index unavailable")
	svc := NewService(&fakeSource{err: boom})

	_, err := svc.SearchAgents(context.Background(), nil, 5, "")
	if err != boom {
		t.Errorf("expected source error verbatim, got %v", err)
	}
}

func TestSearchAgentsByReputationCursor(t *testing.T) {
	tests := []struct {
		name       string
		available  int
		first      int
		skip       int
		wantItems  int
		wantCursor string
	}{
		{"full page", 50, 50, 0, 50, "50"},
		{"short page", 12, 50, 0, 12, ""},
		{"full page after skip", 200, 50, 100, 50, "150"},
		{"default first", 60, 0, 0, 50, "50"},
		{"exhausted", 10, 5, 10, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&fakeSource{records: records(tt.available)})
			res, err := svc.SearchAgentsByReputation(context.Background(), core.ReputationQuery{First: tt.first, Skip: tt.skip})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(res.Items) != tt.wantItems {
				t.Errorf("items: expected %d, got %d", tt.wantItems, len(res.Items))
			}
			if res.NextCursor != tt.wantCursor {
				t.Errorf("cursor: expected %q, got %q", tt.wantCursor, res.NextCursor)
			}
		})
	}
}

func TestSearchAgentsByReputationDelegation(t *testing.T) {
	src := &fakeSource{}
	svc := NewService(src)
	score := 70.0

	q := core.ReputationQuery{
		ReputationCriteria: core.ReputationCriteria{
			Tags:            []string{"fast"},
			MinAverageScore: &score,
			IncludeRevoked:  true,
		},
		First: 10,
		Skip:  -4,
		Sort:  []string{"score:asc", "name:desc"},
	}
	if _, err := svc.SearchAgentsByReputation(context.Background(), q); err != nil {
		t.Fatal(err)
	}

	call := src.repCalls[0]
	if call.orderBy != "score" || call.direction != "asc" {
		t.Errorf("expected score/asc, got %s/%s", call.orderBy, call.direction)
	}
	if call.limit != 10 || call.offset != 0 {
		t.Errorf("expected limit 10 offset 0, got %d/%d", call.limit, call.offset)
	}
	if diff := cmp.Diff(q.ReputationCriteria, call.criteria); diff != "" {
		t.Errorf("criteria not forwarded (-want +got):\n%s", diff)
	}
}

func TestSearchAgentsByReputationWrapsErrors(t *testing.T) {
	boom := errors.New("subgraph timeout")
	svc := NewService(&fakeSource{err: boom})

	_, err := svc.SearchAgentsByReputation(context.Background(), core.ReputationQuery{})
	var se *core.SearchError
	if !errors.As(err, &se) {
		t.Fatalf("expected SearchError, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Error("SearchError should wrap the source failure")
	}
	if !strings.Contains(err.Error(), "subgraph timeout") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestSearchAgentsByReputationNormalizes(t *testing.T) {
	score := 91.0
	src := &fakeSource{records: []core.AgentRecord{{
		ChainID:      "84532",
		AgentID:      "3",
		Owner:        "0xOWNER",
		Operators:    []string{"0xOP"},
		AverageScore: &score,
		Registration: &core.Registration{
			Name:        "Helper",
			A2AEndpoint: "https://a2a.example.com",
			ENS:         "Helper.ETH",
		},
	}}}
	svc := NewService(src)

	res, err := svc.SearchAgentsByReputation(context.Background(), core.ReputationQuery{})
	if err != nil {
		t.Fatal(err)
	}
	got := res.Items[0]
	if got.ChainID != 84532 || !got.A2A || got.MCP {
		t.Errorf("unexpected flattening: %+v", got)
	}
	if got.Owners[0] != "0xowner" || got.Operators[0] != "0xop" || got.ENS != "helper.eth" {
		t.Errorf("address fields not normalized: %+v", got)
	}
	if s, ok := got.AverageScore(); !ok || s != 91.0 {
		t.Errorf("expected average score 91 in extras, got %v %v", s, ok)
	}
}

// endlessSource always returns full batches, whatever the offset.
type endlessSource struct {
	searchLimits []int
	repLimits    []int
}

func (e *endlessSource) GetByID(context.Context, string) (*core.AgentSummary, error) {
	return nil, nil
}

func (e *endlessSource) Search(_ context.Context, _ core.SearchParams, limit, _ int) ([]core.AgentSummary, error) {
	e.searchLimits = append(e.searchLimits, limit)
	return agents(limit), nil
}

func (e *endlessSource) SearchByReputation(_ context.Context, _ core.ReputationCriteria, limit, _ int, _, _ string) ([]core.AgentRecord, error) {
	e.repLimits = append(e.repLimits, limit)
	return records(limit), nil
}

func TestSearchAgentsCapsPageSize(t *testing.T) {
	for _, size := range []int{MaxPageSize + 1, 1 << 40, math.MaxInt} {
		t.Run(fmt.Sprint(size), func(t *testing.T) {
			src := &endlessSource{}
			res, err := NewService(src).SearchAgents(context.Background(), nil, size, "")
			if err != nil {
				t.Fatal(err)
			}
			if src.searchLimits[0] != MaxPageSize+1 {
				t.Errorf("expected source limit %d, got %d", MaxPageSize+1, src.searchLimits[0])
			}
			if len(res.Items) != MaxPageSize || res.NextCursor != EncodeCursor(MaxPageSize) {
				t.Errorf("got %d items, cursor %q", len(res.Items), res.NextCursor)
			}
		})
	}
}

func TestSearchAgentsByReputationCapsFirst(t *testing.T) {
	src := &endlessSource{}
	res, err := NewService(src).SearchAgentsByReputation(context.Background(), core.ReputationQuery{First: math.MaxInt})
	if err != nil {
		t.Fatal(err)
	}
	if src.repLimits[0] != MaxPageSize || len(res.Items) != MaxPageSize {
		t.Errorf("expected %d records, source limit %d, got %d items", MaxPageSize, src.repLimits[0], len(res.Items))
	}
	if res.NextCursor != strconv.Itoa(MaxPageSize) {
		t.Errorf("expected cursor %d, got %q", MaxPageSize, res.NextCursor)
	}
}

func TestCursorNearMaxOffset(t *testing.T) {
	svc := NewService(&endlessSource{})
	ctx := context.Background()

	res, err := svc.SearchAgents(ctx, nil, 10, EncodeCursor(math.MaxInt-3))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Items) != 10 || res.NextCursor != "" {
		t.Errorf("got %d items, cursor %q", len(res.Items), res.NextCursor)
	}

	rep, err := svc.SearchAgentsByReputation(ctx, core.ReputationQuery{First: 10, Skip: math.MaxInt - 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Items) != 10 || rep.NextCursor != "" {
		t.Errorf("got %d items, cursor %q", len(rep.Items), rep.NextCursor)
	}
}
