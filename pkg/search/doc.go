// Package search implements the agent discovery query engine.
//
// # Overview
//
// The engine answers three questions against an indexed agent source:
//
//   - GetAgent: who is agent X?
//   - SearchAgents: which agents match these criteria? (cursor paginated)
//   - SearchAgentsByReputation: which agents have this feedback profile?
//
// It owns no data. Every call performs at most one query against the
// core.IndexedSource it was built with and transforms the result in memory.
//
// # Two-phase filtering
//
// Filtered searches hand every criterion to the source, which evaluates the ones
// it supports natively and ignores the rest. The engine then re-applies the full
// predicate (Matches) to each fetched record. The second pass is redundant for
// criteria the source did evaluate and is kept on purpose: results stay correct
// whatever subset of the filters a source implements.
//
// # Pagination
//
// Cursors are decimal offsets into the source's result order. SearchAgents
// fetches one record more than the page size; if more than a page survives the
// residual filter, the page is truncated and the next cursor points just past it.
//
// Because filtering happens after a fixed-size fetch, a page may come back short
// and without a cursor even though matching agents exist further along in the
// source. The cursor is a "probably more" signal, not an exact count.
//
// Reputation searches use a different rule: a full page (exactly First records)
// yields a cursor at Skip+First, a short page ends the listing.
//
// # Usage
//
//	svc := search.NewService(index)
//	page, err := svc.SearchAgents(ctx, &core.SearchParams{MCP: core.Bool(true)}, 20, "")
//	for page.HasMore() {
//		page, err = svc.SearchAgents(ctx, params, 20, page.NextCursor)
//	}
//
// # Errors
//
// Operations on a service without a source fail with *core.ConfigurationError.
// Lookup misses fail with *core.NotFoundError, malformed cursors with
// *core.InvalidCursorError. Source failures are returned verbatim, except in
// reputation searches where they are wrapped in *core.SearchError.
package search
