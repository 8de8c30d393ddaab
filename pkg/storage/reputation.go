package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rubiojr/agentscope/pkg/core"
)

// sortColumns maps reputation sort fields to SQL expressions.
var sortColumns = map[string]string{
	"createdAt":     "a.created_at",
	"updatedAt":     "a.updated_at",
	"name":          "a.name",
	"agentId":       "a.agent_id",
	"chainId":       "a.chain_id",
	"averageScore":  "s.avg_score",
	"score":         "s.avg_score",
	"totalFeedback": "total_feedback",
	"feedback":      "total_feedback",
}

// SearchByReputation returns agents joined with their feedback statistics.
//
// Feedback criteria (tags, reviewers, capabilities, skills, tasks) select agents
// with at least one feedback entry satisfying all of them at once. Revoked
// feedback is ignored, for matching and averaging, unless IncludeRevoked is set.
func (ix *Index) SearchByReputation(ctx context.Context, c core.ReputationCriteria, limit, offset int, orderBy, orderDirection string) ([]core.AgentRecord, error) {
	column, ok := sortColumns[orderBy]
	if !ok {
		return nil, fmt.Errorf("unsupported sort field %q", orderBy)
	}
	direction := strings.ToUpper(orderDirection)
	if direction != "ASC" && direction != "DESC" {
		return nil, fmt.Errorf("unsupported sort direction %q", orderDirection)
	}

	revoked := boolInt(c.IncludeRevoked)
	args := []any{revoked}
	var where []string

	if len(c.Agents) > 0 {
		ph := placeholders(len(c.Agents))
		where = append(where, `(a.agent_id IN (`+ph+`) OR (CAST(a.chain_id AS TEXT) || ':' || a.agent_id) IN (`+ph+`))`)
		for range 2 {
			for _, id := range c.Agents {
				args = append(args, id)
			}
		}
	}

	if len(c.Names) > 0 {
		var or []string
		for _, name := range c.Names {
			or = append(or, `a.name LIKE ? ESCAPE '\'`)
			args = append(args, likePattern(name))
		}
		where = append(where, "("+strings.Join(or, " OR ")+")")
	}

	if cond, condArgs := feedbackCondition(&c, revoked); cond != "" {
		where = append(where, cond)
		args = append(args, condArgs...)
	}

	if c.MinAverageScore != nil {
		where = append(where, `s.avg_score >= ?`)
		args = append(args, *c.MinAverageScore)
	}

	query := `SELECT ` + agentColumns + `, s.avg_score, COALESCE(s.total, 0) AS total_feedback
		FROM agents a
		LEFT JOIN (
			SELECT chain_id, agent_id, AVG(score) AS avg_score, COUNT(*) AS total
			FROM feedback
			WHERE (? = 1 OR is_revoked = 0)
			GROUP BY chain_id, agent_id
		) s ON s.chain_id = a.chain_id AND s.agent_id = a.agent_id`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(` ORDER BY %s %s, a.chain_id ASC, a.agent_id ASC LIMIT ? OFFSET ?`, column, direction)
	args = append(args, limit, offset)

	rows, err := ix.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reputation: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Warnf("failed to close rows: %v", err)
		}
	}()

	records := make([]core.AgentRecord, 0, min(limit, maxPrealloc))
	for rows.Next() {
		var avg sql.NullFloat64
		var total int
		rec, err := scanRecord(rows, &avg, &total)
		if err != nil {
			return nil, fmt.Errorf("scanning reputation row: %w", err)
		}
		if avg.Valid {
			rec.AverageScore = core.Float(avg.Float64)
		}
		rec.TotalFeedback = total
		records = append(records, rec)
	}
	return records, rows.Err()
}

// feedbackCondition builds the EXISTS clause selecting agents with matching
// feedback. It returns an empty condition when no feedback criterion is set.
func feedbackCondition(c *core.ReputationCriteria, revoked int) (string, []any) {
	var conds []string
	var args []any

	in := func(column string, values []string, normalize bool) string {
		for _, v := range values {
			if normalize {
				v = core.NormalizeAddress(v)
			}
			args = append(args, v)
		}
		return column + " IN (" + placeholders(len(values)) + ")"
	}

	if len(c.Reviewers) > 0 {
		conds = append(conds, in("f.reviewer", c.Reviewers, true))
	}
	if len(c.Tags) > 0 {
		tag1 := in("f.tag1", c.Tags, false)
		tag2 := in("f.tag2", c.Tags, false)
		conds = append(conds, "("+tag1+" OR "+tag2+")")
	}
	if len(c.Capabilities) > 0 {
		conds = append(conds, in("f.capability", c.Capabilities, false))
	}
	if len(c.Skills) > 0 {
		conds = append(conds, in("f.skill", c.Skills, false))
	}
	if len(c.Tasks) > 0 {
		conds = append(conds, in("f.task", c.Tasks, false))
	}
	if len(conds) == 0 {
		return "", nil
	}

	cond := `EXISTS (SELECT 1 FROM feedback f
		WHERE f.chain_id = a.chain_id AND f.agent_id = a.agent_id
		AND (? = 1 OR f.is_revoked = 0) AND ` + strings.Join(conds, " AND ") + `)`
	return cond, append([]any{revoked}, args...)
}
