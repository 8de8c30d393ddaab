package storage

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rubiojr/agentscope/pkg/core"
)

func recordIDs(records []core.AgentRecord) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}

func TestSearchByReputation(t *testing.T) {
	ix := loadedIndex(t)

	tests := []struct {
		name     string
		criteria core.ReputationCriteria
		orderBy  string
		dir      string
		want     []string
	}{
		{"all by creation", core.ReputationCriteria{}, "createdAt", "desc", []string{"11155111:2", "84532:1", "11155111:1"}},
		{"by score desc", core.ReputationCriteria{}, "averageScore", "desc", []string{"11155111:1", "11155111:2", "84532:1"}},
		{"score alias asc", core.ReputationCriteria{}, "score", "asc", []string{"84532:1", "11155111:2", "11155111:1"}},
		{"tag in either slot", core.ReputationCriteria{Tags: []string{"accurate"}}, "createdAt", "desc", []string{"11155111:1"}},
		{"revoked tag ignored", core.ReputationCriteria{Tags: []string{"fast"}}, "createdAt", "desc", []string{"11155111:1"}},
		{"revoked tag included", core.ReputationCriteria{Tags: []string{"fast"}, IncludeRevoked: true}, "createdAt", "desc", []string{"11155111:2", "11155111:1"}},
		{"reviewer normalized", core.ReputationCriteria{Reviewers: []string{"0xALICE"}}, "agentId", "asc", []string{"11155111:1", "11155111:2"}},
		{"same entry must match all", core.ReputationCriteria{Reviewers: []string{"0xbob"}, Skills: []string{"forecasting"}}, "createdAt", "desc", []string{}},
		{"skill", core.ReputationCriteria{Skills: []string{"forecasting"}}, "createdAt", "desc", []string{"11155111:1"}},
		{"min score", core.ReputationCriteria{MinAverageScore: core.Float(50)}, "createdAt", "desc", []string{"11155111:1"}},
		{"min score with revoked", core.ReputationCriteria{MinAverageScore: core.Float(50), IncludeRevoked: true}, "createdAt", "desc", []string{"11155111:2", "11155111:1"}},
		{"agents bare and keyed", core.ReputationCriteria{Agents: []string{"2", "84532:1"}}, "createdAt", "desc", []string{"11155111:2", "84532:1"}},
		{"names", core.ReputationCriteria{Names: []string{"trip", "nothing"}}, "createdAt", "desc", []string{"11155111:2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ix.SearchByReputation(context.Background(), tt.criteria, 10, 0, tt.orderBy, tt.dir)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, recordIDs(got)); diff != "" {
				t.Errorf("SearchByReputation mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSearchByReputationStats(t *testing.T) {
	ix := loadedIndex(t)

	got, err := ix.SearchByReputation(context.Background(), core.ReputationCriteria{}, 10, 0, "chainId", "asc")
	if err != nil {
		t.Fatal(err)
	}
	byID := make(map[string]core.AgentRecord)
	for _, r := range got {
		byID[r.ID] = r
	}

	weather := byID["11155111:1"]
	if weather.AverageScore == nil || *weather.AverageScore != 80 || weather.TotalFeedback != 2 {
		t.Errorf("unexpected weather stats: avg=%v total=%d", weather.AverageScore, weather.TotalFeedback)
	}
	trip := byID["11155111:2"]
	if trip.AverageScore == nil || *trip.AverageScore != 40 || trip.TotalFeedback != 1 {
		t.Errorf("revoked feedback must not count: avg=%v total=%d", trip.AverageScore, trip.TotalFeedback)
	}
	if bare := byID["84532:1"]; bare.AverageScore != nil || bare.TotalFeedback != 0 || bare.Registration != nil {
		t.Errorf("agent without feedback or registration: %+v", bare)
	}

	s := weather.Summary()
	if s.Extras[core.ExtraAverageScore] != 80.0 {
		t.Errorf("expected average score in extras, got %v", s.Extras)
	}
}

func TestSearchByReputationPaging(t *testing.T) {
	ix := loadedIndex(t)

	got, err := ix.SearchByReputation(context.Background(), core.ReputationCriteria{}, 1, 1, "createdAt", "desc")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"84532:1"}, recordIDs(got)); diff != "" {
		t.Errorf("page mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchByReputationRejectsBadSort(t *testing.T) {
	ix := loadedIndex(t)
	ctx := context.Background()

	if _, err := ix.SearchByReputation(ctx, core.ReputationCriteria{}, 10, 0, "name; DROP TABLE agents", "asc"); err == nil {
		t.Error("expected error for unknown sort field")
	}
	if _, err := ix.SearchByReputation(ctx, core.ReputationCriteria{}, 10, 0, "name", "sideways"); err == nil {
		t.Error("expected error for unknown direction")
	}
}
