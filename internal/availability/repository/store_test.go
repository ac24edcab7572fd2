package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestRuleOwner(t *testing.T) {
	tests := []struct {
		name           string
		deliveryTypeID string
		ownRules       int64
		want           string
	}{
		{"delivery type with rules keeps its own", "dt-1", 1, "dt-1"},
		{"delivery type without rules inherits defaults", "dt-1", 0, ""},
		{"organization defaults stay defaults", "", 3, ""},
		{"organization without defaults", "", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ruleOwner(tt.deliveryTypeID, tt.ownRules))
		})
	}
}

func TestWeeklyRulesFilter(t *testing.T) {
	t.Run("own rules on the weekday", func(t *testing.T) {
		got := weeklyRulesFilter("org-1", ruleOwner("dt-1", 2), time.Tuesday)
		assert.Equal(t, bson.M{
			"organization_id":  "org-1",
			"delivery_type_id": "dt-1",
			"week_day":         2,
			"deleted_at":       nil,
		}, got)
	})

	t.Run("fallback reads the organization defaults", func(t *testing.T) {
		got := weeklyRulesFilter("org-1", ruleOwner("dt-1", 0), time.Sunday)
		assert.Equal(t, "", got["delivery_type_id"])
		assert.Equal(t, 0, got["week_day"])
		assert.Contains(t, got, "deleted_at")
	})
}
