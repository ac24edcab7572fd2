package mongo

import (
	"testing"

	mongotx "sisagenda/pkg/db/mongo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCollections(t *testing.T) {
	defs := Collections()

	names := make(map[string]bool)
	for _, def := range defs {
		names[def.Name] = true

		schema, ok := def.Validator["$jsonSchema"].(bson.M)
		require.True(t, ok, "%s has no JSON schema", def.Name)
		assert.NotEmpty(t, schema["required"], "%s has no required fields", def.Name)
		assert.NotEmpty(t, def.Indexes, "%s has no indexes", def.Name)
	}

	for _, name := range []string{
		mongotx.OrganizationsCollection,
		mongotx.DeliveryTypesCollection,
		mongotx.WeeklyRulesCollection,
		mongotx.WeeklyRuleGuardsCollection,
		mongotx.OverridesCollection,
		mongotx.AppointmentsCollection,
		mongotx.AppointmentLocksCollection,
	} {
		assert.True(t, names[name], "missing collection %s", name)
	}
}

func TestAppointmentLocksExpire(t *testing.T) {
	require.Len(t, AppointmentLocksIndexes, 1)
	idx := AppointmentLocksIndexes[0]

	assert.Equal(t, bson.D{{Key: "expires_at", Value: 1}}, idx.Keys)
	require.NotNil(t, idx.Options)
	require.NotNil(t, idx.Options.ExpireAfterSeconds)
	assert.Equal(t, int32(0), *idx.Options.ExpireAfterSeconds)
}

func TestOrganizationDocumentIsUnique(t *testing.T) {
	idx := OrganizationsIndexes[0]

	require.NotNil(t, idx.Options.Unique)
	assert.True(t, *idx.Options.Unique)
	assert.NotNil(t, idx.Options.PartialFilterExpression)
}
