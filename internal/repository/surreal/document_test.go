package surreal

import (
	"errors"
	"testing"
	"time"

	"campaignhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

func TestToDocumentUsesNativeTypes(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	c := &domain.Campaign{
		Meta:              domain.Meta{ID: "abc", CreatedAt: created, UpdatedAt: created},
		Name:              "Spring",
		Type:              domain.CampaignTypeLive,
		SelectedCreatives: []string{"c1"},
	}

	doc, err := toDocument[domain.Campaign](c)
	require.NoError(t, err)

	_, hasID := doc["id"]
	assert.False(t, hasID, "identifier lives in the record ID")
	assert.Equal(t, models.CustomDateTime{Time: created}, doc["createdAt"])
	assert.Equal(t, "Spring", doc["name"])
	assert.Equal(t, []any{"c1"}, doc["selectedCreatives"])
}

func TestFromDocumentNormalizesDriverTypes(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)
	doc := map[string]any{
		"id":        models.NewRecordID("products", "p-1"),
		"name":      "Mug",
		"price":     "12.50",
		"createdAt": models.CustomDateTime{Time: created},
		"updatedAt": &models.CustomDateTime{Time: updated},
		"videoCreatives": []any{
			"c1", "c2",
		},
	}

	p, err := fromDocument[domain.Product](doc)
	require.NoError(t, err)
	assert.Equal(t, "p-1", p.ID)
	assert.Equal(t, "Mug", p.Name)
	assert.True(t, created.Equal(p.CreatedAt))
	assert.True(t, updated.Equal(p.UpdatedAt))
	require.True(t, p.Price.IsNumeric())
	assert.InDelta(t, 12.5, *p.Price.Amount, 1e-9)
	assert.Equal(t, []string{"c1", "c2"}, p.VideoCreatives)
}

func TestFromDocumentKeepsTextPrice(t *testing.T) {
	p, err := fromDocument[domain.Product](map[string]any{
		"id":    models.NewRecordID("products", "p-2"),
		"price": "ask in store",
	})
	require.NoError(t, err)
	assert.False(t, p.Price.IsNumeric())
	assert.Equal(t, "ask in store", p.Price.Text)
}

func TestPasswordHashSurvivesDocumentRoundTrip(t *testing.T) {
	u := &domain.User{Meta: domain.Meta{ID: "u1"}, Email: "a@b.c", PasswordHash: "secret-hash"}

	doc, err := toDocument[domain.User](u)
	require.NoError(t, err)
	_, leaked := doc[passwordHashField]
	assert.False(t, leaked, "JSON encoding omits the hash")

	encodePasswordHash(u, doc)
	doc["id"] = models.NewRecordID("users", "u1")

	back, err := fromDocument[domain.User](doc)
	require.NoError(t, err)
	decodePasswordHash(doc, back)
	assert.Equal(t, "secret-hash", back.PasswordHash)
	assert.Equal(t, "u1", back.ID)
}

func TestRecordKeyFormatsNonStringIDs(t *testing.T) {
	assert.Equal(t, "42", recordKey(models.NewRecordID("users", 42)))
	assert.Equal(t, "x", recordKey(models.NewRecordID("users", "x")))
}

func TestIsNotFound(t *testing.T) {
	assert.False(t, isNotFound(nil))
	assert.True(t, isNotFound(errors.New("Expected a single or multiple results but got 0")))
	assert.False(t, isNotFound(errors.New("connection refused")))
}
