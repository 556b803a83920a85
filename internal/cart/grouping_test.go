package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahanancrafts/marketplace-backend/pkg/db/models"
)

func cartItem(artisanID uuid.UUID, qty int) models.CartItem {
	return models.CartItem{
		ID:       uuid.New(),
		Quantity: qty,
		Product: &models.Product{
			ID:        uuid.New(),
			ArtisanID: artisanID,
		},
	}
}

func TestGroupByArtisan(t *testing.T) {
	artisanA := uuid.New()
	artisanB := uuid.New()

	items := []models.CartItem{
		cartItem(artisanA, 1),
		cartItem(artisanB, 2),
		cartItem(artisanA, 3),
	}

	groups := GroupByArtisan(items)
	require.Len(t, groups, 2)

	counts := map[uuid.UUID]int{}
	for _, group := range groups {
		counts[group.ArtisanID] = len(group.Items)
	}
	assert.Equal(t, 2, counts[artisanA])
	assert.Equal(t, 1, counts[artisanB])
}

func TestGroupByArtisanIsDeterministic(t *testing.T) {
	artisans := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	items := []models.CartItem{
		cartItem(artisans[2], 1),
		cartItem(artisans[0], 1),
		cartItem(artisans[1], 1),
	}

	first := GroupByArtisan(items)
	for i := 0; i < 5; i++ {
		again := GroupByArtisan(items)
		require.Len(t, again, len(first))
		for j := range first {
			assert.Equal(t, first[j].ArtisanID, again[j].ArtisanID)
		}
	}
}

func TestGroupByArtisanSkipsItemsWithoutProduct(t *testing.T) {
	groups := GroupByArtisan([]models.CartItem{{ID: uuid.New(), Quantity: 1}})
	assert.Empty(t, groups)
}
