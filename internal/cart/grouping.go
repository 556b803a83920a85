package cart

import (
	"sort"

	"github.com/google/uuid"

	"github.com/tahanancrafts/marketplace-backend/pkg/db/models"
)

// ArtisanGroup is one artisan's slice of a buyer's cart.
type ArtisanGroup struct {
	ArtisanID uuid.UUID
	Items     []models.CartItem
}

// GroupByArtisan splits cart items into per-artisan groups. Each group
// becomes its own order at checkout. Groups come back in a stable order so
// repeated checkouts of the same cart create orders deterministically.
func GroupByArtisan(items []models.CartItem) []ArtisanGroup {
	byArtisan := map[uuid.UUID][]models.CartItem{}
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		artisanID := item.Product.ArtisanID
		byArtisan[artisanID] = append(byArtisan[artisanID], item)
	}

	groups := make([]ArtisanGroup, 0, len(byArtisan))
	for artisanID, groupItems := range byArtisan {
		groups = append(groups, ArtisanGroup{ArtisanID: artisanID, Items: groupItems})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].ArtisanID.String() < groups[j].ArtisanID.String()
	})
	return groups
}
