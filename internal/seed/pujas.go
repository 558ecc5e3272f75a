package seed

import (
	"context"
	"fmt"

	"mandir/internal/store"
	"mandir/internal/utils"
	"mandir/pkg/types"

	"github.com/k0kubun/pp/v3"
)

// SeedPujas syncs the database with the catalog definitions below.
// This file is the source of truth for the puja catalog:
// - Inserts new pujas that don't exist
// - Updates existing pujas that have changed
//
// To generate new IDs: `go run ./cmd/mandir txid --nano`
// To retire a puja: set IsActive to false and re-run the seed (the listing
// endpoint only serves active entries).
func SeedPujas(ctx context.Context, repo *store.PujaRepository) error {
	// Fixed IDs keep re-runs idempotent.
	pujas := []types.Puja{
		{
			ID:                "fK2nT8wQbL5cXrV0mJdHs9pEaZ3yGuNi",
			Name:              "Ganesh Puja",
			Slug:              "ganesh-puja",
			Description:       utils.StringPtr("Invocation of Lord Ganesha for auspicious beginnings"),
			SuggestedDonation: 5100,
			DisplayOrder:      1,
			IsActive:          true,
		},
		{
			ID:                "Qw7eRt4yUi9oPa2sDf6gHj1kLz8xCv3b",
			Name:              "Satyanarayan Puja",
			Slug:              "satyanarayan-puja",
			Description:       utils.StringPtr("Monthly full-moon puja of Lord Vishnu"),
			SuggestedDonation: 10100,
			DisplayOrder:      2,
			IsActive:          true,
		},
		{
			ID:                "Zx5cVb8nMq1wEr4tYu7iOp0aSd3fGh6j",
			Name:              "Navagraha Puja",
			Slug:              "navagraha-puja",
			Description:       utils.StringPtr("Puja to the nine planetary deities"),
			SuggestedDonation: 15100,
			DisplayOrder:      3,
			IsActive:          true,
		},
		{
			ID:                "Hj3kLf6gSd9aPw2eQr5tZx8cVb1nMy4u",
			Name:              "Abhishekam",
			Slug:              "abhishekam",
			Description:       utils.StringPtr("Ceremonial bathing of the deity"),
			SuggestedDonation: 2100,
			DisplayOrder:      4,
			IsActive:          true,
		},
		{
			ID:                "Tu6iYp9oAw2sEd5fRg8hJk1lXz4cNv7b",
			Name:              "Vahan Puja",
			Slug:              "vahan-puja",
			Description:       utils.StringPtr("Blessing of a new vehicle"),
			SuggestedDonation: 1100,
			DisplayOrder:      5,
			IsActive:          true,
		},
	}

	for _, puja := range pujas {
		if err := repo.UpsertPuja(ctx, &puja); err != nil {
			return fmt.Errorf("seed puja %s: %w", puja.Slug, err)
		}
		pp.Println(puja.Slug, puja.SuggestedDonation)
	}

	return nil
}
