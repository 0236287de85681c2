package repository

import (
	"context"
	"fmt"

	"github.com/okian/canteen/internal/domain/model"
)

// Catalog is a bundle of reference data to load into a store.
type Catalog struct {
	Foods        []model.Food
	Restaurants  []model.Restaurant
	HostelBlocks []model.HostelBlock
}

func placeholder(name string) string {
	return "https://placehold.co/400x300?text=" + name
}

// DefaultCatalog is the campus menu the service ships with.
func DefaultCatalog() Catalog {
	return Catalog{
		Foods: []model.Food{
			{ID: "f1", Name: "Veg Biryani", Image: placeholder("Veg+Biryani"), Cuisine: "North Indian", VegNonVeg: model.Veg, SpiceLevel: model.SpiceMedium, Price: 120, RestaurantID: "r1"},
			{ID: "f2", Name: "Chicken Biryani", Image: placeholder("Chicken+Biryani"), Cuisine: "North Indian", VegNonVeg: model.NonVeg, SpiceLevel: model.SpiceHigh, Price: 150, RestaurantID: "r1"},
			{ID: "f3", Name: "Masala Dosa", Image: placeholder("Masala+Dosa"), Cuisine: "South Indian", VegNonVeg: model.Veg, SpiceLevel: model.SpiceLow, Price: 60, RestaurantID: "r2"},
			{ID: "f4", Name: "Paneer Butter Masala", Image: placeholder("Paneer+Butter+Masala"), Cuisine: "North Indian", VegNonVeg: model.Veg, SpiceLevel: model.SpiceMedium, Price: 140, RestaurantID: "r1"},
			{ID: "f5", Name: "Chicken Fried Rice", Image: placeholder("Chicken+Fried+Rice"), Cuisine: "Chinese", VegNonVeg: model.NonVeg, SpiceLevel: model.SpiceMedium, Price: 130, RestaurantID: "r3"},
			{ID: "f6", Name: "Veg Noodles", Image: placeholder("Veg+Noodles"), Cuisine: "Chinese", VegNonVeg: model.Veg, SpiceLevel: model.SpiceLow, Price: 100, RestaurantID: "r3"},
			{ID: "f7", Name: "Idli Vada", Image: placeholder("Idli+Vada"), Cuisine: "South Indian", VegNonVeg: model.Veg, SpiceLevel: model.SpiceLow, Price: 50, RestaurantID: "r2"},
			{ID: "f8", Name: "Aloo Paratha", Image: placeholder("Aloo+Paratha"), Cuisine: "North Indian", VegNonVeg: model.Veg, SpiceLevel: model.SpiceMedium, Price: 80, RestaurantID: "r1"},
		},
		Restaurants: []model.Restaurant{
			{ID: "r1", Name: "Campus Spice", Location: "Main Block"},
			{ID: "r2", Name: "Southern Delights", Location: "Hostel Block A"},
			{ID: "r3", Name: "Dragon Bowl", Location: "Near Gate 2"},
		},
		HostelBlocks: []model.HostelBlock{
			{Name: "Hostel A", Floors: 4},
			{Name: "Hostel B", Floors: 4},
			{Name: "Girls Hostel", Floors: 3},
		},
	}
}

// Seed upserts every record of c into s. Reseeding is idempotent.
func Seed(ctx context.Context, s CatalogStore, c Catalog) error {
	for _, r := range c.Restaurants {
		if err := s.PutRestaurant(ctx, r); err != nil {
			return fmt.Errorf("seed restaurant %s: %w", r.ID, err)
		}
	}
	for _, f := range c.Foods {
		if err := s.PutFood(ctx, f); err != nil {
			return fmt.Errorf("seed food %s: %w", f.ID, err)
		}
	}
	for _, h := range c.HostelBlocks {
		if err := s.PutHostelBlock(ctx, h); err != nil {
			return fmt.Errorf("seed hostel block %s: %w", h.Name, err)
		}
	}
	return nil
}
