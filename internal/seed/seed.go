// Package seed fills a store with generated sample campgrounds.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/iliyamo/fishcamp/internal/model"
	"github.com/iliyamo/fishcamp/internal/repository"
)

var descriptors = []string{
	"Forest", "Ancient", "Petrified", "Roaring", "Cascade", "Tumbling",
	"Silent", "Redwood", "Bullfrog", "Maple", "Misty", "Elk", "Grizzly",
	"Ocean", "Sea", "Sky", "Dusty", "Diamond",
}

var places = []string{
	"Flats", "Village", "Canyon", "Pond", "Group Camp", "Horse Camp",
	"Ghost Town", "Camp", "Dispersed Camp", "Backcountry", "River",
	"Creek", "Creekside", "Bay", "Spring", "Bayshore", "Sands",
	"Mule Camp", "Hunting Camp", "Cliffs", "Hollow",
}

var cities = []struct{ City, State string }{
	{"Bend", "Oregon"},
	{"Moab", "Utah"},
	{"Flagstaff", "Arizona"},
	{"Missoula", "Montana"},
	{"Asheville", "North Carolina"},
	{"Boulder", "Colorado"},
	{"Duluth", "Minnesota"},
	{"Bar Harbor", "Maine"},
	{"Taos", "New Mexico"},
	{"Sandpoint", "Idaho"},
	{"Ely", "Minnesota"},
	{"Marquette", "Michigan"},
	{"Jackson", "Wyoming"},
	{"Estes Park", "Colorado"},
	{"Hood River", "Oregon"},
	{"Bishop", "California"},
}

const description = "Quiet sites close to the water, with fire rings and room for a tent or two."

// Generate returns n campgrounds with random titles, locations and prices.
// Prices are whole dollars between 10 and 39.  A non-positive n yields none.
func Generate(n int, rnd *rand.Rand) []*model.Campground {
	if n <= 0 {
		return nil
	}
	out := make([]*model.Campground, 0, n)
	for i := 0; i < n; i++ {
		city := cities[rnd.IntN(len(cities))]
		out = append(out, &model.Campground{
			Title:       descriptors[rnd.IntN(len(descriptors))] + " " + places[rnd.IntN(len(places))],
			Location:    city.City + ", " + city.State,
			Price:       float64(10 + rnd.IntN(30)),
			Description: description,
		})
	}
	return out
}

// Run deletes every campground in s and inserts n generated ones.  It
// returns the number inserted.  A negative n is rejected before anything
// is deleted.
func Run(ctx context.Context, s *repository.Store, n int, rnd *rand.Rand) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("seed: count must not be negative, got %d", n)
	}
	existing, err := s.Campgrounds.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: list: %w", err)
	}
	for _, c := range existing {
		if err := s.Campgrounds.Delete(ctx, c.ID); err != nil {
			return 0, fmt.Errorf("seed: delete %s: %w", c.ID, err)
		}
	}
	inserted := 0
	for _, c := range Generate(n, rnd) {
		if err := s.Campgrounds.Create(ctx, c); err != nil {
			return inserted, fmt.Errorf("seed: create: %w", err)
		}
		inserted++
	}
	return inserted, nil
}
