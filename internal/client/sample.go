package client

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tazabekov/tour-booking-room-2/internal/models"
)

// SampleTours returns the demo catalogue served by the static client
func SampleTours() []models.Tour {
	start := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	tour := func(id int64, title, country, city, desc, price string, days, people int) models.Tour {
		begin := start.AddDate(0, 0, int(id)*7)
		return models.Tour{
			ID:             id,
			Title:          title,
			Country:        country,
			City:           city,
			Description:    desc,
			Price:          decimal.RequireFromString(price),
			DurationDays:   days,
			MaxPeople:      people,
			AvailableSlots: people,
			StartDate:      begin,
			EndDate:        begin.AddDate(0, 0, days),
			CreatedAt:      start,
			UpdatedAt:      start,
		}
	}

	return []models.Tour{
		tour(1, "Cappadocia Balloon Weekend", "Turkey", "Goreme", "Sunrise balloon flight over the fairy chimneys", "180.00", 3, 8),
		tour(2, "Kyoto Temples Walk", "Japan", "Kyoto", "Guided walk through Higashiyama temples", "420.00", 5, 12),
		tour(3, "Istanbul Food Trail", "Turkey", "Istanbul", "Street food and bazaars on both shores", "95.50", 2, 10),
		tour(4, "Alpine Lakes Hike", "Switzerland", "Interlaken", "Easy hikes between turquoise lakes", "640.00", 6, 6),
		tour(5, "Antalya Coast Cruise", "Turkey", "Antalya", "Gulet cruise along the Lycian coast", "199.99", 4, 14),
		tour(6, "Marrakech Souks", "Morocco", "Marrakech", "Markets, riads and a night in the desert", "310.00", 4, 10),
		tour(7, "Lisbon Trams and Fado", "Portugal", "Lisbon", "Historic quarters by tram, evening fado show", "260.00", 3, 16),
		tour(8, "Bali Rice Terraces", "Indonesia", "Ubud", "Cycling through terraces and water temples", "380.00", 7, 12),
		tour(9, "Iceland Ring Road", "Iceland", "Reykjavik", "Glaciers, waterfalls and black sand beaches", "1450.00", 10, 8),
		tour(10, "Santorini Sunsets", "Greece", "Oia", "Caldera views and a catamaran trip", "720.00", 5, 10),
	}
}
