package profile

import "time"

// The built-in archetype table. Ranges and endpoint weights model the traffic
// mix of a small e-commerce site: mostly casual visitors, a core of power
// users and shoppers, a steady trickle of crawlers, and quick mobile visits.

// CasualBrowser stays 1-5 minutes and skims a handful of pages.
func CasualBrowser() *Profile {
	return &Profile{
		Name:            "casual_browser",
		SessionDuration: DurationRange{Min: 60 * time.Second, Max: 300 * time.Second},
		PagesPerSession: IntRange{Min: 3, Max: 8},
		ThinkTime:       DurationRange{Min: 5 * time.Second, Max: 15 * time.Second},
		Endpoints: []WeightedEndpoint{
			{Endpoint: Literal("/"), Weight: 0.50},
			{Endpoint: ProductPage(), Weight: 0.20},
			{Endpoint: Literal("/api/data"), Weight: 0.15},
			{Endpoint: SearchPage(), Weight: 0.15},
		},
	}
}

// PowerUser works the dashboard and API for 5-15 minutes at a brisk pace.
func PowerUser() *Profile {
	return &Profile{
		Name:            "power_user",
		SessionDuration: DurationRange{Min: 300 * time.Second, Max: 900 * time.Second},
		PagesPerSession: IntRange{Min: 15, Max: 30},
		ThinkTime:       DurationRange{Min: 2 * time.Second, Max: 8 * time.Second},
		Endpoints: []WeightedEndpoint{
			{Endpoint: Literal("/dashboard"), Weight: 0.30},
			{Endpoint: Literal("/api/data"), Weight: 0.30},
			{Endpoint: SearchPage(), Weight: 0.20},
			{Endpoint: ProductPage(), Weight: 0.10},
			{Endpoint: Literal("/"), Weight: 0.10},
		},
	}
}

// Shopper browses products and occasionally reaches checkout.
func Shopper() *Profile {
	return &Profile{
		Name:            "shopper",
		SessionDuration: DurationRange{Min: 180 * time.Second, Max: 600 * time.Second},
		PagesPerSession: IntRange{Min: 8, Max: 15},
		ThinkTime:       DurationRange{Min: 3 * time.Second, Max: 12 * time.Second},
		Endpoints: []WeightedEndpoint{
			{Endpoint: ProductPage(), Weight: 0.40},
			{Endpoint: SearchPage(), Weight: 0.30},
			{Endpoint: Literal("/checkout"), Weight: 0.20},
			{Endpoint: Literal("/"), Weight: 0.10},
		},
	}
}

// Bot crawls broadly with short think-times and long sessions.
func Bot() *Profile {
	return &Profile{
		Name:            "bot",
		SessionDuration: DurationRange{Min: 600 * time.Second, Max: 3600 * time.Second},
		PagesPerSession: IntRange{Min: 50, Max: 200},
		ThinkTime:       DurationRange{Min: 500 * time.Millisecond, Max: 2 * time.Second},
		Endpoints: []WeightedEndpoint{
			{Endpoint: Literal("/"), Weight: 0.20},
			{Endpoint: ProductPage(), Weight: 0.25},
			{Endpoint: Literal("/api/data"), Weight: 0.25},
			{Endpoint: Literal("/dashboard"), Weight: 0.15},
			{Endpoint: SearchPage(), Weight: 0.15},
		},
	}
}

// MobileUser makes short visits with long pauses between taps.
func MobileUser() *Profile {
	return &Profile{
		Name:            "mobile_user",
		SessionDuration: DurationRange{Min: 60 * time.Second, Max: 180 * time.Second},
		PagesPerSession: IntRange{Min: 2, Max: 5},
		ThinkTime:       DurationRange{Min: 8 * time.Second, Max: 20 * time.Second},
		Endpoints: []WeightedEndpoint{
			{Endpoint: Literal("/"), Weight: 0.60},
			{Endpoint: ProductPage(), Weight: 0.20},
			{Endpoint: Literal("/api/data"), Weight: 0.15},
			{Endpoint: SearchPage(), Weight: 0.05},
		},
	}
}

// DefaultDistribution returns the stock mix of archetypes.
func DefaultDistribution() *Distribution {
	return NewDistribution().
		Add(CasualBrowser(), 0.40).
		Add(PowerUser(), 0.25).
		Add(Shopper(), 0.20).
		Add(Bot(), 0.10).
		Add(MobileUser(), 0.05)
}
