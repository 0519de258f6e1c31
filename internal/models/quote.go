package models

// FareQuote is the ephemeral price breakdown returned by the estimate
// operation. It is never persisted; at order time the breakdown is frozen
// into the Ride record instead.
type FareQuote struct {
	VehicleClass    string        `json:"vehicle_class"`
	DistanceKm      float64       `json:"distance_km"`
	DurationMins    int           `json:"duration_mins"`
	MinDurationMins int           `json:"min_duration_mins"`
	MaxDurationMins int           `json:"max_duration_mins"`
	Fare            FareBreakdown `json:"fare"`
	Currency        string        `json:"currency"`
	Approximate     bool          `json:"approximate,omitempty"`
}
