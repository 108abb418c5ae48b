package domain

// Driver represents a driver in the system.
//
// Rating is a running average over TotalRides rated completions. Location is
// nil until the driver first reports a position; drivers without a known
// location are excluded from proximity queries.
type Driver struct {
	ID            string
	Name          string
	Email         string
	Phone         string
	VehicleNumber string
	VehicleType   string
	Available     bool
	Rating        float64
	Earnings      float64
	TotalRides    int
	Location      *Location
}
