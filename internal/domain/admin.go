package domain

// ============================================================
// Admin dashboards
// ============================================================

// AdminStats is the aggregated view for GET /v1/admin/stats.
type AdminStats struct {
	TotalUsers     int64 `json:"totalUsers"`
	TotalDomains   int64 `json:"totalDomains"`
	ActiveDomains  int64 `json:"activeDomains"`
	PendingCharges int64 `json:"pendingCharges"`
	EventsLast24h  int64 `json:"eventsLast24h"`
}

// UserList is a paginated user listing for the admin console.
type UserList struct {
	Items    []User `json:"items"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Total    int    `json:"total"`
}

// PlatformOverview is the superadmin-only platform snapshot.
type PlatformOverview struct {
	Stats        *AdminStats        `json:"stats"`
	RevenuePaid  float64            `json:"revenuePaid"`
	ChargesByDay []ChargeDay        `json:"chargesByDay"`
	AuthActivity map[string]float64 `json:"authActivity"`
}

// ChargeDay is one day of charge volume.
type ChargeDay struct {
	Day    string  `json:"day"`
	Count  int64   `json:"count"`
	Amount float64 `json:"amount"`
}
