package domain

// ============================================================
// Health API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of one collaborator.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	Detail      string `json:"detail,omitempty"`
	LastChecked string `json:"lastChecked"`
}

// DashboardMetrics is returned by GET /v1/metrics/dashboard.
type DashboardMetrics struct {
	RefreshCycles     int64   `json:"refreshCycles"`
	FailedCycles      int64   `json:"failedCycles"`
	StaleResponses    int64   `json:"staleResponses"`
	RealtimeEvents    int64   `json:"realtimeEvents"`
	FetchErrors       int64   `json:"fetchErrors"`
	ChartCacheHitRate float64 `json:"chartCacheHitRate"`
	Period            string  `json:"period"`
}
