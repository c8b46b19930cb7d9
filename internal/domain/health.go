package domain

type HealthStatus string

const (
	HealthOK       HealthStatus = "OK"
	HealthDegraded HealthStatus = "DEGRADED"
)

type HealthReport struct {
	Status         HealthStatus
	StoreReachable bool
}

func (h HealthReport) Ready() bool { return h.Status == HealthOK }
