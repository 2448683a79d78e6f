package routes

const (
	// Health
	Health = "/health"

	// Lease endpoints
	LeasesBase       = "/api/v1/leases"
	LeaseByID        = "/api/v1/leases/{leaseId}"
	LeaseActivate    = "/api/v1/leases/{leaseId}/activate"
	LeaseMove        = "/api/v1/leases/{leaseId}/move"
	LeaseInvoices    = "/api/v1/leases/{leaseId}/invoices"
	UnitActiveLease  = "/api/v1/units/{unitId}/active-lease"
	UnitLeaseHistory = "/api/v1/units/{unitId}/leases"

	// Invoice endpoints
	InvoicesBase   = "/api/v1/invoices"
	TenantInvoices = "/api/v1/tenants/{tenantId}/invoices"

	// Rent run endpoints
	RentRunsBase   = "/api/v1/rent-runs"
	RentRunByID    = "/api/v1/rent-runs/{runId}"
	RentRunTrigger = "/api/v1/rent-runs/trigger"

	// Unit endpoints
	UnitsBase       = "/api/v1/units"
	UnitByID        = "/api/v1/units/{unitId}"
	UnitMaintenance = "/api/v1/units/{unitId}/maintenance"
	PropertyUnits   = "/api/v1/properties/{propertyId}/units"
)
