package events

// EventType defines the type of event
type EventType string

const (
	// Company events
	EventTypeCompanyCreated EventType = "company.created"
	EventTypeCompanyUpdated EventType = "company.updated"
	EventTypeCompanyDeleted EventType = "company.deleted"

	// Match events
	EventTypeMatchComputed EventType = "match.computed"

	// Market data events
	EventTypeMarketDataImported EventType = "market_data.imported"
)
