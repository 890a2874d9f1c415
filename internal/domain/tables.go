package domain

var Tables = []interface{}{
	// Canonical document
	&DocumentRow{},
	// Presence
	&KioskRegistry{},
	// System
	&HubConfig{},
	&HubAuditLog{},
}
