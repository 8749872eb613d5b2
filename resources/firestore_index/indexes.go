package main

// DefineRequiredIndexes returns the composite indexes the repository
// queries depend on. Single-field filters are covered by Firestore's
// automatic indexes and are not listed here.
func DefineRequiredIndexes() []IndexConfig {
	return []IndexConfig{
		// Open staging entry lookup by device
		{
			CollectionGroup: "staging_entries",
			Fields: []IndexField{
				{FieldPath: "DeviceID", Order: "ASCENDING"},
				{FieldPath: "Status", Order: "ASCENDING"},
			},
		},
		// Penalty list filtered by incident and appeal status
		{
			CollectionGroup: "penalties",
			Fields: []IndexField{
				{FieldPath: "IncidentID", Order: "ASCENDING"},
				{FieldPath: "AppealStatus", Order: "ASCENDING"},
			},
		},
		// Penalty list filtered by appeal status within a date range
		{
			CollectionGroup: "penalties",
			Fields: []IndexField{
				{FieldPath: "AppealStatus", Order: "ASCENDING"},
				{FieldPath: "CreatedAt", Order: "ASCENDING"},
			},
		},
		// Penalty list filtered by incident within a date range
		{
			CollectionGroup: "penalties",
			Fields: []IndexField{
				{FieldPath: "IncidentID", Order: "ASCENDING"},
				{FieldPath: "CreatedAt", Order: "ASCENDING"},
			},
		},
	}
}
