package incident

// ListResult is a stable page over an incident listing.
type ListResult struct {
	Items   []*Incident `json:"items"`
	Total   int         `json:"total"`
	Offset  int         `json:"offset"`
	Limit   int         `json:"limit"`
	HasMore bool        `json:"has_more"`
}

func NewListResult(items []*Incident, total, offset, limit int) *ListResult {
	if items == nil {
		items = []*Incident{}
	}
	return &ListResult{
		Items:   items,
		Total:   total,
		Offset:  offset,
		Limit:   limit,
		HasMore: offset+len(items) < total,
	}
}
