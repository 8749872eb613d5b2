package penalty

// ListResult is a stable page over a penalty listing. HasMore is derived as
// Offset + len(Items) < Total.
type ListResult struct {
	Items   []*Penalty `json:"items"`
	Total   int        `json:"total"`
	Offset  int        `json:"offset"`
	Limit   int        `json:"limit"`
	HasMore bool       `json:"has_more"`
}

func NewListResult(items []*Penalty, total, offset, limit int) *ListResult {
	if items == nil {
		items = []*Penalty{}
	}
	return &ListResult{
		Items:   items,
		Total:   total,
		Offset:  offset,
		Limit:   limit,
		HasMore: offset+len(items) < total,
	}
}
