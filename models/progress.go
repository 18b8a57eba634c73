package models

import "fmt"

// Progress is one event of a batch download. Completed counts processed items,
// failed ones included; Total is fixed for the whole batch.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Failed    int `json:"failed"`
}

// Done reports whether the batch has processed every item.
func (p Progress) Done() bool {
	return p.Completed >= p.Total
}

func (p Progress) String() string {
	return fmt.Sprintf("%d/%d", p.Completed, p.Total)
}
