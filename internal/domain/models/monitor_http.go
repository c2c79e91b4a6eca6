package models

// Requests for the monitoring HTTP endpoints. Defined in domain for consistency and reuse.

type CheckRequest struct {
	Date     string `query:"date" json:"date" validate:"omitempty,datetime=2006-01-02"`
	AutoSave *bool  `query:"auto_save" json:"auto_save"`
}

// Save reports whether detected alerts should be persisted (default true).
func (r *CheckRequest) Save() bool {
	return r.AutoSave == nil || *r.AutoSave
}

type SummaryRequest struct {
	Window int `query:"window" json:"window" default:"7" validate:"gte=1,lte=90"`
}

type AlertsRequest struct {
	Threshold string `query:"threshold" json:"threshold" default:"medium"`
	Status    string `query:"status" json:"status" default:"open"`
	Limit     int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}
