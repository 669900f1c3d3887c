package models

// DeliveryRequest is the JSON body POSTed to the delivery webhook, one per message.
type DeliveryRequest struct {
	Phone       string  `json:"phone"`
	Message     string  `json:"message"`
	PDFURL      *string `json:"pdfUrl"` // null when no attachment is set
	ContactName string  `json:"contactName"`
}

// ProgressEvent is pushed to websocket subscribers while a dispatch runs.
type ProgressEvent struct {
	JobID     string  `json:"job_id"`
	State     string  `json:"state"`
	Total     int     `json:"total"`
	Processed int     `json:"processed"`
	Sent      int     `json:"sent"`
	Failed    int     `json:"failed"`
	Percent   float64 `json:"percent"`
	FailedAt  int     `json:"failed_at"` // -1 unless the job stopped early
}
