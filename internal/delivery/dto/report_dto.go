package dto

import "github.com/shopspring/decimal"

type AppointmentCounts struct {
	Total     int64 `json:"total"`
	Upcoming  int64 `json:"upcoming"`
	Pending   int64 `json:"pending"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
}

type ReportSummaryResponse struct {
	TotalPatients      int64             `json:"total_patients"`
	TotalDoctors       int64             `json:"total_doctors"`
	TotalReceptionists int64             `json:"total_receptionists"`
	Appointments       AppointmentCounts `json:"appointments"`
	TotalRevenue       decimal.Decimal   `json:"total_revenue"`
}
