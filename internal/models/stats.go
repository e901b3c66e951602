package models

import (
	"github.com/shopspring/decimal"
)

// PipelineStats summarises the lead pipeline.
type PipelineStats struct {
	New       int `json:"leads_nuevos"`
	Contacted int `json:"leads_contactados"`
	Proposal  int `json:"leads_propuesta"`
	Won       int `json:"leads_ganados"`
	Lost      int `json:"leads_perdidos"`
	Active    int `json:"leads_activos"`
	Total     int `json:"leads_total"`

	PipelineValue decimal.Decimal `json:"pipeline_value"`
	RevenueTotal  decimal.Decimal `json:"revenue_total"`
	AvgDealSize   decimal.Decimal `json:"avg_deal_size"`

	NewThisMonth int `json:"nuevos_mes_actual"`
	WonThisMonth int `json:"ganados_mes_actual"`

	// ConversionRate is a percentage in [0, 100].
	ConversionRate decimal.Decimal `json:"conversion_rate"`
}

// StatusCount is one entry of the lead distribution.
type StatusCount struct {
	Status     LeadStatus      `json:"status"`
	Count      int             `json:"count"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// TrendPoint is the number of leads created on one calendar day.
type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// LeadWithAlert is a lead annotated with its inactivity classification.
type LeadWithAlert struct {
	Lead
	AlertStatus  AlertStatus `json:"alert_status"`
	DaysInactive int         `json:"days_inactive"`
}

// ExpenseStats summarises spending. ByCategory always carries every
// category in ExpenseCategories.
type ExpenseStats struct {
	Total      decimal.Decimal                     `json:"total_gastos"`
	Pending    decimal.Decimal                     `json:"gastos_pendientes"`
	Paid       decimal.Decimal                     `json:"gastos_pagados"`
	ThisMonth  decimal.Decimal                     `json:"gastos_mes_actual"`
	ByCategory map[ExpenseCategory]decimal.Decimal `json:"por_categoria"`
}

// InventoryStats summarises owned stock.
type InventoryStats struct {
	TotalItems int             `json:"total_items"`
	TotalValue decimal.Decimal `json:"valor_total"`
	Available  int             `json:"items_disponibles"`
	InUse      int             `json:"items_en_uso"`
	LowStock   int             `json:"items_stock_bajo"`
}

// NotificationStats counts notifications by read state and severity.
type NotificationStats struct {
	Unread         int `json:"no_leidas"`
	Total          int `json:"total"`
	UnreadWarnings int `json:"warnings_no_leidas"`
	UnreadErrors   int `json:"errors_no_leidas"`
}

// EventProfit is the margin of one event.
type EventProfit struct {
	Income        decimal.Decimal `json:"ingresos"`
	Expenses      decimal.Decimal `json:"gastos"`
	Profit        decimal.Decimal `json:"ganancia"`
	MarginPercent decimal.Decimal `json:"margen_porcentaje"`
}

// EventsSummary summarises confirmed (won) events.
type EventsSummary struct {
	Total        int             `json:"total_eventos"`
	Dated        int             `json:"con_fecha"`
	Undated      int             `json:"sin_fecha"`
	TotalRevenue decimal.Decimal `json:"ganancia_total"`
}

// Dashboard is the combined landing-page payload.
type Dashboard struct {
	Stats        PipelineStats `json:"stats"`
	Distribution []StatusCount `json:"distribution"`
	Trend        []TrendPoint  `json:"trend"`
	UrgentAlerts int           `json:"urgent_alerts"`
}
