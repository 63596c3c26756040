// Package tools implements the analytical query tools exposed over the
// MCP and HTTP front ends. Every tool follows the same shape: validate
// and normalize arguments, build named-parameter SQL with optional
// filters appended only when supplied, execute against the warehouse,
// post-process rows, and wrap everything in a response envelope. The
// tool boundary is also the error boundary: handlers never return Go
// errors, they return error envelopes.
package tools

import (
	"time"

	"github.com/bbeeken/PDIMCPServer/internal/logging"
	"github.com/bbeeken/PDIMCPServer/internal/match"
	"github.com/bbeeken/PDIMCPServer/internal/registry"
	"github.com/bbeeken/PDIMCPServer/internal/warehouse"
)

// Tools bundles the dependencies shared by all tool handlers
type Tools struct {
	db     *warehouse.DB
	logger *logging.Logger
	scorer match.Scorer
	now    func() time.Time
}

// New creates the tool set against a warehouse connection
func New(db *warehouse.DB, logger *logging.Logger) *Tools {
	return &Tools{
		db:     db,
		logger: logger,
		scorer: match.NewScorer(),
		now:    time.Now,
	}
}

// RegisterAll registers every tool with the registry
func (t *Tools) RegisterAll(reg *registry.Registry) {
	// Sales
	reg.Register(querySalesRealtimeTool(), t.querySalesRealtime)
	reg.Register(salesSummaryTool(), t.salesSummary)
	reg.Register(salesTrendTool(), t.salesTrend)
	reg.Register(topItemsTool(), t.topItems)

	// Basket
	reg.Register(basketAnalysisTool(), t.basketAnalysis)
	reg.Register(itemCorrelationTool(), t.itemCorrelation)
	reg.Register(crossSellOpportunitiesTool(), t.crossSellOpportunities)
	reg.Register(basketMetricsTool(), t.basketMetrics)
	reg.Register(transactionLookupTool(), t.transactionLookup)

	// Analytics
	reg.Register(dailyReportTool(), t.dailyReport)
	reg.Register(hourlySalesTool(), t.hourlySales)
	reg.Register(peakHoursTool(), t.peakHours)
	reg.Register(productVelocityTool(), t.productVelocity)
	reg.Register(lowMovementTool(), t.lowMovement)
	reg.Register(salesAnomaliesTool(), t.salesAnomalies)
	reg.Register(salesGapsTool(), t.salesGaps)
	reg.Register(yearOverYearTool(), t.yearOverYear)
	reg.Register(salesForecastTool(), t.salesForecast)

	// Lookup
	reg.Register(itemLookupTool(), t.itemLookup)
	reg.Register(siteLookupTool(), t.siteLookup)
	reg.Register(getTodayDateTool(), t.getTodayDate)

	// Tickets
	reg.Register(ticketPriorityTool(), t.ticketPriority)
	reg.Register(ticketSentimentTool(), t.ticketSentiment)
}
