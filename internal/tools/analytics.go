package tools

import (
	"context"
	"fmt"
	"math"

	"github.com/bbeeken/PDIMCPServer/internal/dates"
	"github.com/bbeeken/PDIMCPServer/internal/envelope"
	"github.com/bbeeken/PDIMCPServer/internal/registry"
)

func dailyReportTool() registry.Tool {
	return registry.Tool{
		Name: "daily_report",
		Description: "Summarise transaction counts, quantities and sales totals for each day " +
			"within the selected date range.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"start_date": map[string]interface{}{"type": "string", "description": "Start date (YYYY-MM-DD)"},
				"end_date":   map[string]interface{}{"type": "string", "description": "End date (YYYY-MM-DD)"},
				"site_id":    map[string]interface{}{"type": "integer", "description": "Optional site filter"},
			},
			"required":             []interface{}{"start_date", "end_date"},
			"additionalProperties": false,
		},
	}
}

func (t *Tools) dailyReport(ctx context.Context, args map[string]interface{}) *envelope.Response {
	startDate, endDate, err := t.dateRangeArgs(args)
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	siteID, hasSiteID, err := intArg(args, "site_id")
	if err != nil {
		return envelope.New().Error(err).Build()
	}

	dateExpr := t.db.Dialect().DateExpr("sale_date")
	sql := fmt.Sprintf(`SELECT %s AS sale_date,
	SUM(gross_sales) AS total_sales,
	SUM(qty_sold) AS total_quantity,
	COUNT(DISTINCT transaction_id) AS transaction_count
FROM %s
WHERE sale_date BETWEEN :start_date AND :end_date`, dateExpr, t.db.Views().SalesFact)

	params := map[string]interface{}{
		"start_date": startDate,
		"end_date":   endDate,
	}
	if hasSiteID {
		sql += " AND site_id = :site_id"
		params["site_id"] = siteID
	}
	sql += fmt.Sprintf(" GROUP BY %s ORDER BY sale_date", dateExpr)

	rows, err := t.db.ExecuteQuery(ctx, sql, params)
	if err != nil {
		return envelope.New().SQL(sql, params).Error(err).Build()
	}

	return envelope.New().
		Data(rows).
		SQL(sql, params).
		Metadata(map[string]interface{}{
			"date_range": fmt.Sprintf("%s to %s", startDate, endDate),
			"site_id":    siteID,
		}).
		Build()
}

func hourlySalesTool() registry.Tool {
	return registry.Tool{
		Name:        "hourly_sales",
		Description: "Aggregate sales by hour for a given date range",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"start_date": map[string]interface{}{"type": "string", "description": "Start date (YYYY-MM-DD)"},
				"end_date":   map[string]interface{}{"type": "string", "description": "End date (YYYY-MM-DD)"},
				"site_id":    map[string]interface{}{"type": "integer", "description": "Optional site filter"},
			},
			"required": []interface{}{"start_date", "end_date"},
		},
	}
}

func (t *Tools) hourlySales(ctx context.Context, args map[string]interface{}) *envelope.Response {
	startDate, endDate, err := t.dateRangeArgs(args)
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	siteID, hasSiteID, err := intArg(args, "site_id")
	if err != nil {
		return envelope.New().Error(err).Build()
	}

	hourExpr := t.db.Dialect().HourExpr("time_of_day")
	sql := fmt.Sprintf(`SELECT %s AS hour,
	SUM(qty_sold) AS total_quantity,
	SUM(gross_sales) AS total_sales,
	COUNT(DISTINCT transaction_id) AS transaction_count
FROM %s
WHERE sale_date BETWEEN :start_date AND :end_date`, hourExpr, t.db.Views().SalesFact)

	params := map[string]interface{}{
		"start_date": startDate,
		"end_date":   endDate,
	}
	if hasSiteID {
		sql += " AND site_id = :site_id"
		params["site_id"] = siteID
	}
	sql += fmt.Sprintf(" GROUP BY %s ORDER BY hour", hourExpr)

	rows, err := t.db.ExecuteQuery(ctx, sql, params)
	if err != nil {
		return envelope.New().SQL(sql, params).Error(err).Build()
	}

	return envelope.New().
		Data(rows).
		SQL(sql, params).
		Metadata(map[string]interface{}{
			"date_range": fmt.Sprintf("%s to %s", startDate, endDate),
			"site_id":    siteID,
		}).
		Build()
}

func peakHoursTool() registry.Tool {
	return registry.Tool{
		Name:        "peak_hours",
		Description: "Identify the busiest hours by sales total",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"start_date": map[string]interface{}{"type": "string", "description": "Start date (YYYY-MM-DD)"},
				"end_date":   map[string]interface{}{"type": "string", "description": "End date (YYYY-MM-DD)"},
				"site_id":    map[string]interface{}{"type": "integer", "description": "Optional site filter"},
				"top_n":      map[string]interface{}{"type": "integer", "description": "Number of hours to return", "default": 5},
			},
			"required": []interface{}{"start_date", "end_date"},
		},
	}
}

func (t *Tools) peakHours(ctx context.Context, args map[string]interface{}) *envelope.Response {
	startDate, endDate, err := t.dateRangeArgs(args)
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	siteID, hasSiteID, err := intArg(args, "site_id")
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	topN, err := intArgDefault(args, "top_n", 5)
	if err != nil {
		return envelope.New().Error(err).Build()
	}

	hourExpr := t.db.Dialect().HourExpr("time_of_day")
	sql := fmt.Sprintf(`SELECT %s AS hour,
	SUM(gross_sales) AS total_sales,
	SUM(qty_sold) AS total_quantity,
	COUNT(DISTINCT transaction_id) AS transaction_count
FROM %s
WHERE sale_date BETWEEN :start_date AND :end_date`, hourExpr, t.db.Views().SalesFact)

	params := map[string]interface{}{
		"start_date": startDate,
		"end_date":   endDate,
		"top_n":      topN,
	}
	if hasSiteID {
		sql += " AND site_id = :site_id"
		params["site_id"] = siteID
	}
	sql += fmt.Sprintf(" GROUP BY %s ORDER BY total_sales DESC LIMIT :top_n", hourExpr)

	rows, err := t.db.ExecuteQuery(ctx, sql, params)
	if err != nil {
		return envelope.New().SQL(sql, params).Error(err).Build()
	}

	return envelope.New().
		Data(rows).
		SQL(sql, params).
		Metadata(map[string]interface{}{
			"date_range": fmt.Sprintf("%s to %s", startDate, endDate),
			"site_id":    siteID,
			"top_n":      topN,
		}).
		Build()
}

func productVelocityTool() registry.Tool {
	return registry.Tool{
		Name:        "product_velocity",
		Description: "List top selling items by quantity for a period",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"start_date": map[string]interface{}{"type": "string", "description": "Start date (YYYY-MM-DD)"},
				"end_date":   map[string]interface{}{"type": "string", "description": "End date (YYYY-MM-DD)"},
				"site_id":    map[string]interface{}{"type": "integer", "description": "Optional site filter"},
				"limit":      map[string]interface{}{"type": "integer", "description": "Maximum items to return", "default": 10},
			},
			"required": []interface{}{"start_date", "end_date"},
		},
	}
}

func (t *Tools) productVelocity(ctx context.Context, args map[string]interface{}) *envelope.Response {
	startDate, endDate, err := t.dateRangeArgs(args)
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	siteID, hasSiteID, err := intArg(args, "site_id")
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	limit, err := intArgDefault(args, "limit", 10)
	if err != nil {
		return envelope.New().Error(err).Build()
	}

	sql := fmt.Sprintf(`SELECT item_id, item_name,
	SUM(qty_sold) AS total_quantity,
	SUM(gross_sales) AS total_sales
FROM %s
WHERE sale_date BETWEEN :start_date AND :end_date`, t.db.Views().SalesFact)

	params := map[string]interface{}{
		"start_date": startDate,
		"end_date":   endDate,
		"limit":      limit,
	}
	if hasSiteID {
		sql += " AND site_id = :site_id"
		params["site_id"] = siteID
	}
	sql += " GROUP BY item_id, item_name ORDER BY total_quantity DESC LIMIT :limit"

	rows, err := t.db.ExecuteQuery(ctx, sql, params)
	if err != nil {
		return envelope.New().SQL(sql, params).Error(err).Build()
	}

	return envelope.New().
		Data(rows).
		SQL(sql, params).
		Metadata(map[string]interface{}{
			"date_range": fmt.Sprintf("%s to %s", startDate, endDate),
			"site_id":    siteID,
			"limit":      limit,
		}).
		Build()
}

func lowMovementTool() registry.Tool {
	return registry.Tool{
		Name:        "low_movement",
		Description: "Detect items selling at or below a quantity threshold",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"start_date": map[string]interface{}{"type": "string", "description": "Start date (YYYY-MM-DD)"},
				"end_date":   map[string]interface{}{"type": "string", "description": "End date (YYYY-MM-DD)"},
				"threshold":  map[string]interface{}{"type": "integer", "description": "Maximum total quantity to qualify", "default": 10},
				"site_id":    map[string]interface{}{"type": "integer", "description": "Optional site filter"},
			},
			"required": []interface{}{"start_date", "end_date"},
		},
	}
}

func (t *Tools) lowMovement(ctx context.Context, args map[string]interface{}) *envelope.Response {
	startDate, endDate, err := t.dateRangeArgs(args)
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	threshold, err := intArgDefault(args, "threshold", 10)
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	siteID, hasSiteID, err := intArg(args, "site_id")
	if err != nil {
		return envelope.New().Error(err).Build()
	}

	sql := fmt.Sprintf(`SELECT item_id, item_name,
	SUM(qty_sold) AS total_quantity,
	SUM(gross_sales) AS total_sales
FROM %s
WHERE sale_date BETWEEN :start_date AND :end_date`, t.db.Views().SalesFact)

	params := map[string]interface{}{
		"start_date": startDate,
		"end_date":   endDate,
		"threshold":  threshold,
	}
	if hasSiteID {
		sql += " AND site_id = :site_id"
		params["site_id"] = siteID
	}
	sql += " GROUP BY item_id, item_name HAVING SUM(qty_sold) <= :threshold ORDER BY total_quantity"

	rows, err := t.db.ExecuteQuery(ctx, sql, params)
	if err != nil {
		return envelope.New().SQL(sql, params).Error(err).Build()
	}

	return envelope.New().
		Data(rows).
		SQL(sql, params).
		Metadata(map[string]interface{}{
			"date_range": fmt.Sprintf("%s to %s", startDate, endDate),
			"threshold":  threshold,
			"site_id":    siteID,
		}).
		Build()
}

func salesAnomaliesTool() registry.Tool {
	return registry.Tool{
		Name:        "sales_anomalies",
		Description: "Highlight days with abnormal sales totals",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"start_date": map[string]interface{}{"type": "string", "description": "Start date (YYYY-MM-DD)"},
				"end_date":   map[string]interface{}{"type": "string", "description": "End date (YYYY-MM-DD)"},
				"site_id":    map[string]interface{}{"type": "integer", "description": "Optional site filter"},
				"z_score":    map[string]interface{}{"type": "number", "description": "Standard deviation threshold", "default": 2.0},
			},
			"required": []interface{}{"start_date", "end_date"},
		},
	}
}

func (t *Tools) salesAnomalies(ctx context.Context, args map[string]interface{}) *envelope.Response {
	startDate, endDate, err := t.dateRangeArgs(args)
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	siteID, hasSiteID, err := intArg(args, "site_id")
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	zScore, err := floatArgDefault(args, "z_score", 2.0)
	if err != nil {
		return envelope.New().Error(err).Build()
	}

	sql := fmt.Sprintf(`SELECT sale_date, SUM(gross_sales) AS total_sales
FROM %s
WHERE sale_date BETWEEN :start_date AND :end_date`, t.db.Views().SalesFact)

	params := map[string]interface{}{
		"start_date": startDate,
		"end_date":   endDate,
	}
	if hasSiteID {
		sql += " AND site_id = :site_id"
		params["site_id"] = siteID
	}
	sql += " GROUP BY sale_date ORDER BY sale_date"

	rows, err := t.db.ExecuteQuery(ctx, sql, params)
	if err != nil {
		return envelope.New().SQL(sql, params).Error(err).Build()
	}

	mean, stdev := populationStats(rows, "total_sales")

	anomalies := make([]map[string]interface{}, 0)
	if stdev > 0 {
		for _, row := range rows {
			if math.Abs(toFloat(row["total_sales"])-mean) > zScore*stdev {
				anomalies = append(anomalies, row)
			}
		}
	}

	return envelope.New().
		Data(anomalies).
		SQL(sql, params).
		Metadata(map[string]interface{}{
			"date_range": fmt.Sprintf("%s to %s", startDate, endDate),
			"site_id":    siteID,
			"mean":       mean,
			"stdev":      stdev,
			"z_score":    zScore,
		}).
		Build()
}

// populationStats computes the mean and population standard deviation
// of one numeric column. A single data point has no spread, so stdev
// is reported as 0.
func populationStats(rows []map[string]interface{}, column string) (mean, stdev float64) {
	if len(rows) == 0 {
		return 0, 0
	}

	var sum float64
	for _, row := range rows {
		sum += toFloat(row[column])
	}
	mean = sum / float64(len(rows))

	if len(rows) < 2 {
		return mean, 0
	}

	var sumSq float64
	for _, row := range rows {
		d := toFloat(row[column]) - mean
		sumSq += d * d
	}
	return mean, math.Sqrt(sumSq / float64(len(rows)))
}

func salesGapsTool() registry.Tool {
	return registry.Tool{
		Name:        "sales_gaps",
		Description: "List dates in a range with no sales data",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"start_date": map[string]interface{}{"type": "string", "description": "Start date (YYYY-MM-DD)"},
				"end_date":   map[string]interface{}{"type": "string", "description": "End date (YYYY-MM-DD)"},
				"site_id":    map[string]interface{}{"type": "integer", "description": "Optional site filter"},
			},
			"required": []interface{}{"start_date", "end_date"},
		},
	}
}

func (t *Tools) salesGaps(ctx context.Context, args map[string]interface{}) *envelope.Response {
	startDate, endDate, err := t.dateRangeArgs(args)
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	siteID, hasSiteID, err := intArg(args, "site_id")
	if err != nil {
		return envelope.New().Error(err).Build()
	}

	dateExpr := t.db.Dialect().DateExpr("sale_date")
	sql := fmt.Sprintf("SELECT DISTINCT %s AS sale_date FROM %s WHERE sale_date BETWEEN :start_date AND :end_date",
		dateExpr, t.db.Views().SalesFact)

	params := map[string]interface{}{
		"start_date": startDate,
		"end_date":   endDate,
	}
	if hasSiteID {
		sql += " AND site_id = :site_id"
		params["site_id"] = siteID
	}

	rows, err := t.db.ExecuteQuery(ctx, sql, params)
	if err != nil {
		return envelope.New().SQL(sql, params).Error(err).Build()
	}

	sold := make(map[string]bool, len(rows))
	for _, row := range rows {
		if s, ok := row["sale_date"].(string); ok {
			// Timestamps reduce to their date part.
			if len(s) > 10 {
				s = s[:10]
			}
			sold[s] = true
		}
	}

	gaps := make([]string, 0)
	for _, day := range dates.DaysBetween(startDate, endDate) {
		if !sold[day] {
			gaps = append(gaps, day)
		}
	}

	return envelope.New().
		Data(gaps).
		SQL(sql, params).
		Metadata(map[string]interface{}{
			"date_range": fmt.Sprintf("%s to %s", startDate, endDate),
			"site_id":    siteID,
		}).
		Build()
}

func yearOverYearTool() registry.Tool {
	return registry.Tool{
		Name:        "year_over_year",
		Description: "Compare sales with the equivalent period one year earlier",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"start_date": map[string]interface{}{"type": "string", "description": "Start date (YYYY-MM-DD)"},
				"end_date":   map[string]interface{}{"type": "string", "description": "End date (YYYY-MM-DD)"},
				"site_id":    map[string]interface{}{"type": "integer", "description": "Optional site filter"},
			},
			"required": []interface{}{"start_date", "end_date"},
		},
	}
}

func (t *Tools) yearOverYear(ctx context.Context, args map[string]interface{}) *envelope.Response {
	startDate, endDate, err := t.dateRangeArgs(args)
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	siteID, hasSiteID, err := intArg(args, "site_id")
	if err != nil {
		return envelope.New().Error(err).Build()
	}

	// Previous period is a fixed 365-day shift, keeping weekday
	// alignment stable across the comparison.
	startDT, _ := dates.Parse(startDate)
	endDT, _ := dates.Parse(endDate)
	prevStart := startDT.AddDate(0, 0, -365).Format(dates.ISO)
	prevEnd := endDT.AddDate(0, 0, -365).Format(dates.ISO)

	baseSQL := fmt.Sprintf(`SELECT
	COALESCE(SUM(gross_sales), 0) AS total_sales,
	COALESCE(SUM(qty_sold), 0) AS total_quantity,
	COUNT(DISTINCT transaction_id) AS transaction_count
FROM %s
WHERE sale_date BETWEEN :start_date AND :end_date`, t.db.Views().SalesFact)
	if hasSiteID {
		baseSQL += " AND site_id = :site_id"
	}

	runPeriod := func(start, end string) (map[string]interface{}, map[string]interface{}, error) {
		params := map[string]interface{}{"start_date": start, "end_date": end}
		if hasSiteID {
			params["site_id"] = siteID
		}
		rows, err := t.db.ExecuteQuery(ctx, baseSQL, params)
		if err != nil {
			return nil, params, err
		}
		if len(rows) == 0 {
			return map[string]interface{}{
				"total_sales": 0.0, "total_quantity": 0.0, "transaction_count": 0,
			}, params, nil
		}
		return rows[0], params, nil
	}

	current, currentParams, err := runPeriod(startDate, endDate)
	if err != nil {
		return envelope.New().SQL(baseSQL, currentParams).Error(err).Build()
	}
	previous, prevParams, err := runPeriod(prevStart, prevEnd)
	if err != nil {
		return envelope.New().SQL(baseSQL, prevParams).Error(err).Build()
	}

	change := map[string]interface{}{
		"sales_change_pct": dates.SafeDivide(
			toFloat(current["total_sales"])-toFloat(previous["total_sales"]),
			toFloat(previous["total_sales"]), 0.0),
		"quantity_change_pct": dates.SafeDivide(
			toFloat(current["total_quantity"])-toFloat(previous["total_quantity"]),
			toFloat(previous["total_quantity"]), 0.0),
		"transaction_change_pct": dates.SafeDivide(
			toFloat(current["transaction_count"])-toFloat(previous["transaction_count"]),
			toFloat(previous["transaction_count"]), 0.0),
	}

	return envelope.New().
		Data(map[string]interface{}{
			"current_period":  current,
			"previous_period": previous,
			"change":          change,
		}).
		SQL(baseSQL, currentParams).
		Metadata(map[string]interface{}{
			"current_range":  fmt.Sprintf("%s to %s", startDate, endDate),
			"previous_range": fmt.Sprintf("%s to %s", prevStart, prevEnd),
			"site_id":        siteID,
		}).
		Build()
}

func salesForecastTool() registry.Tool {
	return registry.Tool{
		Name:        "sales_forecast",
		Description: "Forecast daily sales totals beyond the end of the range",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"start_date": map[string]interface{}{"type": "string", "description": "Start date (YYYY-MM-DD)"},
				"end_date":   map[string]interface{}{"type": "string", "description": "End date (YYYY-MM-DD)"},
				"horizon":    map[string]interface{}{"type": "integer", "description": "Days to forecast beyond end_date", "default": 7},
			},
			"required":             []interface{}{"start_date", "end_date"},
			"additionalProperties": false,
		},
	}
}

// salesForecast requires a time-series model this server does not
// carry. The tool stays listed so clients can discover it, and calls
// report the unimplemented status rather than a runtime failure.
func (t *Tools) salesForecast(ctx context.Context, args map[string]interface{}) *envelope.Response {
	_ = ctx
	_ = args
	return envelope.New().Unimplemented("sales_forecast").Build()
}
