package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/bbeeken/PDIMCPServer/internal/dates"
	"github.com/bbeeken/PDIMCPServer/internal/envelope"
	"github.com/bbeeken/PDIMCPServer/internal/registry"
)

func querySalesRealtimeTool() registry.Tool {
	return registry.Tool{
		Name:        "query_sales_realtime",
		Description: "Query real-time sales transaction data with flexible filtering",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"start_date": map[string]interface{}{"type": "string", "description": "Start date (YYYY-MM-DD)"},
				"end_date":   map[string]interface{}{"type": "string", "description": "End date (YYYY-MM-DD)"},
				"item_name":  map[string]interface{}{"type": "string", "description": "Item name (partial match)"},
				"item_id":    map[string]interface{}{"type": "integer", "description": "Exact item ID"},
				"site_id":    map[string]interface{}{"type": "integer", "description": "Site ID filter"},
				"category":   map[string]interface{}{"type": "string", "description": "Category filter (partial match)"},
				"min_amount": map[string]interface{}{"type": "number", "description": "Minimum sale amount"},
				"limit":      map[string]interface{}{"type": "integer", "description": "Maximum rows to return (default 1000)", "default": 1000},
			},
			"required": []interface{}{"start_date", "end_date"},
		},
	}
}

func (t *Tools) querySalesRealtime(ctx context.Context, args map[string]interface{}) *envelope.Response {
	startDate, endDate, err := t.dateRangeArgs(args)
	if err != nil {
		return envelope.New().Error(err).Build()
	}

	itemName, _, err := stringArg(args, "item_name")
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	itemID, hasItemID, err := intArg(args, "item_id")
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	siteID, hasSiteID, err := intArg(args, "site_id")
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	category, _, err := stringArg(args, "category")
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	minAmount, hasMinAmount, err := floatArg(args, "min_amount")
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	limit, err := intArgDefault(args, "limit", 1000)
	if err != nil {
		return envelope.New().Error(err).Build()
	}

	sql := fmt.Sprintf(`SELECT
	transaction_id,
	sale_date,
	day_of_week,
	time_of_day,
	site_id,
	site_name,
	item_id,
	item_name,
	category,
	department,
	qty_sold,
	price,
	gross_sales
FROM %s
WHERE sale_date BETWEEN :start_date AND :end_date`, t.db.Views().SalesFact)

	params := map[string]interface{}{
		"start_date": startDate,
		"end_date":   endDate,
		"limit":      limit,
	}

	if hasItemID {
		sql += " AND item_id = :item_id"
		params["item_id"] = itemID
	} else if itemName != "" {
		sql += " AND item_name LIKE :item_name"
		params["item_name"] = likePattern(itemName)
	}
	if hasSiteID {
		sql += " AND site_id = :site_id"
		params["site_id"] = siteID
	}
	if category != "" {
		sql += " AND category LIKE :category"
		params["category"] = likePattern(category)
	}
	if hasMinAmount {
		sql += " AND gross_sales >= :min_amount"
		params["min_amount"] = minAmount
	}

	sql += " ORDER BY sale_date DESC, time_of_day DESC LIMIT :limit"

	rows, err := t.db.ExecuteQuery(ctx, sql, params)
	if err != nil {
		return envelope.New().SQL(sql, params).Error(err).Build()
	}

	return envelope.New().
		Data(rows).
		SQL(sql, params).
		Metadata(map[string]interface{}{
			"date_range": fmt.Sprintf("%s to %s", startDate, endDate),
			"filters_applied": map[string]interface{}{
				"item_name":  itemName,
				"item_id":    itemID,
				"site_id":    siteID,
				"category":   category,
				"min_amount": minAmount,
			},
		}).
		Build()
}

func salesSummaryTool() registry.Tool {
	return registry.Tool{
		Name:        "sales_summary",
		Description: "Generate sales summary with flexible grouping options",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"start_date": map[string]interface{}{"type": "string", "description": "Start date (YYYY-MM-DD)"},
				"end_date":   map[string]interface{}{"type": "string", "description": "End date (YYYY-MM-DD)"},
				"group_by": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []interface{}{"date", "site", "category", "department", "dayofweek"},
					},
					"description": "Grouping dimensions",
				},
				"site_id":  map[string]interface{}{"type": "integer", "description": "Optional site filter"},
				"category": map[string]interface{}{"type": "string", "description": "Optional category filter"},
			},
			"required": []interface{}{"start_date", "end_date"},
		},
	}
}

// summaryGroupings maps the allow-listed grouping keys to columns.
var summaryGroupings = map[string][]string{
	"date":       {"sale_date"},
	"site":       {"site_id", "site_name"},
	"category":   {"category"},
	"department": {"department"},
	"dayofweek":  {"day_of_week"},
}

func (t *Tools) salesSummary(ctx context.Context, args map[string]interface{}) *envelope.Response {
	startDate, endDate, err := t.dateRangeArgs(args)
	if err != nil {
		return envelope.New().Error(err).Build()
	}

	groupBy, err := stringsArg(args, "group_by")
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	siteID, hasSiteID, err := intArg(args, "site_id")
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	category, _, err := stringArg(args, "category")
	if err != nil {
		return envelope.New().Error(err).Build()
	}

	var groupCols []string
	for _, g := range groupBy {
		cols, ok := summaryGroupings[strings.ToLower(g)]
		if !ok {
			return envelope.New().Errorf("invalid grouping: %s", g).Build()
		}
		groupCols = append(groupCols, cols...)
	}

	selectPart := ""
	groupPart := ""
	if len(groupCols) > 0 {
		selectPart = strings.Join(groupCols, ", ") + ", "
		groupPart = " GROUP BY " + strings.Join(groupCols, ", ")
	}

	sql := fmt.Sprintf(`SELECT %sCOUNT(DISTINCT transaction_id) AS transaction_count,
	COUNT(DISTINCT item_id) AS unique_items,
	SUM(qty_sold) AS total_quantity,
	SUM(gross_sales) AS total_sales,
	AVG(gross_sales) AS avg_sale_amount
FROM %s
WHERE sale_date BETWEEN :start_date AND :end_date`, selectPart, t.db.Views().SalesFact)

	params := map[string]interface{}{
		"start_date": startDate,
		"end_date":   endDate,
	}

	if hasSiteID {
		sql += " AND site_id = :site_id"
		params["site_id"] = siteID
	}
	if category != "" {
		sql += " AND category LIKE :category"
		params["category"] = likePattern(category)
	}

	sql += groupPart
	if len(groupCols) > 0 {
		sql += " ORDER BY " + groupCols[0]
	}

	rows, err := t.db.ExecuteQuery(ctx, sql, params)
	if err != nil {
		return envelope.New().SQL(sql, params).Error(err).Build()
	}

	grouping := interface{}("overall")
	if len(groupBy) > 0 {
		grouping = groupBy
	}

	return envelope.New().
		Data(rows).
		SQL(sql, params).
		Metadata(map[string]interface{}{
			"date_range": fmt.Sprintf("%s to %s", startDate, endDate),
			"grouping":   grouping,
			"filters":    map[string]interface{}{"site_id": siteID, "category": category},
		}).
		Build()
}

func salesTrendTool() registry.Tool {
	return registry.Tool{
		Name:        "sales_trend",
		Description: "Analyze sales trends over time",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"start_date": map[string]interface{}{"type": "string", "description": "Start date (YYYY-MM-DD)"},
				"end_date":   map[string]interface{}{"type": "string", "description": "End date (YYYY-MM-DD)"},
				"interval": map[string]interface{}{
					"type":        "string",
					"enum":        []interface{}{"daily", "weekly", "monthly", "hourly"},
					"default":     "daily",
					"description": "Time interval for aggregation",
				},
				"site_id":  map[string]interface{}{"type": "integer", "description": "Optional site filter"},
				"category": map[string]interface{}{"type": "string", "description": "Optional category filter"},
				"metric": map[string]interface{}{
					"type":        "string",
					"enum":        []interface{}{"sales", "quantity", "transactions"},
					"default":     "sales",
					"description": "Metric to aggregate",
				},
			},
			"required": []interface{}{"start_date", "end_date"},
		},
	}
}

func (t *Tools) salesTrend(ctx context.Context, args map[string]interface{}) *envelope.Response {
	startDate, endDate, err := t.dateRangeArgs(args)
	if err != nil {
		return envelope.New().Error(err).Build()
	}

	interval, err := enumArg(args, "interval", "daily", []string{"daily", "weekly", "monthly", "hourly"})
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	metric, err := enumArg(args, "metric", "sales", []string{"sales", "quantity", "transactions"})
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	siteID, hasSiteID, err := intArg(args, "site_id")
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	category, _, err := stringArg(args, "category")
	if err != nil {
		return envelope.New().Error(err).Build()
	}

	d := t.db.Dialect()

	// Bucket expressions and their bare (un-aliased) forms for GROUP BY.
	var selectExprs, groupExprs []string
	switch interval {
	case "weekly":
		selectExprs = []string{d.WeekExpr("sale_date") + " AS week", d.YearExpr("sale_date") + " AS year"}
		groupExprs = []string{d.WeekExpr("sale_date"), d.YearExpr("sale_date")}
	case "monthly":
		selectExprs = []string{d.MonthExpr("sale_date") + " AS month", d.YearExpr("sale_date") + " AS year"}
		groupExprs = []string{d.MonthExpr("sale_date"), d.YearExpr("sale_date")}
	case "hourly":
		selectExprs = []string{"sale_date", d.HourExpr("time_of_day") + " AS hour"}
		groupExprs = []string{"sale_date", d.HourExpr("time_of_day")}
	default: // daily
		selectExprs = []string{"sale_date"}
		groupExprs = []string{"sale_date"}
	}

	var metricExpr, metricAlias string
	switch metric {
	case "quantity":
		metricExpr, metricAlias = "SUM(qty_sold)", "total_quantity"
	case "transactions":
		metricExpr, metricAlias = "COUNT(DISTINCT transaction_id)", "transaction_count"
	default:
		metricExpr, metricAlias = "SUM(gross_sales)", "total_sales"
	}

	sql := fmt.Sprintf(`SELECT %s, %s AS %s
FROM %s
WHERE sale_date BETWEEN :start_date AND :end_date`,
		strings.Join(selectExprs, ", "), metricExpr, metricAlias, t.db.Views().SalesFact)

	params := map[string]interface{}{
		"start_date": startDate,
		"end_date":   endDate,
	}

	if hasSiteID {
		sql += " AND site_id = :site_id"
		params["site_id"] = siteID
	}
	if category != "" {
		sql += " AND category LIKE :category"
		params["category"] = likePattern(category)
	}

	groupList := strings.Join(groupExprs, ", ")
	sql += " GROUP BY " + groupList + " ORDER BY " + groupList

	rows, err := t.db.ExecuteQuery(ctx, sql, params)
	if err != nil {
		return envelope.New().SQL(sql, params).Error(err).Build()
	}

	return envelope.New().
		Data(rows).
		SQL(sql, params).
		Metadata(map[string]interface{}{
			"date_range": fmt.Sprintf("%s to %s", startDate, endDate),
			"interval":   interval,
			"metric":     metric,
			"filters":    map[string]interface{}{"site_id": siteID, "category": category},
		}).
		Build()
}

func topItemsTool() registry.Tool {
	return registry.Tool{
		Name:        "top_items",
		Description: "Get top selling items for a date range with optional filters",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"start_date": map[string]interface{}{"type": "string", "description": "Start date (YYYY-MM-DD)"},
				"end_date":   map[string]interface{}{"type": "string", "description": "End date (YYYY-MM-DD)"},
				"metric": map[string]interface{}{
					"type":        "string",
					"enum":        []interface{}{"sales", "quantity", "transactions"},
					"default":     "sales",
					"description": "Metric to rank by",
				},
				"top_n":    map[string]interface{}{"type": "integer", "description": "Number of items to return", "default": 10},
				"site_id":  map[string]interface{}{"type": "integer", "description": "Optional site filter"},
				"category": map[string]interface{}{"type": "string", "description": "Optional category filter"},
			},
			"required": []interface{}{"start_date", "end_date"},
		},
	}
}

func (t *Tools) topItems(ctx context.Context, args map[string]interface{}) *envelope.Response {
	startDate, endDate, err := t.dateRangeArgs(args)
	if err != nil {
		return envelope.New().Error(err).Build()
	}

	metric, err := enumArg(args, "metric", "sales", []string{"sales", "quantity", "transactions"})
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	topN, err := intArgDefault(args, "top_n", 10)
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	siteID, hasSiteID, err := intArg(args, "site_id")
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	category, _, err := stringArg(args, "category")
	if err != nil {
		return envelope.New().Error(err).Build()
	}

	var rankExpr string
	switch metric {
	case "quantity":
		rankExpr = "total_quantity"
	case "transactions":
		rankExpr = "transaction_count"
	default:
		rankExpr = "total_sales"
	}

	sql := fmt.Sprintf(`SELECT item_id, item_name, category,
	SUM(gross_sales) AS total_sales,
	SUM(qty_sold) AS total_quantity,
	COUNT(DISTINCT transaction_id) AS transaction_count
FROM %s
WHERE sale_date BETWEEN :start_date AND :end_date`, t.db.Views().SalesFact)

	params := map[string]interface{}{
		"start_date": startDate,
		"end_date":   endDate,
		"top_n":      topN,
	}

	if hasSiteID {
		sql += " AND site_id = :site_id"
		params["site_id"] = siteID
	}
	if category != "" {
		sql += " AND category LIKE :category"
		params["category"] = likePattern(category)
	}

	sql += fmt.Sprintf(" GROUP BY item_id, item_name, category ORDER BY %s DESC LIMIT :top_n", rankExpr)

	rows, err := t.db.ExecuteQuery(ctx, sql, params)
	if err != nil {
		return envelope.New().SQL(sql, params).Error(err).Build()
	}

	return envelope.New().
		Data(rows).
		SQL(sql, params).
		Metadata(map[string]interface{}{
			"date_range": fmt.Sprintf("%s to %s", startDate, endDate),
			"metric":     metric,
			"top_n":      topN,
			"site_id":    siteID,
			"category":   category,
		}).
		Build()
}

// dateRangeArgs pulls and validates the start_date/end_date pair every
// range-based tool requires.
func (t *Tools) dateRangeArgs(args map[string]interface{}) (string, string, error) {
	startDate, err := requiredStringArg(args, "start_date")
	if err != nil {
		return "", "", err
	}
	endDate, err := requiredStringArg(args, "end_date")
	if err != nil {
		return "", "", err
	}
	return dates.ValidateRange(startDate, endDate, t.logger)
}
