package tools

import (
	"context"
	"fmt"

	"github.com/bbeeken/PDIMCPServer/internal/envelope"
	"github.com/bbeeken/PDIMCPServer/internal/registry"
)

func basketAnalysisTool() registry.Tool {
	return registry.Tool{
		Name:        "basket_analysis",
		Description: "Find frequently bought together items with support, confidence, and lift metrics",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"start_date":     map[string]interface{}{"type": "string", "description": "Start date (YYYY-MM-DD)"},
				"end_date":       map[string]interface{}{"type": "string", "description": "End date (YYYY-MM-DD)"},
				"min_support":    map[string]interface{}{"type": "number", "description": "Minimum support threshold", "default": 0.01},
				"min_confidence": map[string]interface{}{"type": "number", "description": "Minimum confidence threshold", "default": 0.5},
				"site_id":        map[string]interface{}{"type": "integer", "description": "Filter by site ID"},
				"max_items":      map[string]interface{}{"type": "integer", "description": "Maximum pairs to return", "default": 50},
			},
			"required": []interface{}{"start_date", "end_date"},
		},
	}
}

func (t *Tools) basketAnalysis(ctx context.Context, args map[string]interface{}) *envelope.Response {
	startDate, endDate, err := t.dateRangeArgs(args)
	if err != nil {
		return envelope.New().Error(err).Build()
	}

	minSupport, err := floatArgDefault(args, "min_support", 0.01)
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	minConfidence, err := floatArgDefault(args, "min_confidence", 0.5)
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	siteID, hasSiteID, err := intArg(args, "site_id")
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	maxItems, err := intArgDefault(args, "max_items", 50)
	if err != nil {
		return envelope.New().Error(err).Build()
	}

	siteFilter := ""
	params := map[string]interface{}{
		"start_date":     startDate,
		"end_date":       endDate,
		"min_support":    minSupport,
		"min_confidence": minConfidence,
		"max_items":      maxItems,
	}
	if hasSiteID {
		siteFilter = " AND site_id = :site_id"
		params["site_id"] = siteID
	}

	// Pairs are built with item1_id < item2_id so each pair appears once;
	// lift is symmetric so the ordering does not affect its value.
	sql := fmt.Sprintf(`WITH tx_items AS (
	SELECT DISTINCT transaction_id, item_id, item_name
	FROM %[1]s
	WHERE sale_date BETWEEN :start_date AND :end_date%[2]s
),
tx_count AS (
	SELECT COUNT(DISTINCT transaction_id) AS total_transactions
	FROM %[1]s
	WHERE sale_date BETWEEN :start_date AND :end_date%[2]s
),
item_support AS (
	SELECT item_id, item_name, COUNT(DISTINCT transaction_id) AS support_count
	FROM tx_items
	GROUP BY item_id, item_name
),
item_pairs AS (
	SELECT
		a.item_id AS item1_id,
		a.item_name AS item1_name,
		b.item_id AS item2_id,
		b.item_name AS item2_name,
		COUNT(DISTINCT a.transaction_id) AS pair_count
	FROM tx_items a
	JOIN tx_items b ON a.transaction_id = b.transaction_id AND a.item_id < b.item_id
	GROUP BY a.item_id, a.item_name, b.item_id, b.item_name
)
SELECT
	p.item1_id, p.item1_name,
	p.item2_id, p.item2_name,
	p.pair_count,
	t.total_transactions,
	s1.support_count AS item1_count,
	s2.support_count AS item2_count,
	1.0 * p.pair_count / t.total_transactions AS support,
	1.0 * p.pair_count / s1.support_count AS confidence,
	(1.0 * p.pair_count * t.total_transactions) / (s1.support_count * s2.support_count) AS lift
FROM item_pairs p
CROSS JOIN tx_count t
JOIN item_support s1 ON p.item1_id = s1.item_id
JOIN item_support s2 ON p.item2_id = s2.item_id
WHERE 1.0 * p.pair_count / t.total_transactions >= :min_support
	AND 1.0 * p.pair_count / s1.support_count >= :min_confidence
ORDER BY lift DESC
LIMIT :max_items`, t.db.Views().SalesFact, siteFilter)

	rows, err := t.db.ExecuteQuery(ctx, sql, params)
	if err != nil {
		return envelope.New().SQL(sql, params).Error(err).Build()
	}

	pairs := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		pairs = append(pairs, map[string]interface{}{
			"item1": map[string]interface{}{"id": row["item1_id"], "name": row["item1_name"]},
			"item2": map[string]interface{}{"id": row["item2_id"], "name": row["item2_name"]},
			"metrics": map[string]interface{}{
				"support":    round(toFloat(row["support"]), 4),
				"confidence": round(toFloat(row["confidence"]), 3),
				"lift":       round(toFloat(row["lift"]), 2),
				"frequency":  row["pair_count"],
			},
		})
	}

	return envelope.New().
		Data(pairs).
		SQL(sql, params).
		Metadata(map[string]interface{}{
			"parameters": map[string]interface{}{
				"min_support":    minSupport,
				"min_confidence": minConfidence,
				"date_range":     fmt.Sprintf("%s to %s", startDate, endDate),
				"site_id":        siteID,
			},
		}).
		Build()
}

func itemCorrelationTool() registry.Tool {
	return registry.Tool{
		Name: "item_correlation",
		Description: "Analyse transactions containing a target item and identify other items " +
			"that commonly appear in the same basket. Useful for bundle planning.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"item_id":       map[string]interface{}{"type": "integer", "description": "Target item ID"},
				"start_date":    map[string]interface{}{"type": "string", "description": "Start date (YYYY-MM-DD)"},
				"end_date":      map[string]interface{}{"type": "string", "description": "End date (YYYY-MM-DD)"},
				"min_frequency": map[string]interface{}{"type": "integer", "description": "Minimum co-occurrence count", "default": 5},
				"top_n":         map[string]interface{}{"type": "integer", "description": "Number of correlated items", "default": 20},
				"site_id":       map[string]interface{}{"type": "integer", "description": "Filter by site ID"},
			},
			"required":             []interface{}{"item_id", "start_date", "end_date"},
			"additionalProperties": false,
		},
	}
}

func (t *Tools) itemCorrelation(ctx context.Context, args map[string]interface{}) *envelope.Response {
	itemID, err := requiredIntArg(args, "item_id")
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	startDate, endDate, err := t.dateRangeArgs(args)
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	minFrequency, err := intArgDefault(args, "min_frequency", 5)
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	topN, err := intArgDefault(args, "top_n", 20)
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	siteID, hasSiteID, err := intArg(args, "site_id")
	if err != nil {
		return envelope.New().Error(err).Build()
	}

	siteFilter := ""
	params := map[string]interface{}{
		"item_id":       itemID,
		"start_date":    startDate,
		"end_date":      endDate,
		"min_frequency": minFrequency,
		"top_n":         topN,
	}
	if hasSiteID {
		siteFilter = " AND site_id = :site_id"
		params["site_id"] = siteID
	}

	// Target transaction count and name first; the correlation query
	// divides by the count and an absent target ends the tool early.
	infoSQL := fmt.Sprintf(`SELECT item_name, category,
	COUNT(DISTINCT transaction_id) AS transaction_count
FROM %s
WHERE item_id = :item_id AND sale_date BETWEEN :start_date AND :end_date%s
GROUP BY item_name, category
LIMIT 1`, t.db.Views().SalesFact, siteFilter)

	infoRows, err := t.db.ExecuteQuery(ctx, infoSQL, params)
	if err != nil {
		return envelope.New().SQL(infoSQL, params).Error(err).Build()
	}
	if len(infoRows) == 0 {
		return envelope.New().
			SQL(infoSQL, params).
			Metadata(map[string]interface{}{
				"target_item": map[string]interface{}{"id": itemID},
				"message":     "No correlations found",
			}).
			Build()
	}

	targetCount := toFloat(infoRows[0]["transaction_count"])

	sql := fmt.Sprintf(`WITH target_transactions AS (
	SELECT DISTINCT transaction_id
	FROM %[1]s
	WHERE item_id = :item_id AND sale_date BETWEEN :start_date AND :end_date%[2]s
)
SELECT
	s.item_id, s.item_name, s.category,
	COUNT(DISTINCT s.transaction_id) AS co_occurrence_count,
	AVG(s.qty_sold) AS avg_qty_together,
	AVG(s.gross_sales) AS avg_sales_together,
	SUM(s.qty_sold) AS total_qty_together,
	SUM(s.gross_sales) AS total_sales_together
FROM %[1]s s
JOIN target_transactions t ON s.transaction_id = t.transaction_id
WHERE s.item_id != :item_id
GROUP BY s.item_id, s.item_name, s.category
HAVING COUNT(DISTINCT s.transaction_id) >= :min_frequency
ORDER BY co_occurrence_count DESC
LIMIT :top_n`, t.db.Views().SalesFact, siteFilter)

	rows, err := t.db.ExecuteQuery(ctx, sql, params)
	if err != nil {
		return envelope.New().SQL(sql, params).Error(err).Build()
	}

	correlations := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		coCount := toFloat(row["co_occurrence_count"])
		correlations = append(correlations, map[string]interface{}{
			"item": map[string]interface{}{
				"id":       row["item_id"],
				"name":     row["item_name"],
				"category": row["category"],
			},
			"metrics": map[string]interface{}{
				"co_occurrence_count": row["co_occurrence_count"],
				"confidence":          round(coCount/targetCount, 3),
			},
			"purchase_behavior": map[string]interface{}{
				"avg_qty_together":     round(toFloat(row["avg_qty_together"]), 2),
				"avg_sales_together":   round(toFloat(row["avg_sales_together"]), 2),
				"total_qty_together":   round(toFloat(row["total_qty_together"]), 2),
				"total_sales_together": round(toFloat(row["total_sales_together"]), 2),
			},
		})
	}

	return envelope.New().
		Data(correlations).
		SQL(sql, params).
		Metadata(map[string]interface{}{
			"target_item": map[string]interface{}{
				"id":                itemID,
				"name":              infoRows[0]["item_name"],
				"category":          infoRows[0]["category"],
				"transaction_count": infoRows[0]["transaction_count"],
			},
			"parameters": map[string]interface{}{
				"date_range":    fmt.Sprintf("%s to %s", startDate, endDate),
				"min_frequency": minFrequency,
				"site_id":       siteID,
			},
		}).
		Build()
}

func crossSellOpportunitiesTool() registry.Tool {
	return registry.Tool{
		Name:        "cross_sell_opportunities",
		Description: "Recommend items often purchased with a specified item",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"item_id":    map[string]interface{}{"type": "integer", "description": "Target item ID"},
				"start_date": map[string]interface{}{"type": "string", "description": "Start date (YYYY-MM-DD)"},
				"end_date":   map[string]interface{}{"type": "string", "description": "End date (YYYY-MM-DD)"},
				"site_id":    map[string]interface{}{"type": "integer", "description": "Optional site filter"},
				"top_n":      map[string]interface{}{"type": "integer", "description": "Maximum items to return", "default": 10},
			},
			"required": []interface{}{"item_id", "start_date", "end_date"},
		},
	}
}

func (t *Tools) crossSellOpportunities(ctx context.Context, args map[string]interface{}) *envelope.Response {
	itemID, err := requiredIntArg(args, "item_id")
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	startDate, endDate, err := t.dateRangeArgs(args)
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	siteID, hasSiteID, err := intArg(args, "site_id")
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	topN, err := intArgDefault(args, "top_n", 10)
	if err != nil {
		return envelope.New().Error(err).Build()
	}

	innerFilter, outerFilter := "", ""
	params := map[string]interface{}{
		"item_id":    itemID,
		"start_date": startDate,
		"end_date":   endDate,
		"top_n":      topN,
	}
	if hasSiteID {
		innerFilter = " AND site_id = :site_id"
		outerFilter = " AND s.site_id = :site_id"
		params["site_id"] = siteID
	}

	sql := fmt.Sprintf(`SELECT
	s.item_id,
	s.item_name,
	COUNT(*) AS pair_count,
	SUM(s.qty_sold) AS total_qty,
	SUM(s.gross_sales) AS total_sales
FROM %[1]s s
JOIN (
	SELECT DISTINCT transaction_id
	FROM %[1]s
	WHERE item_id = :item_id AND sale_date BETWEEN :start_date AND :end_date%[2]s
) t ON s.transaction_id = t.transaction_id
WHERE s.item_id != :item_id%[3]s
GROUP BY s.item_id, s.item_name
ORDER BY pair_count DESC
LIMIT :top_n`, t.db.Views().SalesFact, innerFilter, outerFilter)

	rows, err := t.db.ExecuteQuery(ctx, sql, params)
	if err != nil {
		return envelope.New().SQL(sql, params).Error(err).Build()
	}

	for _, row := range rows {
		row["total_qty"] = toFloat(row["total_qty"])
		row["total_sales"] = toFloat(row["total_sales"])
	}

	return envelope.New().
		Data(rows).
		SQL(sql, params).
		Metadata(map[string]interface{}{
			"target_item_id": itemID,
			"date_range":     fmt.Sprintf("%s to %s", startDate, endDate),
			"site_id":        siteID,
			"top_n":          topN,
		}).
		Build()
}

func basketMetricsTool() registry.Tool {
	return registry.Tool{
		Name:        "basket_metrics",
		Description: "Calculate basket-level statistics for a date range",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"start_date": map[string]interface{}{"type": "string", "description": "Start date (YYYY-MM-DD)"},
				"end_date":   map[string]interface{}{"type": "string", "description": "End date (YYYY-MM-DD)"},
				"site_id":    map[string]interface{}{"type": "integer", "description": "Filter by site"},
			},
			"required": []interface{}{"start_date", "end_date"},
		},
	}
}

func (t *Tools) basketMetrics(ctx context.Context, args map[string]interface{}) *envelope.Response {
	startDate, endDate, err := t.dateRangeArgs(args)
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	siteID, hasSiteID, err := intArg(args, "site_id")
	if err != nil {
		return envelope.New().Error(err).Build()
	}

	sql := fmt.Sprintf(`SELECT
	COUNT(DISTINCT transaction_id) AS transaction_count,
	COALESCE(SUM(qty_sold), 0) AS total_quantity,
	COALESCE(SUM(gross_sales), 0) AS total_sales,
	AVG(qty_sold) AS avg_items_per_tx
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

func transactionLookupTool() registry.Tool {
	return registry.Tool{
		Name: "transaction_lookup",
		Description: "Retrieve all line items belonging to a transaction ID. " +
			"Optionally filter by site_id to ensure results come from a single location.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"transaction_id": map[string]interface{}{"type": "integer", "description": "Transaction ID to look up"},
				"site_id":        map[string]interface{}{"type": "integer", "description": "Optional site filter"},
			},
			"required":             []interface{}{"transaction_id"},
			"additionalProperties": false,
		},
	}
}

func (t *Tools) transactionLookup(ctx context.Context, args map[string]interface{}) *envelope.Response {
	transactionID, err := requiredIntArg(args, "transaction_id")
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	siteID, hasSiteID, err := intArg(args, "site_id")
	if err != nil {
		return envelope.New().Error(err).Build()
	}

	sql := fmt.Sprintf(`SELECT
	transaction_id,
	line_item_number,
	sale_date,
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
WHERE transaction_id = :transaction_id`, t.db.Views().SalesFact)

	params := map[string]interface{}{"transaction_id": transactionID}
	if hasSiteID {
		sql += " AND site_id = :site_id"
		params["site_id"] = siteID
	}
	sql += " ORDER BY line_item_number"

	rows, err := t.db.ExecuteQuery(ctx, sql, params)
	if err != nil {
		return envelope.New().SQL(sql, params).Error(err).Build()
	}

	return envelope.New().
		Data(rows).
		SQL(sql, params).
		Metadata(map[string]interface{}{
			"transaction_id": transactionID,
			"site_id":        siteID,
		}).
		Build()
}
