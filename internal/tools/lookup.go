package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bbeeken/PDIMCPServer/internal/envelope"
	"github.com/bbeeken/PDIMCPServer/internal/registry"
)

// fuzzyThreshold is the minimum composite score a candidate needs to
// appear in fuzzy lookup results.
const fuzzyThreshold = 0.3

func itemLookupTool() registry.Tool {
	return registry.Tool{
		Name:        "item_lookup",
		Description: "Look up product information by item ID or description",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"item_id":     map[string]interface{}{"type": "integer", "description": "Exact item ID"},
				"description": map[string]interface{}{"type": "string", "description": "Partial or fuzzy description"},
				"limit":       map[string]interface{}{"type": "integer", "description": "Maximum rows to return", "default": 50},
			},
			"required": []interface{}{},
		},
	}
}

func (t *Tools) itemLookup(ctx context.Context, args map[string]interface{}) *envelope.Response {
	itemID, hasItemID, err := intArg(args, "item_id")
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	description, _, err := stringArg(args, "description")
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	limit, err := intArgDefault(args, "limit", 50)
	if err != nil {
		return envelope.New().Error(err).Build()
	}

	baseSelect := fmt.Sprintf(`SELECT
	item_id,
	item_desc AS description,
	category_desc AS category,
	department_desc AS department,
	upc,
	size_desc AS size
FROM %s`, t.db.Views().Product)

	metadata := map[string]interface{}{
		"filters": map[string]interface{}{
			"item_id":     itemID,
			"description": description,
			"limit":       limit,
		},
	}

	// Exact-ID fast path: at most one row, empty result is success.
	if hasItemID {
		sql := baseSelect + " WHERE item_id = :item_id LIMIT 1"
		params := map[string]interface{}{"item_id": itemID}
		rows, err := t.db.ExecuteQuery(ctx, sql, params)
		if err != nil {
			return envelope.New().SQL(sql, params).Error(err).Build()
		}
		return envelope.New().Data(rows).SQL(sql, params).Metadata(metadata).Build()
	}

	if description == "" {
		sql := baseSelect + " ORDER BY item_desc LIMIT :limit"
		params := map[string]interface{}{"limit": limit}
		rows, err := t.db.ExecuteQuery(ctx, sql, params)
		if err != nil {
			return envelope.New().SQL(sql, params).Error(err).Build()
		}
		return envelope.New().Data(rows).SQL(sql, params).Metadata(metadata).Build()
	}

	// Fuzzy path: widen the candidate pool with a coarse LIKE on the
	// first token, then rank candidates with the composite scorer.
	token := strings.Fields(description)[0]
	sql := baseSelect + " WHERE item_desc LIKE :token ORDER BY item_desc LIMIT :pool"
	params := map[string]interface{}{
		"token": likePattern(token),
		"pool":  1000,
	}
	rows, err := t.db.ExecuteQuery(ctx, sql, params)
	if err != nil {
		return envelope.New().SQL(sql, params).Error(err).Build()
	}
	if len(rows) == 0 {
		// Coarse filter may miss misspelled input; rank the whole catalog.
		sql = baseSelect + " ORDER BY item_desc LIMIT :pool"
		params = map[string]interface{}{"pool": 1000}
		rows, err = t.db.ExecuteQuery(ctx, sql, params)
		if err != nil {
			return envelope.New().SQL(sql, params).Error(err).Build()
		}
	}

	ranked := t.rankRows(rows, "description", description, limit)

	return envelope.New().Data(ranked).SQL(sql, params).Metadata(metadata).Build()
}

// rankRows scores each row's text column against the query, drops rows
// below the threshold, and returns the best matches with their scores.
func (t *Tools) rankRows(rows []map[string]interface{}, column, query string, limit int) []map[string]interface{} {
	type scored struct {
		row   map[string]interface{}
		score float64
	}

	matches := make([]scored, 0, len(rows))
	for _, row := range rows {
		text, _ := row[column].(string)
		score := t.scorer.Score(query, text)
		if score >= fuzzyThreshold {
			row["match_score"] = round(score, 3)
			matches = append(matches, scored{row: row, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]map[string]interface{}, len(matches))
	for i, m := range matches {
		out[i] = m.row
	}
	return out
}

func siteLookupTool() registry.Tool {
	return registry.Tool{
		Name:        "site_lookup",
		Description: "Look up site details by ID or description",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"site_id":     map[string]interface{}{"type": "integer", "description": "Exact site ID"},
				"description": map[string]interface{}{"type": "string", "description": "Partial description filter"},
				"limit":       map[string]interface{}{"type": "integer", "description": "Maximum rows to return", "default": 50},
			},
			"required": []interface{}{},
		},
	}
}

func (t *Tools) siteLookup(ctx context.Context, args map[string]interface{}) *envelope.Response {
	siteID, hasSiteID, err := intArg(args, "site_id")
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	description, _, err := stringArg(args, "description")
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	limit, err := intArgDefault(args, "limit", 50)
	if err != nil {
		return envelope.New().Error(err).Build()
	}

	sql := fmt.Sprintf(`SELECT
	site_id,
	site_desc AS description,
	city,
	state,
	latitude,
	longitude
FROM %s
WHERE 1=1`, t.db.Views().Organization)

	params := map[string]interface{}{"limit": limit}
	if hasSiteID {
		sql += " AND site_id = :site_id"
		params["site_id"] = siteID
	}
	if description != "" {
		sql += " AND site_desc LIKE :description"
		params["description"] = likePattern(description)
	}
	sql += " ORDER BY site_desc LIMIT :limit"

	rows, err := t.db.ExecuteQuery(ctx, sql, params)
	if err != nil {
		return envelope.New().SQL(sql, params).Error(err).Build()
	}

	return envelope.New().
		Data(rows).
		SQL(sql, params).
		Metadata(map[string]interface{}{
			"filters": map[string]interface{}{
				"site_id":     siteID,
				"description": description,
				"limit":       limit,
			},
		}).
		Build()
}

func getTodayDateTool() registry.Tool {
	return registry.Tool{
		Name: "get_today_date",
		Description: "Return today's date in YYYY-MM-DD ISO format. Useful for constructing " +
			"relative date ranges.",
		InputSchema: map[string]interface{}{
			"type":                 "object",
			"properties":           map[string]interface{}{},
			"required":             []interface{}{},
			"additionalProperties": false,
		},
	}
}

func (t *Tools) getTodayDate(ctx context.Context, args map[string]interface{}) *envelope.Response {
	_ = ctx
	_ = args
	return envelope.New().
		Data(map[string]interface{}{"date": t.now().Format("2006-01-02")}).
		Build()
}
