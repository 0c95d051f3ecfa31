package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const llmRequests = "llm_requests"

// nextSequence is evaluated inside the INSERT so concurrent writers never
// share a number.
var nextSequence = entsql.Expr("(SELECT COALESCE(MAX(`sequence`), 0) + 1 FROM `" + llmRequests + "`)")

var eventColumns = []string{
	"id", "sequence", "timestamp", "provider", "model", "purpose", "input_tokens",
	"output_tokens", "latency_ms", "success", "error_message", "request_body", "response_body",
}

// eventRepo implements EventRepo on the llm_requests table.
type eventRepo struct {
	drv *entsql.Driver
	now func() time.Time
}

func (r *eventRepo) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	q, args := sqlite.Insert(llmRequests).
		Set("sequence", nextSequence).
		Set("timestamp", r.clock().UnixMilli()).
		Set("provider", data.Provider).
		Set("model", data.Model).
		Set("purpose", data.Purpose).
		Set("input_tokens", data.InputTokens).
		Set("output_tokens", data.OutputTokens).
		Set("latency_ms", data.LatencyMs).
		Set("success", data.Success).
		Set("error_message", data.ErrorMessage).
		Set("request_body", data.RequestBody).
		Set("response_body", data.ResponseBody).
		Query()
	if err := r.drv.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

// PruneLLMEvents deletes events recorded before cutoff and returns how
// many were removed.
func (r *eventRepo) PruneLLMEvents(ctx context.Context, cutoff time.Time) (int64, error) {
	q, args := sqlite.Delete(llmRequests).
		Where(entsql.LT("timestamp", cutoff.UnixMilli())).
		Query()
	var res sql.Result
	if err := r.drv.Exec(ctx, q, args, &res); err != nil {
		return 0, fmt.Errorf("prune LLM events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune LLM events: %w", err)
	}
	return n, nil
}

func scanEvent(rows *entsql.Rows) (LLMRequestEvent, error) {
	var (
		e  LLMRequestEvent
		ts int64
	)
	err := rows.Scan(&e.ID, &e.Sequence, &ts, &e.Provider, &e.Model, &e.Purpose,
		&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success,
		&e.ErrorMessage, &e.RequestBody, &e.ResponseBody)
	if err != nil {
		return LLMRequestEvent{}, err
	}
	e.Timestamp = time.UnixMilli(ts)
	return e, nil
}

func (r *eventRepo) queryEvents(ctx context.Context, sel *entsql.Selector) ([]LLMRequestEvent, error) {
	q, args := sel.Query()
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, q, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LLMRequestEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan LLM event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error) {
	sel := sqlite.Select(eventColumns...).
		From(sqlite.Table(llmRequests)).
		OrderBy(entsql.Desc("sequence"))
	if opts.Purpose != "" {
		sel.Where(entsql.EQ("purpose", opts.Purpose))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("timestamp", opts.To.UnixMilli()))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	out, err := r.queryEvents(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	return out, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int64) (*LLMRequestEvent, error) {
	sel := sqlite.Select(eventColumns...).
		From(sqlite.Table(llmRequests)).
		Where(entsql.EQ("id", id)).
		Limit(1)
	out, err := r.queryEvents(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("LLM event %d: %w", id, ErrNotFound)
	}
	return &out[0], nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]UsageRow, error) {
	return r.usageBy(ctx, "purpose")
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]UsageRow, error) {
	return r.usageBy(ctx, "model")
}

// usageBy aggregates on column, which must be a trusted identifier.
func (r *eventRepo) usageBy(ctx context.Context, column string) ([]UsageRow, error) {
	count := entsql.Count("*")
	sel := sqlite.Select(
		column,
		count,
		"SUM(CASE WHEN `success` THEN 0 ELSE 1 END)",
		"COALESCE(SUM(`input_tokens`), 0)",
		"COALESCE(SUM(`output_tokens`), 0)",
		"CAST(COALESCE(AVG(`latency_ms`), 0) AS INTEGER)",
	).
		From(sqlite.Table(llmRequests)).
		GroupBy(column).
		OrderBy(entsql.Desc(count), column)

	q, args := sel.Query()
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, q, args, rows); err != nil {
		return nil, fmt.Errorf("usage by %s: %w", column, err)
	}
	defer rows.Close()

	var out []UsageRow
	for rows.Next() {
		var u UsageRow
		if err := rows.Scan(&u.Key, &u.Requests, &u.Failures, &u.InputTokens, &u.OutputTokens, &u.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan usage row: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
