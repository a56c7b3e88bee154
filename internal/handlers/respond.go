package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/splitnest/splitnest/internal/model"
	xhttp "github.com/splitnest/splitnest/pkg/http"
)

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

// statusFor maps domain error kinds onto HTTP statuses: invalid input
// 400, unknown resource 404, illegal state transition 409, expired
// request 410, anything else 500.
func statusFor(err error) int {
	var (
		verr *model.ValidationError
		nf   *model.NotFoundError
		serr *model.StateError
		xerr *model.ExpiredError
	)
	switch {
	case errors.As(err, &verr):
		return 400
	case errors.As(err, &nf):
		return 404
	case errors.As(err, &serr):
		return 409
	case errors.As(err, &xerr):
		return 410
	default:
		return 500
	}
}

func writeDomainError(ctx *xhttp.RequestCtx, err error) {
	writeError(ctx, statusFor(err), err.Error())
}

// pathInt64 reads a numeric route parameter like {id}.
func pathInt64(ctx *xhttp.RequestCtx, name string) (int64, error) {
	v, _ := ctx.UserValue(name).(string)
	return strconv.ParseInt(v, 10, 64)
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func queryInt64(ctx *xhttp.RequestCtx, key string) *int64 {
	if v := query(ctx, key); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			return &id
		}
	}
	return nil
}

func queryCSV(ctx *xhttp.RequestCtx, key string) []string {
	v := query(ctx, key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// applyPagination fills limit/offset/order fields shared by every
// list filter.
func applyPagination(ctx *xhttp.RequestCtx, limit, offset *int, desc *bool) {
	if v := query(ctx, "limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*limit = n
		}
	}
	if v := query(ctx, "offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*offset = n
		}
	}
	if strings.EqualFold(query(ctx, "order"), "desc") {
		*desc = true
	}
}

func parseTime(s string) (time.Time, error) {
	// Accept RFC3339 or YYYY-MM-DD
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func queryTime(ctx *xhttp.RequestCtx, key string) *time.Time {
	if v := query(ctx, key); v != "" {
		if t, err := parseTime(v); err == nil {
			return &t
		}
	}
	return nil
}
