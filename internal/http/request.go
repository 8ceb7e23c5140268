package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"financas/internal/core"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// decodeJSON reads and decodes the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer body.Close()

	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty request body")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// periodParams resolves mes and ano from the query string, defaulting to the
// current month.
func periodParams(r *http.Request) (mes string, ano int, err error) {
	now := time.Now()
	mes = core.NormalizeMes(r.URL.Query().Get("mes"))
	if mes == "" {
		mes = core.MesFromTime(now)
	} else if !core.ValidMes(mes) {
		return "", 0, (&core.ValidationError{}).Add("mes", "mes invalido").OrNil()
	}

	ano = now.Year()
	if raw := r.URL.Query().Get("ano"); raw != "" {
		ano, err = strconv.Atoi(raw)
		if err != nil {
			return "", 0, (&core.ValidationError{}).Add("ano", "ano invalido").OrNil()
		}
	}
	return mes, ano, nil
}

// paginationParams reads page and limit with defaults of 1 and 50, capping
// limit at 100.
func paginationParams(r *http.Request) (page, limit int64) {
	page, limit = 1, 50
	if raw := r.URL.Query().Get("page"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v > 0 {
			page = v
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// parseDate accepts the dates a browser or API client sends: date-only or
// RFC 3339. An empty string maps to now.
func parseDate(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Now(), nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

// sanitizeInput trims and strips control characters from user-supplied text.
func sanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' {
			return -1
		}
		return r
	}, input)
}
