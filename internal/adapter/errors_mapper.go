package adapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/jackc/pgx/v5/pgconn"
)

// remoteError is the PostgREST error body.
type remoteError struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Details *string `json:"details"`
	Hint    *string `json:"hint"`
}

var sqlStatePattern = regexp.MustCompile(`^[0-9A-Z]{5}$`)

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}

	var sentinel error
	switch resp.StatusCode() {
	case http.StatusBadRequest:
		sentinel = ErrBadRequest
	case http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case http.StatusForbidden:
		sentinel = ErrForbidden
	case http.StatusNotFound:
		sentinel = ErrNotFound
	case http.StatusConflict:
		sentinel = ErrConflict
	case http.StatusUnprocessableEntity:
		sentinel = ErrUnprocessableEntity
	case http.StatusTooManyRequests:
		sentinel = ErrTooManyRequests
	default:
		if resp.StatusCode() >= http.StatusInternalServerError {
			sentinel = ErrServerError
		}
	}

	pgErr := parsePgError(resp.Body())

	switch {
	case sentinel != nil && pgErr != nil:
		return fmt.Errorf("%w: %w", sentinel, pgErr)
	case sentinel != nil:
		return fmt.Errorf("%w: %s", sentinel, body)
	case pgErr != nil:
		return fmt.Errorf("http %d: %w", resp.StatusCode(), pgErr)
	default:
		return fmt.Errorf("http %d: %s", resp.StatusCode(), body)
	}
}

// parsePgError decodes a PostgREST error body. It returns nil unless the
// body carries a SQLSTATE code; PostgREST's own PGRST codes are not one.
func parsePgError(body []byte) *pgconn.PgError {
	var re remoteError
	if err := json.Unmarshal(body, &re); err != nil {
		return nil
	}
	if !sqlStatePattern.MatchString(re.Code) {
		return nil
	}

	pgErr := &pgconn.PgError{
		Severity: "ERROR",
		Code:     re.Code,
		Message:  re.Message,
	}
	if re.Details != nil {
		pgErr.Detail = *re.Details
	}
	if re.Hint != nil {
		pgErr.Hint = *re.Hint
	}
	return pgErr
}
