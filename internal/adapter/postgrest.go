package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/MKhiriev/go-offline-keeper/internal/config"
	"github.com/MKhiriev/go-offline-keeper/internal/logger"
	"github.com/MKhiriev/go-offline-keeper/internal/utils"
	"github.com/MKhiriev/go-offline-keeper/models"
)

const restPrefix = "/rest/v1"

type postgRESTAdapter struct {
	client  *utils.HTTPClient
	limiter *rate.Limiter
	clock   utils.Clock

	healthPath string

	mu    sync.RWMutex
	token string
	claim utils.AccessToken

	logger *logger.Logger
}

// NewPostgRESTAdapter constructs the PostgREST implementation of
// [RemoteStore]. Every call waits on a rate limiter of cfg.RateLimit
// requests per second (unlimited when zero).
//
// Returns an error if cfg.URL is empty or cannot be parsed, or if the
// access token is not a JWT.
func NewPostgRESTAdapter(cfg config.Remote, log *logger.Logger) (RemoteStore, error) {
	baseURL, err := normalizeBaseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid remote url: %w", err)
	}

	client := utils.NewHTTPClient(utils.HTTPClientOptions{
		BaseURL: baseURL,
		Timeout: cfg.RequestTimeout,
		Headers: map[string]string{
			"apikey":       cfg.APIKey,
			"Content-Type": "application/json",
		},
	})

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	healthPath := cfg.HealthPath
	if healthPath == "" {
		healthPath = restPrefix + "/"
	}

	a := &postgRESTAdapter{
		client:     client,
		limiter:    rate.NewLimiter(limit, 1),
		clock:      utils.SystemClock{},
		healthPath: healthPath,
		logger:     log,
	}

	if cfg.AccessToken != "" {
		claim, err := utils.ParseAccessToken(cfg.AccessToken)
		if err != nil {
			return nil, fmt.Errorf("invalid access token: %w", err)
		}
		a.token, a.claim = cfg.AccessToken, claim
	}

	return a, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [RemoteStore]. A token that cannot be parsed is kept
// for the Authorization header but yields an empty UserID.
func (p *postgRESTAdapter) SetToken(token string) {
	token = strings.TrimSpace(token)
	claim, err := utils.ParseAccessToken(token)
	if err != nil && token != "" {
		p.logger.Warn().Err(err).Str("func", "postgRESTAdapter.SetToken").Msg("access token is not a readable JWT")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.token, p.claim = token, claim
}

func (p *postgRESTAdapter) UserID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.claim.Subject
}

// request waits for the rate limiter and returns a request carrying the
// bearer token. It fails with ErrTokenExpired before any network call when
// the token has expired.
func (p *postgRESTAdapter) request(ctx context.Context) (*resty.Request, error) {
	p.mu.RLock()
	token, claim := p.token, p.claim
	p.mu.RUnlock()

	if token != "" && claim.Expired(p.clock.Now()) {
		return nil, ErrTokenExpired
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req := p.client.R().SetContext(ctx)
	if token != "" {
		req.SetAuthToken(token)
	}
	return req, nil
}

// Insert implements [RemoteStore] as POST /rest/v1/{table}.
func (p *postgRESTAdapter) Insert(ctx context.Context, table string, payload models.Payload) error {
	if table == "" {
		return fmt.Errorf("%w: empty table", ErrInvalidRequest)
	}

	req, err := p.request(ctx)
	if err != nil {
		return err
	}

	resp, err := req.
		SetHeader("Prefer", "return=minimal").
		SetBody(payload).
		Post(tablePath(table))
	if err != nil {
		return fmt.Errorf("%w: insert request: %w", ErrRemoteUnreachable, err)
	}
	return mapHTTPError(resp)
}

// Update implements [RemoteStore] as PATCH /rest/v1/{table}?id=eq.{id}.
func (p *postgRESTAdapter) Update(ctx context.Context, table, id string, payload models.Payload) error {
	if table == "" || id == "" {
		return fmt.Errorf("%w: update needs table and id", ErrInvalidRequest)
	}

	req, err := p.request(ctx)
	if err != nil {
		return err
	}

	resp, err := req.
		SetHeader("Prefer", "return=minimal").
		SetQueryParam("id", "eq."+id).
		SetBody(payload).
		Patch(tablePath(table))
	if err != nil {
		return fmt.Errorf("%w: update request: %w", ErrRemoteUnreachable, err)
	}
	return mapHTTPError(resp)
}

// Delete implements [RemoteStore] as DELETE /rest/v1/{table}?id=eq.{id}.
func (p *postgRESTAdapter) Delete(ctx context.Context, table, id string) error {
	if table == "" || id == "" {
		return fmt.Errorf("%w: delete needs table and id", ErrInvalidRequest)
	}

	req, err := p.request(ctx)
	if err != nil {
		return err
	}

	resp, err := req.
		SetHeader("Prefer", "return=minimal").
		SetQueryParam("id", "eq."+id).
		Delete(tablePath(table))
	if err != nil {
		return fmt.Errorf("%w: delete request: %w", ErrRemoteUnreachable, err)
	}
	return mapHTTPError(resp)
}

// Fetch implements [RemoteStore] as GET /rest/v1/{table}?select=*.
func (p *postgRESTAdapter) Fetch(ctx context.Context, table string, filter models.Filter) ([]models.Record, error) {
	log := logger.FromContext(ctx)

	if table == "" {
		return nil, fmt.Errorf("%w: empty table", ErrInvalidRequest)
	}

	req, err := p.request(ctx)
	if err != nil {
		return nil, err
	}

	var rows []models.Payload
	resp, err := req.
		SetQueryParamsFromValues(fetchParams(filter)).
		SetResult(&rows).
		Get(tablePath(table))
	if err != nil {
		return nil, fmt.Errorf("%w: fetch request: %w", ErrRemoteUnreachable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	records := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		record, ok := models.RecordFromPayload(row)
		if !ok {
			log.Warn().Str("func", "postgRESTAdapter.Fetch").Str("table", table).Msg("skipping row without id")
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// Ping implements [RemoteStore]. Any response below 500 means the remote
// store is reachable.
func (p *postgRESTAdapter) Ping(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := p.client.R().SetContext(ctx).Get(p.healthPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRemoteUnreachable, err)
	}
	if resp.StatusCode() >= 500 {
		return fmt.Errorf("%w: health check returned %d", ErrRemoteUnreachable, resp.StatusCode())
	}
	return nil
}

func tablePath(table string) string {
	return restPrefix + "/" + url.PathEscape(table)
}

// fetchParams renders a filter as PostgREST query parameters.
func fetchParams(filter models.Filter) url.Values {
	params := url.Values{}
	params.Set("select", "*")

	if len(filter.IDs) > 0 {
		params.Set("id", "in.("+strings.Join(filter.IDs, ",")+")")
	}

	fields := make([]string, 0, len(filter.Fields))
	for field := range filter.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		value := filter.Fields[field]
		if value == nil {
			params.Add(field, "is.null")
			continue
		}
		params.Add(field, "eq."+formatValue(value))
	}

	if filter.OrderBy != "" {
		direction := "asc"
		if filter.Descending {
			direction = "desc"
		}
		params.Set("order", filter.OrderBy+"."+direction)
	}
	if filter.Limit > 0 {
		params.Set("limit", strconv.Itoa(filter.Limit))
	}

	return params
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// IsUnreachable reports whether err means the remote store could not be
// contacted at all.
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrRemoteUnreachable)
}
