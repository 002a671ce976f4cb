package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-offline-keeper/internal/logger"
	"github.com/MKhiriev/go-offline-keeper/internal/utils"
	"github.com/MKhiriev/go-offline-keeper/internal/validators"
	"github.com/MKhiriev/go-offline-keeper/models"
)

// fieldParamPrefix marks query parameters that filter on a payload field,
// e.g. field.status=draft.
const fieldParamPrefix = "field."

// commitRequest is the body of PUT /api/cache/{table}.
type commitRequest struct {
	CompanyID string          `json:"company_id"`
	Records   []models.Record `json:"records"`

	// Partial upserts the records instead of replacing the collection.
	Partial bool `json:"partial"`
}

func (h *Handler) readCache(w http.ResponseWriter, r *http.Request) {
	req, err := h.readRequestFromURL(r)
	if err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.readCache").Msg("invalid read request")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, h.services.Cache.Read(r.Context(), req), http.StatusOK)
}

func (h *Handler) query(w http.ResponseWriter, r *http.Request) {
	req, err := h.readRequestFromURL(r)
	if err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.query").Msg("invalid read request")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, h.services.Query.Query(r.Context(), req), http.StatusOK)
}

func (h *Handler) commitCache(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	table := chi.URLParam(r, "table")

	var body commitRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.Err(err).Str("func", "*Handler.commitCache").Msg("invalid JSON was passed")
		utils.WriteError(w, ErrInvalidJSON.Error(), http.StatusBadRequest)
		return
	}

	companyID := body.CompanyID
	if companyID == "" {
		companyID = companyFromRequest(r)
	}

	scope := models.ReadRequest{Table: table, CompanyID: companyID}
	if err := h.validator.Validate(r.Context(), scope, validators.FieldTable, validators.FieldCompanyID); err != nil {
		log.Err(err).Str("func", "*Handler.commitCache").Str("table", table).Msg("invalid commit request")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}
	if err := h.validator.Validate(r.Context(), body.Records); err != nil {
		log.Err(err).Str("func", "*Handler.commitCache").Str("table", table).Msg("invalid records")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	commit := h.services.Cache.CommitRefresh
	if body.Partial {
		commit = h.services.Cache.CommitPartial
	}

	if err := commit(r.Context(), table, companyID, body.Records); err != nil {
		log.Err(err).Str("func", "*Handler.commitCache").Str("table", table).Msg("error committing records")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) invalidateCache(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	if !validators.IsTableName(table) {
		utils.WriteError(w, validators.ErrInvalidTable.Error(), http.StatusBadRequest)
		return
	}

	if err := h.services.Cache.Invalidate(r.Context(), table, companyFromRequest(r)); err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.invalidateCache").Str("table", table).Msg("error invalidating collection")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// readRequestFromURL builds and validates a ReadRequest from the {table} path
// parameter and the query string: id (repeatable or comma separated), order,
// desc, limit and field.<name>.
func (h *Handler) readRequestFromURL(r *http.Request) (models.ReadRequest, error) {
	q := r.URL.Query()

	filter, err := filterFromQuery(q)
	if err != nil {
		return models.ReadRequest{}, err
	}

	req := models.ReadRequest{
		Table:     chi.URLParam(r, "table"),
		CompanyID: companyFromRequest(r),
		Filter:    filter,
	}
	if err = h.validator.Validate(r.Context(), req); err != nil {
		return models.ReadRequest{}, err
	}
	return req, nil
}

func filterFromQuery(q url.Values) (models.Filter, error) {
	var filter models.Filter

	for _, v := range q["id"] {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				filter.IDs = append(filter.IDs, id)
			}
		}
	}

	filter.OrderBy = q.Get("order")

	if v := q.Get("desc"); v != "" {
		desc, err := strconv.ParseBool(v)
		if err != nil {
			return filter, fmt.Errorf("%w: desc=%q", ErrInvalidQuery, v)
		}
		filter.Descending = desc
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return filter, fmt.Errorf("%w: limit=%q", ErrInvalidQuery, v)
		}
		filter.Limit = limit
	}

	for key, values := range q {
		name, ok := strings.CutPrefix(key, fieldParamPrefix)
		if !ok || name == "" || len(values) == 0 {
			continue
		}
		if filter.Fields == nil {
			filter.Fields = make(map[string]any)
		}
		filter.Fields[name] = values[0]
	}

	return filter, nil
}
