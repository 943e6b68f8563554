package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/username/medrates/backend/src/logger"
	"github.com/username/medrates/backend/src/models"
	"github.com/username/medrates/backend/src/processors"
	"github.com/username/medrates/backend/src/services"
	"github.com/username/medrates/backend/src/utils"
)

// RatesHandler serves the dashboard endpoints. All request state lives in
// query parameters; the handler translates them into a FilterSelection and
// sort spec and delegates to the service.
type RatesHandler struct {
	ratesService   services.RatesService
	datasetService services.DatasetService
}

func NewRatesHandler(ratesService services.RatesService, datasetService services.DatasetService) *RatesHandler {
	return &RatesHandler{
		ratesService:   ratesService,
		datasetService: datasetService,
	}
}

// selectionFromQuery rebuilds a FilterSelection from query parameters,
// applying the stages in cascade order so the step counter and reset rules
// come out the same as interactive selection would produce.
func selectionFromQuery(q url.Values) *models.FilterSelection {
	sel := &models.FilterSelection{FilterStep: 1}
	if v := q.Get("serviceCategory"); v != "" {
		sel.SelectServiceCategory(v)
	}
	if v := q.Get("state"); v != "" {
		sel.SelectState(v)
	}
	if v := q.Get("serviceCode"); v != "" {
		sel.SelectServiceCode(v)
	}
	if v := q.Get("serviceDescription"); v != "" {
		sel.SelectServiceDescription(v)
	}
	sel.Program = q.Get("program")
	sel.LocationRegion = q.Get("locationRegion")
	sel.Modifier = q.Get("modifier")
	sel.ProviderType = q.Get("providerType")

	if v := q.Get("year"); v != "" {
		if year, err := strconv.Atoi(v); err == nil {
			sel.SelectYear(year)
		}
	}
	if v := q.Get("startDate"); v != "" {
		if d, ok := utils.ParseEffectiveDate(v); ok {
			sel.StartDate = &d
		}
	}
	if v := q.Get("endDate"); v != "" {
		if d, ok := utils.ParseEffectiveDate(v); ok {
			sel.EndDate = &d
		}
	}
	// Applied last because it supersedes any range or year above.
	if v := q.Get("feeScheduleDate"); v != "" {
		sel.SelectFeeScheduleDate(v)
	}
	return sel
}

// sortSpecFromQuery parses "sort=key:asc,other:desc" into a sort spec.
// Unknown or malformed entries are skipped.
func sortSpecFromQuery(q url.Values) []processors.SortKey {
	raw := q.Get("sort")
	if raw == "" {
		return nil
	}
	var spec []processors.SortKey
	for _, part := range strings.Split(raw, ",") {
		key, dir, found := strings.Cut(strings.TrimSpace(part), ":")
		if key == "" {
			continue
		}
		direction := processors.SortAsc
		if found && strings.EqualFold(dir, string(processors.SortDesc)) {
			direction = processors.SortDesc
		}
		spec = append(spec, processors.SortKey{Key: key, Direction: direction})
	}
	return spec
}

func (h *RatesHandler) writeJSON(w http.ResponseWriter, r *http.Request, payload interface{}) {
	etag, err := utils.GenerateETag(payload)
	if err == nil {
		if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.L.Error("failed to encode response payload", "path", r.URL.Path, "error", err)
	}
}

func (h *RatesHandler) serviceError(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrDatasetUnavailable) {
		utils.SendJSONError(w, "Rate dataset is unavailable", http.StatusServiceUnavailable)
		return
	}
	utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
}

// HandleRates returns the raw record collection, optionally narrowed to an
// effective-date range via startDate/endDate (YYYY-MM-DD).
func (h *RatesHandler) HandleRates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records, err := h.ratesService.Records(q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.writeJSON(w, r, records)
}

// HandleOptions returns the selectable values for every filter stage under
// the current selection.
func (h *RatesHandler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	sel := selectionFromQuery(r.URL.Query())
	options, err := h.ratesService.FilterOptions(sel)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.writeJSON(w, r, options)
}

// HandleTable returns the filtered, sorted dashboard table.
func (h *RatesHandler) HandleTable(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.ratesService.TableView(selectionFromQuery(q), sortSpecFromQuery(q))
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.writeJSON(w, r, result)
}

// HandleHistory returns the latest-per-key table and, when an entry is
// selected (or only one remains), its dated rate series.
func (h *RatesHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	hourly, _ := strconv.ParseBool(q.Get("hourly"))
	result, err := h.ratesService.HistoryView(selectionFromQuery(q), q.Get("entry"), hourly)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.writeJSON(w, r, result)
}

// HandleComparison returns cross-state averages or per-selection rates for a
// category and code. The states parameter is either "ALL" or a comma list;
// selections, when present, is a JSON object mapping state to selection keys.
func (h *RatesHandler) HandleComparison(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &services.ComparisonRequest{
		ServiceCategory: q.Get("serviceCategory"),
		ServiceCode:     q.Get("serviceCode"),
		SortOrder:       q.Get("sortOrder"),
	}
	req.Hourly, _ = strconv.ParseBool(q.Get("hourly"))

	switch states := q.Get("states"); {
	case strings.EqualFold(states, "all"):
		req.States = models.StateSelection{All: true}
	case states != "":
		for _, s := range strings.Split(states, ",") {
			if s = strings.TrimSpace(s); s != "" {
				req.States.States = append(req.States.States, strings.ToUpper(s))
			}
		}
	}

	if raw := q.Get("selections"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Selections); err != nil {
			utils.SendJSONError(w, "Invalid selections parameter", http.StatusBadRequest)
			return
		}
	}

	result, err := h.ratesService.ComparisonView(req)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.writeJSON(w, r, result)
}

// HandleRefreshDataset pulls the upstream dataset, replaces the persisted
// copy and invalidates the in-memory snapshot and result caches.
func (h *RatesHandler) HandleRefreshDataset(w http.ResponseWriter, r *http.Request) {
	count, err := h.datasetService.Refresh(r.Context())
	if err != nil {
		logger.L.Error("dataset refresh failed", "error", err)
		if errors.Is(err, services.ErrDatasetFetchFailed) {
			utils.SendJSONError(w, "Failed to fetch upstream dataset", http.StatusBadGateway)
			return
		}
		utils.SendJSONError(w, "Failed to refresh dataset", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Dataset refreshed successfully",
		"count":   count,
	})
}
