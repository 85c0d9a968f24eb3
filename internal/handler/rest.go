package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Dhreetiman/product-management/internal/model"
	"github.com/Dhreetiman/product-management/internal/query"
	"github.com/Dhreetiman/product-management/internal/store"
)

// Version is the application version.
const Version = "1.0.0"

// Response messages for the item API.
const (
	MsgItemAdded      = "Item added successfully"
	MsgItemsRetrieved = "Items retrieved successfully"
	MsgItemRetrieved  = "Item retrieved successfully"
	MsgItemUpdated    = "Item updated successfully"
	MsgItemDeleted    = "Item deleted successfully"
	MsgItemNotFound   = "Item not found"
	MsgMissingFields  = "Please provide all the required fields"
	MsgExtraFields    = "Please provide only the required fields"
	MsgInvalidBody    = "Invalid request body"
)

// Payload decoding errors.
var (
	errInvalidBody = errors.New("invalid request body")
	errExtraFields = errors.New("payload contains fields outside the allow-list")
)

// RESTHandler handles REST API requests for items.
type RESTHandler struct {
	store  store.Store
	events *EventsHandler
	logger *zap.Logger
}

// NewRESTHandler creates a new RESTHandler instance. The events handler
// is optional; when nil no change notifications are published.
func NewRESTHandler(s store.Store, events *EventsHandler, logger *zap.Logger) *RESTHandler {
	return &RESTHandler{
		store:  s,
		events: events,
		logger: logger,
	}
}

// RegisterRoutes registers the REST API routes with the router.
func (h *RESTHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/item/add", h.AddItem).Methods(http.MethodPost)
	router.HandleFunc("/item/fetch", h.FetchItems).Methods(http.MethodGet)
	router.HandleFunc("/item/fetch/{id}", h.FetchItemByID).Methods(http.MethodGet)
	router.HandleFunc("/item/update/{id}", h.UpdateItem).Methods(http.MethodPut)
	router.HandleFunc("/item/delete/{id}", h.DeleteItem).Methods(http.MethodDelete)
}

// HealthCheck handles GET /health requests.
func (h *RESTHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	response := HealthResponse{
		Status:  "healthy",
		Version: Version,
	}
	h.writeJSON(w, http.StatusOK, model.NewSuccessEnvelope("Service is healthy", response))
}

// AddItem handles POST /item/add requests. All four writable fields must
// be present and truthy; any field outside the allow-list is rejected.
func (h *RESTHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	patch, err := h.decodePatch(w, r)
	if err != nil {
		return
	}

	if !patch.Complete() {
		h.writeError(w, http.StatusBadRequest, MsgMissingFields)
		return
	}

	var input model.Item
	patch.Apply(&input)

	item, err := h.store.Create(ctx, &input)
	if err != nil {
		h.handleStoreError(w, err, "create item")
		return
	}

	h.publish(model.NewItemEvent(model.EventItemCreated, item.ItemID, item))
	h.writeJSON(w, http.StatusCreated, model.NewSuccessEnvelope(MsgItemAdded, item))
}

// FetchItems handles GET /item/fetch requests: filter, sort and paginate
// the collection according to the query parameters.
func (h *RESTHandler) FetchItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := query.ParseParams(r.URL.Query())
	if err != nil {
		h.logger.Warn("invalid query parameters", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.store.List(ctx)
	if err != nil {
		h.handleStoreError(w, err, "list items")
		return
	}

	result := query.Apply(items, params)
	h.writeJSON(w, http.StatusOK, model.NewSuccessEnvelope(MsgItemsRetrieved, result))
}

// FetchItemByID handles GET /item/fetch/{id} requests.
func (h *RESTHandler) FetchItemByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	item, err := h.store.Get(ctx, id)
	if err != nil {
		h.handleStoreError(w, err, "get item")
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessEnvelope(MsgItemRetrieved, item))
}

// UpdateItem handles PUT /item/update/{id} requests. The payload is a
// subset of the writable fields; present fields overwrite the stored
// values, absent fields are preserved.
func (h *RESTHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	patch, err := h.decodePatch(w, r)
	if err != nil {
		return
	}

	item, err := h.store.Update(ctx, id, patch)
	if err != nil {
		h.handleStoreError(w, err, "update item")
		return
	}

	h.publish(model.NewItemEvent(model.EventItemUpdated, item.ItemID, item))
	h.writeJSON(w, http.StatusOK, model.NewSuccessEnvelope(MsgItemUpdated, item))
}

// DeleteItem handles DELETE /item/delete/{id} requests.
func (h *RESTHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	if err := h.store.Delete(ctx, id); err != nil {
		h.handleStoreError(w, err, "delete item")
		return
	}

	h.publish(model.NewItemEvent(model.EventItemDeleted, id, nil))
	h.writeJSON(w, http.StatusOK, model.NewSuccessEnvelope(MsgItemDeleted, struct{}{}))
}

// decodePatch decodes a create/update payload, enforcing the field
// allow-list on the raw key set before mapping into the typed patch.
// On failure the error response has already been written.
func (h *RESTHandler) decodePatch(w http.ResponseWriter, r *http.Request) (model.Patch, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Warn("failed to read request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, MsgInvalidBody)
		return model.Patch{}, errInvalidBody
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, MsgInvalidBody)
		return model.Patch{}, errInvalidBody
	}

	if extra := model.DisallowedFields(payload); len(extra) > 0 {
		h.logger.Warn("payload contains disallowed fields", zap.Strings("fields", extra))
		h.writeError(w, http.StatusBadRequest, MsgExtraFields)
		return model.Patch{}, errExtraFields
	}

	var patch model.Patch
	if err := json.Unmarshal(body, &patch); err != nil {
		h.logger.Warn("payload field has wrong type", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, MsgInvalidBody)
		return model.Patch{}, errInvalidBody
	}

	return patch, nil
}

// publish sends an item change event to WebSocket subscribers, if the
// events handler is wired.
func (h *RESTHandler) publish(event model.ItemEvent) {
	if h.events != nil {
		h.events.Broadcast(event)
	}
}

// handleStoreError maps store errors to HTTP responses. Store
// availability failures are the only class logged at error level.
func (h *RESTHandler) handleStoreError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.writeError(w, http.StatusNotFound, MsgItemNotFound)
	case errors.Is(err, store.ErrInvalidID):
		h.writeError(w, http.StatusBadRequest, MsgItemNotFound)
	case errors.Is(err, store.ErrInvalidItem):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("store operation failed", zap.String("operation", operation), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// writeJSON writes a JSON response with the given status code.
func (h *RESTHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError writes a failure envelope with the given status and message.
func (h *RESTHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, model.NewErrorEnvelope(message))
}
