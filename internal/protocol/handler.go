package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/protocolengine/internal/telemetry/tracing"
	"github.com/2beens/protocolengine/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

// MatchPath is where the strict matching API is served.
const MatchPath = "/api/protocol"

// error bodies of the strict API
const (
	errMsgNotFound         = "Protocol not found"
	errMsgMethodNotAllowed = "Method not allowed"
	errMsgInvalidBody      = "Invalid request body"
	errMsgFailedPrefix     = "Failed to find protocol: "
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=protocol_test
type matcher interface {
	Match(ctx context.Context, raw RawProfile) (*Record, error)
}

// Handler is the strict API: it returns the exact match or an error, never a fallback.
type Handler struct {
	service matcher
}

func NewHandler(service matcher) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) SetupRoutes(router *mux.Router) {
	// methods are checked in HandleMatch, so any method reaches it and gets the JSON 405
	router.HandleFunc(MatchPath, h.HandleMatch).Name("match-protocol")
}

func (h *Handler) HandleMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.protocol.match")
	defer span.End()

	switch r.Method {
	case http.MethodOptions:
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		w.Header().Add("Allow", "POST, OPTIONS")
		pkg.WriteJSONError(w, errMsgMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	var raw RawProfile
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		log.Errorf("match protocol, unmarshal json profile: %s", err)
		span.SetStatus(codes.Error, "invalid-body")
		pkg.WriteJSONError(w, errMsgInvalidBody, http.StatusBadRequest)
		return
	}

	record, err := h.service.Match(ctx, raw)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			span.SetStatus(codes.Ok, "not-found")
			pkg.WriteJSONError(w, errMsgNotFound, http.StatusNotFound)
			return
		}
		log.Errorf("match protocol: %s", err)
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		pkg.WriteJSONError(w, errMsgFailedPrefix+err.Error(), http.StatusInternalServerError)
		return
	}

	recordJson, err := json.Marshal(record)
	if err != nil {
		log.Errorf("marshal protocol record: %s", err)
		pkg.WriteJSONError(w, errMsgFailedPrefix+err.Error(), http.StatusInternalServerError)
		return
	}

	span.SetStatus(codes.Ok, "resolved")
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, recordJson)
}
