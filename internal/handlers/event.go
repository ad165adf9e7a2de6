package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/PratikDhanave/dtconn-relay/internal/auth"
	"github.com/PratikDhanave/dtconn-relay/internal/models"
	"github.com/PratikDhanave/dtconn-relay/internal/warehouse"
)

// IngestPath is the single route the monitoring platform posts to.
const IngestPath = "/dtconn"

// Request failures. Callers only ever see the status code.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUpstreamInsert  = errors.New("upstream insert failed")
)

var tracer trace.Tracer

func init() {
	tracer = otel.Tracer("dtconn-relay/handlers")
}

// StatusFor maps a pipeline error to the HTTP status returned to the caller.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUpstreamInsert):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RegisterEventRoutes registers the ingestion endpoint.
//
// POST /dtconn
//   - decode body → verify x-dt-signature → project row → insert → respond
//   - 200 with no body only after the warehouse accepted the row
//   - the event id is the insert id, so redeliveries dedupe at the warehouse
func RegisterEventRoutes(r gin.IRoutes, v *auth.Verifier, wh warehouse.Warehouse) {
	r.POST(IngestPath, func(c *gin.Context) {
		if err := ingest(c, v, wh); err != nil {
			_ = c.Error(err)
			c.AbortWithStatus(StatusFor(err))
			return
		}
		c.Status(http.StatusOK)
	})
}

func ingest(c *gin.Context, v *auth.Verifier, wh warehouse.Warehouse) error {
	req, err := decodeRequest(c.Request.Body)
	if err != nil {
		return errors.WithMessage(ErrBadRequest, err.Error())
	}

	signature := c.GetHeader(auth.SignatureHeader)
	if signature == "" {
		return errors.WithMessage(ErrBadRequest, "missing "+auth.SignatureHeader+" header")
	}
	if err := v.Verify(signature); err != nil {
		return errors.WithMessage(ErrUnauthenticated, err.Error())
	}

	row := models.ProjectRow(req)
	if err := insert(c.Request.Context(), wh, row); err != nil {
		return errors.WithMessage(ErrUpstreamInsert, err.Error())
	}
	return nil
}

// decodeRequest reads exactly one JSON object from body. Numbers in data are
// kept as json.Number so large integers survive projection unchanged.
func decodeRequest(body io.Reader) (models.IngestRequest, error) {
	var req models.IngestRequest
	if body == nil {
		return req, errors.New("empty body")
	}

	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return req, errors.Wrap(err, "decode body")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return req, errors.New("unexpected data after JSON body")
	}

	if err := binding.Validator.ValidateStruct(&req); err != nil {
		return req, errors.Wrap(err, "validate body")
	}
	return req, nil
}

func insert(ctx context.Context, wh warehouse.Warehouse, row models.Row) error {
	ctx, span := tracer.Start(ctx, "warehouse.insert",
		trace.WithAttributes(
			attribute.String("event.id", row.EventID),
			attribute.String("event.type", row.EventType),
		),
	)
	defer span.End()

	if err := wh.Insert(ctx, row); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}
	return nil
}
