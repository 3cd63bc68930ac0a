package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/boddenberg/bills-dashboard-go/internal/domain"
	"github.com/boddenberg/bills-dashboard-go/internal/infra/charting"
	"github.com/boddenberg/bills-dashboard-go/internal/infra/view"
	"github.com/boddenberg/bills-dashboard-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// dashboardResponse is the full state the browser draws from.
type dashboardResponse struct {
	Page   view.Snapshot                 `json:"page"`
	Filter service.FilterView            `json:"filter"`
	Charts map[string]domain.ChartConfig `json:"charts"`
	Report *domain.Report                `json:"report,omitempty"`
}

func snapshot(dash *service.Dashboard, doc *view.Document, charts *charting.Engine) dashboardResponse {
	resp := dashboardResponse{
		Page:   doc.Snapshot(),
		Filter: dash.Filter(),
		Charts: charts.Configs(),
	}
	if r, ok := dash.LastReport(); ok {
		resp.Report = &r
	}
	return resp
}

// ============================================================
// GET /v1/dashboard
// ============================================================

func snapshotHandler(dash *service.Dashboard, doc *view.Document, charts *charting.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, snapshot(dash, doc, charts))
	}
}

// ============================================================
// Refresh cycle triggers
// ============================================================

// cycleHandler runs action and answers with the resulting snapshot.
func cycleHandler(name string, dash *service.Dashboard, doc *view.Document, charts *charting.Engine, logger *zap.Logger,
	action func(ctx context.Context, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), name)
		defer span.End()

		if err := action(ctx, r); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, snapshot(dash, doc, charts))
	}
}

var errInvalidBody = &domain.ErrValidation{Field: "body", Message: "invalid request body"}

func refreshHandler(dash *service.Dashboard, doc *view.Document, charts *charting.Engine, logger *zap.Logger) http.HandlerFunc {
	return cycleHandler("POST /v1/dashboard/refresh", dash, doc, charts, logger,
		func(ctx context.Context, _ *http.Request) error {
			return dash.Refresh(ctx, service.TriggerUser)
		})
}

func timeframeHandler(dash *service.Dashboard, doc *view.Document, charts *charting.Engine, logger *zap.Logger) http.HandlerFunc {
	return cycleHandler("POST /v1/dashboard/timeframe", dash, doc, charts, logger,
		func(ctx context.Context, r *http.Request) error {
			var req struct {
				Timeframe string `json:"timeframe"`
			}
			if err := decodeBody(r, &req); err != nil {
				return errInvalidBody
			}
			return dash.SelectTimeframe(ctx, req.Timeframe)
		})
}

func rangeHandler(dash *service.Dashboard, doc *view.Document, charts *charting.Engine, logger *zap.Logger) http.HandlerFunc {
	return cycleHandler("POST /v1/dashboard/range", dash, doc, charts, logger,
		func(ctx context.Context, r *http.Request) error {
			var req struct {
				Start string `json:"start"`
				End   string `json:"end"`
			}
			if err := decodeBody(r, &req); err != nil {
				return errInvalidBody
			}
			return dash.SelectRange(ctx, req.Start, req.End)
		})
}

func typeHandler(dash *service.Dashboard, doc *view.Document, charts *charting.Engine, logger *zap.Logger) http.HandlerFunc {
	return cycleHandler("POST /v1/dashboard/type", dash, doc, charts, logger,
		func(ctx context.Context, r *http.Request) error {
			var req struct {
				Type string `json:"type"`
			}
			if err := decodeBody(r, &req); err != nil {
				return errInvalidBody
			}
			return dash.SelectType(ctx, req.Type)
		})
}

func categoriesHandler(dash *service.Dashboard, doc *view.Document, charts *charting.Engine, logger *zap.Logger) http.HandlerFunc {
	return cycleHandler("POST /v1/dashboard/categories", dash, doc, charts, logger,
		func(ctx context.Context, r *http.Request) error {
			var req struct {
				Categories []string `json:"categories"`
			}
			if err := decodeBody(r, &req); err != nil {
				return errInvalidBody
			}
			return dash.SelectCategories(ctx, req.Categories)
		})
}

func prevPageHandler(dash *service.Dashboard, doc *view.Document, charts *charting.Engine, logger *zap.Logger) http.HandlerFunc {
	return cycleHandler("POST /v1/dashboard/pages/prev", dash, doc, charts, logger,
		func(ctx context.Context, _ *http.Request) error {
			return dash.PrevPage(ctx)
		})
}

func nextPageHandler(dash *service.Dashboard, doc *view.Document, charts *charting.Engine, logger *zap.Logger) http.HandlerFunc {
	return cycleHandler("POST /v1/dashboard/pages/next", dash, doc, charts, logger,
		func(ctx context.Context, _ *http.Request) error {
			return dash.NextPage(ctx)
		})
}

// ============================================================
// Local interactions
// ============================================================

func reportHandler(dash *service.Dashboard, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/dashboard/report")
		defer span.End()

		var rf domain.ReportFilter
		if err := decodeBody(r, &rf); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		report, err := dash.GenerateReport(ctx, rf)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func tabHandler(dash *service.Dashboard, doc *view.Document, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tab := chi.URLParam(r, "tab")
		err := dash.SwitchTab(tab)

		var renderErr *domain.ErrRender
		if errors.As(err, &renderErr) {
			err = &domain.ErrNotFound{Resource: "panel", ID: tab}
		}
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		snap := doc.Snapshot()
		writeJSON(w, http.StatusOK, map[string]any{
			"active_panel": snap.ActivePanel,
			"panels":       snap.Panels,
		})
	}
}

func resizeCanvasHandler(doc *view.Document, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "canvas")
		var req struct {
			Width  float64 `json:"width"`
			Height float64 `json:"height"`
		}
		if err := decodeBody(r, &req); err != nil || req.Width <= 0 || req.Height <= 0 {
			writeError(w, http.StatusBadRequest, "width and height must be positive")
			return
		}

		var renderErr *domain.ErrRender
		if err := doc.ResizeCanvas(id, req.Width, req.Height); errors.As(err, &renderErr) {
			handleServiceError(w, &domain.ErrNotFound{Resource: "canvas", ID: id}, logger)
			return
		}
		c, _ := doc.Canvas(id)
		writeJSON(w, http.StatusOK, c)
	}
}

type hoverResponse struct {
	Highlighted bool                `json:"highlighted"`
	Dataset     int                 `json:"dataset"`
	Chart       *domain.ChartConfig `json:"chart,omitempty"`
}

func categoryChart(charts *charting.Engine) *domain.ChartConfig {
	c, ok := charts.Lookup(view.CategoryTsChartID)
	if !ok {
		return nil
	}
	cfg := c.Config()
	return &cfg
}

func hoverHandler(dash *service.Dashboard, charts *charting.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "POST /v1/dashboard/charts/category/hover")
		defer span.End()

		var p domain.Point
		if err := decodeBody(r, &p); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		idx, ok := dash.Hover(p)
		span.SetAttributes(attribute.Bool("hover.highlighted", ok))
		resp := hoverResponse{Highlighted: ok, Dataset: -1, Chart: categoryChart(charts)}
		if ok {
			resp.Dataset = idx
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func leaveHandler(dash *service.Dashboard, charts *charting.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dash.Leave()
		writeJSON(w, http.StatusOK, hoverResponse{Dataset: -1, Chart: categoryChart(charts)})
	}
}

func chartImageHandler(charts *charting.Engine, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "canvas")
		c, ok := charts.Lookup(id)
		if !ok {
			handleServiceError(w, &domain.ErrNotFound{Resource: "chart", ID: id}, logger)
			return
		}

		img, err := c.PNG()
		if err != nil {
			logger.Error("chart render failed", zap.String("canvas", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "chart render failed")
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(img)
	}
}
