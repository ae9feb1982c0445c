// Package server provides the HTTP handlers for the ODE lab service.
package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/at-ishikawa/odelab/internal/assets"
	"github.com/at-ishikawa/odelab/internal/config"
	"github.com/at-ishikawa/odelab/internal/ode"
	"github.com/at-ishikawa/odelab/internal/phase"
)

//go:generate mockgen -source=handler.go -destination=mock/handler.go -package=mock

// ODESolver solves an equation with a named method.
type ODESolver interface {
	Solve(method, equation string, initialConditions map[string]float64) (ode.Solution, error)
}

// PortraitRenderer renders a phase portrait request as an encoded PNG.
type PortraitRenderer interface {
	Render(req phase.Request) ([]byte, error)
}

// Handler serves the HTML pages and the JSON API.
type Handler struct {
	solver   ODESolver
	renderer PortraitRenderer
	pages    *template.Template
	defaults config.PortraitConfig
	logger   *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(
	solver ODESolver,
	renderer PortraitRenderer,
	pages *template.Template,
	defaults config.PortraitConfig,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		solver:   solver,
		renderer: renderer,
		pages:    pages,
		defaults: defaults,
		logger:   logger,
	}
}

// pageData feeds the shared solver widget on each method page.
type pageData struct {
	Method      string
	Placeholder string
}

var pageRoutes = map[string]struct {
	template string
	data     pageData
}{
	"/":                           {template: assets.PageIndex},
	"/separation-of-variables":    {template: assets.PageSeparation, data: pageData{Method: ode.MethodSeparation, Placeholder: "dy/dx = x*y"}},
	"/integrating-factor":         {template: assets.PageIntegratingFact, data: pageData{Method: ode.MethodIntegratingFactor, Placeholder: "y' + 2*y = x"}},
	"/characteristic-polynomials": {template: assets.PageCharacteristic, data: pageData{Method: ode.MethodCharacteristic, Placeholder: "y'' + y = 0"}},
	"/undetermined-coefficients":  {template: assets.PageUndetermined, data: pageData{Method: ode.MethodUndetermined, Placeholder: "y'' + y = cos(2*x)"}},
	"/phase-portraits":            {template: assets.PagePhasePortraits},
}

// RegisterRoutes attaches all page and API routes to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	for path, route := range pageRoutes {
		mux.HandleFunc("GET "+path, h.pageHandler(route.template, route.data))
	}
	mux.HandleFunc("POST /api/solve-ode", h.handleSolveODE)
	mux.HandleFunc("POST /api/phase-portrait", h.handlePhasePortrait)
}

func (h *Handler) pageHandler(name string, data pageData) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// "GET /" also matches every unregistered path.
		if name == assets.PageIndex && r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := h.pages.ExecuteTemplate(w, name, data); err != nil {
			h.logger.Error("failed to render page",
				slog.String("page", name),
				slog.Any("error", err),
			)
		}
	}
}

type solveODERequest struct {
	Method            string             `json:"method"`
	ODE               string             `json:"ode"`
	InitialConditions map[string]float64 `json:"initial_conditions"`
}

type solveODEResponse struct {
	Success  bool     `json:"success"`
	Solution string   `json:"solution"`
	Steps    []string `json:"steps"`
}

func (h *Handler) handleSolveODE(w http.ResponseWriter, r *http.Request) {
	var req solveODERequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, fmt.Errorf("invalid JSON body: %w", err))
		return
	}

	solution, err := h.solver.Solve(req.Method, req.ODE, req.InitialConditions)
	if err != nil {
		h.logger.Info("solve failed",
			slog.String("method", req.Method),
			slog.String("ode", req.ODE),
			slog.Any("error", err),
		)
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, solveODEResponse{
		Success:  true,
		Solution: solution.Latex,
		Steps:    solution.Steps,
	})
}

type phasePortraitRequest struct {
	Type   string      `json:"type"`
	DXdt   string      `json:"dx_dt"`
	DYdt   string      `json:"dy_dt"`
	XRange *[2]float64 `json:"x_range"`
	YRange *[2]float64 `json:"y_range"`
}

type phasePortraitResponse struct {
	Image string `json:"image"`
}

func (h *Handler) handlePhasePortrait(w http.ResponseWriter, r *http.Request) {
	var req phasePortraitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, fmt.Errorf("invalid JSON body: %w", err))
		return
	}

	portrait := phase.Request{
		Type:   req.Type,
		DXdt:   req.DXdt,
		DYdt:   req.DYdt,
		XRange: [2]float64{h.defaults.XMin, h.defaults.XMax},
		YRange: [2]float64{h.defaults.YMin, h.defaults.YMax},
	}
	if req.XRange != nil {
		portrait.XRange = *req.XRange
	}
	if req.YRange != nil {
		portrait.YRange = *req.YRange
	}

	png, err := h.renderer.Render(portrait)
	if err != nil {
		h.logger.Info("render failed",
			slog.String("type", req.Type),
			slog.Any("error", err),
		)
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, phasePortraitResponse{
		Image: base64.StdEncoding.EncodeToString(png),
	})
}

// writeError reports every request failure as 400 with an error message
// the page can show directly. The unknown-method message stays exactly
// as clients expect it.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	message := err.Error()
	if errors.Is(err, ode.ErrUnknownMethod) {
		message = ode.ErrUnknownMethod.Error()
	}
	h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", slog.Any("error", err))
	}
}
