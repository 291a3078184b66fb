package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/lookupreport/internal/category"
	"github.com/nao1215/lookupreport/internal/history"
	"github.com/nao1215/lookupreport/internal/model"
	"github.com/nao1215/lookupreport/internal/payload"
)

const textPlain = "text/plain; charset=utf-8"

type errorResponse struct {
	Error string `json:"error"`
}

// renderRequest is the body of POST /v1/render and POST /v1/explain.
// A missing payload is treated as null.
type renderRequest struct {
	Category string          `json:"category" binding:"required"`
	Query    string          `json:"query"`
	Payload  json.RawMessage `json:"payload"`
}

func (r renderRequest) value() (payload.Value, error) {
	if len(r.Payload) == 0 {
		return payload.Null(), nil
	}
	return payload.Parse(r.Payload)
}

// wantsJSON reports whether the client asked for ?format=json.
func wantsJSON(c *gin.Context) bool {
	return c.Query("format") == "json"
}

// render handles POST /v1/render.
func (s *Server) render(c *gin.Context) {
	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}
	raw, err := req.value()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "payload is not valid JSON"})
		return
	}

	doc := s.engine.Build(raw, category.Normalize(req.Category), req.Query)
	if wantsJSON(c) {
		c.JSON(http.StatusOK, doc)
		return
	}
	c.Data(http.StatusOK, textPlain, []byte(doc.Text))
}

// explain handles POST /v1/explain.
func (s *Server) explain(c *gin.Context) {
	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}
	raw, err := req.value()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "payload is not valid JSON"})
		return
	}
	c.JSON(http.StatusOK, s.engine.Explain(raw, category.Normalize(req.Category)))
}

// categoryResponse describes one registry entry. Endpoints and headers are
// not exposed.
type categoryResponse struct {
	Category    category.Category `json:"category"`
	Label       string            `json:"label"`
	Placeholder string            `json:"placeholder"`
	MinLength   int               `json:"min_length"`
	MaxLength   int               `json:"max_length"`
	Info        string            `json:"info"`
	Configured  bool              `json:"configured"`
}

// categories handles GET /v1/categories.
func (s *Server) categories(c *gin.Context) {
	specs := s.registry.All()
	out := make([]categoryResponse, 0, len(specs))
	for _, spec := range specs {
		out = append(out, categoryResponse{
			Category:    spec.Category,
			Label:       spec.Label,
			Placeholder: spec.Placeholder,
			MinLength:   spec.MinLength,
			MaxLength:   spec.MaxLength,
			Info:        spec.Info,
			Configured:  spec.Endpoint != "",
		})
	}
	c.JSON(http.StatusOK, out)
}

// lookupStatus maps a finished lookup to an HTTP status.
func lookupStatus(l *model.Lookup) int {
	switch l.Outcome {
	case model.OutcomeFound:
		return http.StatusOK
	case model.OutcomeInvalid:
		if errors.Is(l.Err, category.ErrUnknownCategory) {
			return http.StatusNotFound
		}
		return http.StatusBadRequest
	case model.OutcomeNotFound:
		return http.StatusNotFound
	default:
		if errors.Is(l.Err, category.ErrNoEndpoint) {
			return http.StatusServiceUnavailable
		}
		return http.StatusBadGateway
	}
}

// lookup handles GET /v1/lookup/:category/:query.
func (s *Server) lookup(c *gin.Context) {
	if s.newPipeline == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorResponse{Error: "lookups are disabled"})
		return
	}

	l := model.NewLookup(category.Category(c.Param("category")), c.Param("query"))
	_ = s.newPipeline().Execute(c.Request.Context(), l) //nolint:errcheck // outcome is stored in l

	status := lookupStatus(l)
	if status != http.StatusOK || l.Document == nil {
		c.AbortWithStatusJSON(status, errorResponse{Error: l.Message})
		return
	}

	c.Header("X-Cache", cacheHeader(l.Cached))
	if wantsJSON(c) {
		c.JSON(http.StatusOK, l)
		return
	}
	c.Data(http.StatusOK, textPlain, []byte(l.Document.Text))
}

func cacheHeader(cached bool) string {
	if cached {
		return "HIT"
	}
	return "MISS"
}

// historyResponse is one row of GET /v1/history.
type historyResponse struct {
	history.Search
	Label string `json:"label"`
}

// recent handles GET /v1/history?limit=N.
func (s *Server) recent(c *gin.Context) {
	if s.history == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorResponse{Error: "history is disabled"})
		return
	}

	limit := s.historyLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	searches, err := s.history.Recent(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("failed to read history", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "failed to read history"})
		return
	}

	out := make([]historyResponse, 0, len(searches))
	for _, search := range searches {
		out = append(out, historyResponse{Search: search, Label: search.Status.Label()})
	}
	c.JSON(http.StatusOK, out)
}

// stats handles GET /v1/stats.
func (s *Server) stats(c *gin.Context) {
	if s.history == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorResponse{Error: "history is disabled"})
		return
	}

	st, err := s.history.Stats(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to read stats", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "failed to read stats"})
		return
	}
	c.JSON(http.StatusOK, st)
}
