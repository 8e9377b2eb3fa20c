// Package server exposes the cylinder table over HTTP: list and query
// endpoints, the three mutations, the CSV export, the audit trail and the
// metrics endpoint.
package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/workjay-it/lpgtrack/internal/audit"
	"github.com/workjay-it/lpgtrack/internal/export"
	"github.com/workjay-it/lpgtrack/internal/loader"
	"github.com/workjay-it/lpgtrack/internal/metrics"
	"github.com/workjay-it/lpgtrack/internal/mutate"
	"github.com/workjay-it/lpgtrack/internal/query"
	"github.com/workjay-it/lpgtrack/pkg/types"
)

// CylinderController serves the cylinder endpoints.
type CylinderController struct {
	Loader  *loader.Loader
	Mutator *mutate.Coordinator
	Trail   *audit.Trail
}

func NewCylinderController(l *loader.Loader, m *mutate.Coordinator, trail *audit.Trail) *CylinderController {
	return &CylinderController{Loader: l, Mutator: m, Trail: trail}
}

// SetupRouter wires the routes. Debug keeps gin's default mode; otherwise
// the engine runs in release mode.
func SetupRouter(cc *CylinderController, debug bool) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(LoggerMiddleware(), gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/cylinders", cc.ListCylinders)
		api.POST("/cylinders", cc.CreateCylinder)
		api.GET("/cylinders/:id", cc.GetCylinderByID)
		api.PATCH("/cylinders/:id/fill", cc.UpdateFill)
		api.POST("/cylinders/:id/return", cc.ReturnCylinder)
		api.GET("/summary", cc.GetSummary)
		api.GET("/export", cc.ExportCSV)
		api.GET("/audit", cc.GetAuditTrail)
	}
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		RespondJSON(c, http.StatusOK, "ok", nil)
	})
	return r
}

// loadTable fetches the current table. A degraded load (store unavailable)
// still yields a usable empty table; the returned message carries the
// warning for the response envelope.
func (cc *CylinderController) loadTable(c *gin.Context) (types.CylinderTable, string, bool) {
	table, err := cc.Loader.Load(c.Request.Context())
	if err != nil {
		if errors.Is(err, types.ErrStoreUnavailable) {
			return table, "store unavailable, showing empty table", true
		}
		RespondError(c, http.StatusInternalServerError, err)
		return nil, "", false
	}
	return table, "", true
}

// ListCylinders returns the table, optionally filtered and sorted. Query
// parameters: status (comma separated), pin, overdue=true, sort=next_test_due.
func (cc *CylinderController) ListCylinders(c *gin.Context) {
	table, warn, ok := cc.loadTable(c)
	if !ok {
		return
	}

	if statuses := c.Query("status"); statuses != "" {
		table = query.FilterByStatus(table, strings.Split(statuses, ","))
	}
	if pin := c.Query("pin"); pin != "" {
		var err error
		table, err = query.FilterByPIN(table, pin)
		if err != nil {
			RespondError(c, http.StatusBadRequest, err)
			return
		}
	}
	if c.Query("overdue") == "true" {
		table = query.OverdueOnly(table)
	}
	if c.Query("sort") == "next_test_due" {
		table = query.SortByNextTestDue(table)
	}

	msg := "cylinder table"
	if warn != "" {
		msg = warn
	}
	RespondJSON(c, http.StatusOK, msg, table)
}

// GetCylinderByID returns one record.
func (cc *CylinderController) GetCylinderByID(c *gin.Context) {
	table, _, ok := cc.loadTable(c)
	if !ok {
		return
	}
	rec, err := query.LookupByID(table, c.Param("id"))
	if err != nil {
		RespondError(c, statusForError(err), err)
		return
	}
	RespondJSON(c, http.StatusOK, "cylinder detail", rec)
}

// GetSummary returns fleet-level counts.
func (cc *CylinderController) GetSummary(c *gin.Context) {
	table, warn, ok := cc.loadTable(c)
	if !ok {
		return
	}
	msg := "fleet summary"
	if warn != "" {
		msg = warn
	}
	RespondJSON(c, http.StatusOK, msg, query.Summarize(table))
}

// CreateCylinder appends a new record.
func (cc *CylinderController) CreateCylinder(c *gin.Context) {
	var fields types.CylinderRecord
	if err := c.ShouldBindJSON(&fields); err != nil {
		RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, _, ok := cc.loadTable(c)
	if !ok {
		return
	}
	out, err := cc.Mutator.ApplyNewRecord(c.Request.Context(), table, fields)
	if err != nil {
		RespondError(c, statusForError(err), err)
		return
	}
	RespondJSON(c, http.StatusCreated, mutationMessage("cylinder added", out), out.Record)
}

// UpdateFill sets one record's fill level.
func (cc *CylinderController) UpdateFill(c *gin.Context) {
	type reqBody struct {
		FillPercent *int `json:"fill_percent" binding:"required"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, _, ok := cc.loadTable(c)
	if !ok {
		return
	}
	out, err := cc.Mutator.ApplyFillUpdate(c.Request.Context(), table, c.Param("id"), *body.FillPercent)
	if err != nil {
		RespondError(c, statusForError(err), err)
		return
	}
	RespondJSON(c, http.StatusOK, mutationMessage("fill updated", out), out.Record)
}

// ReturnCylinder books a cylinder back in and reports the liability.
func (cc *CylinderController) ReturnCylinder(c *gin.Context) {
	type reqBody struct {
		Condition string `json:"condition" binding:"required"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, _, ok := cc.loadTable(c)
	if !ok {
		return
	}
	out, err := cc.Mutator.ApplyReturn(c.Request.Context(), table, c.Param("id"), body.Condition)
	if err != nil {
		RespondError(c, statusForError(err), err)
		return
	}
	RespondJSON(c, http.StatusOK, mutationMessage("cylinder returned", out), gin.H{
		"record":    out.Record,
		"liability": out.Liability,
	})
}

// ExportCSV streams the current table as a CSV attachment.
func (cc *CylinderController) ExportCSV(c *gin.Context) {
	table, _, ok := cc.loadTable(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="cylinders.csv"`)
	c.Status(http.StatusOK)
	if err := export.Write(c.Writer, table); err != nil {
		httpLog.WithError(err).Error("export stream failed")
	}
}

// GetAuditTrail returns the recorded mutations, oldest first.
func (cc *CylinderController) GetAuditTrail(c *gin.Context) {
	if cc.Trail == nil {
		RespondJSON(c, http.StatusOK, "audit trail disabled", []audit.Entry{})
		return
	}
	entries, err := cc.Trail.Read()
	if err != nil {
		RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	RespondJSON(c, http.StatusOK, "audit trail", entries)
}

// mutationMessage flags memory-only outcomes so API callers know to export.
func mutationMessage(base string, out *mutate.Outcome) string {
	if out.Persistence == mutate.MemoryOnly {
		return base + " (kept in memory only, export to save)"
	}
	return base
}
