package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"robot-config-studio/internal/model"
)

// handleListProfiles returns the registered profile names.
func (s *Server) handleListProfiles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"profiles": s.service.Profiles()})
}

// handleGetConfig returns the hydrated configuration for a profile.
func (s *Server) handleGetConfig(c *gin.Context) {
	cfg, err := s.service.Config(c.Param("profile"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// handleLoadConfig replaces a profile's configuration with the request body.
// The body is hydrated before it is stored, so a partial configuration is
// acceptable input.
func (s *Server) handleLoadConfig(c *gin.Context) {
	var cfg model.RobotConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid configuration: " + err.Error()})
		return
	}

	hydrated, err := s.service.LoadProfile(c.Request.Context(), c.Param("profile"), &cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, hydrated)
}

// handleExport renders the profile as flat ".set" text.
func (s *Server) handleExport(c *gin.Context) {
	text, err := s.service.Export(c.Request.Context(), c.Param("profile"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+c.Param("profile")+`.set"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

// importRequest carries flat text plus an optional scope.
type importRequest struct {
	Text   string       `json:"text" binding:"required"`
	Target model.Target `json:"target"`
}

// handlePreviewImport diffs uploaded flat text against the profile without
// changing anything.
func (s *Server) handlePreviewImport(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, err := s.service.PreviewImport(c.Request.Context(), c.Param("profile"), req.Text, req.Target)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"changes": records, "count": len(records)})
}

// handleApplyImport commits the in-scope values of uploaded flat text.
func (s *Server) handleApplyImport(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, err := s.service.ApplyImport(c.Request.Context(), c.Param("profile"), req.Text, req.Target)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": records, "count": len(records)})
}

// parameterRequest sets one parameter across a target scope.
type parameterRequest struct {
	Target model.Target `json:"target"`
	Param  string       `json:"param" binding:"required"`
	Value  string       `json:"value" binding:"required"`
}

// handleSetParameter applies one parameter value to every logic instance in
// the target scope.
func (s *Server) handleSetParameter(c *gin.Context) {
	var req parameterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, err := s.service.SetParameter(c.Request.Context(), c.Param("profile"), req.Target, req.Param, req.Value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": records, "count": len(records)})
}

// handleValidate runs the advisory checks.
func (s *Server) handleValidate(c *gin.Context) {
	warnings, err := s.service.Validate(c.Request.Context(), c.Param("profile"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"warnings": warnings, "count": len(warnings)})
}

// compareRequest carries two flat files for a raw key-by-key diff.
type compareRequest struct {
	Left  string `json:"left" binding:"required"`
	Right string `json:"right" binding:"required"`
}

// handleCompareFiles diffs two flat files independent of any profile.
func (s *Server) handleCompareFiles(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	diff := s.service.CompareFiles(req.Left, req.Right)
	c.JSON(http.StatusOK, gin.H{"diff": diff, "clean": diff.Clean()})
}

// snapshotRequest labels a saved snapshot.
type snapshotRequest struct {
	Label string `json:"label"`
}

// handleSaveSnapshot persists the profile's current state.
func (s *Server) handleSaveSnapshot(c *gin.Context) {
	var req snapshotRequest
	_ = c.ShouldBindJSON(&req) // label is optional; an empty body is fine

	id, err := s.service.SaveSnapshot(c.Request.Context(), c.Param("profile"), req.Label)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"snapshot_id": id})
}

// handleListSnapshots returns snapshot metadata for a profile.
func (s *Server) handleListSnapshots(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	snaps, err := s.service.ListSnapshots(c.Request.Context(), c.Param("profile"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": snaps, "count": len(snaps)})
}

// handleRestoreSnapshot replaces the profile's state with a stored snapshot.
func (s *Server) handleRestoreSnapshot(c *gin.Context) {
	if err := s.service.RestoreSnapshot(c.Request.Context(), c.Param("profile"), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"restored": true})
}

// handleChangeHistory returns recently applied changes for a profile.
func (s *Server) handleChangeHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "200"))
	records, err := s.service.ChangeHistory(c.Request.Context(), c.Param("profile"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"changes": records, "count": len(records)})
}

// handleRecentAudit returns the in-memory tail of applied batches.
func (s *Server) handleRecentAudit(c *gin.Context) {
	batches := s.service.RecentAudit()
	c.JSON(http.StatusOK, gin.H{"batches": batches, "count": len(batches)})
}
