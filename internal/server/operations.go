package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) resolveRequest(c *gin.Context) {
	if s.resolver == nil {
		s.writeError(c, fmt.Errorf("resolver: %w", ErrFeatureDisabled))
		return
	}

	requestID := c.Param("requestID")
	steps, err := s.resolver.ResolveOriginalPlan(c.Request.Context(), requestID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ResolveResponse{
		RequestID: requestID,
		Steps:     steps,
		Count:     len(steps),
	})
}

func (s *Server) archiveRequest(c *gin.Context) {
	if s.archiver == nil {
		s.writeError(c, fmt.Errorf("archive: %w", ErrFeatureDisabled))
		return
	}

	rec, err := s.archiver.ArchiveRequest(c.Request.Context(), c.Param("requestID"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) getArchive(c *gin.Context) {
	if s.archiver == nil {
		s.writeError(c, fmt.Errorf("archive: %w", ErrFeatureDisabled))
		return
	}

	rec, err := s.archiver.Get(c.Request.Context(), c.Param("requestID"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) getTreatments(c *gin.Context) {
	if s.policy == nil {
		s.writeError(c, fmt.Errorf("policy: %w", ErrFeatureDisabled))
		return
	}

	bbID := c.Query("bbId")
	workStep := c.Query("workStep")
	if bbID == "" || workStep == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  "bbId and workStep are required",
			Status: http.StatusBadRequest,
		})
		return
	}

	data, err := s.policy.AllowedTreatments(c.Request.Context(), bbID, workStep)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}
