package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dshills/bbflow/flow"
	"github.com/dshills/bbflow/flow/store"
)

// HeaderRequestID lets a client choose the id of a new request
const HeaderRequestID = "X-RequestID"

// ErrDuplicateRequestID is returned when X-RequestID names a request that
// already exists
var ErrDuplicateRequestID = errors.New("request id has already been used")

func (s *Server) createRequest(c *gin.Context) {
	var req store.InfraActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %w", ErrInvalidJSON, err))
		return
	}

	ctx := c.Request.Context()
	if id := c.GetHeader(HeaderRequestID); id != "" {
		req.RequestID = id
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	} else {
		_, err := s.store.GetRequest(ctx, req.RequestID)
		if err == nil {
			s.writeError(c, fmt.Errorf("%s: %w", req.RequestID, ErrDuplicateRequestID))
			return
		}
		if !errors.Is(err, store.ErrNotFound) {
			s.writeError(c, err)
			return
		}
	}
	if req.StartTime.IsZero() {
		req.StartTime = time.Now().UTC()
	}

	if err := s.store.SaveRequest(ctx, req); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (s *Server) getRequest(c *gin.Context) {
	req, err := s.store.GetRequest(c.Request.Context(), c.Param("requestID"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (s *Server) saveFlowExecutionPath(c *gin.Context) {
	requestID := c.Param("requestID")

	body, err := c.GetRawData()
	if err != nil {
		s.writeError(c, fmt.Errorf("%w: %w", ErrInvalidJSON, err))
		return
	}
	path, err := flow.DecodeExecutionPath(body)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if err := s.replayer.SaveFlowExecutionPath(c.Request.Context(), requestID, path); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, PathSavedResponse{
		RequestID: requestID,
		Count:     len(path),
	})
}

func (s *Server) getFlowExecutionPath(c *gin.Context) {
	requestID := c.Param("requestID")
	path, err := s.replayer.LoadFlowExecutionPath(c.Request.Context(), requestID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, PathResponse{
		RequestID:         requestID,
		FlowExecutionPath: path,
		Count:             len(path),
	})
}

func (s *Server) getOriginalFlowExecutionPath(c *gin.Context) {
	requestID := c.Param("requestID")
	path, err := s.replayer.LoadOriginalFlowExecutionPath(c.Request.Context(), requestID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, PathResponse{
		RequestID:         requestID,
		FlowExecutionPath: path,
		Count:             len(path),
	})
}
