package server

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mhpenta/planviz"
)

// Multipart field names for the two uploads.
const (
	fieldFloorPlan = "floor_plan"
	fieldReference = "reference"

	// fieldDetectFurniture, when true, lists the furniture in the finished render
	fieldDetectFurniture = "detect_furniture"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// render runs the pipeline and answers with the image as a data URI.
func (s *Server) render(c *gin.Context) {
	floorPlan, reference, closeUploads, err := s.openUploads(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	defer closeUploads()

	var stages []planviz.Stage
	img, err := s.pipeline.Run(c.Request.Context(), floorPlan, reference, func(st planviz.Stage) {
		stages = append(stages, st)
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	resp := renderResponse{
		Image:    img.DataURI(),
		MIMEType: img.MIMEType,
		Stages:   stages,
	}
	if wantsFurniture(c) {
		s.detectFurniture(c.Request.Context(), img, &resp, c.GetString(requestIDKey))
	}
	c.JSON(http.StatusOK, resp)
}

func wantsFurniture(c *gin.Context) bool {
	v, err := strconv.ParseBool(c.PostForm(fieldDetectFurniture))
	return err == nil && v
}

// detectFurniture adds the furniture listing to resp. A failed detection is
// reported alongside the render rather than failing the request.
func (s *Server) detectFurniture(ctx context.Context, img *planviz.Image, resp *renderResponse, requestID string) {
	items, err := s.pipeline.DetectFurniture(ctx, img)
	if err != nil {
		resp.FurnitureError = &errorResponse{
			Code:      planviz.ErrorCode(err),
			Message:   err.Error(),
			RequestID: requestID,
		}
		return
	}
	resp.Furniture = items
}

type sseEvent struct {
	name string
	data any
}

// renderStream runs the pipeline and reports each stage as a server-sent event,
// followed by a single result or error event.
func (s *Server) renderStream(c *gin.Context) {
	floorPlan, reference, closeUploads, err := s.openUploads(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	// Three stages plus the final event, so the run never blocks on a gone client.
	events := make(chan sseEvent, 4)
	ctx := c.Request.Context()
	requestID := c.GetString(requestIDKey)
	furniture := wantsFurniture(c)

	go func() {
		defer close(events)
		defer closeUploads()

		var stages []planviz.Stage
		img, err := s.pipeline.Run(ctx, floorPlan, reference, func(st planviz.Stage) {
			stages = append(stages, st)
			events <- sseEvent{name: "stage", data: stageEvent{Stage: st}}
		})
		if err != nil {
			events <- sseEvent{name: "error", data: errorResponse{
				Code:      planviz.ErrorCode(err),
				Message:   err.Error(),
				RequestID: requestID,
			}}
			return
		}
		resp := renderResponse{
			Image:    img.DataURI(),
			MIMEType: img.MIMEType,
			Stages:   stages,
		}
		if furniture {
			s.detectFurniture(ctx, img, &resp, requestID)
		}
		events <- sseEvent{name: "result", data: resp}
	}()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(ev.name, ev.data)
			return true
		case <-ctx.Done():
			return false
		}
	})

	// The uploads are multipart temp files that net/http removes once the
	// handler returns, so wait for the run to let go of them.
	for range events {
	}
}

func (s *Server) listModels(c *gin.Context) {
	listing := s.prober.ListModels(c.Request.Context())

	models := make([]modelDTO, 0, len(listing.Models))
	for _, m := range listing.Models {
		models = append(models, modelDTO{Name: m.Name, DisplayName: m.DisplayName})
	}

	c.JSON(http.StatusOK, modelListResponse{
		Kind:        listing.Kind.String(),
		Models:      models,
		Diagnostics: listing.Diagnostics(),
	})
}

func (s *Server) probeModels(c *gin.Context) {
	results := s.prober.TestAll(c.Request.Context())

	resp := probeResponse{Results: results}
	if best, ok := planviz.BestModel(results); ok {
		resp.Best = best.ModelName
	}
	c.JSON(http.StatusOK, resp)
}

// openUploads opens both multipart files. A missing field yields a nil image so
// the pipeline reports it as missing input.
func (s *Server) openUploads(c *gin.Context) (floorPlan, reference *planviz.RawImage, closeAll func(), err error) {
	if s.opts.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)
	}

	var closers []io.Closer
	closeAll = func() {
		for _, cl := range closers {
			_ = cl.Close()
		}
	}

	open := func(field string) (*planviz.RawImage, error) {
		fh, err := c.FormFile(field)
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
				return nil, nil
			}
			return nil, err
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		closers = append(closers, f)
		return rawImage(fh, f), nil
	}

	if floorPlan, err = open(fieldFloorPlan); err != nil {
		closeAll()
		return nil, nil, nil, err
	}
	if reference, err = open(fieldReference); err != nil {
		closeAll()
		return nil, nil, nil, err
	}
	return floorPlan, reference, closeAll, nil
}

func rawImage(fh *multipart.FileHeader, f multipart.File) *planviz.RawImage {
	return &planviz.RawImage{Name: fh.Filename, Reader: f}
}

// fail writes the error as JSON with a status derived from its taxonomy.
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	code := planviz.ErrorCode(err)
	if status == http.StatusRequestEntityTooLarge {
		code = "upload_too_large"
	}
	c.AbortWithStatusJSON(status, errorResponse{
		Code:      code,
		Message:   err.Error(),
		RequestID: c.GetString(requestIDKey),
	})
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, planviz.ErrInputMissing):
		return http.StatusBadRequest
	case errors.Is(err, planviz.ErrEmptyImageData),
		errors.Is(err, planviz.ErrInvalidMIMEType),
		errors.Is(err, planviz.ErrImageTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, planviz.ErrStyleExtractionFailed),
		errors.Is(err, planviz.ErrPlanAnalysisFailed),
		errors.Is(err, planviz.ErrNoImageProduced),
		errors.Is(err, planviz.ErrFurnitureDetectionFailed):
		return http.StatusUnprocessableEntity
	case planviz.IsRateLimitError(err):
		return http.StatusTooManyRequests
	case planviz.IsTransportError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
