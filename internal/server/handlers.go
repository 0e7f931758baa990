package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/thywilljoshua/poster-to-web/internal/convert"
	"github.com/thywilljoshua/poster-to-web/internal/export"
	"github.com/thywilljoshua/poster-to-web/internal/poster"
	"github.com/thywilljoshua/poster-to-web/internal/store"
)

type uploadResponse struct {
	ID       string          `json:"id"`
	Status   convert.Status  `json:"status"`
	Reason   string          `json:"reason,omitempty"`
	Stats    poster.Stats    `json:"stats"`
	Document poster.Document `json:"document"`
}

type addRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Icon    string `json:"icon"`
}

type moveRequest struct {
	Index *int `json:"index" binding:"required"`
}

type orderRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"healthy": true})
}

func (s *Server) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("multipart field \"file\": %v", err)})
		return
	}

	dir, err := os.MkdirTemp("", "poster2web-upload-")
	if err != nil {
		s.fail(c, err)
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, filepath.Base(fh.Filename))
	if err := c.SaveUploadedFile(fh, path); err != nil {
		s.fail(c, err)
		return
	}

	res, err := s.extract(c.Request.Context(), path)
	if err != nil {
		s.fail(c, err)
		return
	}
	rec := store.Record{Source: fh.Filename, Status: string(res.Status), Document: res.Document}
	if err := s.store.Save(c.Request.Context(), &rec); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, uploadResponse{
		ID:       rec.ID,
		Status:   res.Status,
		Reason:   res.Reason,
		Stats:    res.Stats,
		Document: rec.Document,
	})
}

func (s *Server) list(c *gin.Context) {
	docs, err := s.store.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if docs == nil {
		docs = []store.Summary{}
	}
	c.JSON(http.StatusOK, docs)
}

func (s *Server) get(c *gin.Context) {
	rec, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) remove(c *gin.Context) {
	if err := s.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// edit applies fn to the stored document and answers with the result.
func (s *Server) edit(c *gin.Context, status int, fn func(*poster.Document) error) {
	rec, err := s.store.Update(c.Request.Context(), c.Param("id"), fn)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(status, rec)
}

func (s *Server) reset(c *gin.Context) {
	s.edit(c, http.StatusOK, func(d *poster.Document) error {
		d.Reset()
		return nil
	})
}

func (s *Server) reorder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.edit(c, http.StatusOK, func(d *poster.Document) error {
		return d.Reorder(req.IDs)
	})
}

func (s *Server) addSection(c *gin.Context) {
	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.edit(c, http.StatusCreated, func(d *poster.Document) error {
		_, err := d.Add(req.Title, req.Content, req.Icon)
		return err
	})
}

func (s *Server) patchSection(c *gin.Context) {
	var p poster.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.edit(c, http.StatusOK, func(d *poster.Document) error {
		return d.Update(c.Param("sid"), p)
	})
}

func (s *Server) removeSection(c *gin.Context) {
	s.edit(c, http.StatusOK, func(d *poster.Document) error {
		return d.Remove(c.Param("sid"))
	})
}

func (s *Server) moveSection(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.edit(c, http.StatusOK, func(d *poster.Document) error {
		return d.Move(c.Param("sid"), *req.Index)
	})
}

func (s *Server) exportDoc(c *gin.Context) {
	opts := s.export
	if f := c.Query("format"); f != "" {
		format, err := export.ParseFormat(f)
		if err != nil {
			s.fail(c, err)
			return
		}
		opts.Format = format
	}
	if v := c.Query("scheme"); v != "" {
		opts.Style.ColorScheme = v
	}
	if v := c.Query("font"); v != "" {
		opts.Style.Font = v
	}
	if v := c.Query("layout"); v != "" {
		opts.Style.Layout = v
	}

	rec, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	b, err := export.Render(c.Request.Context(), rec.Document, opts)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", opts.Format.Filename()))
	c.Data(http.StatusOK, opts.Format.ContentType(), b)
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, poster.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, poster.ErrDetailSection),
		errors.Is(err, poster.ErrDuplicateTitle),
		errors.Is(err, poster.ErrEmptyTitle),
		errors.Is(err, poster.ErrIndexOutOfRange),
		errors.Is(err, poster.ErrInvalidOrder),
		errors.Is(err, poster.ErrInvalidDocument):
		return http.StatusUnprocessableEntity
	case errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, export.ErrUnknownStyle),
		errors.Is(err, export.ErrMultiFile):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
