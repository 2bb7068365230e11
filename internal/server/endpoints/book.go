package endpoints

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/enesgrahovac/book-quest/internal/api"
	"github.com/enesgrahovac/book-quest/internal/book"
	"github.com/enesgrahovac/book-quest/internal/pdftext"
	"github.com/enesgrahovac/book-quest/internal/structured"
	"github.com/enesgrahovac/book-quest/internal/svcctx"
)

const (
	// maxUploadBytes bounds an uploaded PDF.
	maxUploadBytes = 200 << 20
	// maxFormMemory is kept in memory before multipart parts spill to disk.
	maxFormMemory = 32 << 20
	// uploadField is the multipart field carrying the PDF.
	uploadField = "file"
)

// AnalyzeBookEndpoint handles POST /api/users/{user_id}/courses/{course_id}/book.
type AnalyzeBookEndpoint struct{}

var _ api.Endpoint = (*AnalyzeBookEndpoint)(nil)

func (e *AnalyzeBookEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", coursePrefix + "/book", e.handler
}

func (e *AnalyzeBookEndpoint) RequiresInit() bool { return true }

// handler extracts, detects and analyzes the uploaded PDF, then stores the
// pages and analysis for the course. Unreadable PDFs are rejected with 422.
func (e *AnalyzeBookEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	key, ok := courseKey(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("missing %q file field", uploadField))
		return
	}
	data, err := io.ReadAll(file)
	file.Close()
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to read upload: %v", err))
		return
	}

	pipeline := svcctx.PipelineFrom(r.Context())
	courses := svcctx.CoursesFrom(r.Context())
	logger := svcctx.LoggerFrom(r.Context())

	logger.Info("analyzing uploaded book",
		"user_id", key.UserID,
		"course_id", key.CourseID,
		"filename", header.Filename,
		"bytes", len(data),
	)

	ctx := structured.WithCourseID(r.Context(), key.CourseID)
	result, err := pipeline.Analyze(ctx, data)
	if err != nil {
		if errors.Is(err, pdftext.ErrUnreadablePDF) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := courses.SavePages(key, result.Pages); err != nil {
		storeError(w, err)
		return
	}
	if err := courses.SaveAnalysis(key, &result.Analysis); err != nil {
		storeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result.Analysis)
}

func (e *AnalyzeBookEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <user-id> <course-id> <file.pdf>",
		Short: "Upload a PDF and analyze it for a course",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[2])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[2], err)
			}
			defer f.Close()

			client := api.NewClient(getServerURL())
			var resp book.BookAnalysis
			path := coursePath(args[0], args[1], "/book")
			if err := client.PostFile(cmd.Context(), path, uploadField, filepath.Base(args[2]), f, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// GetBookEndpoint handles GET /api/users/{user_id}/courses/{course_id}/book.
type GetBookEndpoint struct{}

func (e *GetBookEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", coursePrefix + "/book", e.handler
}

func (e *GetBookEndpoint) RequiresInit() bool { return true }

func (e *GetBookEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	key, ok := courseKey(w, r)
	if !ok {
		return
	}

	analysis, err := svcctx.CoursesFrom(r.Context()).LoadAnalysis(key)
	if err != nil {
		storeError(w, err)
		return
	}
	if analysis == nil {
		writeError(w, http.StatusNotFound, "no book analyzed for this course")
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (e *GetBookEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <user-id> <course-id>",
		Short: "Show the stored book analysis of a course",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp book.BookAnalysis
			if err := client.Get(cmd.Context(), coursePath(args[0], args[1], "/book"), &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
