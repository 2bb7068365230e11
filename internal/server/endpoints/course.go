package endpoints

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/enesgrahovac/book-quest/internal/api"
	"github.com/enesgrahovac/book-quest/internal/coursestore"
	"github.com/enesgrahovac/book-quest/internal/svcctx"
)

// CourseResponse reports which documents a course has and when each was
// last written.
type CourseResponse struct {
	UserID         string     `json:"user_id"`
	CourseID       string     `json:"course_id"`
	BookUpdatedAt  *time.Time `json:"book_updated_at,omitempty"`
	PagesUpdatedAt *time.Time `json:"pages_updated_at,omitempty"`
	PlanUpdatedAt  *time.Time `json:"plan_updated_at,omitempty"`
}

// GetCourseEndpoint handles GET /api/users/{user_id}/courses/{course_id}.
type GetCourseEndpoint struct{}

func (e *GetCourseEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", coursePrefix, e.handler
}

func (e *GetCourseEndpoint) RequiresInit() bool { return true }

func (e *GetCourseEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	key, ok := courseKey(w, r)
	if !ok {
		return
	}
	store := svcctx.CoursesFrom(r.Context())

	resp := CourseResponse{UserID: key.UserID, CourseID: key.CourseID}
	found := false
	for _, doc := range []struct {
		name string
		dst  **time.Time
	}{
		{coursestore.AnalysisFile, &resp.BookUpdatedAt},
		{coursestore.PagesFile, &resp.PagesUpdatedAt},
		{coursestore.PlanFile, &resp.PlanUpdatedAt},
	} {
		ts, err := store.UpdatedAt(key, doc.name)
		if err != nil {
			storeError(w, err)
			return
		}
		if !ts.IsZero() {
			*doc.dst = &ts
			found = true
		}
	}
	if !found {
		writeError(w, http.StatusNotFound, "course not found")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *GetCourseEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <user-id> <course-id>",
		Short: "Show which documents a course has",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp CourseResponse
			if err := client.Get(cmd.Context(), coursePath(args[0], args[1], ""), &resp); err != nil {
				return err
			}
			if api.IsStructuredOutput() {
				return api.Output(resp)
			}
			for _, row := range []struct {
				label string
				ts    *time.Time
			}{
				{"book", resp.BookUpdatedAt},
				{"pages", resp.PagesUpdatedAt},
				{"plan", resp.PlanUpdatedAt},
			} {
				if row.ts == nil {
					fmt.Printf("%-6s -\n", row.label)
					continue
				}
				fmt.Printf("%-6s %s\n", row.label, row.ts.Format(time.RFC3339))
			}
			return nil
		},
	}
}

// DeleteCourseEndpoint handles DELETE /api/users/{user_id}/courses/{course_id}.
type DeleteCourseEndpoint struct{}

func (e *DeleteCourseEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", coursePrefix, e.handler
}

func (e *DeleteCourseEndpoint) RequiresInit() bool { return true }

func (e *DeleteCourseEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	key, ok := courseKey(w, r)
	if !ok {
		return
	}
	if err := svcctx.CoursesFrom(r.Context()).Delete(key); err != nil {
		storeError(w, err)
		return
	}
	svcctx.LoggerFrom(r.Context()).Info("course deleted", "user_id", key.UserID, "course_id", key.CourseID)
	w.WriteHeader(http.StatusNoContent)
}

func (e *DeleteCourseEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <user-id> <course-id>",
		Short: "Delete a course's book, pages and plan",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Delete(cmd.Context(), coursePath(args[0], args[1], "")); err != nil {
				return err
			}
			fmt.Printf("Deleted course %s/%s\n", args[0], args[1])
			return nil
		},
	}
}
