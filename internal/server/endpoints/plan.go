package endpoints

import (
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/enesgrahovac/book-quest/internal/api"
	"github.com/enesgrahovac/book-quest/internal/plan"
	"github.com/enesgrahovac/book-quest/internal/structured"
	"github.com/enesgrahovac/book-quest/internal/svcctx"
)

// GeneratePlanRequest is the body of a plan generation request.
type GeneratePlanRequest struct {
	Goals string `json:"goals,omitempty"`
}

// EditPlanRequest is the body of a plan edit request.
type EditPlanRequest struct {
	Instruction string `json:"instruction"`
}

// GeneratePlanEndpoint handles POST /api/users/{user_id}/courses/{course_id}/plan.
type GeneratePlanEndpoint struct{}

func (e *GeneratePlanEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", coursePrefix + "/plan", e.handler
}

func (e *GeneratePlanEndpoint) RequiresInit() bool { return true }

// handler builds a plan from the stored analysis and replaces any existing
// plan of the course.
func (e *GeneratePlanEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	key, ok := courseKey(w, r)
	if !ok {
		return
	}
	var req GeneratePlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	courses := svcctx.CoursesFrom(r.Context())
	analysis, err := courses.LoadAnalysis(key)
	if err != nil {
		storeError(w, err)
		return
	}
	if analysis == nil {
		writeError(w, http.StatusNotFound, "no book analyzed for this course")
		return
	}

	ctx := structured.WithCourseID(r.Context(), key.CourseID)
	p := svcctx.PlannerFrom(r.Context()).Generate(ctx, analysis, req.Goals)
	if err := courses.SavePlan(key, &p); err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (e *GeneratePlanEndpoint) Command(getServerURL func() string) *cobra.Command {
	var goals string
	cmd := &cobra.Command{
		Use:   "generate <user-id> <course-id>",
		Short: "Generate a course plan from the analyzed book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp plan.CoursePlan
			body := GeneratePlanRequest{Goals: goals}
			if err := client.Post(cmd.Context(), coursePath(args[0], args[1], "/plan"), body, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&goals, "goals", "", "What the learner wants from the book")
	return cmd
}

// GetPlanEndpoint handles GET /api/users/{user_id}/courses/{course_id}/plan.
type GetPlanEndpoint struct{}

func (e *GetPlanEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", coursePrefix + "/plan", e.handler
}

func (e *GetPlanEndpoint) RequiresInit() bool { return true }

func (e *GetPlanEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	key, ok := courseKey(w, r)
	if !ok {
		return
	}
	p, err := svcctx.CoursesFrom(r.Context()).LoadPlan(key)
	if err != nil {
		storeError(w, err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "no plan for this course")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (e *GetPlanEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <user-id> <course-id>",
		Short: "Show the course plan",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp plan.CoursePlan
			if err := client.Get(cmd.Context(), coursePath(args[0], args[1], "/plan"), &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// EditPlanEndpoint handles POST /api/users/{user_id}/courses/{course_id}/plan/edit.
type EditPlanEndpoint struct{}

func (e *EditPlanEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", coursePrefix + "/plan/edit", e.handler
}

func (e *EditPlanEndpoint) RequiresInit() bool { return true }

// handler applies a learner instruction. When the reconciler discovers
// chapters the augmented analysis is stored alongside the new plan.
func (e *EditPlanEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	key, ok := courseKey(w, r)
	if !ok {
		return
	}
	var req EditPlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Instruction = strings.TrimSpace(req.Instruction)
	if req.Instruction == "" {
		writeError(w, http.StatusBadRequest, "instruction is required")
		return
	}

	courses := svcctx.CoursesFrom(r.Context())
	current, err := courses.LoadPlan(key)
	if err != nil {
		storeError(w, err)
		return
	}
	if current == nil {
		writeError(w, http.StatusNotFound, "no plan for this course")
		return
	}
	analysis, err := courses.LoadAnalysis(key)
	if err != nil {
		storeError(w, err)
		return
	}
	pages, err := courses.LoadPages(key)
	if err != nil {
		storeError(w, err)
		return
	}

	ctx := structured.WithCourseID(r.Context(), key.CourseID)
	result := svcctx.ReconcilerFrom(r.Context()).Reconcile(ctx, plan.ReconcileInput{
		Plan:        *current,
		Instruction: req.Instruction,
		Analysis:    analysis,
		Pages:       pages,
	})

	if result.UpdatedAnalysis != nil {
		if err := courses.SaveAnalysis(key, result.UpdatedAnalysis); err != nil {
			storeError(w, err)
			return
		}
	}
	if err := courses.SavePlan(key, &result.Plan); err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (e *EditPlanEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <user-id> <course-id> <instruction>",
		Short: "Edit the course plan with a natural-language instruction",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp plan.ReconcileResult
			body := EditPlanRequest{Instruction: args[2]}
			if err := client.Post(cmd.Context(), coursePath(args[0], args[1], "/plan/edit"), body, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
