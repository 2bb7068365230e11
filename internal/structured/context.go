package structured

import "context"

type courseIDKey struct{}

// WithCourseID tags generation calls made with ctx with a course ID.
func WithCourseID(ctx context.Context, courseID string) context.Context {
	return context.WithValue(ctx, courseIDKey{}, courseID)
}

// CourseIDFrom returns the course ID stored by WithCourseID.
func CourseIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(courseIDKey{}).(string)
	return id
}
