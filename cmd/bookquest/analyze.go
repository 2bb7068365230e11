package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/enesgrahovac/book-quest/internal/api"
	"github.com/enesgrahovac/book-quest/internal/book"
	"github.com/enesgrahovac/book-quest/internal/coursestore"
	"github.com/enesgrahovac/book-quest/internal/structured"
)

var (
	analyzeUser    string
	analyzeCourse  string
	analyzeVerbose bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.pdf>",
	Short: "Analyze a PDF locally without a running server",
	Long: `Analyze a PDF book in-process and print the chapter analysis.

With --user and --course the pages and analysis are also stored in the
home directory, exactly as the upload endpoint does.

Examples:
  bookquest analyze book.pdf
  bookquest analyze book.pdf -o json
  bookquest analyze book.pdf --user u1 --course go-101`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		level := slog.LevelWarn
		if analyzeVerbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		var key coursestore.Key
		save := analyzeUser != "" || analyzeCourse != ""
		if save {
			key = coursestore.Key{UserID: analyzeUser, CourseID: analyzeCourse}
			if err := key.Validate(); err != nil {
				return err
			}
		}

		svc, _, err := loadServices(logger)
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx := structured.WithCourseID(cmd.Context(), analyzeCourse)
		result, err := svc.Pipeline.Analyze(ctx, data)
		if err != nil {
			return err
		}

		if save {
			if err := svc.Courses.SavePages(key, result.Pages); err != nil {
				return err
			}
			if err := svc.Courses.SaveAnalysis(key, &result.Analysis); err != nil {
				return err
			}
			logger.Info("stored analysis", "user_id", key.UserID, "course_id", key.CourseID)
		}

		if api.IsStructuredOutput() {
			return api.Output(result.Analysis)
		}
		return printAnalysis(os.Stdout, result.Analysis)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeUser, "user", "", "Store the result under this user ID")
	analyzeCmd.Flags().StringVar(&analyzeCourse, "course", "", "Store the result under this course ID")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Log pipeline progress to stderr")
	analyzeCmd.MarkFlagsRequiredTogether("user", "course")

	rootCmd.AddCommand(analyzeCmd)
}

// printAnalysis writes a human-readable chapter list.
func printAnalysis(w io.Writer, a book.BookAnalysis) error {
	fmt.Fprint(w, a.Title)
	if a.Author != "" {
		fmt.Fprintf(w, " by %s", a.Author)
	}
	fmt.Fprintf(w, "\n%d pages, chapters from %s\n\n", a.TotalPages, a.DetectionMethod)
	for _, ch := range a.Chapters {
		fmt.Fprintf(w, "%3d. %-50s pp. %d-%d  ~%d min\n",
			ch.ChapterNumber, ch.Title, ch.StartPage+1, ch.EndPage+1, ch.EstimatedReadingMinutes)
	}
	return nil
}
