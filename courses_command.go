package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"coursevault-backend/models"
)

func newCoursesCommand(ctx *commandContext) *cobra.Command {
	coursesCmd := &cobra.Command{
		Use:   "courses",
		Short: "Inspect the course tree",
	}
	coursesCmd.AddCommand(newCoursesListCommand(ctx))
	return coursesCmd
}

func newCoursesListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List courses discovered in the courses directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.buildApp(false)
			if err != nil {
				return err
			}

			courses := a.courses.Courses()
			if jsonOut {
				return writeJSON(cmd, models.CoursesResponse{Courses: courses})
			}

			out := cmd.OutOrStdout()
			if len(courses) == 0 {
				fmt.Fprintf(out, "No courses found in %s\n", a.cfg.CoursesDir)
				return nil
			}

			rows := make([][]string, 0, len(courses))
			for _, c := range courses {
				lectures := 0
				for _, s := range c.Sections {
					lectures += len(s.Lectures)
				}
				rows = append(rows, []string{
					c.Icon,
					c.ID,
					c.Name,
					strconv.Itoa(len(c.Sections)),
					strconv.Itoa(lectures),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"", "ID", "Name", "Sections", "Lectures"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
