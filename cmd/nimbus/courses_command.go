package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"nimbus/internal/catalog"
	"nimbus/internal/textutil"
)

func newCoursesCommand(ctx *commandContext) *cobra.Command {
	coursesCmd := &cobra.Command{
		Use:   "courses",
		Short: "Course catalog utilities",
	}

	coursesCmd.AddCommand(newCoursesListCommand(ctx))
	coursesCmd.AddCommand(newCoursesLookupCommand(ctx))

	return coursesCmd
}

func newCoursesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured courses and their filing directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(cfg.Courses) == 0 {
				fmt.Fprintln(out, "No courses configured")
				return nil
			}
			rows := make([][]string, 0, len(cfg.Courses))
			for _, course := range cfg.Courses {
				rows = append(rows, []string{course.Name, course.Description, cfg.CourseDir(course)})
			}
			fmt.Fprint(out, renderTable([]column{{title: "Code"}, {title: "Description"}, {title: "Directory"}}, rows))
			fmt.Fprintln(out)
			return nil
		},
	}
}

func newCoursesLookupCommand(ctx *commandContext) *cobra.Command {
	var term string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "lookup [CODE...]",
		Short: "Look up course descriptions in the OpenData catalog",
		Long: `Look up course descriptions in the University of Waterloo OpenData catalog.

With no codes the configured courses are looked up. The term defaults to the
current term (for example 1259 for Fall 2025).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			codes := args
			if len(codes) == 0 {
				for _, course := range cfg.Courses {
					codes = append(codes, course.Name)
				}
			}
			if len(codes) == 0 {
				return fmt.Errorf("no course codes given and none configured")
			}

			termCode := strings.TrimSpace(term)
			if termCode == "" {
				termCode = catalog.TermCode(time.Now())
			}

			client, err := catalog.New(catalog.Config{
				APIKey:  cfg.Catalog.APIKey,
				BaseURL: cfg.Catalog.BaseURL,
				Timeout: time.Duration(cfg.Catalog.TimeoutSeconds) * time.Second,
			})
			if err != nil {
				return err
			}
			found, missing, err := client.Lookup(cmd.Context(), termCode, codes...)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, map[string]any{
					"term":    termCode,
					"courses": found,
					"missing": missing,
				})
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(found))
			for _, raw := range codes {
				code := textutil.CourseCode(raw)
				if description, ok := found[code]; ok {
					rows = append(rows, []string{code, description})
				}
			}
			if len(rows) > 0 {
				fmt.Fprint(out, renderTable([]column{{title: "Code"}, {title: "Description"}}, rows))
				fmt.Fprintln(out)
			}
			for _, code := range missing {
				fmt.Fprintf(out, "%s is not offered in term %s\n", code, termCode)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&term, "term", "", "OpenData term code (default: current term)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
