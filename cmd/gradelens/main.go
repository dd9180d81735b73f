package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grade-lens/gradelens/internal/gradeconfig"
	"github.com/grade-lens/gradelens/internal/templates"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gradelens",
		Short: "Grade-policy engine for scraped gradebook data",
	}

	rootCmd.AddCommand(calcCmd())
	rootCmd.AddCommand(templatesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// calcInput is the offline dump format: one course's assignments plus,
// optionally, raw assignments of linked courses.
type calcInput struct {
	Course            string                              `json:"course"`
	Assignments       []gradeconfig.Assignment            `json:"assignments"`
	LinkedAssignments map[string][]gradeconfig.Assignment `json:"linked_assignments,omitempty"`
	Link              *gradeconfig.CourseLink             `json:"link,omitempty"`
}

func calcCmd() *cobra.Command {
	var configPath, templateName string

	cmd := &cobra.Command{
		Use:   "calc [dump.json]",
		Short: "Compute grades for an assignment dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var in calcInput
			if err := json.Unmarshal(data, &in); err != nil {
				return fmt.Errorf("parse dump: %w", err)
			}
			if in.Course == "" {
				return fmt.Errorf("dump is missing a course name")
			}

			ctx := context.Background()
			svc := gradeconfig.NewService(gradeconfig.NewInMemoryStore())

			cfg, err := resolveConfig(configPath, templateName)
			if err != nil {
				return err
			}
			if cfg != nil {
				if err := svc.SaveCourseConfig(ctx, in.Course, *cfg, false); err != nil {
					return err
				}
			}
			if in.Link != nil {
				if err := svc.LinkCourses(ctx, *in.Link); err != nil {
					return err
				}
			}

			report, err := svc.CalculateGrades(ctx, in.Course, in.Assignments, in.LinkedAssignments)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "course config JSON file")
	cmd.Flags().StringVar(&templateName, "template", "", "builtin template name to use as the config")
	return cmd
}

func resolveConfig(configPath, templateName string) (*gradeconfig.CourseConfig, error) {
	switch {
	case configPath != "" && templateName != "":
		return nil, fmt.Errorf("--config and --template are mutually exclusive")
	case configPath != "":
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}
		var cfg gradeconfig.CourseConfig
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		return &cfg, nil
	case templateName != "":
		tmpls, err := templates.Builtin()
		if err != nil {
			return nil, err
		}
		for _, t := range tmpls {
			if t.Name == templateName {
				cfg := t.Apply()
				return &cfg, nil
			}
		}
		return nil, fmt.Errorf("unknown template %q", templateName)
	default:
		return nil, nil // default config: simple average
	}
}

func templatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List builtin grade-config templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpls, err := templates.Builtin()
			if err != nil {
				return err
			}
			for _, t := range tmpls {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", t.Name, t.Description)
			}
			return nil
		},
	}
}
