package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/adrbuch/internal/sanitize"
)

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize [file...]",
	Short: "Re-apply replacement rules to proofread volume files",
	Long: `Sanitize rewrites volume files in place with the current replacement
and blackhole tables. Metadata lines (# Date:, # Box:) are left alone.
Without arguments every *.txt file in the proofread directory is processed.

Examples:
  adrbuch sanitize
  adrbuch sanitize proofread/1880-01-01.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		files, err := volumeFiles(a.paths.Proofread, args)
		if err != nil {
			return err
		}

		san, err := a.sanitizer()
		if err != nil {
			return err
		}

		type result struct {
			File               string `json:"file" yaml:"file"`
			sanitize.FileStats `yaml:",inline"`
		}
		var results []result
		for _, f := range files {
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			stats, err := san.SanitizeFile(f)
			if err != nil {
				return err
			}
			a.logger.Info("sanitized", "file", f, "changed", stats.Changed, "dropped", stats.Dropped)
			results = append(results, result{File: f, FileStats: stats})
		}
		return a.output(results)
	},
}

// volumeFiles returns args, or the volume files in dir when args is empty.
func volumeFiles(dir string, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no volume files in %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

func init() {
	rootCmd.AddCommand(sanitizeCmd)
}
