package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/adrbuch/internal/plaintext"
)

var checkCmd = &cobra.Command{
	Use:   "check [file...]",
	Short: "Validate the format of proofread volume files",
	Long: `Check parses volume files and reports format errors (unknown # lines,
box lines without an entry, entries before the first page marker) with
file and line number. It exits non-zero if any file is invalid.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		files, err := volumeFiles(a.paths.Proofread, args)
		if err != nil {
			return err
		}

		type result struct {
			File    string `json:"file" yaml:"file"`
			Pages   int    `json:"pages" yaml:"pages"`
			Entries int    `json:"entries" yaml:"entries"`
			Error   string `json:"error,omitempty" yaml:"error,omitempty"`
		}
		var results []result
		failed := 0
		for _, f := range files {
			r := result{File: f}
			pages, err := parseVolumeFile(f)
			if err != nil {
				r.Error = err.Error()
				failed++
			}
			r.Pages = len(pages)
			for _, p := range pages {
				r.Entries += len(p.Entries)
			}
			results = append(results, r)
		}
		if err := a.output(results); err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files invalid", failed, len(files))
		}
		return nil
	},
}

func parseVolumeFile(path string) ([]plaintext.Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return plaintext.Parse(f, path)
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
