package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/adrbuch/internal/scan"
	"github.com/jackzampolin/adrbuch/internal/types"
)

var cropPad int

var cropCmd = &cobra.Command{
	Use:   "crop <date> <page-id>",
	Short: "Cut each entry of a page out of its scan",
	Long: `Crop reads the box lines of one page from <proofread>/<date>.txt and
saves one PNG per entry from the cached page scan into the crops directory,
for checking entries against the print. Run "adrbuch fetch" first.

Example:
  adrbuch crop 1944-12-15 29210065`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		date := args[0]
		pageID, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid page id %q: %w", args[1], err)
		}

		pages, err := parseVolumeFile(filepath.Join(a.paths.Proofread, date+".txt"))
		if err != nil {
			return err
		}
		var boxes []types.Box
		found := false
		for _, p := range pages {
			if p.Ref.PageID != pageID {
				continue
			}
			found = true
			for _, e := range p.Entries {
				if len(e.Boxes) > 0 {
					boxes = append(boxes, e.Bounds())
				}
			}
		}
		if !found {
			return fmt.Errorf("page %d not in volume %s", pageID, date)
		}
		if len(boxes) == 0 {
			return fmt.Errorf("page %d has no box lines; convert with boxes enabled", pageID)
		}

		images := scan.NewCache(a.paths.Scans)
		img, err := images.Load(pageID)
		if err != nil {
			return err
		}
		written, err := scan.CropEntries(img, pageID, boxes, cropPad, a.paths.Crops)
		if err != nil {
			return err
		}
		a.logger.Info("cropped entries", "page", pageID, "count", len(written))
		return a.output(written)
	},
}

func init() {
	cropCmd.Flags().IntVar(&cropPad, "pad", 4, "pixels added around each entry")
	rootCmd.AddCommand(cropCmd)
}
