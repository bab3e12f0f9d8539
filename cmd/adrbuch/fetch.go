package main

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/adrbuch/internal/scan"
)

var fetchVolumes string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download page scans for divider detection and crops",
	Long: `Fetch downloads the scan of every content page of the selected volumes
into the scan cache. Pages already cached are skipped, so an interrupted
fetch can simply be restarted.

Examples:
  adrbuch fetch --volumes 1880-01-01
  PROCESS_VOLUMES=1944-12-15 adrbuch fetch`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp()
		if err != nil {
			return err
		}
		cat, err := a.loadCatalog()
		if err != nil {
			return err
		}
		volumes, err := a.selectVolumes(cat, fetchVolumes)
		if err != nil {
			return err
		}

		fetcher := scan.NewFetcher(scan.NewCache(a.paths.Scans), scan.FetcherConfig{
			BaseURL:  a.cfg.Fetch.BaseURL,
			Client:   &http.Client{Timeout: a.cfg.Fetch.Timeout},
			Attempts: a.cfg.Fetch.Attempts,
			Delay:    a.cfg.Fetch.Delay,
			Logger:   a.logger,
		})

		type result struct {
			Downloaded int      `json:"downloaded" yaml:"downloaded"`
			Cached     int      `json:"cached" yaml:"cached"`
			Failed     []string `json:"failed,omitempty" yaml:"failed,omitempty"`
		}
		var res result
		for _, vol := range volumes {
			logger := a.logger.With("volume", vol.Date)
			for _, p := range vol.Pages {
				if cat.IsAdPage(p.PageID) {
					continue
				}
				downloaded, err := fetcher.Fetch(ctx, p.PageID)
				switch {
				case ctx.Err() != nil:
					_ = a.output(res)
					return ctx.Err()
				case err != nil:
					logger.Warn("fetch failed", "page", p.PageID, "error", err)
					res.Failed = append(res.Failed, err.Error())
				case downloaded:
					res.Downloaded++
				default:
					res.Cached++
				}
			}
		}
		return a.output(res)
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchVolumes, "volumes", "", "comma-separated volume dates (default: $PROCESS_VOLUMES)")
	rootCmd.AddCommand(fetchCmd)
}
