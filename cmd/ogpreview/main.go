// Command ogpreview prints the preview metadata of article pages as JSON.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"news-reader/internal/preview"
)

// Response represents the JSON output structure
type Response struct {
	Success bool           `json:"success"`
	Data    []preview.Meta `json:"data"`
	Count   int            `json:"count"`
	Errors  []string       `json:"errors,omitempty"`
}

// errIncomplete is returned after printing when some pages had no preview.
var errIncomplete = errors.New("some pages could not be previewed")

func newCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:           "ogpreview URL...",
		Short:         "Print the preview metadata of article pages as JSON",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			scraper := preview.NewScraper(timeout)
			response := Response{Success: true, Data: []preview.Meta{}}

			for _, url := range args {
				meta, err := scraper.Fetch(cmd.Context(), url)
				if err != nil {
					response.Success = false
					response.Errors = append(response.Errors, fmt.Sprintf("%s: %v", url, err))
					continue
				}
				response.Data = append(response.Data, meta)
				response.Count++
			}

			jsonData, err := json.MarshalIndent(response, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
			if !response.Success {
				return errIncomplete
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "per-page timeout")

	return cmd
}

func main() {
	if err := newCommand().Execute(); err != nil {
		if !errors.Is(err, errIncomplete) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
