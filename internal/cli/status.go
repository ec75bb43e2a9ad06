package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// StatusConfig is the configuration part of a status report.
type StatusConfig struct {
	SplitMode        string   `json:"split_mode,omitempty"`
	DatabasePath     string   `json:"database_path,omitempty"`
	BleveIndexPath   string   `json:"bleve_index_path,omitempty"`
	LinkExtensions   []string `json:"link_extensions,omitempty"`
	WatchDirectories []string `json:"watch_directories,omitempty"`
}

// Status is the shape of GET /api/v1/status.
type Status struct {
	Documents      int64         `json:"documents"`
	Passages       int64         `json:"passages"`
	Links          uint64        `json:"links"`
	CorpusSize     int           `json:"corpus_size"`
	DiskUsageBytes *int64        `json:"disk_usage_bytes,omitempty"`
	Config         *StatusConfig `json:"config,omitempty"`
}

// WriteStatus writes status to w as text or JSON.
func WriteStatus(w io.Writer, status *Status, format SearchOutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}
	fmt.Fprintf(w, "documents:          %d   # count of indexed documents\n", status.Documents)
	fmt.Fprintf(w, "passages:           %d   # count of searchable passages\n", status.Passages)
	fmt.Fprintf(w, "links:              %d   # documents in the filename index\n", status.Links)
	if status.DiskUsageBytes != nil {
		fmt.Fprintf(w, "disk_usage_bytes:   %d   # database + link index on disk\n", *status.DiskUsageBytes)
	}
	if c := status.Config; c != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# configuration")
		if c.SplitMode != "" {
			fmt.Fprintf(w, "split_mode:         %s\n", c.SplitMode)
		}
		if c.DatabasePath != "" {
			fmt.Fprintf(w, "database_path:      %s\n", c.DatabasePath)
		}
		if c.BleveIndexPath != "" {
			fmt.Fprintf(w, "bleve_index_path:   %s\n", c.BleveIndexPath)
		}
		if len(c.LinkExtensions) > 0 {
			fmt.Fprintf(w, "link_extensions:    %v\n", c.LinkExtensions)
		}
		for _, d := range c.WatchDirectories {
			fmt.Fprintf(w, "watch:              %s\n", d)
		}
	}
	return nil
}
