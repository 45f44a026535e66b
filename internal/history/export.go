// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// ExportYAML writes the runs matching opts to w as a YAML sequence.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, opts QueryOptions) error {
	records, err := s.exportRecords(ctx, opts)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes the runs matching opts to w as an indented JSON array.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer, opts QueryOptions) error {
	records, err := s.exportRecords(ctx, opts)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// exportRecords lists runs for export. The default limit does not apply.
func (s *Store) exportRecords(ctx context.Context, opts QueryOptions) ([]exportRecord, error) {
	if opts.Limit == 0 {
		opts.Limit = -1
	}
	records, err := s.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	out := make([]exportRecord, len(records))
	for i, r := range records {
		out[i] = exportRecord{
			ID:          r.ID,
			Source:      r.Source,
			Destination: r.Destination,
			Rule:        string(r.Rule),
			Zoom:        r.Zoom,
			SourcePages: r.SourcePages,
			OutputPages: r.OutputPages,
			Status:      string(r.Status),
			Error:       r.Error,
			StartedAt:   r.StartedAt.Format("2006-01-02T15:04:05.000Z07:00"),
			DurationMS:  r.Duration.Milliseconds(),
		}
	}
	return out, nil
}

// exportRecord is the stable export shape of a run. Durations are written
// as milliseconds rather than Go duration strings.
type exportRecord struct {
	ID          string  `json:"id" yaml:"id"`
	Source      string  `json:"source" yaml:"source"`
	Destination string  `json:"destination" yaml:"destination"`
	Rule        string  `json:"rule" yaml:"rule"`
	Zoom        float64 `json:"zoom" yaml:"zoom"`
	SourcePages int     `json:"source_pages" yaml:"source_pages"`
	OutputPages int     `json:"output_pages" yaml:"output_pages"`
	Status      string  `json:"status" yaml:"status"`
	Error       string  `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt   string  `json:"started_at" yaml:"started_at"`
	DurationMS  int64   `json:"duration_ms" yaml:"duration_ms"`
}
