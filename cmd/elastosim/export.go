package main

import (
	"context"
	"fmt"
	"os"

	"github.com/san-kum/elastosim/internal/export"
	"github.com/san-kum/elastosim/internal/relax"
	"github.com/san-kum/elastosim/internal/storage"
	"github.com/spf13/cobra"
)

func loadRun(id string) (*storage.RunMetadata, *relax.Result, error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	defer st.Close()

	ctx := context.Background()
	meta, err := st.Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	res, err := st.LoadResult(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return meta, res, nil
}

func outputPath(def string) string {
	if outPath != "" {
		return outPath
	}
	return def
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, res, err := loadRun(args[0])
	if err != nil {
		return err
	}

	path := outputPath(meta.ID + ".json")
	if err := export.ExportJSON(path, meta.Name, res, meta.Poisson); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, res, err := loadRun(args[0])
	if err != nil {
		return err
	}

	path := outputPath(args[0] + ".csv")
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := storage.WriteFieldsCSV(file, res); err != nil {
		return err
	}
	fmt.Printf("exported %d points to %s\n", res.Geometry.N*res.Geometry.N, path)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, res, err := loadRun(args[0])
	if err != nil {
		return err
	}

	var svg string
	switch field {
	case "lattice":
		svg = export.DisplacedSVG(res, 600, exaggerate)
	case "trace":
		svg = export.TraceSVG(res.Trace, 800, 300, "#4a90d9")
	default:
		f, err := pickField(res, field, meta.Poisson)
		if err != nil {
			return err
		}
		svg = export.HeatmapSVG(f, max(600/meta.GridSize, 4), fmt.Sprintf("%s: %s", meta.Name, field))
	}

	path := outputPath(fmt.Sprintf("%s_%s.svg", meta.ID, field))
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}
