package main

import (
	"fmt"
	"image/png"
	"os"

	"github.com/gorustyt/gonavmesh/debug_utils"
	"github.com/spf13/cobra"
)

func BuildCmd() *cobra.Command {
	var pngFile, dumpFile string
	var size int
	c := &cobra.Command{
		Use:   "build",
		Short: "build the navmesh and report its size",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := setup(cmd)
			if err != nil {
				return err
			}
			s := m.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "tiles %d polys %d layers %d\n", s.Tiles, s.Polys, s.Layers)

			if dumpFile != "" {
				obj, err := m.DumpObj()
				if err != nil {
					return err
				}
				if err := os.WriteFile(dumpFile, obj, 0o644); err != nil {
					return err
				}
			}
			if pngFile != "" {
				bmin, bmax, _ := m.Bounds()
				return writePNG(pngFile, m.DebugLines(), bmin, bmax, size)
			}
			return nil
		},
	}
	c.Flags().StringVar(&pngFile, "png", "", "write a top down image of the polygons")
	c.Flags().IntVar(&size, "size", 1024, "image size in pixels")
	c.Flags().StringVar(&dumpFile, "dump", "", "write the polygons as OBJ")
	return c
}

func writePNG(name string, lines []debug_utils.DuLine, bmin, bmax [3]float32, size int) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(f, debug_utils.RenderTopDown(lines, bmin, bmax, size)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
