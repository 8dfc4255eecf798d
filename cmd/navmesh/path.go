package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gorustyt/gonavmesh/common"
	"github.com/gorustyt/gonavmesh/debug_utils"
	"github.com/spf13/cobra"
)

func parseVec3(s string) (common.Vec3, error) {
	var v common.Vec3
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return v, fmt.Errorf("point %q: want x,y,z", s)
	}
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return v, fmt.Errorf("point %q: %w", s, err)
		}
		v[i] = float32(f)
	}
	return v, nil
}

func PathCmd() *cobra.Command {
	var startArg, endArg, pngFile string
	var size int
	c := &cobra.Command{
		Use:   "path",
		Short: "find a path between two points",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseVec3(startArg)
			if err != nil {
				return err
			}
			end, err := parseVec3(endArg)
			if err != nil {
				return err
			}
			m, err := setup(cmd)
			if err != nil {
				return err
			}
			path := m.FindPath(start, end)
			out := cmd.OutOrStdout()
			if !path.Found() {
				fmt.Fprintln(out, "no path")
				return nil
			}
			for _, p := range path.Points {
				fmt.Fprintf(out, "%.3f %.3f %.3f\n", p[0], p[1], p[2])
			}
			fmt.Fprintf(out, "length %.3f\n", path.Length())

			if pngFile != "" {
				lines := debug_utils.NewDuLineList()
				lines.Lines = append(lines.Lines, m.DebugLines()...)
				debug_utils.DuDebugDrawPath(lines, path, debug_utils.DuRGBA(255, 0, 0, 255), 3)
				bmin, bmax, _ := m.Bounds()
				return writePNG(pngFile, lines.Lines, bmin, bmax, size)
			}
			return nil
		},
	}
	c.Flags().StringVar(&startArg, "start", "", "start point x,y,z")
	c.Flags().StringVar(&endArg, "end", "", "end point x,y,z")
	c.Flags().StringVar(&pngFile, "png", "", "write a top down image with the path")
	c.Flags().IntVar(&size, "size", 1024, "image size in pixels")
	_ = c.MarkFlagRequired("start")
	_ = c.MarkFlagRequired("end")
	return c
}
