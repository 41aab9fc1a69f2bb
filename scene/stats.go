package scene

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
)

// Build a tabular representation of the scene spheres and the uniform
// space they occupy when padded to capacity slots.
func (s *Scene) Stats(capacity int) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Sphere", "Center", "Radius", "Bounds"})
	for index, sphere := range s.spheres {
		hi, lo := sphere.Bounds()
		table.Append([]string{
			fmt.Sprintf("%d", index),
			fmtVec3(sphere.Center),
			fmt.Sprintf("%3.3f", sphere.Radius),
			fmt.Sprintf("%s - %s", fmtVec3(lo), fmtVec3(hi)),
		})
	}

	hi, lo := s.Bounds()
	table.SetFooter([]string{
		fmt.Sprintf("%d / %d", len(s.spheres), capacity),
		fmtSize(len(s.spheres) * SphereStride),
		fmtSize(capacity * SphereStride),
		fmt.Sprintf("%s - %s", fmtVec3(lo), fmtVec3(hi)),
	})

	table.Render()
	return buf.String()
}

func fmtVec3(v [3]float32) string {
	return fmt.Sprintf("(%3.3f, %3.3f, %3.3f)", v[0], v[1], v[2])
}

// Format a byte count with the appropriate byte/kb/mb unit.
func fmtSize(totalBytes int) string {
	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", totalBytes)
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", float32(totalBytes)/1e3)
	}
	return fmt.Sprintf("%3.1f mb", float32(totalBytes)/1e6)
}
