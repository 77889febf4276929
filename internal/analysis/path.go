package analysis

import "strings"

type Point struct{ X, Y float64 }

// PathToASCII draws points on a width×height canvas spanning [-extent,
// extent] on both axes, with crosshairs through the origin. Points outside
// the extent are dropped.
func PathToASCII(points []Point, extent float64, width, height int) string {
	if width < 2 || height < 2 || extent <= 0 {
		return ""
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	midCol, midRow := (width-1)/2, (height-1)/2
	for row := 0; row < height; row++ {
		canvas[row][midCol] = '│'
	}
	for col := 0; col < width; col++ {
		canvas[midRow][col] = '─'
	}
	canvas[midRow][midCol] = '┼'

	for i, p := range points {
		col, row, ok := cell(p, extent, width, height)
		if !ok {
			continue
		}
		mark := '•'
		switch i {
		case 0:
			mark = 'S'
		case len(points) - 1:
			mark = 'E'
		}
		canvas[row][col] = mark
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

func cell(p Point, extent float64, width, height int) (col, row int, ok bool) {
	if p.X < -extent || p.X > extent || p.Y < -extent || p.Y > extent {
		return 0, 0, false
	}
	col = int((p.X + extent) / (2 * extent) * float64(width-1))
	row = height - 1 - int((p.Y+extent)/(2*extent)*float64(height-1))
	return col, row, true
}
