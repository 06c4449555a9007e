// Package zigzag holds the fixed spatial-to-scan permutation of an 8×8 block.
package zigzag

import "github.com/AnyUserName/jfifcore-cli/internal/block"

// scanPos[row][col] is the zig-zag scan position of a spatial coefficient.
var scanPos = [block.Size][block.Size]uint8{
	{0, 1, 5, 6, 14, 15, 27, 28},
	{2, 4, 7, 13, 16, 26, 29, 42},
	{3, 8, 12, 17, 25, 30, 41, 43},
	{9, 11, 18, 24, 31, 40, 44, 53},
	{10, 19, 23, 32, 39, 45, 52, 54},
	{20, 22, 33, 38, 46, 51, 55, 60},
	{21, 34, 37, 47, 50, 56, 59, 61},
	{35, 36, 48, 49, 57, 58, 62, 63},
}

// natural maps a scan position back to a row-major spatial index.
var natural [block.Len]uint8

func init() {
	for row := 0; row < block.Size; row++ {
		for col := 0; col < block.Size; col++ {
			natural[scanPos[row][col]] = uint8(row*block.Size + col)
		}
	}
}

// ScanPos returns the scan position of spatial coefficient (row, col).
func ScanPos(row, col int) int { return int(scanPos[row][col]) }

// Natural returns the row-major spatial index of scan position k.
func Natural(k int) int { return int(natural[k]) }

// Reorder permutes spatial coefficients into scan order:
// out[ScanPos(row, col)] = in[row*8+col].
func Reorder(in *block.Ints) *block.Scan {
	var out block.Scan
	for i, c := range in {
		out[scanPos[i/block.Size][i%block.Size]] = c
	}
	return &out
}

// Inverse restores spatial order from a scan-ordered sequence.
func Inverse(in *block.Scan) *block.Ints {
	var out block.Ints
	for k, c := range in {
		out[natural[k]] = c
	}
	return &out
}

// ReorderReal is Reorder for real-valued coefficients.
func ReorderReal(in *block.Coeffs) [block.Len]float64 {
	var out [block.Len]float64
	for i, c := range in {
		out[scanPos[i/block.Size][i%block.Size]] = c
	}
	return out
}
