package dataset

import (
	"math/rand"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// GlyphSize is the side length of a synthetic digit; samples have
// GlyphSize*GlyphSize features.
const GlyphSize = 8

// glyphs are 8x8 digit bitmaps, rows separated by '|'.
var glyphs = [10]string{
	"..####..|.##..##.|.##..##.|.##..##.|.##..##.|.##..##.|.##..##.|..####..",
	"...##...|..###...|.####...|...##...|...##...|...##...|...##...|.######.",
	"..####..|.##..##.|.....##.|....##..|...##...|..##....|.##.....|.######.",
	"..####..|.##..##.|.....##.|...###..|.....##.|.....##.|.##..##.|..####..",
	".....##.|....###.|...####.|..##.##.|.##..##.|.#######|.....##.|.....##.",
	".######.|.##.....|.##.....|.#####..|.....##.|.....##.|.##..##.|..####..",
	"..####..|.##.....|.##.....|.#####..|.##..##.|.##..##.|.##..##.|..####..",
	".######.|.....##.|....##..|....##..|...##...|...##...|..##....|..##....",
	"..####..|.##..##.|.##..##.|..####..|.##..##.|.##..##.|.##..##.|..####..",
	"..####..|.##..##.|.##..##.|.##..##.|..#####.|.....##.|.....##.|..####..",
}

// SyntheticDigits generates n noisy 8x8 digit images in the style of a
// 16-level grayscale scan, cycling through the classes 0-9. Each pixel is
// flipped with probability 0.05; ink pixels get intensities in [12, 16),
// background pixels in [0, 3). Values are not normalized.
func SyntheticDigits(n int, rng *rand.Rand) *Dataset {
	x := mat.NewDense(n, GlyphSize*GlyphSize, nil)
	labels := make([]int, n)

	for i := 0; i < n; i++ {
		digit := i % len(glyphs)
		labels[i] = digit

		pixels := strings.ReplaceAll(glyphs[digit], "|", "")
		for j, c := range pixels {
			ink := c == '#'
			if rng.Float64() < 0.05 {
				ink = !ink
			}
			if ink {
				x.Set(i, j, 12+4*rng.Float64())
			} else {
				x.Set(i, j, 3*rng.Float64())
			}
		}
	}

	return &Dataset{X: x, Labels: labels}
}
