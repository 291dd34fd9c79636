package grid_test

import (
	"fmt"

	"golang.org/x/image/font/basicfont"

	"github.com/matzehuels/photogrid/pkg/grid"
)

func ExampleCompose() {
	cells := []grid.Cell{
		{Caption: "a cat"},
		{Caption: "a dog"},
		{Caption: "a very long caption that will not fit on two lines at all"},
	}

	img, err := grid.Compose(cells, grid.Layout{
		Columns:       2,
		CellWidth:     300,
		CellHeight:    300,
		CaptionHeight: 70,
		Background:    grid.White,
	}, grid.WithFace(basicfont.Face7x13))
	if err != nil {
		panic(err)
	}

	fmt.Println(img.Bounds().Dx(), "x", img.Bounds().Dy())
	// Output: 600 x 740
}

func ExampleCaptionLines() {
	for _, line := range grid.CaptionLines("  a very long caption that will not fit on two lines at all ") {
		fmt.Println(line)
	}
	// Output:
	// a very long caption that
	// will not fit on two lines
}
