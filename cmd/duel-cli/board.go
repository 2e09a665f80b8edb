package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/park285/duelchess/internal/rules"
)

var (
	lightSq   = color.New(color.BgHiYellow)
	darkSq    = color.New(color.BgYellow)
	markSq    = color.New(color.BgHiGreen)
	whiteMan  = color.New(color.FgHiWhite, color.Bold)
	blackMan  = color.New(color.FgBlack, color.Bold)
	coordText = color.New(color.FgCyan)
)

// drawBoard prints ranks 8..1 (or 1..8 when flipped); marked squares get a
// highlight background.
func drawBoard(w io.Writer, b rules.Board, flip bool, marked ...rules.Square) {
	isMarked := func(sq rules.Square) bool {
		for _, m := range marked {
			if m == sq {
				return true
			}
		}
		return false
	}
	files := "abcdefgh"
	for row := 0; row < 8; row++ {
		rank := 7 - row
		if flip {
			rank = row
		}
		var sb strings.Builder
		sb.WriteString(coordText.Sprintf("%d ", rank+1))
		for col := 0; col < 8; col++ {
			file := col
			if flip {
				file = 7 - col
			}
			sq, _ := rules.SquareAt(file, rank)
			bg := darkSq
			if (file+rank)%2 == 1 {
				bg = lightSq
			}
			if isMarked(sq) {
				bg = markSq
			}
			sb.WriteString(bg.Sprint(" " + glyph(b[sq]) + " "))
		}
		fmt.Fprintln(w, sb.String())
	}
	var foot strings.Builder
	foot.WriteString("  ")
	for col := 0; col < 8; col++ {
		f := col
		if flip {
			f = 7 - col
		}
		foot.WriteString(" " + string(files[f]) + " ")
	}
	fmt.Fprintln(w, coordText.Sprint(foot.String()))
}

func glyph(p rules.Piece) string {
	if p.Empty() {
		return " "
	}
	if p.Color == rules.White {
		return whiteMan.Sprint(p.Letter())
	}
	return blackMan.Sprint(p.Letter())
}
