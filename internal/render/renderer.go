// Package render draws a board position as PNG.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/park285/duelchess/internal/rules"
)

type Highlight struct {
	From rules.Square
	To   rules.Square
}

type Options struct {
	// Flip puts Black at the bottom.
	Flip      bool
	Highlight *Highlight
	// Check marks the king of this colour.
	Check   *rules.Color
	Targets []rules.Square
	Title   string
}

type Renderer struct {
	squareSize int
}

func New(squareSize int) *Renderer {
	if squareSize < 16 {
		squareSize = 64
	}
	return &Renderer{squareSize: squareSize}
}

var (
	lightSquare         = color.RGBA{233, 207, 163, 255}
	darkSquare          = color.RGBA{187, 136, 96, 255}
	moveHighlightFill   = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	checkFill           = color.NRGBA{R: 230, G: 60, B: 60, A: 150}
	targetDot           = color.NRGBA{R: 20, G: 85, B: 30, A: 140}
	backgroundColor     = color.RGBA{28, 31, 46, 255}
	titleTextColor      = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	coordinateTextColor = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
)

const (
	margin      = 24
	titleHeight = 28
)

// PNG renders the board and encodes it.
func (r *Renderer) PNG(ctx context.Context, board rules.Board, opts Options) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	img, err := r.Image(board, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Image renders the board to an RGBA canvas.
func (r *Renderer) Image(board rules.Board, opts Options) (*image.RGBA, error) {
	size := r.squareSize
	boardSize := size * 8
	top := margin
	if opts.Title != "" {
		top += titleHeight
	}
	origin := image.Point{X: margin, Y: top}
	img := image.NewRGBA(image.Rect(0, 0, boardSize+2*margin, boardSize+top+margin))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	for sq := rules.Square(0); sq < 64; sq++ {
		clr := darkSquare
		if (sq.File()+sq.Rank())%2 == 1 {
			clr = lightSquare
		}
		imagedraw.Draw(img, r.squareRect(sq, origin, opts.Flip), image.NewUniform(clr), image.Point{}, imagedraw.Src)
	}
	if h := opts.Highlight; h != nil {
		for _, sq := range []rules.Square{h.From, h.To} {
			if sq.Valid() {
				imagedraw.Draw(img, r.squareRect(sq, origin, opts.Flip), image.NewUniform(moveHighlightFill), image.Point{}, imagedraw.Over)
			}
		}
	}
	if opts.Check != nil {
		if ksq, ok := board.KingSquare(*opts.Check); ok {
			imagedraw.Draw(img, r.squareRect(ksq, origin, opts.Flip), image.NewUniform(checkFill), image.Point{}, imagedraw.Over)
		}
	}
	for sq := rules.Square(0); sq < 64; sq++ {
		p, ok := board.PieceAt(sq)
		if !ok || p.Empty() {
			continue
		}
		pimg, err := renderPieceImage(p, size)
		if err != nil {
			return nil, err
		}
		imagedraw.Draw(img, r.squareRect(sq, origin, opts.Flip), pimg, image.Point{}, imagedraw.Over)
	}
	r.drawTargets(img, opts.Targets, origin, opts.Flip)
	r.drawCoordinates(img, origin, opts.Flip)
	if opts.Title != "" {
		drawer := &font.Drawer{Dst: img, Src: image.NewUniform(titleTextColor), Face: basicfont.Face7x13}
		drawCenteredText(drawer, opts.Title, img.Bounds().Dx()/2, margin+13)
	}
	return img, nil
}

func (r *Renderer) squareRect(sq rules.Square, origin image.Point, flip bool) image.Rectangle {
	col, row := sq.File(), 7-sq.Rank()
	if flip {
		col, row = 7-sq.File(), sq.Rank()
	}
	x := origin.X + col*r.squareSize
	y := origin.Y + row*r.squareSize
	return image.Rect(x, y, x+r.squareSize, y+r.squareSize)
}

func (r *Renderer) drawTargets(img *image.RGBA, targets []rules.Square, origin image.Point, flip bool) {
	if len(targets) == 0 {
		return
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	filler := rasterx.NewFiller(w, h, scanner)
	filler.SetColor(targetDot)
	radius := float64(r.squareSize) / 7
	for _, sq := range targets {
		if !sq.Valid() {
			continue
		}
		rect := r.squareRect(sq, origin, flip)
		cx := float64(rect.Min.X) + float64(r.squareSize)/2
		cy := float64(rect.Min.Y) + float64(r.squareSize)/2
		rasterx.AddCircle(cx, cy, radius, filler)
	}
	filler.Draw()
}

func (r *Renderer) drawCoordinates(img *image.RGBA, origin image.Point, flip bool) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: img, Src: image.NewUniform(coordinateTextColor), Face: face}
	ascent := face.Metrics().Ascent.Ceil()
	boardEnd := origin.Y + 8*r.squareSize
	for i := 0; i < 8; i++ {
		file, rank := i, 7-i
		if flip {
			file, rank = 7-i, i
		}
		center := origin.Y + i*r.squareSize + r.squareSize/2
		drawCenteredText(drawer, string(rune('1'+rank)), origin.X-margin/2, center+ascent/2)
		fileCenter := origin.X + i*r.squareSize + r.squareSize/2
		drawCenteredText(drawer, string(rune('a'+file)), fileCenter, boardEnd+ascent+2)
	}
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Ceil()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}
