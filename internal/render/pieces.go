package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/park285/duelchess/internal/rules"
)

// Piece outlines on a 45x45 view box.
var piecePaths = map[rules.Kind]string{
	rules.Pawn: "M22.5 8 C19.5 8 18 10.5 18 12.5 C18 14 18.7 15.2 19.7 16 C17.5 17.3 16.5 19.5 16.5 21.5 " +
		"C16.5 23.5 17.5 25 18.8 26 C15.5 27.5 12.5 31 12 36 L33 36 C32.5 31 29.5 27.5 26.2 26 " +
		"C27.5 25 28.5 23.5 28.5 21.5 C28.5 19.5 27.5 17.3 25.3 16 C26.3 15.2 27 14 27 12.5 C27 10.5 25.5 8 22.5 8 Z",
	rules.Knight: "M12 38 L33 38 C33 30 31 22 27 15 L27 10 L24 12 L22 9 L20 12 C15 14 10 20 9 25 " +
		"L12 28 L15 26 L18 24 C17 28 14 31 12 34 Z",
	rules.Bishop: "M22.5 6 C21 6 20 7 20 8.5 C20 9.5 20.5 10.2 21.2 10.6 C17 13 14 18 15 23 " +
		"C15.6 26 17.5 28 19 29 L15 33 L15 36 L30 36 L30 33 L26 29 C27.5 28 29.4 26 30 23 " +
		"C31 18 28 13 23.8 10.6 C24.5 10.2 25 9.5 25 8.5 C25 7 24 6 22.5 6 Z",
	rules.Rook: "M9 39 L36 39 L36 36 L33 36 L31 17 L34 14 L34 9 L30 9 L30 11 L26 11 L26 9 L19 9 " +
		"L19 11 L15 11 L15 9 L11 9 L11 14 L14 17 L12 36 L9 36 Z",
	rules.Queen: "M9 26 L6 12 L13 21 L14 9 L19 20 L22.5 7 L26 20 L31 9 L32 21 L39 12 L36 26 " +
		"C36 29 34 31 34 31 L35 36 L10 36 L11 31 C11 31 9 29 9 26 Z",
	rules.King: "M21 5 L24 5 L24 8 L27 8 L27 11 L24 11 L24 15 C30 15 37 18 36 25 C35.5 29 33 31 32 32 " +
		"L33 37 L12 37 L13 32 C12 31 9.5 29 9 25 C8 18 15 15 21 15 L21 11 L18 11 L18 8 L21 8 Z",
}

func pieceSVG(p rules.Piece) string {
	fill, stroke := "#ffffff", "#000000"
	if p.Color == rules.Black {
		fill, stroke = "#000000", "#ffffff"
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 45 45" width="45" height="45">`+
		`<path d="%s" fill="%s" stroke="%s" stroke-width="1.5" stroke-linejoin="round"/></svg>`,
		piecePaths[p.Kind], fill, stroke)
}

type pieceCacheKey struct {
	piece rules.Piece
	size  int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

func renderPieceImage(piece rules.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{piece: piece, size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	if _, ok := piecePaths[piece.Kind]; !ok {
		return nil, fmt.Errorf("no outline for %s", piece)
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(pieceSVG(piece)))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()
	return img, nil
}
