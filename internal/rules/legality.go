package rules

// Reason explains why a move is rejected. Checks run in declaration order and
// the first failing one is reported.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonOffBoard
	ReasonSameSquare
	ReasonNoPiece
	ReasonWrongColor
	ReasonOwnPieceAtTarget
	ReasonBadPattern
	ReasonPathBlocked
	ReasonCastlingRights
	ReasonCastleInCheck
	ReasonCastleThroughCheck
	ReasonSelfCheck
)

var reasonNames = [...]string{
	ReasonNone:               "legal",
	ReasonOffBoard:           "square off board",
	ReasonSameSquare:         "origin equals destination",
	ReasonNoPiece:            "no piece on origin",
	ReasonWrongColor:         "piece belongs to the other side",
	ReasonOwnPieceAtTarget:   "destination holds own piece",
	ReasonBadPattern:         "piece cannot move that way",
	ReasonPathBlocked:        "path is blocked",
	ReasonCastlingRights:     "castling not available",
	ReasonCastleInCheck:      "cannot castle out of check",
	ReasonCastleThroughCheck: "king passes through an attacked square",
	ReasonSelfCheck:          "move leaves own king in check",
}

func (r Reason) String() string {
	if int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return "unknown"
}

// Move is an origin/destination pair.
type Move struct {
	From Square `json:"from"`
	To   Square `json:"to"`
}

func (m Move) String() string { return m.From.String() + "-" + m.To.String() }

// IsLegalMove reports whether the side to move may play from→to.
func IsLegalMove(pos Position, from, to Square) bool {
	return Classify(pos, from, to) == ReasonNone
}

// IsLegalCoords is IsLegalMove over algebraic text. Malformed coordinates are
// classified as ReasonOffBoard.
func IsLegalCoords(pos Position, from, to string) (bool, Reason) {
	f, err := ParseSquare(from)
	if err != nil {
		return false, ReasonOffBoard
	}
	t, err := ParseSquare(to)
	if err != nil {
		return false, ReasonOffBoard
	}
	r := Classify(pos, f, t)
	return r == ReasonNone, r
}

// Classify runs the full legality pipeline for the side to move.
func Classify(pos Position, from, to Square) Reason {
	if !from.Valid() || !to.Valid() {
		return ReasonOffBoard
	}
	if from == to {
		return ReasonSameSquare
	}
	b := &pos.Board
	piece := b[from]
	if piece.Empty() {
		return ReasonNoPiece
	}
	if piece.Color != pos.SideToMove {
		return ReasonWrongColor
	}
	if target := b[to]; !target.Empty() && target.Color == piece.Color {
		return ReasonOwnPieceAtTarget
	}
	if r := movePattern(pos, piece, from, to); r != ReasonNone {
		return r
	}
	next := transform(pos.Board, from, to, pos.EnPassant)
	if IsInCheck(next, piece.Color) {
		return ReasonSelfCheck
	}
	return ReasonNone
}

// LegalTargets lists every destination the piece on from may legally reach.
func LegalTargets(pos Position, from Square) []Square {
	var out []Square
	if !from.Valid() {
		return out
	}
	if p := pos.Board[from]; p.Empty() || p.Color != pos.SideToMove {
		return out
	}
	for to := Square(0); to < 64; to++ {
		if Classify(pos, from, to) == ReasonNone {
			out = append(out, to)
		}
	}
	return out
}

// LegalMoves lists every legal move for the side to move.
func LegalMoves(pos Position) []Move {
	var out []Move
	for from := Square(0); from < 64; from++ {
		p := pos.Board[from]
		if p.Empty() || p.Color != pos.SideToMove {
			continue
		}
		for to := Square(0); to < 64; to++ {
			if Classify(pos, from, to) == ReasonNone {
				out = append(out, Move{From: from, To: to})
			}
		}
	}
	return out
}

func movePattern(pos Position, piece Piece, from, to Square) Reason {
	b := &pos.Board
	df := to.File() - from.File()
	dr := to.Rank() - from.Rank()
	adf, adr := abs(df), abs(dr)

	switch piece.Kind {
	case Pawn:
		fw := piece.Color.forward()
		target := b[to]
		if df == 0 {
			if dr == fw {
				if !target.Empty() {
					return ReasonPathBlocked
				}
				return ReasonNone
			}
			if dr == 2*fw && from.Rank() == piece.Color.pawnRank() {
				mid, _ := from.offset(0, fw)
				if !b[mid].Empty() || !target.Empty() {
					return ReasonPathBlocked
				}
				return ReasonNone
			}
			return ReasonBadPattern
		}
		if adf == 1 && dr == fw {
			if !target.Empty() {
				return ReasonNone
			}
			if isEnPassant(b, piece, from, to, pos.EnPassant) {
				return ReasonNone
			}
		}
		return ReasonBadPattern

	case Knight:
		if (adf == 1 && adr == 2) || (adf == 2 && adr == 1) {
			return ReasonNone
		}
		return ReasonBadPattern

	case Bishop:
		if adf != adr {
			return ReasonBadPattern
		}
		return slide(b, from, to)

	case Rook:
		if df != 0 && dr != 0 {
			return ReasonBadPattern
		}
		return slide(b, from, to)

	case Queen:
		if df != 0 && dr != 0 && adf != adr {
			return ReasonBadPattern
		}
		return slide(b, from, to)

	case King:
		if adf <= 1 && adr <= 1 {
			return ReasonNone
		}
		if isCastleShape(piece, from, to) {
			return castleChecks(pos, piece.Color, from, to)
		}
		return ReasonBadPattern
	}
	return ReasonBadPattern
}

func slide(b *Board, from, to Square) Reason {
	if pathClear(b, from, to) {
		return ReasonNone
	}
	return ReasonPathBlocked
}

// pathClear reports whether every square strictly between from and to is
// empty. from and to must share a rank, file or diagonal.
func pathClear(b *Board, from, to Square) bool {
	sf := sign(to.File() - from.File())
	sr := sign(to.Rank() - from.Rank())
	cur, ok := from.offset(sf, sr)
	for ok && cur != to {
		if !b[cur].Empty() {
			return false
		}
		cur, ok = cur.offset(sf, sr)
	}
	return true
}

func isCastleShape(piece Piece, from, to Square) bool {
	if piece.Kind != King {
		return false
	}
	home := piece.Color.homeRank()
	return from.Rank() == home && to.Rank() == home && from.File() == 4 && abs(to.File()-from.File()) == 2
}

func castleChecks(pos Position, color Color, from, to Square) Reason {
	kingSide := to.File() > from.File()
	rights := pos.Castling.For(color)
	if (kingSide && !rights.KingSide) || (!kingSide && !rights.QueenSide) {
		return ReasonCastlingRights
	}
	rookSq, _ := castleRookSquares(color, kingSide)
	if pos.Board[rookSq] != (Piece{Kind: Rook, Color: color}) {
		return ReasonCastlingRights
	}
	if !pathClear(&pos.Board, from, rookSq) {
		return ReasonPathBlocked
	}
	if IsInCheck(pos.Board, color) {
		return ReasonCastleInCheck
	}
	dir := sign(to.File() - from.File())
	pass, _ := from.offset(dir, 0)
	enemy := color.Opponent()
	if Attacked(pos.Board, pass, enemy) || Attacked(pos.Board, to, enemy) {
		return ReasonCastleThroughCheck
	}
	return ReasonNone
}

// castleRookSquares returns the rook's corner and its square after castling.
func castleRookSquares(color Color, kingSide bool) (from, to Square) {
	home := color.homeRank()
	if kingSide {
		from, _ = SquareAt(7, home)
		to, _ = SquareAt(5, home)
		return from, to
	}
	from, _ = SquareAt(0, home)
	to, _ = SquareAt(3, home)
	return from, to
}

func isEnPassant(b *Board, piece Piece, from, to, target Square) bool {
	if piece.Kind != Pawn || !target.Valid() || to != target || from.File() == to.File() {
		return false
	}
	if !b[to].Empty() {
		return false
	}
	victimSq, ok := SquareAt(to.File(), from.Rank())
	if !ok {
		return false
	}
	return b[victimSq] == Piece{Kind: Pawn, Color: piece.Color.Opponent()}
}

// transform is the mechanical board update shared by the self-check
// simulation and Apply: relocate the piece, drop an en passant victim, and
// move the rook when castling. Promotion is not resolved here.
func transform(b Board, from, to, epTarget Square) Board {
	piece := b[from]
	ep := isEnPassant(&b, piece, from, to, epTarget)
	next := b.WithMove(from, to, NoPiece)
	if ep {
		victim, _ := SquareAt(to.File(), from.Rank())
		next = next.Without(victim)
	}
	if isCastleShape(piece, from, to) {
		rookFrom, rookTo := castleRookSquares(piece.Color, to.File() > from.File())
		next = next.WithMove(rookFrom, rookTo, NoPiece)
	}
	return next
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
