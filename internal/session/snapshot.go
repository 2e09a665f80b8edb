package session

import (
	"fmt"

	"github.com/park285/duelchess/internal/rules"
	"github.com/park285/duelchess/pkg/chessdto"
)

// Snapshot renders the state in its wire form.
func (s GameState) Snapshot() chessdto.Snapshot {
	rows := s.Position.Board.Rows()
	board := make([][]string, 8)
	for i := range rows {
		board[i] = rows[i][:]
	}
	log := make([]chessdto.MoveRecord, len(s.MoveLog))
	for i, m := range s.MoveLog {
		log[i] = chessdto.MoveRecord{From: m.From.String(), To: m.To.String(), Promotion: m.Promotion.String()}
	}
	cr := s.Position.Castling
	out := chessdto.Snapshot{
		Code:          s.Code,
		Board:         board,
		FEN:           s.Position.FEN(),
		CurrentPlayer: s.Position.SideToMove.String(),
		WhiteTime:     s.Clocks.White,
		BlackTime:     s.Clocks.Black,
		Moves:         MovePairs(s.MoveLog),
		MoveLog:       log,
		Status:        string(s.Status),
		Players:       chessdto.Players{White: player(s.Seats.White), Black: player(s.Seats.Black)},
		CastlingRights: chessdto.CastlingRights{
			White: chessdto.SideRights{KingSide: cr.White.KingSide, QueenSide: cr.White.QueenSide},
			Black: chessdto.SideRights{KingSide: cr.Black.KingSide, QueenSide: cr.Black.QueenSide},
		},
		HalfMoveClock:  s.Position.HalfMoveClock,
		FullMoveNumber: s.Position.FullMoveNumber,
		IsCheck:        s.IsCheck,
		Version:        s.Version,
	}
	if s.Winner != nil {
		out.Winner = s.Winner.String()
	}
	if s.Position.EnPassant.Valid() {
		out.EnPassantTarget = s.Position.EnPassant.String()
	}
	if s.HasPendingPromotion() {
		out.PromotionPending = s.PromotionPending.String()
		out.PromotionFrom = s.PendingFrom.String()
	}
	return out
}

func player(id *Identity) *chessdto.Player {
	if id == nil {
		return nil
	}
	return &chessdto.Player{ID: id.ID, Name: id.Name}
}

func identity(p *chessdto.Player) *Identity {
	if p == nil {
		return nil
	}
	return &Identity{ID: p.ID, Name: p.Name}
}

// FromSnapshot restores a state from its wire form. The FEN is authoritative
// for the position; the letter grid is ignored.
func FromSnapshot(snap chessdto.Snapshot) (GameState, error) {
	pos, err := rules.ParseFEN(snap.FEN)
	if err != nil {
		return GameState{}, fmt.Errorf("snapshot %s: %w", snap.Code, err)
	}
	st := GameState{
		Code:             snap.Code,
		Position:         pos,
		Seats:            Seats{White: identity(snap.Players.White), Black: identity(snap.Players.Black)},
		Status:           Status(snap.Status),
		IsCheck:          snap.IsCheck,
		PromotionPending: rules.NoSquare,
		PendingFrom:      rules.NoSquare,
		Clocks:           Clocks{White: snap.WhiteTime, Black: snap.BlackTime},
		Version:          snap.Version,
	}
	switch st.Status {
	case StatusWaiting, StatusActive, StatusCheckmate, StatusStalemate, StatusResigned, StatusDraw:
	default:
		return GameState{}, fmt.Errorf("snapshot %s: unknown status %q", snap.Code, snap.Status)
	}
	if snap.Winner != "" {
		w, err := rules.ParseColor(snap.Winner)
		if err != nil {
			return GameState{}, fmt.Errorf("snapshot %s: %w", snap.Code, err)
		}
		st.Winner = &w
	}
	if snap.PromotionPending != "" {
		if st.PromotionPending, err = rules.ParseSquare(snap.PromotionPending); err != nil {
			return GameState{}, fmt.Errorf("snapshot %s: %w", snap.Code, err)
		}
		if st.PendingFrom, err = rules.ParseSquare(snap.PromotionFrom); err != nil {
			return GameState{}, fmt.Errorf("snapshot %s: %w", snap.Code, err)
		}
	}
	for _, m := range snap.MoveLog {
		rec, err := parseRecord(m)
		if err != nil {
			return GameState{}, fmt.Errorf("snapshot %s: %w", snap.Code, err)
		}
		st.MoveLog = append(st.MoveLog, rec)
	}
	return st, nil
}

func parseRecord(m chessdto.MoveRecord) (MoveRecord, error) {
	from, err := rules.ParseSquare(m.From)
	if err != nil {
		return MoveRecord{}, err
	}
	to, err := rules.ParseSquare(m.To)
	if err != nil {
		return MoveRecord{}, err
	}
	rec := MoveRecord{From: from, To: to}
	if m.Promotion != "" {
		if rec.Promotion, err = rules.ParseKind(m.Promotion); err != nil {
			return MoveRecord{}, err
		}
	}
	return rec, nil
}
