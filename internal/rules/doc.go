// Package rules implements the chess rules used by a duel session: board
// model, move legality, check/mate/stalemate analysis and move application.
//
// Everything here is a pure function over values. A Board is a 64-element
// array, so simulating a move for king safety copies the array instead of
// cloning a structure.
package rules
