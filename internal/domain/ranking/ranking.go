// Package ranking adds league rank columns to player stat tables.
package ranking

import (
	"sort"

	"github.com/okian/wolfwise/internal/domain/frame"
)

// Suffix is appended to a stat column to name its rank column.
const Suffix = "_RANK"

// BaseColumns are the traditional box-score stats ranked for leaders tables.
var BaseColumns = []string{
	"FGM", "FGA", "FG_PCT", "FG3M", "FG3A", "FG3_PCT", "FTM", "FTA", "FT_PCT",
	"OREB", "DREB", "REB", "AST", "TOV", "STL", "BLK", "BLKA", "PF", "PFD",
	"PTS", "PLUS_MINUS", "NBA_FANTASY_PTS", "DD2", "TD3",
}

// AdvancedColumns are the advanced stats ranked for leaders tables.
var AdvancedColumns = []string{
	"GP", "W", "L", "W_PCT", "MIN", "E_OFF_RATING", "OFF_RATING", "E_DEF_RATING",
	"DEF_RATING", "E_NET_RATING", "NET_RATING", "AST_PCT", "AST_TO", "AST_RATIO",
	"OREB_PCT", "DREB_PCT", "REB_PCT", "TM_TOV_PCT", "E_TOV_PCT", "EFG_PCT",
	"TS_PCT", "USG_PCT", "E_USG_PCT", "E_PACE", "PACE", "PIE",
}

// Rank adds <COL>_RANK for every listed column present in f. The highest
// value ranks 1 and tied values share the best rank of the tie, so three
// players tied for second are all 2 and the next is 5. Rows without a
// numeric value get a nil rank.
func Rank(f *frame.Frame, columns ...string) *frame.Frame {
	for _, col := range columns {
		if !f.Has(col) {
			continue
		}
		ranks := minRanks(f, col)
		f.WithColumn(col+Suffix, func(i int) any {
			if r, ok := ranks[i]; ok {
				return r
			}
			return nil
		})
	}
	return f
}

// minRanks computes descending min-method ranks keyed by row index.
func minRanks(f *frame.Frame, col string) map[int]int64 {
	type entry struct {
		row int
		v   float64
	}
	entries := make([]entry, 0, f.Len())
	for i := range f.Len() {
		if v, ok := frame.Float(f.Value(i, col)); ok {
			entries = append(entries, entry{row: i, v: v})
		}
	}
	sort.SliceStable(entries, func(a, b int) bool { return entries[a].v > entries[b].v })

	ranks := make(map[int]int64, len(entries))
	for i, e := range entries {
		if i > 0 && e.v == entries[i-1].v {
			ranks[e.row] = ranks[entries[i-1].row]
			continue
		}
		ranks[e.row] = int64(i + 1)
	}
	return ranks
}
