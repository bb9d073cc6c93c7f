package etl

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/okian/wolfwise/internal/domain/model"
)

// WriteSubstitutionLog writes every substitution event of a game to
// dir/substitution_events_<gameID>.csv and returns the path.
func WriteSubstitutionLog(dir, gameID string, events []model.Event) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating debug dir: %w", err)
	}
	path := filepath.Join(dir, "substitution_events_"+filepath.Base(gameID)+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating substitution log: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	_ = w.Write([]string{"event_num", "period", "clock", "team_tricode", "sub_type", "person_id", "player_name", "qualifiers", "raw_event"})
	for _, e := range events {
		if !e.IsSubstitution() {
			continue
		}
		raw, err := json.Marshal(e)
		if err != nil {
			return "", fmt.Errorf("encoding event %d: %w", e.ActionNumber, err)
		}
		qual, _ := json.Marshal(e.Qualifiers)
		if err := w.Write([]string{
			strconv.Itoa(e.ActionNumber),
			strconv.Itoa(e.Period),
			e.Clock,
			e.TeamTricode,
			e.SubType,
			e.PersonID,
			e.PlayerNameI,
			string(qual),
			string(raw),
		}); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("writing substitution log: %w", err)
	}
	return path, f.Close()
}
