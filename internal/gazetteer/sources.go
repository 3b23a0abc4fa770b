package gazetteer

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/cardscan/internal/common"
)

//go:embed places.yaml
var defaultPlaces []byte

const backendName = "gazetteer"

// Default returns the embedded lexicon.
func Default() (Lexicon, error) {
	return DecodeYAML(bytes.NewReader(defaultPlaces))
}

// LoadFile reads a lexicon from a YAML file with "cities" and "countries" lists.
func LoadFile(path string) (Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return Lexicon{}, common.ModelUnavailable(backendName, fmt.Errorf("open %s: %w", path, err))
	}
	defer func() { _ = f.Close() }()
	return DecodeYAML(f)
}

// DecodeYAML parses a YAML lexicon.
func DecodeYAML(r io.Reader) (Lexicon, error) {
	var lex Lexicon
	if err := yaml.NewDecoder(r).Decode(&lex); err != nil {
		return Lexicon{}, common.ModelUnavailable(backendName, fmt.Errorf("decode lexicon: %w", err))
	}
	return lex, nil
}

// LoadSQLite reads a lexicon from a places(name, kind) table where kind is "city" or
// "country". Rows with another kind are skipped.
func LoadSQLite(ctx context.Context, db *sql.DB) (Lexicon, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, kind FROM places ORDER BY rowid`)
	if err != nil {
		return Lexicon{}, common.ModelUnavailable(backendName, fmt.Errorf("query places: %w", err))
	}
	defer func() { _ = rows.Close() }()

	var lex Lexicon
	for rows.Next() {
		var name, kind string
		if err := rows.Scan(&name, &kind); err != nil {
			return Lexicon{}, common.ModelUnavailable(backendName, fmt.Errorf("scan place: %w", err))
		}
		switch strings.ToLower(strings.TrimSpace(kind)) {
		case "city":
			lex.Cities = append(lex.Cities, name)
		case "country":
			lex.Countries = append(lex.Countries, name)
		}
	}
	if err := rows.Err(); err != nil {
		return Lexicon{}, common.ModelUnavailable(backendName, fmt.Errorf("iterate places: %w", err))
	}
	return lex, nil
}

// OpenSQLite opens the SQLite file at path read-only and loads its places table.
func OpenSQLite(ctx context.Context, path string) (Lexicon, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return Lexicon{}, common.ModelUnavailable(backendName, fmt.Errorf("open %s: %w", path, err))
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return Lexicon{}, common.ModelUnavailable(backendName, fmt.Errorf("ping %s: %w", path, err))
	}
	return LoadSQLite(ctx, db)
}

// Load picks the lexicon source: a SQLite file, a YAML file, or the embedded default.
func Load(ctx context.Context, cfg common.GazetteerConfig) (Lexicon, error) {
	switch {
	case cfg.DB != "":
		return OpenSQLite(ctx, cfg.DB)
	case cfg.File != "":
		return LoadFile(cfg.File)
	default:
		return Default()
	}
}
