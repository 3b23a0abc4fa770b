package gazetteer

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/entity"
)

const sampleCard = `
        ABC Corporation Ltd
        Tel: +1 234 567 8900
        Cell: 0720953165
        Email: info@abccorp.com
        Website: www.abccorp.com
        1234 Some Avenue, Nairobi, Kenya
        Then we traveled to Mombasa in Kenya.
    `

func defaultResolver(t *testing.T) *Resolver {
	t.Helper()
	lex, err := Default()
	require.NoError(t, err)
	return NewResolver(lex, nil)
}

func TestDefaultLexicon(t *testing.T) {
	lex, err := Default()
	require.NoError(t, err)
	assert.Contains(t, lex.Countries, "Kenya")
	assert.Contains(t, lex.Cities, "Nairobi")
	assert.Greater(t, NewResolver(lex, nil).Size(), 300)
}

func TestLookupSampleCard(t *testing.T) {
	p, err := defaultResolver(t).Lookup(context.Background(), sampleCard)
	require.NoError(t, err)

	assert.Equal(t, []string{"Nairobi", "Mombasa"}, p.Cities)
	assert.Equal(t, []string{"Kenya"}, p.Countries)
	assert.Equal(t, "Nairobi", entity.Deref(p.City()))
	assert.Equal(t, "Kenya", entity.Deref(p.Country()))
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		cities    []string
		countries []string
	}{
		{name: "first occurrence order", text: "Offices in Kampala, Uganda and Kigali, Rwanda", cities: []string{"Kampala", "Kigali"}, countries: []string{"Uganda", "Rwanda"}},
		{name: "longest name wins", text: "Port Moresby, Papua New Guinea", cities: []string{}, countries: []string{"Papua New Guinea"}},
		{name: "city state is both", text: "Singapore 018956", cities: []string{"Singapore"}, countries: []string{"Singapore"}},
		{name: "word boundary", text: "Nigerian office, Kenyan staff", cities: []string{}, countries: []string{}},
		{name: "case sensitive", text: "nairobi kenya", cities: []string{}, countries: []string{}},
		{name: "empty", text: "", cities: []string{}, countries: []string{}},
	}
	r := defaultResolver(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := r.Lookup(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.cities, p.Cities)
			assert.Equal(t, tt.countries, p.Countries)
		})
	}
}

func TestEmptyLexicon(t *testing.T) {
	r := NewResolver(Lexicon{}, nil)
	p, err := r.Lookup(context.Background(), sampleCard)
	require.NoError(t, err)
	assert.Empty(t, p.Cities)
	assert.Nil(t, p.City())
	assert.Nil(t, p.Country())
}

func TestMatchesOffsets(t *testing.T) {
	text := "Tel Aviv and Tel: 123"
	got := NewResolver(Lexicon{Cities: []string{"Tel Aviv"}}, nil).Matches(text)
	require.Len(t, got, 1)
	assert.Equal(t, Match{Name: "Tel Aviv", Kind: City, Start: 0}, got[0])
}

func TestLookupAccentedNames(t *testing.T) {
	r := NewResolver(Lexicon{
		Cities:    []string{"Lomé", "Bogotá", "Nairobi", "Malé"},
		Countries: []string{"Togo", "Colombia", "Kenya"},
	}, nil)
	text := "Port Office, Lomé, Togo\nCalle 72, Bogotá,Colombia\nNairobi, Kenya\nMaléfique Ltd"

	p, err := r.Lookup(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lomé", "Bogotá", "Nairobi"}, p.Cities)
	assert.Equal(t, []string{"Togo", "Colombia", "Kenya"}, p.Countries)

	got := r.Matches("Lomé")
	require.Len(t, got, 1)
	assert.Equal(t, Match{Name: "Lomé", Kind: City, Start: 0}, got[0])
	assert.Empty(t, r.Matches("Nairobian"))
	assert.Empty(t, r.Matches("éNairobi"))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "places.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cities: [Gotham]\ncountries: [Freedonia]\n"), 0o600))

	lex, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Lexicon{Cities: []string{"Gotham"}, Countries: []string{"Freedonia"}}, lex)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, common.ErrModelUnavailable)

	_, err = DecodeYAML(strings.NewReader("cities: {not: [a list"))
	assert.ErrorIs(t, err, common.ErrModelUnavailable)
}

func TestSQLiteSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "places.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE places (name TEXT NOT NULL, kind TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO places (name, kind) VALUES ('Gotham', 'city'), ('Freedonia', 'COUNTRY'), ('Atlantis', 'myth')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	lex, err := Load(context.Background(), common.GazetteerConfig{DB: path})
	require.NoError(t, err)
	assert.Equal(t, []string{"Gotham"}, lex.Cities)
	assert.Equal(t, []string{"Freedonia"}, lex.Countries)

	p, err := NewResolver(lex, nil).Lookup(context.Background(), "Gotham, Freedonia")
	require.NoError(t, err)
	assert.Equal(t, "Gotham", entity.Deref(p.City()))
	assert.Equal(t, "Freedonia", entity.Deref(p.Country()))
}

func TestSQLiteSourceUnavailable(t *testing.T) {
	_, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "nope.db"))
	assert.ErrorIs(t, err, common.ErrModelUnavailable)
}

func TestLookupHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := defaultResolver(t).Lookup(ctx, sampleCard)
	assert.ErrorIs(t, err, context.Canceled)
}
