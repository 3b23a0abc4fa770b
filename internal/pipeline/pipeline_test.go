package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/entity"
	"github.com/joseph-ayodele/cardscan/internal/gazetteer"
	"github.com/joseph-ayodele/cardscan/internal/ner"
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

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeOCR struct {
	text  string
	err   error
	calls int
}

func (f *fakeOCR) ExtractText(context.Context, []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

type failingRecognizer struct{}

func (failingRecognizer) Name() string { return "broken" }
func (failingRecognizer) Recognize(context.Context, string) ([]ner.Entity, error) {
	return nil, common.ModelUnavailable("ner", errors.New("model file missing"))
}

type failingPlaces struct{}

func (failingPlaces) Lookup(context.Context, string) (gazetteer.Places, error) {
	return gazetteer.Places{}, common.ModelUnavailable("gazetteer", errors.New("db locked"))
}

type fakeCompleter struct {
	content string
	err     error
	prompt  string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.content, f.err
}

func defaultRuleStrategy(t *testing.T, opts ...RuleOption) *RuleStrategy {
	t.Helper()
	lex, err := gazetteer.Default()
	require.NoError(t, err)
	resolver := gazetteer.NewResolver(lex, nil)
	return NewRuleStrategy(ner.NewRuleRecognizer(ner.WithPlaces(PlaceFinder(resolver))), resolver, nil, opts...)
}

func TestProcessSampleCardWithRules(t *testing.T) {
	for _, concurrent := range []bool{true, false} {
		t.Run(map[bool]string{true: "concurrent", false: "sequential"}[concurrent], func(t *testing.T) {
			src := &fakeOCR{text: sampleCard}
			p := NewProcessor(src, defaultRuleStrategy(t, WithConcurrency(concurrent)), nil)

			res, err := p.Process(context.Background(), pngHeader)
			require.NoError(t, err)
			assert.Equal(t, 1, src.calls)
			assert.NotEmpty(t, res.RequestID)
			assert.Equal(t, constants.StrategyRules, res.Strategy)
			assert.Equal(t, constants.MessageRules, res.Message)
			assert.Equal(t, sampleCard, res.ExtractedText)

			want := entity.ContactRecord{
				OrganizationName:   entity.Str("ABC Corporation Ltd"),
				PrimaryPhoneNumber: entity.Str("+1 234 567 8900"),
				OtherPhoneNumber:   entity.Str("0720953165"),
				Email:              entity.Str("info@abccorp.com"),
				City:               entity.Str("Nairobi"),
				Country:            entity.Str("Kenya"),
				Website:            entity.Str("www.abccorp.com"),
			}
			assert.Equal(t, want, res.Record)
			assert.Nil(t, res.Record.Industry)

			require.NotNil(t, res.Extraction)
			assert.Equal(t, []string{"1234 Some Avenue, Nairobi, Kenya", "Nairobi", "Mombasa"}, res.Extraction.Addresses)
			assert.Equal(t, "1234 Some Avenue, Nairobi, Kenya, Nairobi, Mombasa", entity.Deref(res.Extraction.Address))
			assert.Nil(t, res.Extraction.AgentName)
			assert.Empty(t, res.Extraction.Degraded)
			assert.Nil(t, res.Card)
		})
	}
}

func TestRuleStrategyDegrades(t *testing.T) {
	tests := []struct {
		name       string
		recognizer ner.Recognizer
		places     PlaceResolver
		degraded   []string
		want       entity.ContactRecord
	}{
		{
			name:       "recognizer unavailable",
			recognizer: failingRecognizer{},
			places:     gazetteer.NewResolver(gazetteer.Lexicon{Cities: []string{"Nairobi"}, Countries: []string{"Kenya"}}, nil),
			degraded:   []string{"ner"},
			want: entity.ContactRecord{
				PrimaryPhoneNumber: entity.Str("+1 234 567 8900"),
				OtherPhoneNumber:   entity.Str("0720953165"),
				Email:              entity.Str("info@abccorp.com"),
				City:               entity.Str("Nairobi"),
				Country:            entity.Str("Kenya"),
				Website:            entity.Str("www.abccorp.com"),
			},
		},
		{
			name:       "both unavailable",
			recognizer: failingRecognizer{},
			places:     failingPlaces{},
			degraded:   []string{"ner", "gazetteer"},
			want: entity.ContactRecord{
				PrimaryPhoneNumber: entity.Str("+1 234 567 8900"),
				OtherPhoneNumber:   entity.Str("0720953165"),
				Email:              entity.Str("info@abccorp.com"),
				Website:            entity.Str("www.abccorp.com"),
			},
		},
		{
			name: "no collaborators",
			want: entity.ContactRecord{
				PrimaryPhoneNumber: entity.Str("+1 234 567 8900"),
				OtherPhoneNumber:   entity.Str("0720953165"),
				Email:              entity.Str("info@abccorp.com"),
				Website:            entity.Str("www.abccorp.com"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewRuleStrategy(tt.recognizer, tt.places, nil)
			out, err := s.Restructure(context.Background(), sampleCard)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Record)
			assert.Equal(t, tt.degraded, out.Extraction.Degraded)
			assert.NotNil(t, out.Extraction.Entities)
			assert.NotNil(t, out.Extraction.Places.Cities)
			assert.Equal(t, []string{"1234 Some Avenue, Nairobi, Kenya"}, out.Extraction.Addresses)
		})
	}
}

func TestRuleStrategyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := defaultRuleStrategy(t).Restructure(ctx, sampleCard)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessWithLLM(t *testing.T) {
	completion := "```json\n" + `{"data": {"email": "info@abccorp.com", "phone_numbers": ["+1 234 567 8900"],
		"agent_name": null, "company_name": "ABC Corporation Ltd",
		"web_presence": {"website": "www.abccorp.com", "facebook": null, "instagram": null, "twitter": null}}}` + "\n```"
	c := &fakeCompleter{content: completion}
	p := NewProcessor(&fakeOCR{text: sampleCard}, NewLLMStrategy(c, nil), nil)

	res, err := p.Process(context.Background(), pngHeader)
	require.NoError(t, err)
	assert.Contains(t, c.prompt, "Text: "+sampleCard+"\n\nOutput format:")
	assert.Equal(t, constants.MessageLLM, res.Message)
	assert.Equal(t, "ABC Corporation Ltd", entity.Deref(res.Record.OrganizationName))
	assert.Equal(t, "+1 234 567 8900", entity.Deref(res.Record.PrimaryPhoneNumber))
	assert.Nil(t, res.Record.OtherPhoneNumber)
	assert.Nil(t, res.Extraction)
	require.NotNil(t, res.Card)

	b, err := json.Marshal(res.Response())
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, constants.MessageLLM, got["message"])
	assert.Equal(t, sampleCard, got["extracted_text"])
	data := got["final_data"].(map[string]any)["data"].(map[string]any)
	assert.Equal(t, "info@abccorp.com", data["email"])
}

func TestProcessWithLLMFailures(t *testing.T) {
	tests := []struct {
		name     string
		c        *fakeCompleter
		sentinel error
		code     string
	}{
		{name: "malformed completion", c: &fakeCompleter{content: "{'data': {'email': 'x'}}"}, sentinel: common.ErrMalformedLLMResponse, code: common.CodeMalformedLLM},
		{name: "request failed", c: &fakeCompleter{err: common.NewAppError(common.CodeLLMRequestFailed, "status 500", errors.New("non-2xx status: 500"))}, code: common.CodeLLMRequestFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProcessor(&fakeOCR{text: sampleCard}, NewLLMStrategy(tt.c, nil), nil)
			res, err := p.ProcessText(context.Background(), sampleCard)
			require.Error(t, err)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
			assert.Equal(t, tt.code, common.ErrorCode(err))
			assert.Equal(t, entity.ContactRecord{}, res.Record)
			assert.Nil(t, res.Card)
		})
	}
}

func TestProcessRejectsNonImages(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{name: "pdf", input: []byte("%PDF-1.7\n%âãÏÓ")},
		{name: "plain text", input: []byte("ABC Corporation Ltd\nTel: +1 234 567 8900")},
		{name: "empty", input: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeOCR{text: sampleCard}
			p := NewProcessor(src, defaultRuleStrategy(t), nil)
			_, err := p.Process(context.Background(), tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidInputType)
			assert.Equal(t, common.CodeInvalidInputType, common.ErrorCode(err))
			assert.Contains(t, err.Error(), constants.InvalidFileTypeMessage)
			assert.Zero(t, src.calls, "OCR must not run")
		})
	}
}

func TestProcessOCRFailure(t *testing.T) {
	boom := errors.New("tesseract crashed")
	p := NewProcessor(&fakeOCR{err: boom}, defaultRuleStrategy(t), nil)
	_, err := p.Process(context.Background(), pngHeader)
	assert.ErrorIs(t, err, boom)
}

func TestProcessKeepsRequestID(t *testing.T) {
	p := NewProcessor(nil, defaultRuleStrategy(t), nil)
	res, err := p.ProcessText(common.WithRequestID(context.Background(), "rid-42"), "")
	require.NoError(t, err)
	assert.Equal(t, "rid-42", res.RequestID)
	assert.Equal(t, entity.ContactRecord{}, res.Record)
	assert.JSONEq(t, `{"organization_name":null,"primary_phone_number":null,"other_phone_number":null,
		"email":null,"industry":null,"city":null,"country":null,"website":null}`, mustJSON(t, res.Response().FinalData))
}

func TestSniffContentType(t *testing.T) {
	assert.Equal(t, "image/png", SniffContentType(pngHeader))
	assert.Equal(t, "image/jpeg", SniffContentType([]byte("\xff\xd8\xff\xe0\x00\x10JFIF")))
	assert.Equal(t, "image/tiff", SniffContentType([]byte("II*\x00\x08\x00\x00\x00")))
	assert.Equal(t, "image/tiff", SniffContentType([]byte("MM\x00*\x00\x00\x00\x08")))
	assert.Equal(t, "application/pdf", SniffContentType([]byte("%PDF-1.7")))
}

func TestBuild(t *testing.T) {
	base := func() *common.Config {
		return &common.Config{Pipeline: common.PipelineConfig{
			Strategy: constants.StrategyRules, NERBackend: constants.NERRules, Concurrent: true,
		}}
	}

	p, err := Build(context.Background(), base(), nil, WithTextSource(&fakeOCR{text: sampleCard}))
	require.NoError(t, err)
	assert.Equal(t, constants.StrategyRules, p.StrategyName())
	res, err := p.Process(context.Background(), pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "Kenya", entity.Deref(res.Record.Country))

	cfg := base()
	cfg.Pipeline.Strategy = constants.StrategyLLM
	p, err = Build(context.Background(), cfg, nil, WithCompleter(&fakeCompleter{content: `{"data": {}}`}))
	require.NoError(t, err)
	assert.Equal(t, constants.StrategyLLM, p.StrategyName())

	cfg = base()
	cfg.Gazetteer.File = "/nonexistent/places.yaml"
	p, err = Build(context.Background(), cfg, nil, WithTextSource(&fakeOCR{text: sampleCard}))
	require.NoError(t, err, "gazetteer load failure degrades")
	res, err = p.Process(context.Background(), pngHeader)
	require.NoError(t, err)
	assert.Nil(t, res.Record.Country)

	cfg = base()
	cfg.Pipeline.Strategy = "magic"
	_, err = Build(context.Background(), cfg, nil)
	assert.Equal(t, common.CodeUnsupportedBackend, common.ErrorCode(err))

	cfg = base()
	cfg.Pipeline.NERBackend = "spacy"
	_, err = Build(context.Background(), cfg, nil)
	assert.Equal(t, common.CodeUnsupportedBackend, common.ErrorCode(err))
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
