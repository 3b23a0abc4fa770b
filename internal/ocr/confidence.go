package ocr

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reEmailish = regexp.MustCompile(`\S+@\S+\.\w{2,}`)
	rePhoneish = regexp.MustCompile(`\+?\d[\d\s\-()]{6,}\d`)
	reWebish   = regexp.MustCompile(`(?i)\b(www\.|https?://)\S+`)
)

// heuristicConfidence scores how much the text looks like a business card:
// each contact artifact found raises the score.
func heuristicConfidence(txt string) float32 {
	score := float32(0.2)
	if reEmailish.MatchString(txt) {
		score += 0.25
	}
	if rePhoneish.MatchString(txt) {
		score += 0.25
	}
	if reWebish.MatchString(txt) {
		score += 0.15
	}
	if len(txt) > 60 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// meanTSVConfidence returns the mean word confidence of tesseract TSV output in 0..1.
// The header row and rows with conf -1 (non-word levels) are skipped.
func meanTSVConfidence(tsv string) float32 {
	var sum, n float64
	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || ln == "" {
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := strings.TrimSpace(cols[10])
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float32(sum / n / 100.0)
}

// blendConfidence weights the engine's confidence over the heuristic when present.
func blendConfidence(engine, heuristic float32) float32 {
	conf := heuristic
	if engine > 0 {
		conf = 0.7*engine + 0.3*heuristic
	}
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}
