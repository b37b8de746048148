package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mtlprog/bestpath/internal/bestpath"
)

const chainInput = `[
	{"source": "a", "target": "b", "provider": "cryptocompare", "price": "2"},
	{"source": "B", "target": "C", "provider": "CRYPTOCOMPARE", "price": "4"}
]`

type outputRow struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	TotalCost string `json:"totalCost"`
	Steps     []struct {
		Cost string `json:"cost"`
	} `json:"steps"`
}

func decodeOutput(t *testing.T, buf *bytes.Buffer) map[string]outputRow {
	t.Helper()
	var rows []outputRow
	if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatalf("decode output: %v\n%s", err, buf.String())
	}
	byPair := make(map[string]outputRow, len(rows))
	for _, r := range rows {
		byPair[r.Source+"/"+r.Target] = r
	}
	return byPair
}

func TestRunCalcFloydWarshall(t *testing.T) {
	var buf bytes.Buffer
	if err := runCalc(strings.NewReader(chainInput), &buf, "floyd-warshall"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := decodeOutput(t, &buf)
	if len(rows) != 6 {
		t.Fatalf("rows = %d, want 6", len(rows))
	}
	ac, ok := rows["A/C"]
	if !ok {
		t.Fatal("missing A/C path")
	}
	if ac.TotalCost != "8" || len(ac.Steps) != 2 {
		t.Errorf("A/C = %+v, want total 8 over 2 steps", ac)
	}
	if rows["B/B"].TotalCost != "1" {
		t.Errorf("B/B total = %s, want 1", rows["B/B"].TotalCost)
	}
}

func TestRunCalcNoop(t *testing.T) {
	var buf bytes.Buffer
	if err := runCalc(strings.NewReader(chainInput), &buf, "noop"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := decodeOutput(t, &buf)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if ab := rows["A/B"]; ab.TotalCost != "2" || len(ab.Steps) != 0 {
		t.Errorf("A/B = %+v, want direct price 2", ab)
	}
}

func TestRunCalcErrors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		calculator string
		is         error
	}{
		{"unknown calculator", chainInput, "dijkstra", nil},
		{"malformed json", `[{`, "noop", nil},
		{"unknown provider", `[{"source":"A","target":"B","provider":"kraken","price":"1"}]`, "noop", nil},
		{"negative price", `[{"source":"A","target":"B","provider":"cryptocompare","price":"-1"}]`, "noop", nil},
		{"negative cycle", `[
			{"source":"A","target":"B","provider":"cryptocompare","price":"2"},
			{"source":"B","target":"A","provider":"cryptocompare","price":"1"}
		]`, "floyd-warshall", bestpath.ErrNegativeCycles},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := runCalc(strings.NewReader(tt.input), &buf, tt.calculator)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("expected %v, got %v", tt.is, err)
			}
		})
	}
}
