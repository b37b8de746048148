package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mtlprog/bestpath/internal/domain"
)

// observationInput is one quoted price of a calc input file. Price is a decimal string.
type observationInput struct {
	Source   string        `json:"source"`
	Target   string        `json:"target"`
	Provider string        `json:"provider"`
	Price    domain.Amount `json:"price"`
}

type pathOutput struct {
	Source    domain.Currency   `json:"source"`
	Target    domain.Currency   `json:"target"`
	TotalCost domain.Amount     `json:"totalCost"`
	Steps     []domain.PathStep `json:"steps"`
}

func calcFile(path, calculator string, w io.Writer) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		r = f
	}
	return runCalc(r, w, calculator)
}

// runCalc computes the best-path table for the observations read from r and writes it to w as JSON.
func runCalc(r io.Reader, w io.Writer, calculator string) error {
	calc, ok := domain.NewCalculator(calculator)
	if !ok {
		return fmt.Errorf("unknown calculator %q", calculator)
	}

	var inputs []observationInput
	if err := json.NewDecoder(r).Decode(&inputs); err != nil {
		return fmt.Errorf("decoding observations: %w", err)
	}

	observations := make([]domain.Observation, 0, len(inputs))
	for i, in := range inputs {
		obs, err := in.observation()
		if err != nil {
			return fmt.Errorf("observation %d: %w", i, err)
		}
		observations = append(observations, obs)
	}

	table, err := calc.Calculate(observations)
	if err != nil {
		return fmt.Errorf("calculating best paths: %w", err)
	}

	out := make([]pathOutput, 0, table.Len())
	for _, e := range table.Entries() {
		steps := e.Path.Steps
		if steps == nil {
			steps = []domain.PathStep{}
		}
		out = append(out, pathOutput{
			Source:    e.Pair.Source,
			Target:    e.Pair.Target,
			TotalCost: e.Path.TotalCost,
			Steps:     steps,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func (in observationInput) observation() (domain.Observation, error) {
	var (
		obs domain.Observation
		err error
	)
	if obs.ProviderPair.Pair.Source, err = domain.NewCurrency(in.Source); err != nil {
		return obs, err
	}
	if obs.ProviderPair.Pair.Target, err = domain.NewCurrency(in.Target); err != nil {
		return obs, err
	}
	if obs.ProviderPair.Provider, err = domain.ParseProvider(in.Provider); err != nil {
		return obs, err
	}
	obs.Price = in.Price
	return obs, nil
}
