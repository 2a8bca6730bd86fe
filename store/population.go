package store

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"ai2048/game"
	"ai2048/genetic"

	"github.com/rs/zerolog/log"
)

// Encode writes the generation, the size and one line per individual:
// five weights, fitness, best score and best moves.
func Encode(w io.Writer, pop genetic.Population) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n%d\n", pop.Generation, pop.Size())
	for _, ind := range pop.Individuals {
		for _, g := range ind.Weights.Genes() {
			bw.WriteString(formatFloat(g))
			bw.WriteByte(' ')
		}
		fmt.Fprintf(bw, "%s %d %d\n", formatFloat(ind.Fitness), ind.BestScore, ind.BestMoves)
	}
	return bw.Flush()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// DecodeError describes why a population could not be read. Generation holds
// the header value when it was readable.
type DecodeError struct {
	Generation    int
	HasGeneration bool
	Err           error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode population: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

var (
	ErrMissingHeader   = errors.New("missing header")
	ErrInvalidSize     = errors.New("invalid population size")
	ErrShortPopulation = errors.New("fewer individuals than declared")
)

// Decode reads a population written by Encode. Fields may be separated by any
// whitespace.
func Decode(r io.Reader) (genetic.Population, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		return sc.Text(), true
	}

	tok, ok := next()
	if !ok {
		return genetic.Population{}, &DecodeError{Err: ErrMissingHeader}
	}
	generation, err := strconv.Atoi(tok)
	if err != nil {
		return genetic.Population{}, &DecodeError{Err: fmt.Errorf("generation: %w", err)}
	}
	fail := func(err error) (genetic.Population, error) {
		return genetic.Population{}, &DecodeError{Generation: generation, HasGeneration: true, Err: err}
	}

	tok, ok = next()
	if !ok {
		return fail(ErrMissingHeader)
	}
	size, err := strconv.Atoi(tok)
	if err != nil || size <= 0 {
		return fail(fmt.Errorf("%w: %q", ErrInvalidSize, tok))
	}

	individuals := make([]genetic.Individual, 0, size)
	for len(individuals) < size {
		var fields [game.NumGenes + 3]string
		for i := range fields {
			if fields[i], ok = next(); !ok {
				return fail(fmt.Errorf("%w: read %d of %d", ErrShortPopulation, len(individuals), size))
			}
		}
		ind, err := parseIndividual(fields)
		if err != nil {
			return fail(fmt.Errorf("individual %d: %w", len(individuals), err))
		}
		individuals = append(individuals, ind)
	}
	if err := sc.Err(); err != nil {
		return fail(err)
	}

	return genetic.Population{Generation: generation, Individuals: individuals}, nil
}

func parseIndividual(fields [game.NumGenes + 3]string) (genetic.Individual, error) {
	var genes [game.NumGenes]float64
	for i := range genes {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return genetic.Individual{}, err
		}
		genes[i] = v
	}
	fitness, err := strconv.ParseFloat(fields[game.NumGenes], 64)
	if err != nil {
		return genetic.Individual{}, err
	}
	bestScore, err := parseCount(fields[game.NumGenes+1])
	if err != nil {
		return genetic.Individual{}, err
	}
	bestMoves, err := parseCount(fields[game.NumGenes+2])
	if err != nil {
		return genetic.Individual{}, err
	}
	return genetic.Individual{
		Weights:   game.WeightsFromGenes(genes),
		Fitness:   fitness,
		BestScore: bestScore,
		BestMoves: bestMoves,
	}, nil
}

// parseCount accepts integers, and whole floats for files whose scores were
// written as reals.
func parseCount(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// Save rewrites path with the population.
func Save(path string, pop genetic.Population) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create population file: %w", err)
	}
	if err := Encode(f, pop); err != nil {
		f.Close()
		return fmt.Errorf("failed to write population: %w", err)
	}
	return f.Close()
}

// Load reads the population at path. A missing or malformed file is not an
// error: a fresh population of size is created instead, keeping the
// generation from the header when it could be read. The flag reports whether
// the file was used.
func Load(path string, size int, optimizer *genetic.Optimizer) (genetic.Population, bool) {
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("cannot open population file, starting fresh")
		}
		return optimizer.NewPopulation(size), false
	}
	defer f.Close()

	pop, err := Decode(f)
	if err != nil {
		fresh := optimizer.NewPopulation(size)
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) && decodeErr.HasGeneration {
			fresh.Generation = decodeErr.Generation
		}
		log.Warn().Err(err).Str("path", path).Int("generation", fresh.Generation).Msg("malformed population file, starting fresh")
		return fresh, false
	}
	if pop.Size() != size {
		log.Info().Str("path", path).Msgf("loaded %d individuals, configured size is %d", pop.Size(), size)
	}
	return pop, true
}
