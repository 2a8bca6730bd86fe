// meta/meta.go
package meta

import "time"

// POPULATION_SIZE is the default number of individuals per generation.
const POPULATION_SIZE = 10

// ELITE_RATE is the default share of individuals copied unchanged.
const ELITE_RATE = 0.1

// MUTATION_RATE is the default per-gene mutation probability.
const MUTATION_RATE = 0.1

// GAMES_PER_INDIVIDUAL is the default number of games per fitness evaluation.
const GAMES_PER_INDIVIDUAL = 10

// MAX_MOVES is the default move cap per game.
const MAX_MOVES = 1000

// WORKERS is the default worker count, 0 meaning one per CPU.
const WORKERS = 0

const BOARD_SIZE = 4

const POPULATION_FILE = "population.txt"

// STEP_INTERVAL paces the live simulation, one step for every agent per tick.
const STEP_INTERVAL = 50 * time.Millisecond

// GENERATION_PAUSE is how long finished live boards stay up before evolving.
const GENERATION_PAUSE = 5 * time.Second

const SERVER_ADDR = ":8080"
