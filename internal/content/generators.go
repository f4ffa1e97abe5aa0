package content

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"strconv"

	"canedu/internal/models"
)

type generator func(r *rand.Rand, level int) (prompt string, answer int)

var generators = map[models.GameKind]generator{
	models.GameKindAddition:       addition,
	models.GameKindSubtraction:    subtraction,
	models.GameKindMultiplication: multiplication,
	models.GameKindDivision:       division,
	models.GameKindPatterns:       patterns,
	models.GameKindMoney:          money,
	models.GameKindTime:           elapsedTime,
	models.GameKindFractions:      fractions,
	models.GameKindMeasurement:    measurement,
}

func seed(slug string, level int) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(slug))
	return int64(h.Sum64()>>1) + int64(level)
}

// generate builds n distinct questions for a level. The same slug and level
// always yield the same bank.
func generate(gen generator, slug string, level, n int) []*models.Question {
	r := rand.New(rand.NewSource(seed(slug, level)))
	seen := make(map[string]bool)
	questions := make([]*models.Question, 0, n)

	for attempts := 0; len(questions) < n && attempts < n*20; attempts++ {
		prompt, answer := gen(r, level)
		if seen[prompt] {
			continue
		}
		seen[prompt] = true
		questions = append(questions, &models.Question{
			Prompt:  prompt,
			Choices: choices(r, answer),
			Answer:  strconv.Itoa(answer),
		})
	}
	return questions
}

// choices returns the answer and three nearby distractors, shuffled.
func choices(r *rand.Rand, answer int) []string {
	spread := answer/10 + 3
	picked := map[int]bool{answer: true}
	out := []string{strconv.Itoa(answer)}

	for len(out) < 4 {
		c := answer + r.Intn(2*spread+1) - spread
		if c < 0 || picked[c] {
			continue
		}
		picked[c] = true
		out = append(out, strconv.Itoa(c))
	}

	r.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

func between(r *rand.Rand, lo, hi int) int {
	return lo + r.Intn(hi-lo+1)
}

func addition(r *rand.Rand, level int) (string, int) {
	limit := level * 10
	a, b := between(r, 1, limit), between(r, 1, limit)
	return fmt.Sprintf("What is %d + %d?", a, b), a + b
}

func subtraction(r *rand.Rand, level int) (string, int) {
	a := between(r, level*5, level*12)
	b := between(r, 1, a)
	return fmt.Sprintf("What is %d - %d?", a, b), a - b
}

func multiplication(r *rand.Rand, level int) (string, int) {
	limit := level + 2
	a, b := between(r, 1, limit), between(r, 2, limit)
	return fmt.Sprintf("What is %d x %d?", a, b), a * b
}

func division(r *rand.Rand, level int) (string, int) {
	limit := level + 2
	d, q := between(r, 2, limit), between(r, 1, limit)
	return fmt.Sprintf("What is %d ÷ %d?", d*q, d), q
}

func patterns(r *rand.Rand, level int) (string, int) {
	start, step := between(r, 1, 10*level), between(r, 1, level+1)
	if level >= 6 && r.Intn(2) == 0 {
		// counting down, kept above zero
		start += step * 5
		step = -step
	}

	terms := make([]any, 4)
	for i := range terms {
		terms[i] = start + step*i
	}
	return fmt.Sprintf("What comes next: %d, %d, %d, %d, ?", terms...), start + step*4
}

type coin struct {
	name  string
	cents int
}

var coins = []coin{
	{"nickels", 5},
	{"dimes", 10},
	{"quarters", 25},
	{"loonies", 100},
	{"toonies", 200},
}

func money(r *rand.Rand, level int) (string, int) {
	kinds := min(2+level/2, len(coins))
	a := coins[r.Intn(kinds)]
	b := coins[r.Intn(kinds)]
	for b == a && kinds > 1 {
		b = coins[r.Intn(kinds)]
	}

	na, nb := between(r, 1, level+1), between(r, 1, level+1)
	if a == b {
		return fmt.Sprintf("How many cents are %d %s?", na, a.name), na * a.cents
	}
	return fmt.Sprintf("How many cents are %d %s and %d %s?", na, a.name, nb, b.name), na*a.cents + nb*b.cents
}

// elapsedTime asks for the number of minutes between two clock times.
func elapsedTime(r *rand.Rand, level int) (string, int) {
	step := 30
	switch {
	case level > 6:
		step = 5
	case level > 3:
		step = 15
	}

	startHour := between(r, 1, 11)
	startMin := r.Intn(60/step) * step
	elapsed := between(r, 1, 2+level) * step
	end := startHour*60 + startMin + elapsed
	endHour, endMin := (end/60-1)%12+1, end%60

	return fmt.Sprintf("How many minutes from %d:%02d to %d:%02d?", startHour, startMin, endHour, endMin), elapsed
}

var denominators = []int{2, 3, 4, 5, 6, 8, 10}

func fractions(r *rand.Rand, level int) (string, int) {
	d := denominators[r.Intn(min(2+level/2, len(denominators)))]
	n := between(r, 1, d-1)
	whole := d * between(r, 1, level+1)
	return fmt.Sprintf("What is %d/%d of %d?", n, d, whole), whole / d * n
}

type conversion struct {
	from, to string
	factor   int
}

var conversions = []conversion{
	{"metres", "centimetres", 100},
	{"centimetres", "millimetres", 10},
	{"kilometres", "metres", 1000},
	{"kilograms", "grams", 1000},
	{"litres", "millilitres", 1000},
}

func measurement(r *rand.Rand, level int) (string, int) {
	c := conversions[r.Intn(min(2+level/2, len(conversions)))]
	v := between(r, 1, level*2+1)
	return fmt.Sprintf("How many %s are in %d %s?", c.to, v, c.from), v * c.factor
}
