package content

import (
	"fmt"
	"math/rand"
	"strings"

	"canedu/internal/models"
)

func spellingQuestions(words []string) []*models.Question {
	questions := make([]*models.Question, 0, len(words))
	for _, w := range words {
		questions = append(questions, &models.Question{
			Prompt: "Spell the word you hear.",
			Answer: w,
			Hint:   fmt.Sprintf("starts with %q, %d letters", w[:1], len(w)),
			Speak:  w,
		})
	}
	return questions
}

func typingQuestions(words []string) []*models.Question {
	questions := make([]*models.Question, 0, len(words))
	for _, w := range words {
		questions = append(questions, &models.Question{
			Prompt: fmt.Sprintf("Type: %s", w),
			Answer: w,
		})
	}
	return questions
}

func scrambleQuestions(slug string, level int, words []string) []*models.Question {
	r := rand.New(rand.NewSource(seed(slug, level)))
	questions := make([]*models.Question, 0, len(words))
	for _, w := range words {
		questions = append(questions, &models.Question{
			Prompt: fmt.Sprintf("Unscramble: %s", scramble(r, w)),
			Answer: w,
			Hint:   fmt.Sprintf("starts with %q", w[:1]),
		})
	}
	return questions
}

// scramble shuffles the letters of w, never returning w itself when another
// ordering exists.
func scramble(r *rand.Rand, w string) string {
	letters := []rune(w)
	if len(letters) < 2 || strings.Count(w, string(letters[0])) == len(letters) {
		return w
	}

	for {
		r.Shuffle(len(letters), func(i, j int) {
			letters[i], letters[j] = letters[j], letters[i]
		})
		if s := string(letters); s != w {
			return s
		}
	}
}
