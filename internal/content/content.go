// Package content holds the built-in game catalog and question banks.
package content

import (
	"embed"
	"errors"
	"fmt"
	"sort"
	"sync"

	"canedu/internal/models"

	"gopkg.in/yaml.v3"
)

const (
	MinLevel     = 1
	MaxLevel     = 10
	MinBankSize  = 5
	GeneratedLen = 12
)

var ErrUnknownGame = errors.New("unknown game")

//go:embed data/*.yaml
var files embed.FS

type catalogFile struct {
	Games []*models.Game `yaml:"games"`
}

type wordsFile struct {
	Levels map[int][]string `yaml:"levels"`
}

type bankEntry struct {
	Level   int      `yaml:"level"`
	Prompt  string   `yaml:"prompt"`
	Choices []string `yaml:"choices"`
	Answer  string   `yaml:"answer"`
	Hint    string   `yaml:"hint"`
}

type banksFile struct {
	Banks map[string][]bankEntry `yaml:"banks"`
}

type library struct {
	games []*models.Game
	words map[int][]string
	banks map[string][]bankEntry
}

var load = sync.OnceValues(func() (*library, error) {
	var catalog catalogFile
	if err := decode("data/games.yaml", &catalog); err != nil {
		return nil, err
	}

	var words wordsFile
	if err := decode("data/words.yaml", &words); err != nil {
		return nil, err
	}

	var banks banksFile
	if err := decode("data/banks.yaml", &banks); err != nil {
		return nil, err
	}

	sort.SliceStable(catalog.Games, func(i, j int) bool {
		return catalog.Games[i].Position < catalog.Games[j].Position
	})

	return &library{catalog.Games, words.Levels, banks.Banks}, nil
})

func decode(name string, target any) error {
	b, err := files.ReadFile(name)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, target); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Games returns the catalog ordered by position.
func Games() ([]*models.Game, error) {
	lib, err := load()
	if err != nil {
		return nil, err
	}

	games := make([]*models.Game, 0, len(lib.games))
	for _, g := range lib.games {
		game := *g
		games = append(games, &game)
	}
	return games, nil
}

func Game(slug string) (*models.Game, error) {
	games, err := Games()
	if err != nil {
		return nil, err
	}
	for _, g := range games {
		if g.Slug == slug {
			return g, nil
		}
	}
	return nil, ErrUnknownGame
}

// Questions builds the bank of one level of a game.
func Questions(game *models.Game, level int) ([]*models.Question, error) {
	if level < MinLevel || level > MaxLevel {
		return nil, fmt.Errorf("level %d out of range", level)
	}

	lib, err := load()
	if err != nil {
		return nil, err
	}

	var questions []*models.Question
	switch game.Kind {
	case models.GameKindSpelling:
		questions = spellingQuestions(lib.words[level])
	case models.GameKindTyping:
		questions = typingQuestions(lib.words[level])
	case models.GameKindScramble:
		questions = scrambleQuestions(game.Slug, level, lib.words[level])
	case models.GameKindBank:
		entries, ok := lib.banks[game.Slug]
		if !ok {
			return nil, fmt.Errorf("%w: no bank for %s", ErrUnknownGame, game.Slug)
		}
		questions = bankQuestions(entries, level)
	default:
		gen, ok := generators[game.Kind]
		if !ok {
			return nil, fmt.Errorf("%w: kind %s", ErrUnknownGame, game.Kind)
		}
		questions = generate(gen, game.Slug, level, GeneratedLen)
	}

	for _, q := range questions {
		q.GameSlug = game.Slug
		q.Level = level
		q.Enabled = true
	}
	return questions, nil
}

// AllQuestions builds every level of a game.
func AllQuestions(game *models.Game) ([]*models.Question, error) {
	var all []*models.Question
	for level := MinLevel; level <= MaxLevel; level++ {
		questions, err := Questions(game, level)
		if err != nil {
			return nil, err
		}
		all = append(all, questions...)
	}
	return all, nil
}

// bankQuestions takes the entries of a level and, when short, borrows from
// the nearest levels, lower ones first.
func bankQuestions(entries []bankEntry, level int) []*models.Question {
	var questions []*models.Question
	for dist := 0; dist < MaxLevel && len(questions) < MinBankSize; dist++ {
		levels := []int{level - dist, level + dist}
		if dist == 0 {
			levels = levels[:1]
		}
		for _, l := range levels {
			if l < MinLevel || l > MaxLevel {
				continue
			}
			for _, e := range entries {
				if e.Level != l {
					continue
				}
				questions = append(questions, &models.Question{
					Prompt:  e.Prompt,
					Choices: append([]string(nil), e.Choices...),
					Answer:  e.Answer,
					Hint:    e.Hint,
				})
			}
		}
	}
	return questions
}
