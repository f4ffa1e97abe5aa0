package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Domain string

const (
	DomainLiteracy Domain = "literacy"
	DomainNumeracy Domain = "numeracy"
)

func (v Domain) Valid() bool {
	switch v {
	case DomainLiteracy, DomainNumeracy:
		return true
	default:
		return false
	}
}

// GameKind selects how a game's question bank is built.
type GameKind string

const (
	GameKindSpelling       GameKind = "spelling"
	GameKindTyping         GameKind = "typing"
	GameKindScramble       GameKind = "scramble"
	GameKindBank           GameKind = "bank"
	GameKindAddition       GameKind = "addition"
	GameKindSubtraction    GameKind = "subtraction"
	GameKindMultiplication GameKind = "multiplication"
	GameKindDivision       GameKind = "division"
	GameKindPatterns       GameKind = "patterns"
	GameKindMoney          GameKind = "money"
	GameKindTime           GameKind = "time"
	GameKindFractions      GameKind = "fractions"
	GameKindMeasurement    GameKind = "measurement"
)

type Game struct {
	bun.BaseModel `bun:"table:game"`
	Slug          string    `bun:"slug,pk" json:"slug" yaml:"slug"`
	Name          string    `bun:"name" json:"name" yaml:"name"`
	Domain        Domain    `bun:"domain" json:"domain" yaml:"domain"`
	Kind          GameKind  `bun:"kind" json:"kind" yaml:"kind"`
	Region        string    `bun:"region" json:"region" yaml:"region"`
	Description   string    `bun:"description" json:"description" yaml:"description"`
	Enabled       bool      `bun:"enabled" json:"-" yaml:"enabled"`
	Position      int       `bun:"position" json:"position" yaml:"position"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"-" yaml:"-"`
}
