package models

import (
	"github.com/uptrace/bun"
)

type Config struct {
	bun.BaseModel `bun:"table:config"`
	Key           string `bun:"key,pk" json:"key" yaml:"key"`
	Value         string `bun:"value" json:"value" yaml:"value"`
	Description   string `bun:"description" json:"description" yaml:"description"`
}
