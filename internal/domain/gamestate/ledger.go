// Package gamestate holds the per-save player data that costs are paid from
// and items are granted into.
package gamestate

import (
	"encoding/json"
	"fmt"
	"strings"

	"rewardcore/internal/domain/cost"
)

// Ledger is a resource/flag store. It is not safe for concurrent use.
type Ledger struct {
	Resources map[string]int  `json:"resources"`
	Flags     map[string]bool `json:"flags"`
}

func NewLedger() *Ledger {
	return &Ledger{Resources: map[string]int{}, Flags: map[string]bool{}}
}

func (l *Ledger) Balance(resource string) int {
	return l.Resources[resource]
}

func (l *Ledger) Spend(resource string, amount int) error {
	if amount < 0 {
		return fmt.Errorf("spend %s: negative amount %d", resource, amount)
	}
	if l.Resources[resource] < amount {
		return fmt.Errorf("spend %d %s (have %d): %w", amount, resource, l.Resources[resource], cost.ErrInsufficientBalance)
	}
	if l.Resources == nil {
		l.Resources = map[string]int{}
	}
	l.Resources[resource] -= amount
	return nil
}

func (l *Ledger) Grant(resource string, amount int) {
	resource = strings.TrimSpace(resource)
	if resource == "" || amount == 0 {
		return
	}
	if l.Resources == nil {
		l.Resources = map[string]int{}
	}
	l.Resources[resource] += amount
}

func (l *Ledger) Flag(name string) bool {
	return l.Flags[name]
}

func (l *Ledger) SetFlag(name string, value bool) {
	if l.Flags == nil {
		l.Flags = map[string]bool{}
	}
	if !value {
		delete(l.Flags, name)
		return
	}
	l.Flags[name] = true
}

func (l *Ledger) Encode() ([]byte, error) {
	return json.Marshal(l)
}

func Decode(raw []byte) (*Ledger, error) {
	l := NewLedger()
	if len(raw) == 0 {
		return l, nil
	}
	if err := json.Unmarshal(raw, l); err != nil {
		return nil, fmt.Errorf("decode ledger: %w", err)
	}
	if l.Resources == nil {
		l.Resources = map[string]int{}
	}
	if l.Flags == nil {
		l.Flags = map[string]bool{}
	}
	return l, nil
}
