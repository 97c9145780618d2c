package domain

import (
	"math/rand"
	"strconv"
)

// Card is a single playing card in the duel deck.
type Card struct {
	Rank string `json:"rank"` // "A","2".."10","J","Q","K"
	Suit string `json:"suit"` // "S","H","D","C"
}

// Outcome is the result of a finished duel.
type Outcome string

const (
	OutcomeAttacker Outcome = "attacker"
	OutcomeDefender Outcome = "defender"
	OutcomePush     Outcome = "push"
)

var (
	suits = []string{"S", "H", "D", "C"}
	ranks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
)

// NewDeck returns an ordered 52-card deck.
func NewDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, s := range suits {
		for _, r := range ranks {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}

// ShuffleDeck returns a shuffled copy of the given deck.
func ShuffleDeck(rng *rand.Rand, deck []Card) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// CardValue returns the blackjack value of a card, counting aces as 11.
func CardValue(c Card) int {
	switch c.Rank {
	case "A":
		return 11
	case "K", "Q", "J":
		return 10
	default:
		n, _ := strconv.Atoi(c.Rank)
		return n
	}
}

// HandScore sums card values, demoting aces from 11 to 1 one at a time while
// the total busts.
func HandScore(hand []Card) int {
	total := 0
	aces := 0
	for _, c := range hand {
		if c.Rank == "A" {
			aces++
		}
		total += CardValue(c)
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// HouseMustDraw reports whether the house hand is still forced to draw.
func HouseMustDraw(hand []Card) bool {
	return HandScore(hand) < 17
}

// DuelOutcome scores two finalized hands. A busted attacker loses outright,
// then a busted house loses, then higher score wins with equal scores pushing.
func DuelOutcome(attackerHand, houseHand []Card) Outcome {
	attackerScore := HandScore(attackerHand)
	if attackerScore > 21 {
		return OutcomeDefender
	}
	houseScore := HandScore(houseHand)
	if houseScore > 21 || attackerScore > houseScore {
		return OutcomeAttacker
	}
	if attackerScore == houseScore {
		return OutcomePush
	}
	return OutcomeDefender
}
