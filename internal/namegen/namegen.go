// Package namegen generates memorable "adjective-noun" agent names
// (spec.md §8 scenario S1's "brave-falcon" example), grounded in the
// original Python implementation's generate_agent_name in utils.py.
package namegen

import "github.com/google/uuid"

var adjectives = []string{
	"brave", "calm", "dark", "eager", "fair", "gentle", "happy", "idle",
	"jolly", "keen", "lively", "merry", "noble", "odd", "proud", "quick",
	"rapid", "silent", "tall", "unique", "vivid", "warm", "young", "zesty",
	"amber", "blue", "coral", "dusty", "emerald", "frosty", "golden", "hazy",
}

var nouns = []string{
	"falcon", "tiger", "eagle", "wolf", "bear", "lion", "hawk", "fox",
	"otter", "raven", "shark", "whale", "cobra", "crane", "drake", "elk",
	"finch", "gecko", "heron", "ibis", "jay", "koala", "lemur", "moose",
	"newt", "owl", "panda", "quail", "robin", "swan", "trout", "viper",
}

// Generate returns a random "adjective-noun" name, e.g. "brave-falcon".
// Randomness comes from a UUID's bytes rather than math/rand so the
// package needs no explicit seeding.
func Generate() string {
	id := uuid.New()
	return adjectives[int(id[0])%len(adjectives)] + "-" + nouns[int(id[1])%len(nouns)]
}
