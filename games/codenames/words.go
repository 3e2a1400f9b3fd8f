package codenames

import (
	"math/rand"
	"strings"
)

var wordPool = strings.Fields(`
APPLE BRIDGE CIRCLE DOCTOR ENGINE FOREST GLASS HARBOR ISLAND JACKET
KNIGHT LEMON MARKET NEEDLE OCEAN PALACE QUEEN RIVER SHADOW TEMPLE
UMBRELLA VALLEY WHALE YACHT ZEBRA ANCHOR BUTTON CASTLE DRAGON EAGLE
FEATHER GARDEN HAMMER INK JUNGLE KETTLE LADDER MIRROR NUT ORGAN
PENCIL QUILT ROCKET SADDLE TIGER UNICORN VIOLIN WINDOW XRAY YARN
ARROW BELL COMET DESK ECHO FLAME GHOST HONEY IRON JAR
KEY LAMP MOON NEST OWL PIANO QUARRY ROPE STAR TRAIN
`)

// sampleWords returns n distinct words from the pool.
func sampleWords(n int) []string {
	perm := rand.Perm(len(wordPool))
	out := make([]string, 0, n)
	for _, i := range perm[:n] {
		out = append(out, wordPool[i])
	}
	return out
}
