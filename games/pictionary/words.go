package pictionary

import "math/rand"

var words = []string{
	"apple", "car", "cat", "dog", "house", "sun", "moon", "cloud", "table", "pencil",
	"train", "plane", "tree", "heart", "fish", "pizza", "robot", "mountain", "sea", "bell",
	"lantern", "book", "school", "star", "camera", "tower", "city", "flower", "glasses", "sock",
}

// sampleWords returns n distinct words from the table.
func sampleWords(n int) []string {
	perm := rand.Perm(len(words))
	out := make([]string, 0, n)
	for _, i := range perm[:n] {
		out = append(out, words[i])
	}
	return out
}
