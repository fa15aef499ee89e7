package words

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultList is the built-in floor of the fallback chain.
var defaultList = []string{
	"python",
	"discord",
	"hangman",
	"bot",
	"developer",
	"coding",
	"cascade",
	"paradigm",
	"magic",
	"wizard",
	"google",
	"gemini",
}

// DefaultList returns a copy of the built-in word list.
func DefaultList() []string {
	out := make([]string, len(defaultList))
	copy(out, defaultList)
	return out
}

type listFile struct {
	Words []string `yaml:"words"`
}

// LoadList reads a word list from a YAML file of the form:
//
//	words:
//	  - example
//	  - another
//
// Precondition: path must name a readable YAML file with at least one word.
func LoadList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading word list %s: %w", path, err)
	}
	var f listFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing word list %s: %w", path, err)
	}
	if len(f.Words) == 0 {
		return nil, fmt.Errorf("word list %s contains no words", path)
	}
	return f.Words, nil
}
