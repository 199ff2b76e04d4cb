// cmd/keygen/main.go
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/story-mcp/internal/utils"
)

// keygen prints a new operator API key and the bcrypt hash to append to
// API_KEY_HASHES. Only the hash belongs in server configuration.
func main() {
	count := flag.Int("n", 1, "number of keys to generate")
	flag.Parse()

	for i := 0; i < *count; i++ {
		key, err := utils.GenerateAPIKey()
		if err != nil {
			logrus.Fatal("Failed to generate API key: ", err)
		}
		hash, err := utils.HashAPIKey(key)
		if err != nil {
			logrus.Fatal("Failed to hash API key: ", err)
		}
		fmt.Fprintf(os.Stdout, "key:  %s\nhash: %s\n", key, hash)
	}
}
