package initializers

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
)

// LoadEnv pulls configuration from a local .env file. In deployed
// environments the variables come from the platform instead.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("no .env file found")
	}
	log.Println("Env loaded successfully")
	return nil
}
