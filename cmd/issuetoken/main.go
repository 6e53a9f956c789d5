// Command issuetoken prints a bearer token for an existing account. Sign-up
// and login live outside this service; operators use this to mint tokens
// for testing and for service accounts.
package main

import (
	"battlezone/internal/config" // Configuration
	"battlezone/internal/db"     // Store selection
	"battlezone/internal/utils"  // JWT helpers
	"context"                    // Store lookups
	"fmt"                        // Output
	"os"                         // Process arguments

	"github.com/sirupsen/logrus" // Logging library
	"github.com/spf13/pflag"     // Command line flags
)

func main() {
	cfg := config.LoadConfig() // Load configuration

	var userID uint
	flagSet := pflag.NewFlagSet("issuetoken", pflag.ExitOnError)
	flagSet.UintVar(&userID, "user-id", 0, "account to issue the token for")
	flagSet.DurationVar(&cfg.JWTTTL, "ttl", cfg.JWTTTL, "token lifetime (default from JWT_TTL)")
	_ = flagSet.Parse(os.Args[1:])

	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	if userID == 0 {
		logrus.Fatal("--user-id is required")
	}
	if cfg.DBDriver == config.DriverMemory {
		logrus.Fatal("issuetoken needs a SQL database; the memory store starts empty")
	}

	st, err := db.OpenStore(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	user, err := st.GetUser(context.Background(), userID) // Role comes from the account, not the caller
	if err != nil {
		logrus.Fatalf("failed to load account %d: %v", userID, err)
	}
	token, err := utils.GenerateJWT(user.ID, user.Role, cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logrus.Fatalf("failed to sign token: %v", err)
	}
	fmt.Println(token)
}
